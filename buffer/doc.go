// Package buffer implements the pure document model: text, cursor,
// selection, history, and offset conversions.
//
// Coordinates are 0-based (Row, GraphemeCol) in grapheme clusters.
// Ranges are half-open selections in document coordinates: [Start, End).
// ByteOffset and UTF16Offset are distinct types so the byte space used
// internally can never be mixed with the UTF-16 space used by protocol
// payloads.
package buffer
