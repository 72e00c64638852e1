// Package lsp adapts a Language Server Protocol completion endpoint to the
// completion.Provider contract.
//
// The wire coordinate space is UTF-16 line/character pairs; everything is
// converted to document byte offsets at this boundary so the rest of the
// program never sees protocol coordinates. Malformed items are dropped
// individually rather than failing the whole response.
package lsp
