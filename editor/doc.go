// Package editor provides a Bubble Tea text editor component backed by the
// buffer package, with completion menu and inline ghost suggestions driven
// by the completion package.
//
// The package is responsible for input handling, viewport behavior, and
// host integration hooks (completion providers, change events, styling).
package editor
