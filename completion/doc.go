// Package completion implements the incremental completion engine: the
// provider contract, the per-editor session state machine that opens and
// refreshes the menu on every edit, the debounced inline (ghost text)
// scheduler, and the reference matcher used by the local provider.
//
// The engine runs on a single cooperative scheduler: session state is only
// mutated from the host's Bubble Tea update loop. Provider fetches run in
// the background and deliver their results as messages; stale results are
// discarded by re-validating captured preconditions, not by cancellation.
package completion
