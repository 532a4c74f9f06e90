// Package engine is the compliance-validation core: it walks an opened
// stage, dispatches each visited prim to the structural validator registered
// for its kind, runs the independent rule-based compliance checker over the
// same file, and merges both verdicts into one report per input.
//
// The engine is deliberately ignorant of what any individual check means.
// Structural validators and the compliance checker are collaborators wired
// in by the caller; the engine owns only the traversal policy, the dispatch
// table, the merge algorithm, and the batch loop.
package engine
