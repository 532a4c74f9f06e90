// Package app wires the validation pipeline together: it builds the
// isolated logger, registers the structural validators, constructs the
// compliance checker from its profile, and drives the batch run. It is
// decoupled from any specific entrypoint so the CLI and tests share one
// lifecycle.
package app
