// Package cli translates command-line arguments into an application
// configuration and defines the exit-code-carrying error type the
// entrypoint maps onto os.Exit.
package cli
