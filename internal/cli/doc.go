// Package cli turns the command line into an Invocation: the subcommand, its
// positional argument and the merged settings from flags, ACTIONREF_*
// environment variables and actionref.yaml. Usage errors are reported as
// ExitError with exit code 2.
package cli
