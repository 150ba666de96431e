// Package cli is responsible for parsing command-line arguments, resolving
// configuration from flags, PLUGDEF_* environment variables and .plugdef.yaml,
// and handling process-level concerns like error rendering and exit codes.
package cli
