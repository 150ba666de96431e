// Package grammar defines the closed vocabulary of a plugin definition: the
// keys a definition may use, the value shape each key expects, and the
// diagnostics reported when a definition strays outside of it.
//
// The vocabulary is ordered. That order is the one used when listing valid
// keys back to the user and has no effect on how a definition is compiled.
package grammar
