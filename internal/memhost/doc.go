// Package memhost is an in-memory host.Builder.
//
// It stores everything plugins register and keeps a journal of every call in
// the order it was made, which is what the conformance checks, the CLI dry run
// and most tests inspect. It does not run systems.
//
// Like the real hosts it stands in for, an App must have state support
// installed (by adding StatesPlugin) before any state machine is registered.
package memhost
