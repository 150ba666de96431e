// Package host defines the contract between compiled plugins and the
// application that hosts them.
//
// A host exposes a Builder. Plugins call it during their build phase to
// register resources, message channels, state machines, reflected types,
// nested plugins and systems. After every plugin has been built, the host
// calls Finish on each of them in the order they were added.
//
// Systems are forwarded as SystemConfig trees. The host decides how, and
// whether, to run them.
package host
