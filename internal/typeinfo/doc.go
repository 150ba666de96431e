// Package typeinfo provides the identity tokens used to compare the types a
// plugin registers.
//
// A TypeInfo pairs a human-readable name with an Identity. Two TypeInfo
// values are equal when their identities are equal; the name is only for
// display. Go types get their identity from reflect.Type, so a name alias or
// a re-registration under another label still compares equal. Compiled plugin
// definitions have no Go type of their own and receive a process-unique token
// from NewIdentity instead.
package typeinfo
