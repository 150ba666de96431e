// Package hcladapter reads plugin definitions written in HCL and translates
// them into the format-agnostic config model.
//
// A definition file contains any number of `plugin "Name" { ... }` blocks.
// Blocks that share a name, within one file or across files, are fragments of
// the same definition and are concatenated in load order. Files are loaded in
// lexical path order so the result does not depend on directory iteration.
//
// The body of each plugin block is walked in source order with a small
// recursive-descent parser. Attributes and blocks are interleaved exactly as
// written, which is what allows repeated options to accumulate in order.
package hcladapter
