// Package compiler turns plugin definitions into plugins.
//
// A definition is parsed once into an ordered list of entries. Compile then
// walks that same list in four independent passes:
//
//   - the build pass produces the registration program run by Plugin.Build,
//   - the finish pass produces the program run by Plugin.Finish,
//   - the metadata pass folds the entries into a metadata.PluginMetadata,
//   - the test pass gathers what the conformance checks need.
//
// Every name in a definition is resolved while compiling, against the
// registry and against the other definitions compiled with it. Unresolvable
// names are reported as diagnostics, so a compiled plugin never fails to
// build because of its definition. The only runtime failures left are
// missing dependencies and errors returned by hooks or factories.
package compiler
