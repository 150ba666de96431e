// Package conformance runs the checks generated for a plugin that opts into
// them with generate_tests.
//
// Every check starts from a fresh host, adds the plugin under test and
// asserts that the registrations it declares actually took effect. Checks
// can be run as subtests of a standard Go test with Run, or collected as
// plain results with Suite.RunAll for tools that are not tests.
package conformance
