// Package framework contains a small test runner that works outside of the Go test tool, so
// that scenario suites can be run from a command-line program and report their own results.
//
// A Context is similar to Go's *testing.T: it associates test logic with a test identifier,
// accumulates failures, captures debug output, and runs deferred cleanup when the test ends.
// It implements the methods used by testify's assert and require packages.
//
// The domain-specific code that knows what is being tested builds its own test API on top of
// Context; see the scenarios package.
package framework
