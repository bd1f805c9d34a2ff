// Package interceptor implements an in-process HTTP request interceptor for tests.
//
// The general model is:
//
// 1. A Session is constructed with a baseline set of HandlerRules. Each rule pairs an HTTP
// method and a URLMatcher with a Resolver that synthesizes a ResponseDescriptor.
//
// 2. Tests may shadow baseline rules with overrides by calling Use. Overrides are consulted
// before the baseline, newest first, and are discarded by RestoreDefaults, which should be
// called at the end of every test.
//
// 3. Requests reach the session either directly through Dispatch, or through the standard
// library's HTTP plumbing via Transport, Client, or ServeHTTP. No real network I/O takes
// place while the session is active.
//
// A request that matches no rule is never passed through: it fails with an
// *UnhandledRequestError, so that a missing mock causes the test to fail immediately.
package interceptor
