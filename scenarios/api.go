package scenarios

import (
	"context"

	"github.com/launchdarkly/http-mock-contract-tests/framework"
	"github.com/launchdarkly/http-mock-contract-tests/handlers"
	"github.com/launchdarkly/http-mock-contract-tests/interceptor"
	"github.com/launchdarkly/http-mock-contract-tests/logging"
	"github.com/launchdarkly/http-mock-contract-tests/loginform"

	"github.com/stretchr/testify/require"
)

// T represents a test or subtest in the login scenario suite.
//
// It implements the same basic functionality as Go's testing.T, on top of framework.Context.
// Every T shares the suite's interception session; any override rules a test adds with Use
// are discarded when that test ends, so tests cannot leak mocks into each other.
//
// To make test assertions, you can use the assert and require packages, passing the *T as if
// it were a *testing.T.
type T struct {
	context *framework.Context
	session *interceptor.Session
}

func newTestScope(c *framework.Context, session *interceptor.Session) *T {
	t := &T{context: c, session: session}
	c.Defer(t.restore)
	return t
}

func (t *T) restore() {
	debug := t.context.DebugLogger()
	for _, call := range t.session.Calls() {
		if call.Err != nil {
			debug.Printf("request %s: %s %s failed: %s", call.ID, call.Method, call.URL, call.Err)
		} else {
			debug.Printf("request %s: %s %s -> %d via %s", call.ID, call.Method, call.URL, call.Status, call.Rule)
		}
	}
	if t.context.Failed() {
		rules := logging.WithPrefix(debug, "  ")
		debug.Printf("rules in effect:")
		for _, r := range t.session.Rules() {
			rules.Printf("%s", r)
		}
	}
	t.session.ClearCalls()
	t.session.RestoreDefaults()
}

// Errorf is called by assertions to log a test failure. It does not cause an immediate exit.
func (t *T) Errorf(format string, args ...interface{}) {
	t.context.Errorf(format, args...)
}

// FailNow is called by assertions when a test should fail and immediately exit. The methods in
// the require package call FailNow.
func (t *T) FailNow() {
	t.context.FailNow()
}

// Run runs a subtest. This is equivalent to the Run method of testing.T.
func (t *T) Run(name string, action func(*T)) {
	t.context.Run(name, func(c *framework.Context) {
		action(newTestScope(c, t.session))
	})
}

// Debug logs some debug output for the test. The output will be passed to the test logger at
// the end of the test.
func (t *T) Debug(format string, args ...interface{}) {
	t.context.Debug(format, args...)
}

// Session returns the interception session shared by the suite.
func (t *T) Session() *interceptor.Session {
	return t.session
}

// Use adds override rules for the remainder of the current test.
func (t *T) Use(rules ...interceptor.HandlerRule) {
	t.session.Use(rules...)
}

// NewForm returns a login form that submits to the default login endpoint through the session.
func (t *T) NewForm() *loginform.Form {
	return t.NewFormFor(handlers.LoginURL)
}

// NewFormFor returns a login form that submits to the given endpoint through the session.
func (t *T) NewFormFor(endpoint string) *loginform.Form {
	return loginform.New(endpoint, t.session.Client())
}

// Submit submits data with a new default form and returns the resulting state.
func (t *T) Submit(data loginform.LoginData) loginform.State {
	state := t.NewForm().Submit(context.Background(), data)
	t.Debug("submitted %+v, got %+v", data, state)
	return state
}

// RequireAlert submits data and fails the test immediately unless the form shows an alert.
func (t *T) RequireAlert(data loginform.LoginData) string {
	state := t.Submit(data)
	require.False(t, state.OK(), "expected the form to show an alert, but it showed username %q", state.Username)
	return state.Alert
}

// RequireSignedIn submits data and fails the test immediately unless the login succeeds.
func (t *T) RequireSignedIn(data loginform.LoginData) string {
	state := t.Submit(data)
	require.True(t, state.OK(), "expected login to succeed, but the form showed alert %q", state.Alert)
	return state.Username
}
