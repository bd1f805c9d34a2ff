package interceptor

import (
	"errors"
	"fmt"
)

// ErrNotActive is returned for requests made while the session is not intercepting.
var ErrNotActive = errors.New("request interception is not active")

// UnhandledRequestError means that no rule matched a request. It indicates a missing or
// misconfigured mock.
type UnhandledRequestError struct {
	Method Method
	URL    string
}

func (e *UnhandledRequestError) Error() string {
	return fmt.Sprintf("unhandled request: %s %s", e.Method, e.URL)
}

// ResolverFault means that the resolver of the matched rule returned an error or panicked.
type ResolverFault struct {
	Method Method
	URL    string
	Rule   string
	Err    error
}

func (e *ResolverFault) Error() string {
	return fmt.Sprintf("resolver for %s failed on %s %s: %s", e.Rule, e.Method, e.URL, e.Err)
}

func (e *ResolverFault) Unwrap() error {
	return e.Err
}
