package interceptor

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Method is one of the HTTP verbs that a HandlerRule can declare.
type Method string

const (
	MethodGet     Method = "GET"
	MethodPost    Method = "POST"
	MethodPut     Method = "PUT"
	MethodPatch   Method = "PATCH"
	MethodDelete  Method = "DELETE"
	MethodHead    Method = "HEAD"
	MethodOptions Method = "OPTIONS"
)

var allMethods = []Method{MethodGet, MethodPost, MethodPut, MethodPatch, MethodDelete, MethodHead, MethodOptions}

// ParseMethod converts a method name, in any letter case, to a Method. It fails for anything
// outside the supported set.
func ParseMethod(name string) (Method, error) {
	m := Method(strings.ToUpper(strings.TrimSpace(name)))
	for _, known := range allMethods {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("unsupported HTTP method %q", name)
}

// MatcherKind distinguishes the variants of URLMatcher.
type MatcherKind int

const (
	// ExactMatch compares the normalized request URL for equality.
	ExactMatch MatcherKind = iota
	// PatternMatch tests the normalized request URL against a regular expression.
	PatternMatch
)

// URLMatcher decides whether a rule applies to a request URL. It is either an exact URL,
// created with Exact, or a regular expression, created with Pattern.
//
// An exact matcher that is a bare path such as "/api/login" matches that path on any host.
// Otherwise scheme and host are compared case-insensitively, default ports are ignored, and
// the query string and fragment of the request are never considered.
type URLMatcher struct {
	kind     MatcherKind
	raw      string
	exact    target
	pathOnly bool
	pattern  *regexp.Regexp
}

// Exact returns a matcher for a single URL.
func Exact(rawURL string) URLMatcher {
	m := URLMatcher{kind: ExactMatch, raw: rawURL}
	t, err := normalizeRawURL(rawURL)
	if err != nil {
		// An unparseable URL can still match a request whose URL is the same unparseable text,
		// so fall back to a literal comparison.
		t = target{full: rawURL, path: rawURL}
	}
	m.exact = t
	m.pathOnly = strings.HasPrefix(rawURL, "/")
	return m
}

// Pattern returns a matcher that tests normalized request URLs against a regular expression.
func Pattern(expr string) (URLMatcher, error) {
	rx, err := regexp.Compile(expr)
	if err != nil {
		return URLMatcher{}, fmt.Errorf("invalid URL pattern: %w", err)
	}
	return PatternOf(rx), nil
}

// MustPattern is like Pattern but panics if the expression does not compile.
func MustPattern(expr string) URLMatcher {
	m, err := Pattern(expr)
	if err != nil {
		panic(err)
	}
	return m
}

// PatternOf returns a matcher for an already compiled regular expression.
func PatternOf(rx *regexp.Regexp) URLMatcher {
	return URLMatcher{kind: PatternMatch, raw: rx.String(), pattern: rx}
}

// Kind reports which variant the matcher is.
func (m URLMatcher) Kind() MatcherKind { return m.kind }

func (m URLMatcher) String() string {
	if m.kind == PatternMatch {
		return "/" + m.raw + "/"
	}
	return m.raw
}

func (m URLMatcher) matches(t target) bool {
	switch m.kind {
	case ExactMatch:
		if m.pathOnly {
			return m.exact.path == t.path
		}
		return m.exact.full == t.full
	case PatternMatch:
		return m.pattern != nil && m.pattern.MatchString(t.full)
	default:
		return false
	}
}

// Resolver computes the response for a matched request. It may block before returning, to
// simulate latency; it should honor cancellation of ctx if it does.
type Resolver func(ctx context.Context, req Request) (ResponseDescriptor, error)

// HandlerRule maps an HTTP method and URL matcher to a Resolver. Rules need not be unique;
// see Session for how ties are broken.
type HandlerRule struct {
	Name     string
	Method   Method
	Matcher  URLMatcher
	Resolver Resolver
}

// NewRule creates a HandlerRule. The method may be given in any letter case; NewRule panics if
// it is not one of the supported methods. Use ParseMethod first to validate untrusted input.
func NewRule(method Method, matcher URLMatcher, resolver Resolver) HandlerRule {
	m, err := ParseMethod(string(method))
	if err != nil {
		panic(err)
	}
	return HandlerRule{Method: m, Matcher: matcher, Resolver: resolver}
}

// Get creates a rule for GET requests to an exact URL.
func Get(rawURL string, resolver Resolver) HandlerRule {
	return NewRule(MethodGet, Exact(rawURL), resolver)
}

// Post creates a rule for POST requests to an exact URL.
func Post(rawURL string, resolver Resolver) HandlerRule {
	return NewRule(MethodPost, Exact(rawURL), resolver)
}

// Put creates a rule for PUT requests to an exact URL.
func Put(rawURL string, resolver Resolver) HandlerRule {
	return NewRule(MethodPut, Exact(rawURL), resolver)
}

// Patch creates a rule for PATCH requests to an exact URL.
func Patch(rawURL string, resolver Resolver) HandlerRule {
	return NewRule(MethodPatch, Exact(rawURL), resolver)
}

// Delete creates a rule for DELETE requests to an exact URL.
func Delete(rawURL string, resolver Resolver) HandlerRule {
	return NewRule(MethodDelete, Exact(rawURL), resolver)
}

// Named returns a copy of the rule with a descriptive name, used in log output.
func (r HandlerRule) Named(name string) HandlerRule {
	r.Name = name
	return r
}

func (r HandlerRule) String() string {
	s := string(r.Method) + " " + r.Matcher.String()
	if r.Name != "" {
		s += " (" + r.Name + ")"
	}
	return s
}

func (r HandlerRule) matches(method Method, t target) bool {
	return r.Method == method && r.Matcher.matches(t)
}

// Respond returns a Resolver that always produces the same response.
func Respond(resp ResponseDescriptor) Resolver {
	return func(context.Context, Request) (ResponseDescriptor, error) {
		return resp, nil
	}
}

// Fail returns a Resolver that always fails with the given error.
func Fail(err error) Resolver {
	return func(context.Context, Request) (ResponseDescriptor, error) {
		return ResponseDescriptor{}, err
	}
}

// Delayed returns a Resolver that waits for the given interval before delegating. If ctx is
// cancelled first, it returns the context's error.
func Delayed(delay time.Duration, next Resolver) Resolver {
	return func(ctx context.Context, req Request) (ResponseDescriptor, error) {
		if delay > 0 {
			timer := time.NewTimer(delay)
			defer timer.Stop()
			select {
			case <-timer.C:
			case <-ctx.Done():
				return ResponseDescriptor{}, ctx.Err()
			}
		}
		return next(ctx, req)
	}
}
