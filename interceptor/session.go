package interceptor

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/launchdarkly/http-mock-contract-tests/logging"

	"github.com/google/uuid"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// Config controls construction of a Session.
type Config struct {
	// Logger receives a line for every dispatched request. If nil, output is discarded.
	Logger logging.Logger

	// Fallback, if set, receives requests that are made through Transport or Client while
	// the session is stopped. If nil, such requests fail with ErrNotActive.
	Fallback http.RoundTripper
}

// Call records a single request that was dispatched by a Session.
type Call struct {
	ID     string
	Method Method
	URL    string
	Body   ldvalue.Value
	Rule   string // the rule that handled the request, if any
	Status int    // zero if the request was not handled or has not settled yet
	Err    error
}

// Session holds the rules for intercepting requests during a test run. It is created once,
// started before any requests are made, and reset with RestoreDefaults between tests.
//
// Rules are considered in this order: first the overrides added by Use, most recent first;
// then the baseline rules, in the order they were given to New. The first rule whose method
// and URL matcher both match the request handles it.
//
// Rule changes are expected to happen only between requests, as in test setup and teardown.
// Dispatch itself may be called from any number of goroutines at once.
type Session struct {
	baseline  []HandlerRule
	overrides []HandlerRule
	active    bool
	calls     []*Call
	logger    logging.Logger
	fallback  http.RoundTripper
	lock      sync.RWMutex
}

// New creates an inactive Session with the given baseline rules.
func New(config Config, baseline ...HandlerRule) *Session {
	logger := config.Logger
	if logger == nil {
		logger = logging.NullLogger()
	}
	return &Session{
		baseline: append([]HandlerRule(nil), baseline...),
		logger:   logger,
		fallback: config.Fallback,
	}
}

// Start activates interception. Calling it when already started has no effect.
func (s *Session) Start() {
	s.lock.Lock()
	defer s.lock.Unlock()
	if !s.active {
		s.active = true
		s.logger.Printf("Interception started with %d baseline rule(s)", len(s.baseline))
	}
}

// Stop deactivates interception. It is safe to call on a session that was never started.
func (s *Session) Stop() {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.active {
		s.active = false
		s.logger.Printf("Interception stopped")
	}
}

// IsActive reports whether the session is intercepting requests.
func (s *Session) IsActive() bool {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.active
}

// Use adds override rules which take precedence over the baseline and over any earlier
// overrides. Within a single call, earlier arguments take precedence over later ones.
func (s *Session) Use(rules ...HandlerRule) {
	if len(rules) == 0 {
		return
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	s.overrides = append(append([]HandlerRule(nil), rules...), s.overrides...)
	for _, r := range rules {
		s.logger.Printf("Added override rule %s", r)
	}
}

// RestoreDefaults discards all overrides added by Use.
func (s *Session) RestoreDefaults() {
	s.lock.Lock()
	defer s.lock.Unlock()
	if len(s.overrides) > 0 {
		s.logger.Printf("Discarding %d override rule(s)", len(s.overrides))
	}
	s.overrides = nil
}

// Rules returns all current rules in the order in which they are matched.
func (s *Session) Rules() []HandlerRule {
	s.lock.RLock()
	defer s.lock.RUnlock()
	ret := make([]HandlerRule, 0, len(s.overrides)+len(s.baseline))
	ret = append(ret, s.overrides...)
	return append(ret, s.baseline...)
}

// Calls returns the requests dispatched so far, in the order they arrived.
func (s *Session) Calls() []Call {
	s.lock.RLock()
	defer s.lock.RUnlock()
	ret := make([]Call, 0, len(s.calls))
	for _, c := range s.calls {
		ret = append(ret, *c)
	}
	return ret
}

// ClearCalls discards the record of dispatched requests.
func (s *Session) ClearCalls() {
	s.lock.Lock()
	s.calls = nil
	s.lock.Unlock()
}

// Dispatch finds the rule for a request and returns the response produced by its resolver.
//
// If no rule matches, it returns an *UnhandledRequestError. If the resolver returns an error
// or panics, it returns FaultResponse() together with a *ResolverFault. If the session is
// not active, it returns ErrNotActive.
func (s *Session) Dispatch(ctx context.Context, req Request) (ResponseDescriptor, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	urlString := req.urlString()
	var t target
	if req.URL != nil {
		t = normalizeTarget(req.URL)
	}

	// The call is recorded on arrival; its outcome is filled in when it settles.
	s.lock.Lock()
	if !s.active {
		s.lock.Unlock()
		return ResponseDescriptor{}, ErrNotActive
	}
	rule, found := s.findRule(req.Method, t)
	call := &Call{ID: uuid.New().String(), Method: req.Method, URL: urlString, Body: req.Body}
	if found {
		call.Rule = rule.String()
	}
	s.calls = append(s.calls, call)
	s.lock.Unlock()

	if !found {
		err := &UnhandledRequestError{Method: req.Method, URL: urlString}
		s.logger.Printf("[%s] %s", call.ID, err)
		s.settle(call, 0, err)
		return ResponseDescriptor{}, err
	}

	resp, err := invokeResolver(ctx, rule, req)
	if err != nil {
		fault := &ResolverFault{Method: req.Method, URL: urlString, Rule: rule.String(), Err: err}
		s.logger.Printf("[%s] %s", call.ID, fault)
		resp = FaultResponse()
		s.settle(call, resp.Status, fault)
		return resp, fault
	}

	status := resp.EffectiveStatus()
	s.logger.Printf("[%s] %s %s -> %d (%s)", call.ID, req.Method, urlString, status, rule)
	s.settle(call, status, nil)
	return resp, nil
}

func (s *Session) findRule(method Method, t target) (HandlerRule, bool) {
	for _, r := range s.overrides {
		if r.matches(method, t) {
			return r, true
		}
	}
	for _, r := range s.baseline {
		if r.matches(method, t) {
			return r, true
		}
	}
	return HandlerRule{}, false
}

func (s *Session) settle(call *Call, status int, err error) {
	s.lock.Lock()
	call.Status = status
	call.Err = err
	s.lock.Unlock()
}

func invokeResolver(ctx context.Context, rule HandlerRule, req Request) (resp ResponseDescriptor, err error) {
	if rule.Resolver == nil {
		return ResponseDescriptor{}, fmt.Errorf("rule %s has no resolver", rule)
	}
	defer func() {
		if r := recover(); r != nil {
			resp = ResponseDescriptor{}
			err = fmt.Errorf("resolver panicked: %v", r)
		}
	}()
	return rule.Resolver(ctx, req)
}
