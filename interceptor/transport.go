package interceptor

import (
	"errors"
	"net/http"
)

type sessionTransport struct {
	session *Session
}

// Transport returns an http.RoundTripper that sends requests to the session instead of the
// network.
//
// An unhandled request, or a request made while the session is stopped and there is no
// fallback transport, fails with an error. A resolver fault is not an error at this level:
// the client receives the 500 response from FaultResponse, as it would from a real server.
func (s *Session) Transport() http.RoundTripper {
	return sessionTransport{session: s}
}

// Client returns an *http.Client that uses Transport.
func (s *Session) Client() *http.Client {
	return &http.Client{Transport: s.Transport()}
}

func (t sessionTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	if !t.session.IsActive() {
		if t.session.fallback != nil {
			return t.session.fallback.RoundTrip(r)
		}
		if r.Body != nil {
			_ = r.Body.Close()
		}
		return nil, ErrNotActive
	}
	req, err := requestFromHTTP(r, false)
	if err != nil {
		return nil, err
	}
	resp, err := t.session.Dispatch(r.Context(), req)
	if err != nil {
		var fault *ResolverFault
		if !errors.As(err, &fault) {
			return nil, err
		}
	}
	return resp.toHTTP(r), nil
}

// ServeHTTP lets the session act as an HTTP handler, for code under test that can only be
// pointed at a server URL.
//
// Unhandled requests get a 501 status and requests to a stopped session get a 503, in both
// cases with a JSON body whose message describes the problem.
func (s *Session) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req, err := RequestFromHTTP(r)
	if err != nil {
		Message(http.StatusBadRequest, err.Error()).write(w)
		return
	}
	resp, err := s.Dispatch(r.Context(), req)
	if err != nil {
		var unhandled *UnhandledRequestError
		switch {
		case errors.As(err, &unhandled):
			resp = Message(http.StatusNotImplemented, err.Error())
		case errors.Is(err, ErrNotActive):
			resp = Message(http.StatusServiceUnavailable, err.Error())
		}
	}
	resp.write(w)
}
