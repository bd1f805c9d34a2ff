package interceptor

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

func readBody(t *testing.T, resp *http.Response) string {
	defer resp.Body.Close()
	data, err := ioutil.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(data)
}

func TestClientReceivesSynthesizedResponse(t *testing.T) {
	s := newStartedSession(t, Post(loginURL, loginResolver))

	resp, err := s.Client().Post(loginURL, "application/json",
		strings.NewReader(`{"username":"alex","password":"secret"}`))
	require.NoError(t, err)

	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.JSONEq(t, `{"username":"alex"}`, readBody(t, resp))
}

func TestClientReceivesValidationError(t *testing.T) {
	s := newStartedSession(t, Post(loginURL, loginResolver))

	resp, err := s.Client().Post(loginURL, "application/json", strings.NewReader(`{"username":"alex"}`))
	require.NoError(t, err)

	assert.Equal(t, 400, resp.StatusCode)
	assert.JSONEq(t, `{"message":"password required"}`, readBody(t, resp))
}

func TestClientGetsErrorForUnhandledRequest(t *testing.T) {
	s := newStartedSession(t)

	_, err := s.Client().Get("https://api.example.com/unknown")
	require.Error(t, err)

	var unhandled *UnhandledRequestError
	require.True(t, errors.As(err, &unhandled))
	assert.Equal(t, MethodGet, unhandled.Method)
	assert.Equal(t, "https://api.example.com/unknown", unhandled.URL)
}

func TestClientGets500ForResolverFault(t *testing.T) {
	s := newStartedSession(t, Get("/broken", Fail(errors.New("oops"))))

	resp, err := s.Client().Get("https://api.example.com/broken")
	require.NoError(t, err)

	assert.Equal(t, 500, resp.StatusCode)
	assert.JSONEq(t, `{"message":"`+FaultMessage+`"}`, readBody(t, resp))
}

func TestClientRequestBodyIsVisibleToResolver(t *testing.T) {
	rawCh := make(chan []byte, 1)
	s := newStartedSession(t, Put("/upload", func(_ context.Context, req Request) (ResponseDescriptor, error) {
		rawCh <- req.RawBody
		assert.True(t, req.Body.IsNull(), "non-JSON body should parse as null")
		assert.Equal(t, "text/plain", req.Header.Get("Content-Type"))
		return ResponseDescriptor{Status: 204}, nil
	}))

	req, err := http.NewRequest("PUT", "https://files.example.com/upload", bytes.NewBufferString("plain text"))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "text/plain")

	resp, err := s.Client().Do(req)
	require.NoError(t, err)
	assert.Equal(t, 204, resp.StatusCode)
	assert.Equal(t, "", readBody(t, resp))
	assert.Equal(t, "plain text", string(<-rawCh))
}

type closeTrackingBody struct {
	io.Reader
	closed bool
}

func (b *closeTrackingBody) Close() error {
	b.closed = true
	return nil
}

func TestRoundTripLeavesRequestUnmodified(t *testing.T) {
	s := newStartedSession(t, Post(loginURL, loginResolver))

	body := &closeTrackingBody{Reader: strings.NewReader(`{"username":"alex","password":"secret"}`)}
	req, err := http.NewRequest("POST", loginURL, body)
	require.NoError(t, err)

	resp, err := s.Transport().RoundTrip(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.JSONEq(t, `{"username":"alex"}`, readBody(t, resp))

	assert.Same(t, body, req.Body)
	assert.True(t, body.closed, "transport should close the request body")
}

func TestCustomResponseHeaders(t *testing.T) {
	s := newStartedSession(t, Get("/h", Respond(OK(ldvalue.Bool(true)).WithHeader("X-Trace", "abc"))))

	resp, err := s.Client().Get("http://localhost/h")
	require.NoError(t, err)
	assert.Equal(t, "abc", resp.Header.Get("X-Trace"))
	assert.Equal(t, "true", readBody(t, resp))
}

func TestStoppedSessionWithoutFallbackRejects(t *testing.T) {
	s := New(Config{}, Post(loginURL, loginResolver))

	_, err := s.Client().Post(loginURL, "application/json", strings.NewReader(`{}`))
	assert.True(t, errors.Is(err, ErrNotActive))
}

func TestStoppedSessionUsesFallback(t *testing.T) {
	handler, requestsCh := httphelpers.RecordingHandler(httphelpers.HandlerWithStatus(418))
	fallback := httphelpers.ClientFromHandler(handler).Transport
	s := New(Config{Fallback: fallback}, Get("/teapot", Respond(Message(200, "intercepted"))))

	resp, err := s.Client().Get("http://localhost/teapot")
	require.NoError(t, err)
	assert.Equal(t, 418, resp.StatusCode)
	assert.Len(t, requestsCh, 1)

	s.Start()
	resp, err = s.Client().Get("http://localhost/teapot")
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Len(t, requestsCh, 1, "fallback should not see intercepted requests")
}

func TestSessionAsHandler(t *testing.T) {
	s := newStartedSession(t, Post("/api/login", loginResolver))
	server := httptest.NewServer(s)
	defer server.Close()

	resp, err := http.Post(server.URL+"/api/login", "application/json",
		strings.NewReader(`{"username":"alex","password":"secret"}`))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.JSONEq(t, `{"username":"alex"}`, readBody(t, resp))

	resp, err = http.Get(server.URL + "/nothing")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotImplemented, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "unhandled request: GET")

	s.Stop()
	resp, err = http.Get(server.URL + "/api/login")
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestRequestFromHTTPPreservesBody(t *testing.T) {
	r, err := http.NewRequest("POST", loginURL, strings.NewReader(`{"a":1}`))
	require.NoError(t, err)

	req, err := RequestFromHTTP(r)
	require.NoError(t, err)
	assert.Equal(t, MethodPost, req.Method)
	assert.Equal(t, float64(1), req.Field("a").Float64Value())

	again, err := ioutil.ReadAll(r.Body)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(again))
}

func TestRequestFromHTTPRejectsUnsupportedMethod(t *testing.T) {
	r, err := http.NewRequest("REPORT", loginURL, nil)
	require.NoError(t, err)
	_, err = RequestFromHTTP(r)
	assert.Error(t, err)
}

func TestHasField(t *testing.T) {
	req, err := NewRequest(MethodPost, loginURL, []byte(`{"a":"x","b":"","c":null,"d":0}`))
	require.NoError(t, err)

	assert.True(t, req.HasField("a"))
	assert.False(t, req.HasField("b"))
	assert.False(t, req.HasField("c"))
	assert.True(t, req.HasField("d"))
	assert.False(t, req.HasField("missing"))
}
