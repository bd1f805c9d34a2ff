package interceptor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// Request is the information about an intercepted request that is passed to a Resolver.
type Request struct {
	Method Method
	URL    *url.URL
	Header http.Header

	// Body is the request body parsed as JSON. It is a null value if there was no body or
	// if the body was not valid JSON; RawBody always has the original bytes.
	Body    ldvalue.Value
	RawBody []byte
}

// NewRequest creates a Request with a raw body, which is parsed as JSON if possible. The method
// may be given in any letter case, but must be one of the supported methods.
func NewRequest(method Method, rawURL string, body []byte) (Request, error) {
	m, err := ParseMethod(string(method))
	if err != nil {
		return Request{}, err
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return Request{}, fmt.Errorf("invalid request URL %q: %w", rawURL, err)
	}
	req := Request{
		Method:  m,
		URL:     u,
		Header:  make(http.Header),
		RawBody: body,
		Body:    parseBody(body),
	}
	return req, nil
}

// NewJSONRequest creates a Request whose body is the JSON encoding of body. A nil body
// produces a request with no body.
func NewJSONRequest(method Method, rawURL string, body interface{}) (Request, error) {
	var data []byte
	if body != nil {
		var err error
		if data, err = json.Marshal(body); err != nil {
			return Request{}, fmt.Errorf("failed to encode request body: %w", err)
		}
	}
	req, err := NewRequest(method, rawURL, data)
	if err != nil {
		return Request{}, err
	}
	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// RequestFromHTTP converts an outgoing or incoming *http.Request. The body of r is consumed
// and then replaced, so r can still be read afterward.
func RequestFromHTTP(r *http.Request) (Request, error) {
	return requestFromHTTP(r, true)
}

// requestFromHTTP always consumes and closes r.Body. The body is put back only if restoreBody
// is true; a RoundTripper must leave the outgoing request alone.
func requestFromHTTP(r *http.Request, restoreBody bool) (Request, error) {
	method, err := ParseMethod(r.Method)
	if err != nil {
		return Request{}, err
	}
	var body []byte
	if r.Body != nil {
		data, err := ioutil.ReadAll(r.Body)
		_ = r.Body.Close()
		if err != nil {
			return Request{}, fmt.Errorf("failed to read request body: %w", err)
		}
		body = data
		if restoreBody {
			r.Body = ioutil.NopCloser(bytes.NewReader(data))
		}
	}

	u := *r.URL
	if u.Host == "" && r.Host != "" { // server-side request; only the path is in r.URL
		u.Host = r.Host
		u.Scheme = "http"
		if r.TLS != nil {
			u.Scheme = "https"
		}
	}

	return Request{
		Method:  method,
		URL:     &u,
		Header:  r.Header.Clone(),
		Body:    parseBody(body),
		RawBody: body,
	}, nil
}

// Field returns a property of the JSON request body, or a null value if the body is not a
// JSON object or does not have the property.
func (r Request) Field(name string) ldvalue.Value {
	return r.Body.GetByKey(name)
}

// HasField reports whether the JSON request body has a non-empty value for a property. A
// property that is null or an empty string counts as missing.
func (r Request) HasField(name string) bool {
	v := r.Field(name)
	if v.IsNull() {
		return false
	}
	return !(v.Type() == ldvalue.StringType && v.StringValue() == "")
}

// BodyReader returns a reader for the raw request body.
func (r Request) BodyReader() io.Reader {
	return bytes.NewReader(r.RawBody)
}

func (r Request) urlString() string {
	if r.URL == nil {
		return ""
	}
	return r.URL.String()
}

func parseBody(data []byte) ldvalue.Value {
	if len(bytes.TrimSpace(data)) == 0 {
		return ldvalue.Null()
	}
	return ldvalue.Parse(data)
}
