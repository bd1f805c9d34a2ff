package interceptor

import (
	"bytes"
	"fmt"
	"io/ioutil"
	"net/http"
	"strconv"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// FaultMessage is the message in the body of the response produced when a resolver fails.
const FaultMessage = "Unhandled exception in request resolver"

// ResponseDescriptor is a synthesized response. Body is serialized as JSON; a null Body
// produces an empty response body.
type ResponseDescriptor struct {
	Status int
	Body   ldvalue.Value
	Header http.Header
}

// JSON creates a ResponseDescriptor with a status and a JSON body.
func JSON(status int, body ldvalue.Value) ResponseDescriptor {
	return ResponseDescriptor{Status: status, Body: body}
}

// OK creates a 200 ResponseDescriptor with a JSON body.
func OK(body ldvalue.Value) ResponseDescriptor {
	return JSON(http.StatusOK, body)
}

// Message creates a ResponseDescriptor whose body is {"message": message}.
func Message(status int, message string) ResponseDescriptor {
	return JSON(status, ldvalue.ObjectBuild().Set("message", ldvalue.String(message)).Build())
}

// FaultResponse returns the fixed descriptor that stands in for a failed resolver.
func FaultResponse() ResponseDescriptor {
	return Message(http.StatusInternalServerError, FaultMessage)
}

// WithHeader returns a copy of the descriptor with an added response header.
func (d ResponseDescriptor) WithHeader(name, value string) ResponseDescriptor {
	h := d.Header.Clone()
	if h == nil {
		h = make(http.Header)
	}
	h.Add(name, value)
	d.Header = h
	return d
}

// MessageText returns the "message" property of the body, if any.
func (d ResponseDescriptor) MessageText() string {
	return d.Body.GetByKey("message").StringValue()
}

// EffectiveStatus is the status that will be sent; a zero Status means 200.
func (d ResponseDescriptor) EffectiveStatus() int {
	if d.Status == 0 {
		return http.StatusOK
	}
	return d.Status
}

func (d ResponseDescriptor) encodedBody() []byte {
	if d.Body.IsNull() {
		return nil
	}
	return []byte(d.Body.JSONString())
}

func (d ResponseDescriptor) headers(bodyLen int) http.Header {
	h := make(http.Header)
	if bodyLen > 0 {
		h.Set("Content-Type", "application/json")
	}
	for k, values := range d.Header {
		h.Del(k)
		for _, v := range values {
			h.Add(k, v)
		}
	}
	return h
}

func (d ResponseDescriptor) toHTTP(req *http.Request) *http.Response {
	body := d.encodedBody()
	status := d.EffectiveStatus()
	h := d.headers(len(body))
	h.Set("Content-Length", strconv.Itoa(len(body)))
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", status, http.StatusText(status)),
		StatusCode:    status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        h,
		Body:          ioutil.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}
}

func (d ResponseDescriptor) write(w http.ResponseWriter) {
	body := d.encodedBody()
	for k, values := range d.headers(len(body)) {
		for _, v := range values {
			w.Header().Add(k, v)
		}
	}
	w.WriteHeader(d.EffectiveStatus())
	if len(body) > 0 {
		_, _ = w.Write(body)
	}
}
