// Package loginform is a small login client whose behavior mirrors a login form component:
// it submits credentials to an authentication endpoint and reports either the signed-in
// username or an alert message. It is the kind of code that tests point at an intercepting
// session instead of a real server.
package loginform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"

	"github.com/google/uuid"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// LoginData is what the user typed into the form. Empty fields are left out of the request.
type LoginData struct {
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
}

// BuildLoginData generates unique credentials, then applies any overrides.
func BuildLoginData(overrides ...func(*LoginData)) LoginData {
	id := uuid.New().String()
	data := LoginData{
		Username: "user-" + id[:8],
		Password: id[9:],
	}
	for _, o := range overrides {
		o(&data)
	}
	return data
}

// WithUsername overrides the generated username.
func WithUsername(username string) func(*LoginData) {
	return func(d *LoginData) { d.Username = username }
}

// WithPassword overrides the generated password.
func WithPassword(password string) func(*LoginData) {
	return func(d *LoginData) { d.Password = password }
}

// WithoutUsername clears the username, as if the field were left blank.
func WithoutUsername() func(*LoginData) { return WithUsername("") }

// WithoutPassword clears the password, as if the field were left blank.
func WithoutPassword() func(*LoginData) { return WithPassword("") }

// State is the result of a submission.
type State struct {
	// Username is set when the login succeeded.
	Username string
	// Alert is set when the login failed; it is the server's message if it gave one.
	Alert string
}

// OK reports whether the submission succeeded.
func (s State) OK() bool { return s.Alert == "" }

// Form submits LoginData to Endpoint using Client.
type Form struct {
	Endpoint string
	Client   *http.Client

	// OnSubmit, if set, is called with the data of every submission before it is sent.
	OnSubmit func(LoginData)
}

// New creates a Form that posts to endpoint.
func New(endpoint string, client *http.Client) *Form {
	return &Form{Endpoint: endpoint, Client: client}
}

// Submit sends the login request and interprets the response.
func (f *Form) Submit(ctx context.Context, data LoginData) State {
	if f.OnSubmit != nil {
		f.OnSubmit(data)
	}
	if f.Endpoint == "" {
		return State{Username: data.Username}
	}

	body, err := json.Marshal(data)
	if err != nil {
		return State{Alert: err.Error()}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.Endpoint, bytes.NewReader(body))
	if err != nil {
		return State{Alert: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return State{Alert: err.Error()}
	}
	defer resp.Body.Close()

	respData, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return State{Alert: fmt.Sprintf("failed to read response: %s", err)}
	}
	result := ldvalue.Parse(respData)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return State{Username: result.GetByKey("username").StringValue()}
	}
	if message := result.GetByKey("message").StringValue(); message != "" {
		return State{Alert: message}
	}
	return State{Alert: resp.Status}
}
