package scenarios

import (
	"context"

	"github.com/launchdarkly/http-mock-contract-tests/loginform"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// DoFormTests checks what the form hands to its submit callback, without any request.
func DoFormTests(t *T) {
	t.Run("submitting calls onSubmit with username and password", func(t *T) {
		var submitted []loginform.LoginData
		form := &loginform.Form{OnSubmit: func(d loginform.LoginData) { submitted = append(submitted, d) }}

		form.Submit(context.Background(), loginform.LoginData{Username: "Alexandre", Password: "secret"})

		require.Len(t, submitted, 1, "onSubmit should be called exactly once")
		assert.Equal(t, loginform.LoginData{Username: "Alexandre", Password: "secret"}, submitted[0])
	})

	t.Run("submitting generated data", func(t *T) {
		data := loginform.BuildLoginData()
		var submitted []loginform.LoginData
		form := &loginform.Form{OnSubmit: func(d loginform.LoginData) { submitted = append(submitted, d) }}

		form.Submit(context.Background(), data)

		assert.Equal(t, []loginform.LoginData{data}, submitted)
	})
}

// DoLoginSubmissionTests submits the form against the baseline handlers.
func DoLoginSubmissionTests(t *T) {
	t.Run("logging in displays the user's username", func(t *T) {
		data := loginform.BuildLoginData()
		assert.Equal(t, data.Username, t.RequireSignedIn(data))
	})

	t.Run("missing username", func(t *T) {
		assert.Equal(t, "username required", t.RequireAlert(loginform.BuildLoginData(loginform.WithoutUsername())))
	})

	t.Run("missing password", func(t *T) {
		assert.Equal(t, "password required", t.RequireAlert(loginform.BuildLoginData(loginform.WithoutPassword())))
	})

	t.Run("request reaches the session with the submitted body", func(t *T) {
		data := loginform.BuildLoginData()
		t.RequireSignedIn(data)

		calls := t.Session().Calls()
		require.Len(t, calls, 1)
		assert.Equal(t, data.Username, calls[0].Body.GetByKey("username").StringValue())
		assert.Equal(t, data.Password, calls[0].Body.GetByKey("password").StringValue())
	})

	t.Run("unmocked endpoint fails loudly", func(t *T) {
		state := t.NewFormFor("https://auth-provider.example.com/api/unknown").
			Submit(context.Background(), loginform.BuildLoginData())
		assert.Contains(t, state.Alert, "unhandled request: POST https://auth-provider.example.com/api/unknown")
	})
}
