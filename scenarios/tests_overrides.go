package scenarios

import (
	"errors"
	"net/http"
	"time"

	"github.com/launchdarkly/http-mock-contract-tests/handlers"
	"github.com/launchdarkly/http-mock-contract-tests/interceptor"
	"github.com/launchdarkly/http-mock-contract-tests/loginform"

	"github.com/stretchr/testify/assert"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// DoOverrideTests shadows the baseline login handler with per-test rules.
func DoOverrideTests(t *T) {
	const testErrorMessage = "something is wrong"

	t.Run("unknown server error is displayed", func(t *T) {
		t.Use(interceptor.Post(handlers.LoginURL,
			interceptor.Respond(interceptor.Message(http.StatusInternalServerError, testErrorMessage))))

		assert.Equal(t, testErrorMessage, t.RequireAlert(loginform.BuildLoginData()))
	})

	t.Run("override is discarded after the test that added it", func(t *T) {
		data := loginform.BuildLoginData()
		assert.Equal(t, data.Username, t.RequireSignedIn(data))
		assert.Len(t, t.Session().Rules(), len(handlers.Default()))
	})

	t.Run("most recent override wins", func(t *T) {
		t.Use(interceptor.Post(handlers.LoginURL, interceptor.Respond(interceptor.Message(500, "first"))))
		t.Use(interceptor.Post(handlers.LoginURL, interceptor.Respond(interceptor.Message(500, "second"))))

		assert.Equal(t, "second", t.RequireAlert(loginform.BuildLoginData()))
	})

	t.Run("faulty resolver is seen as a server error", func(t *T) {
		t.Use(interceptor.Post(handlers.LoginURL, interceptor.Fail(errors.New("resolver bug"))))

		assert.Equal(t, interceptor.FaultMessage, t.RequireAlert(loginform.BuildLoginData()))
	})

	t.Run("override for another endpoint leaves login alone", func(t *T) {
		t.Use(interceptor.Get("https://api.example.com/profile",
			interceptor.Respond(interceptor.OK(ldvalue.String("me")))))

		data := loginform.BuildLoginData()
		assert.Equal(t, data.Username, t.RequireSignedIn(data))

		resp, err := t.Session().Client().Get("https://api.example.com/profile")
		if assert.NoError(t, err) {
			resp.Body.Close()
			assert.Equal(t, 200, resp.StatusCode)
		}
	})

	t.Run("delayed override settles", func(t *T) {
		slowUser := ldvalue.ObjectBuild().Set("username", ldvalue.String("slow")).Build()
		t.Use(interceptor.Post(handlers.LoginURL,
			interceptor.Delayed(10*time.Millisecond, interceptor.Respond(interceptor.OK(slowUser)))))

		assert.Equal(t, "slow", t.RequireSignedIn(loginform.BuildLoginData()))
	})
}
