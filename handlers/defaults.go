package handlers

import (
	_ "embed"

	"github.com/launchdarkly/http-mock-contract-tests/interceptor"
)

// LoginURL is the endpoint of the mock authentication provider used by the default handlers.
const LoginURL = "https://auth-provider.example.com/api/login"

//go:embed defaults.yaml
var defaultDefinitions []byte

// Default returns the baseline rules used by the login scenarios. It panics if the embedded
// definitions are invalid, which can only be a build mistake.
func Default() []interceptor.HandlerRule {
	rules, err := Load(defaultDefinitions)
	if err != nil {
		panic("embedded default handler definitions are invalid: " + err.Error())
	}
	return rules
}
