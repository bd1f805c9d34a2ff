// Package scenarios contains the login scenarios that exercise an interception session end to
// end, and the test API they are written against.
//
// The test runner infrastructure that is not specific to these scenarios is in the lower-level
// framework package.
package scenarios

import (
	"github.com/launchdarkly/http-mock-contract-tests/framework"
	"github.com/launchdarkly/http-mock-contract-tests/interceptor"
	"github.com/launchdarkly/http-mock-contract-tests/logging"
)

// RunSuite runs all scenarios against one session built from the given baseline rules. The
// session is started before the first scenario and stopped after the last.
func RunSuite(
	baseline []interceptor.HandlerRule,
	filter framework.Filter,
	testLogger framework.TestLogger,
	sessionLogger logging.Logger,
) framework.Results {
	session := interceptor.New(interceptor.Config{Logger: sessionLogger}, baseline...)
	session.Start()
	defer session.Stop()

	return framework.Run(filter, testLogger, func(c *framework.Context) {
		t := &T{context: c, session: session}

		t.Run("form", DoFormTests)
		t.Run("login submission", DoLoginSubmissionTests)
		t.Run("overrides", DoOverrideTests)
	})
}
