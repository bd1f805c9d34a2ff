package scenarios

import (
	"strings"
	"testing"

	"github.com/launchdarkly/http-mock-contract-tests/framework"
	"github.com/launchdarkly/http-mock-contract-tests/handlers"
	"github.com/launchdarkly/http-mock-contract-tests/interceptor"
	"github.com/launchdarkly/http-mock-contract-tests/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

type failureCollector struct {
	failed []string
	debug  map[string]logging.CapturedOutput
}

func (f *failureCollector) TestStarted(framework.TestID)         {}
func (f *failureCollector) TestError(framework.TestID, error)    {}
func (f *failureCollector) TestSkipped(framework.TestID, string) {}
func (f *failureCollector) TestFinished(id framework.TestID, failed bool, out logging.CapturedOutput) {
	if failed {
		f.failed = append(f.failed, id.String())
	}
	if f.debug == nil {
		f.debug = make(map[string]logging.CapturedOutput)
	}
	f.debug[id.String()] = out
}

func TestSuitePassesWithDefaultHandlers(t *testing.T) {
	collector := &failureCollector{}
	var sessionLog logging.CapturingLogger

	results := RunSuite(handlers.Default(), nil, collector, &sessionLog)

	for _, f := range results.Failures {
		for _, err := range f.Errors {
			t.Errorf("%s: %s", f.TestID, err)
		}
	}
	assert.True(t, results.OK())
	assert.Empty(t, collector.failed)

	passed, _, _ := results.Counts()
	assert.Greater(t, passed, 10)
	assert.NotEmpty(t, sessionLog.Output())
}

func TestSuiteLogsRequestsAsDebugOutput(t *testing.T) {
	collector := &failureCollector{}
	RunSuite(handlers.Default(), nil, collector, nil)

	out := collector.debug["login submission/missing username"].Messages()
	require.NotEmpty(t, out)
	joined := strings.Join(out, "\n")
	assert.Contains(t, joined, "POST "+handlers.LoginURL+" -> 400")
}

func TestSuiteFailsWithoutBaselineHandlers(t *testing.T) {
	collector := &failureCollector{}
	results := RunSuite(nil, nil, collector, nil)

	assert.False(t, results.OK())
	assert.Contains(t, collector.failed, "login submission/logging in displays the user's username")
	assert.NotContains(t, collector.failed, "form/submitting calls onSubmit with username and password")
}

func TestSuiteFilter(t *testing.T) {
	var filters framework.RegexFilters
	require.NoError(t, filters.MustMatch.Set("^overrides"))

	results := RunSuite(handlers.Default(), filters.AsFilter, nil, nil)

	assert.True(t, results.OK())
	for _, r := range results.Tests {
		if !strings.HasPrefix(r.TestID.String(), "overrides") {
			assert.True(t, r.Skipped, r.TestID.String())
		}
	}
}

func TestFailedTestDumpsRulesInEffect(t *testing.T) {
	session := interceptor.New(interceptor.Config{}, handlers.Default()...)
	session.Start()
	defer session.Stop()
	collector := &failureCollector{}

	framework.Run(nil, collector, func(c *framework.Context) {
		root := &T{context: c, session: session}
		root.Run("passes", func(t *T) {
			t.Use(interceptor.Get("/extra", interceptor.Respond(interceptor.OK(ldvalue.Null()))))
		})
		root.Run("fails", func(t *T) {
			t.Use(interceptor.Get("/extra", interceptor.Respond(interceptor.OK(ldvalue.Null()))))
			t.Errorf("deliberate failure")
		})
	})

	assert.Equal(t, []string{"fails"}, collector.failed)
	assert.NotContains(t, collector.debug["passes"].Messages(), "rules in effect:")
	assert.Equal(t, []string{
		"rules in effect:",
		"  GET /extra",
		"  POST " + handlers.LoginURL + " (login)",
	}, collector.debug["fails"].Messages())
	assert.Len(t, session.Rules(), len(handlers.Default()))
}
