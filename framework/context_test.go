package framework

import (
	"testing"

	"github.com/launchdarkly/http-mock-contract-tests/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingTestLogger struct {
	events []string
	debug  map[string][]string
}

func (r *recordingTestLogger) TestStarted(id TestID) {
	r.events = append(r.events, "started "+id.String())
}

func (r *recordingTestLogger) TestError(id TestID, err error) {
	r.events = append(r.events, "error "+id.String())
}

func (r *recordingTestLogger) TestFinished(id TestID, failed bool, debugOutput logging.CapturedOutput) {
	status := "passed"
	if failed {
		status = "failed"
	}
	r.events = append(r.events, status+" "+id.String())
	if r.debug == nil {
		r.debug = make(map[string][]string)
	}
	r.debug[id.String()] = debugOutput.Messages()
}

func (r *recordingTestLogger) TestSkipped(id TestID, reason string) {
	r.events = append(r.events, "skipped "+id.String()+": "+reason)
}

func TestRunCollectsResults(t *testing.T) {
	logger := &recordingTestLogger{}
	results := Run(nil, logger, func(c *Context) {
		c.Run("passes", func(c *Context) {
			c.Debug("hello %d", 1)
		})
		c.Run("fails", func(c *Context) {
			assert.Equal(c, 1, 2)
		})
		c.Run("requires", func(c *Context) {
			require.True(c, false)
			panic("not reached")
		})
		c.Run("skips", func(c *Context) {
			c.SkipWithReason("not today")
		})
	})

	assert.False(t, results.OK())
	passed, failed, skipped := results.Counts()
	assert.Equal(t, 1, passed)
	assert.Equal(t, 2, failed)
	assert.Equal(t, 1, skipped)

	assert.Equal(t, []string{
		"started passes", "passed passes",
		"started fails", "error fails", "failed fails",
		"started requires", "error requires", "failed requires",
		"started skips", "skipped skips: not today",
	}, logger.events)
	assert.Equal(t, []string{"hello 1"}, logger.debug["passes"])
}

func TestRunRecoversUnexpectedPanic(t *testing.T) {
	results := Run(nil, nil, func(c *Context) {
		c.Run("panics", func(c *Context) {
			panic("boom")
		})
	})

	require.Len(t, results.Failures, 1)
	require.Len(t, results.Failures[0].Errors, 1)
	assert.Contains(t, results.Failures[0].Errors[0].Error(), "unexpected panic in test: boom")
}

func TestFailNowWithoutMessage(t *testing.T) {
	results := Run(nil, nil, func(c *Context) {
		c.Run("silent", func(c *Context) { c.FailNow() })
	})

	require.Len(t, results.Failures, 1)
	assert.EqualError(t, results.Failures[0].Errors[0], "test failed with no failure message")
}

func TestFailedAndDebugLoggerAreVisibleToCleanups(t *testing.T) {
	logger := &recordingTestLogger{}
	var failedBefore, failedInCleanup bool
	Run(nil, logger, func(c *Context) {
		c.Run("a", func(c *Context) {
			c.Defer(func() {
				failedInCleanup = c.Failed()
				c.DebugLogger().Printf("cleanup %d", 1)
			})
			failedBefore = c.Failed()
			c.Errorf("boom")
		})
	})

	assert.False(t, failedBefore)
	assert.True(t, failedInCleanup)
	assert.Equal(t, []string{"cleanup 1"}, logger.debug["a"])
}

func TestDeferRunsInReverseOrderEvenOnFailure(t *testing.T) {
	var order []string
	Run(nil, nil, func(c *Context) {
		c.Run("outer", func(c *Context) {
			c.Defer(func() { order = append(order, "outer cleanup") })
			c.Run("inner", func(c *Context) {
				c.Defer(func() { order = append(order, "first") })
				c.Defer(func() { order = append(order, "second") })
				require.Fail(c, "stop")
			})
			order = append(order, "after inner")
		})
	})

	assert.Equal(t, []string{"second", "first", "after inner", "outer cleanup"}, order)
}

func TestSubtestIDs(t *testing.T) {
	var ids []string
	Run(nil, nil, func(c *Context) {
		c.Run("a", func(c *Context) {
			c.Run("b", func(c *Context) {
				ids = append(ids, c.ID().String())
			})
			ids = append(ids, c.ID().String())
		})
	})
	assert.Equal(t, []string{"a/b", "a"}, ids)
}

func TestFilterExcludesTests(t *testing.T) {
	var filters RegexFilters
	require.NoError(t, filters.MustNotMatch.Set("^b$"))

	var ran []string
	results := Run(filters.AsFilter, nil, func(c *Context) {
		c.Run("a", func(c *Context) { ran = append(ran, "a") })
		c.Run("b", func(c *Context) { ran = append(ran, "b") })
	})

	assert.Equal(t, []string{"a"}, ran)
	_, _, skipped := results.Counts()
	assert.Equal(t, 1, skipped)
}
