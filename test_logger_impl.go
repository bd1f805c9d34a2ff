package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/launchdarkly/http-mock-contract-tests/framework"
	"github.com/launchdarkly/http-mock-contract-tests/logging"

	"github.com/fatih/color"
)

var errorColor = color.New(color.FgRed)

// ConsoleTestLogger reports test progress on standard output.
type ConsoleTestLogger struct {
	DebugOutputOnFailure bool
	DebugOutputOnSuccess bool
}

func (c *ConsoleTestLogger) TestStarted(id framework.TestID) {
	fmt.Printf("[%s]\n", id)
}

func (c *ConsoleTestLogger) TestError(id framework.TestID, err error) {
	for _, line := range strings.Split(err.Error(), "\n") {
		fmt.Printf("  %s\n", errorColor.Sprint(line))
	}
}

func (c *ConsoleTestLogger) TestFinished(id framework.TestID, failed bool, debugOutput logging.CapturedOutput) {
	if failed {
		fmt.Printf("  %s %s\n", color.RedString("FAILED:"), id)
	}
	if len(debugOutput) > 0 &&
		((failed && c.DebugOutputOnFailure) || (!failed && c.DebugOutputOnSuccess)) {
		debugOutput.Dump(os.Stdout, "    DEBUG ")
	}
}

func (c *ConsoleTestLogger) TestSkipped(id framework.TestID, reason string) {
	if reason == "" {
		fmt.Printf("  %s %s\n", color.YellowString("SKIPPED:"), id)
	} else {
		fmt.Printf("  %s %s (%s)\n", color.YellowString("SKIPPED:"), id, reason)
	}
}
