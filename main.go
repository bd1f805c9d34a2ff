package main

import (
	"fmt"
	"log"
	"os"

	"github.com/launchdarkly/http-mock-contract-tests/framework"
	"github.com/launchdarkly/http-mock-contract-tests/handlers"
	"github.com/launchdarkly/http-mock-contract-tests/interceptor"
	"github.com/launchdarkly/http-mock-contract-tests/logging"
	"github.com/launchdarkly/http-mock-contract-tests/scenarios"

	"github.com/fatih/color"
)

func main() {
	var params commandParams
	if !params.Read(os.Args, os.Stderr) {
		os.Exit(1)
	}

	baseline, err := loadBaseline(params.handlersFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid handlers: %s\n", err)
		os.Exit(1)
	}

	sessionLogger := logging.NullLogger()
	if params.debugAll {
		sessionLogger = logging.WithPrefix(log.New(os.Stdout, "", log.LstdFlags), "[session] ")
	}

	fmt.Println()
	params.filters.Describe(os.Stdout)

	fmt.Printf("Running test suite with %d baseline handler(s)\n", len(baseline))

	testLogger := &ConsoleTestLogger{
		DebugOutputOnFailure: params.debug || params.debugAll,
		DebugOutputOnSuccess: params.debugAll,
	}

	results := scenarios.RunSuite(baseline, params.filters.AsFilter, testLogger, sessionLogger)

	fmt.Println()
	printResults(results)
	if !results.OK() {
		fmt.Println()
		fmt.Println("To rerun only the failed tests:")
		fmt.Printf("  %s\n", params.rerunCommand(os.Args[0], results.Failures))
		os.Exit(1)
	}
}

func loadBaseline(path string) ([]interceptor.HandlerRule, error) {
	if path == "" {
		return handlers.Default(), nil
	}
	return handlers.LoadFile(path)
}

func printResults(results framework.Results) {
	passed, failed, skipped := results.Counts()
	if results.OK() {
		fmt.Println(color.GreenString("All tests passed"))
	} else {
		fmt.Println(color.RedString("FAILED TESTS (%d):", failed))
		for _, f := range results.Failures {
			fmt.Printf("  * %s\n", f.TestID)
		}
	}
	fmt.Printf("passed: %d, failed: %d, skipped: %d\n", passed, failed, skipped)
}
