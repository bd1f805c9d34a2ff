package main

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/launchdarkly/http-mock-contract-tests/framework"

	"github.com/alessio/shellescape"
	"github.com/spf13/pflag"
)

type commandParams struct {
	handlersFile string
	filters      framework.RegexFilters
	debug        bool
	debugAll     bool
}

func (c *commandParams) Read(args []string, errOut io.Writer) bool {
	fs := pflag.NewFlagSet(args[0], pflag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.StringVar(&c.handlersFile, "handlers", "", "YAML or JSON file of baseline handlers (default: built-in login handlers)")
	fs.Var(&c.filters.MustMatch, "run", "regex pattern(s) to select tests to run")
	fs.Var(&c.filters.MustNotMatch, "skip", "regex pattern(s) to select tests not to run")
	fs.BoolVar(&c.debug, "debug", false, "enable debug logging for failed tests")
	fs.BoolVar(&c.debugAll, "debug-all", false, "enable debug logging for all tests")

	if err := fs.Parse(args[1:]); err != nil {
		fmt.Fprintln(errOut, err)
		return false
	}
	if fs.NArg() != 0 {
		fmt.Fprintf(errOut, "unexpected arguments: %s\n", strings.Join(fs.Args(), " "))
		fs.PrintDefaults()
		return false
	}
	return true
}

// rerunCommand builds a command line that repeats this run for just the given tests.
func (c *commandParams) rerunCommand(program string, failed []framework.TestResult) string {
	var b commandBuilder
	b.add(program)
	if c.handlersFile != "" {
		b.add("--handlers", c.handlersFile)
	}
	for _, f := range failed {
		b.add("--run", exactTestPattern(f.TestID))
	}
	for _, p := range c.filters.MustNotMatch.Patterns() {
		b.add("--skip", p)
	}
	b.add("--debug")
	return b.String()
}

// exactTestPattern matches a test and each of its parents, since a parent that is filtered
// out never runs its subtests.
func exactTestPattern(id framework.TestID) string {
	if len(id.Path) == 0 {
		return "^$"
	}
	pattern := regexp.QuoteMeta(id.Path[len(id.Path)-1])
	for i := len(id.Path) - 2; i >= 0; i-- {
		pattern = regexp.QuoteMeta(id.Path[i]) + "(/" + pattern + ")?"
	}
	return "^" + pattern + "$"
}

type commandBuilder []string

func (b *commandBuilder) add(args ...string) {
	for _, a := range args {
		*b = append(*b, shellescape.Quote(a))
	}
}

func (b commandBuilder) String() string {
	return strings.Join(b, " ")
}
