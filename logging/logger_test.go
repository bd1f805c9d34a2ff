package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCapturingLoggerRetainsMessagesInOrder(t *testing.T) {
	var l CapturingLogger
	l.Printf("first %d", 1)
	l.Printf("second %s", "two")

	assert.Equal(t, []string{"first 1", "second two"}, l.Output().Messages())
}

func TestCapturingLoggerOutputIsACopy(t *testing.T) {
	var l CapturingLogger
	l.Printf("a")
	out := l.Output()
	l.Printf("b")

	assert.Len(t, out, 1)
	assert.Len(t, l.Output(), 2)
}

func TestWithPrefix(t *testing.T) {
	var l CapturingLogger
	WithPrefix(&l, "[session] ").Printf("hello %s", "world")

	assert.Equal(t, []string{"[session] hello world"}, l.Output().Messages())
}

func TestWithPrefixOfNilLoggerDiscards(t *testing.T) {
	assert.NotPanics(t, func() {
		WithPrefix(nil, "x").Printf("ignored")
	})
}

func TestDump(t *testing.T) {
	var l CapturingLogger
	l.Printf("line one")
	l.Printf("line two")

	var buf bytes.Buffer
	l.Output().Dump(&buf, "  DEBUG ")

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "  DEBUG ["))
	assert.True(t, strings.HasSuffix(lines[0], "] line one"))
	assert.True(t, strings.HasSuffix(lines[1], "] line two"))
}
