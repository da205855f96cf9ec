package expansion_test

import (
	"strings"
	"testing"

	"github.com/badu/crossmacro"
	"github.com/badu/crossmacro/expansion"
	"github.com/stretchr/testify/require"
)

func TestBufferAppendAndBackspace(t *testing.T) {
	b := expansion.NewBuffer()
	for _, c := range "hi:" {
		b.Append(c)
	}
	require.Equal(t, "hi:", b.String())

	b.Backspace()
	require.Equal(t, "hi", b.String())
}

func TestBufferBackspaceOnEmptyIsNoop(t *testing.T) {
	b := expansion.NewBuffer()
	b.Backspace()
	require.Equal(t, "", b.String())
}

func TestBufferClear(t *testing.T) {
	b := expansion.NewBuffer()
	b.Append('x')
	b.Clear()
	require.Equal(t, "", b.String())
}

func TestBufferTruncatesAtCapacity(t *testing.T) {
	b := expansion.NewBuffer()
	for i := 0; i < 60; i++ {
		b.Append('a')
	}
	require.Len(t, []rune(b.String()), 50)
}

func TestBufferTryMatchReturnsFirstEnabledSuffixMatch(t *testing.T) {
	b := expansion.NewBuffer()
	for _, c := range "type :hi" {
		b.Append(c)
	}

	expansions := []crossmacro.TextExpansion{
		{Trigger: ":bye", Replacement: "Goodbye", Enabled: true},
		{Trigger: ":hi", Replacement: "Hello, world!", Enabled: true},
	}

	match, ok := b.TryMatch(expansions)
	require.True(t, ok)
	require.Equal(t, "Hello, world!", match.Replacement)
}

func TestBufferTryMatchSkipsDisabledEntries(t *testing.T) {
	b := expansion.NewBuffer()
	for _, c := range ":hi" {
		b.Append(c)
	}

	expansions := []crossmacro.TextExpansion{
		{Trigger: ":hi", Replacement: "disabled", Enabled: false},
	}

	_, ok := b.TryMatch(expansions)
	require.False(t, ok)
}

func TestBufferTryMatchNoMatch(t *testing.T) {
	b := expansion.NewBuffer()
	for _, c := range "hello" {
		b.Append(c)
	}
	expansions := []crossmacro.TextExpansion{{Trigger: ":hi", Replacement: "x", Enabled: true}}
	_, ok := b.TryMatch(expansions)
	require.False(t, ok)
	require.True(t, strings.HasSuffix(b.String(), "hello"))
}
