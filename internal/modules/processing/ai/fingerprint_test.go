package ai

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	require.Equal(t, "hello world", Normalize("  Hello   World \n"))
	require.Equal(t, "a b c", Normalize("a\tb\n\nc"))
	require.Equal(t, "", Normalize("   \n\t "))
}

func TestFingerprintDeterminism(t *testing.T) {
	content := "  Some   Note\nContent "

	fp1 := NewFingerprint(content, StyleConcise)
	fp2 := NewFingerprint(content, StyleConcise)
	require.Equal(t, fp1, fp2)

	// Fingerprinting already-normalized content yields the same key.
	require.Equal(t, fp1, NewFingerprint(Normalize(content), StyleConcise))
}

func TestFingerprintStyleSeparation(t *testing.T) {
	content := "same content"
	require.NotEqual(t,
		NewFingerprint(content, StyleConcise),
		NewFingerprint(content, StyleBulleted),
	)
	require.NotEqual(t,
		NewFingerprint(content, StyleBulleted),
		NewFingerprint(content, StyleDetailed),
	)
}

func TestFingerprintEmptyContent(t *testing.T) {
	fp := NewFingerprint("", StyleConcise)
	require.NotEmpty(t, fp)
	require.Equal(t, fp, NewFingerprint("   ", StyleConcise))
}

func TestContentHashIgnoresStyle(t *testing.T) {
	require.Equal(t, ContentHash(" A  b "), ContentHash("a b"))
	require.NotEqual(t, ContentHash("a"), ContentHash("b"))
}

func TestParseStyle(t *testing.T) {
	style, ok := ParseStyle("")
	require.True(t, ok)
	require.Equal(t, StyleConcise, style)

	for _, raw := range []string{"concise", "bulleted", "detailed"} {
		style, ok := ParseStyle(raw)
		require.True(t, ok)
		require.Equal(t, Style(raw), style)
	}

	_, ok = ParseStyle("haiku")
	require.False(t, ok)
}
