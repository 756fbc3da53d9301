package app

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOriginAllowed(t *testing.T) {
	patterns := []string{"notes.example.com", "*.vault.example.com", "localhost:*"}

	allowed := []string{
		"https://notes.example.com",
		"https://app.vault.example.com",
		"https://vault.example.com",
		"http://localhost:3000",
	}
	for _, origin := range allowed {
		require.True(t, originAllowed(patterns, origin), "origin %s", origin)
	}

	denied := []string{
		"https://evil.com",
		"https://notes.example.com.evil.com",
		"https://example.com",
	}
	for _, origin := range denied {
		require.False(t, originAllowed(patterns, origin), "origin %s", origin)
	}
}
