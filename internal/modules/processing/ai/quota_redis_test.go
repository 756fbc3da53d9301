package ai

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRedisLedgerBucketAlignment(t *testing.T) {
	l := NewRedisLedger(nil, 20, time.Hour, zap.NewNop())

	now := time.Date(2026, 8, 29, 14, 37, 12, 0, time.UTC)
	idx, start := l.bucket(now)

	require.False(t, start.After(now))
	require.Less(t, now.Sub(start), time.Hour)

	// Same window, same bucket.
	idx2, start2 := l.bucket(now.Add(20 * time.Minute))
	require.Equal(t, idx, idx2)
	require.True(t, start.Equal(start2))

	// Next window, next bucket.
	idx3, start3 := l.bucket(now.Add(time.Hour))
	require.Equal(t, idx+1, idx3)
	require.True(t, start3.Equal(start.Add(time.Hour)))
}

func TestRedisLedgerKeyFormat(t *testing.T) {
	l := NewRedisLedger(nil, 20, time.Hour, zap.NewNop())

	now := time.Now()
	idx, _ := l.bucket(now)
	require.Equal(t, fmt.Sprintf("nv:ai:quota:alice:%d", idx), l.key("alice", idx))

	// Different users never share a bucket key.
	require.NotEqual(t, l.key("alice", idx), l.key("bob", idx))
}
