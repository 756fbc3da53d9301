package ai

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryLedgerEnforcesLimit(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryLedger(20, time.Hour)

	for i := 0; i < 20; i++ {
		adm, err := ledger.TryAdmit(ctx, "alice")
		require.NoError(t, err)
		require.True(t, adm.Admitted, "call %d should be admitted", i+1)
	}

	adm, err := ledger.TryAdmit(ctx, "alice")
	require.NoError(t, err)
	require.False(t, adm.Admitted)
	require.Greater(t, adm.RetryAfter, time.Duration(0))
	require.LessOrEqual(t, adm.RetryAfter, time.Hour)
}

func TestMemoryLedgerWindowRollover(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryLedger(2, time.Hour)

	now := time.Now()
	ledger.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		adm, err := ledger.TryAdmit(ctx, "alice")
		require.NoError(t, err)
		require.True(t, adm.Admitted)
	}
	adm, err := ledger.TryAdmit(ctx, "alice")
	require.NoError(t, err)
	require.False(t, adm.Admitted)

	now = now.Add(time.Hour + time.Second)
	adm, err = ledger.TryAdmit(ctx, "alice")
	require.NoError(t, err)
	require.True(t, adm.Admitted)

	usage, err := ledger.Usage(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, 1, usage.Count)
	require.Equal(t, 1, usage.Remaining)
}

func TestMemoryLedgerUserIsolation(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryLedger(1, time.Hour)

	adm, err := ledger.TryAdmit(ctx, "alice")
	require.NoError(t, err)
	require.True(t, adm.Admitted)

	adm, err = ledger.TryAdmit(ctx, "alice")
	require.NoError(t, err)
	require.False(t, adm.Admitted)

	// Exhausting alice must not affect bob.
	adm, err = ledger.TryAdmit(ctx, "bob")
	require.NoError(t, err)
	require.True(t, adm.Admitted)
}

func TestMemoryLedgerConcurrentAdmission(t *testing.T) {
	ctx := context.Background()
	const slots = 16

	// N concurrent attempts with exactly N slots: all admitted.
	ledger := NewMemoryLedger(slots, time.Hour)
	var admitted, denied atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < slots; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			adm, err := ledger.TryAdmit(ctx, "alice")
			require.NoError(t, err)
			if adm.Admitted {
				admitted.Add(1)
			} else {
				denied.Add(1)
			}
		}()
	}
	wg.Wait()
	require.EqualValues(t, slots, admitted.Load())
	require.EqualValues(t, 0, denied.Load())

	// N+1 concurrent attempts with N slots: exactly one denial.
	ledger = NewMemoryLedger(slots, time.Hour)
	admitted.Store(0)
	denied.Store(0)
	for i := 0; i < slots+1; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			adm, err := ledger.TryAdmit(ctx, "alice")
			require.NoError(t, err)
			if adm.Admitted {
				admitted.Add(1)
			} else {
				denied.Add(1)
			}
		}()
	}
	wg.Wait()
	require.EqualValues(t, slots, admitted.Load())
	require.EqualValues(t, 1, denied.Load())
}

func TestMemoryLedgerUsageSnapshot(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryLedger(5, time.Hour)

	usage, err := ledger.Usage(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, 0, usage.Count)
	require.Equal(t, 5, usage.Limit)
	require.Equal(t, 5, usage.Remaining)

	_, err = ledger.TryAdmit(ctx, "alice")
	require.NoError(t, err)

	usage, err = ledger.Usage(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, 1, usage.Count)
	require.Equal(t, 4, usage.Remaining)
	require.False(t, usage.WindowStart.IsZero())
}
