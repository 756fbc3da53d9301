package ai

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// gaugedUpstream tracks the high-water mark of in-flight calls.
type gaugedUpstream struct {
	inflight atomic.Int64
	peak     atomic.Int64
}

func (g *gaugedUpstream) Summarize(ctx context.Context, content string, style Style) (UpstreamResult, error) {
	n := g.inflight.Add(1)
	defer g.inflight.Add(-1)
	for {
		peak := g.peak.Load()
		if n <= peak || g.peak.CompareAndSwap(peak, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)
	return UpstreamResult{SummaryText: "summary: " + Normalize(content)}, nil
}

func TestBatchPreservesOrder(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(&fakeUpstream{}, 50)

	requests := make([]SummaryRequest, 6)
	for i := range requests {
		requests[i] = req("u1", fmt.Sprintf("note %d", i))
	}
	// One invalid request in the middle.
	requests[3].Content = ""

	outcomes := svc.SummarizeBatch(ctx, requests, 3)
	require.Len(t, outcomes, len(requests))

	for i, outcome := range outcomes {
		if i == 3 {
			require.Error(t, outcome.Err)
			require.Equal(t, KindValidation, AsError(outcome.Err).Kind)
			require.Nil(t, outcome.Result)
			continue
		}
		require.NoError(t, outcome.Err)
		require.NotNil(t, outcome.Result)
		require.Equal(t, "summary: note "+fmt.Sprint(i), outcome.Result.SummaryText)
	}
}

func TestBatchPartialFailureDoesNotAbortSiblings(t *testing.T) {
	ctx := context.Background()
	up := &fakeUpstream{}
	svc := newTestService(up, 2)

	// Quota of 2: the third-through-fifth distinct notes are denied but the
	// first two still succeed.
	requests := make([]SummaryRequest, 5)
	for i := range requests {
		requests[i] = req("u1", fmt.Sprintf("note %d", i))
	}

	outcomes := svc.SummarizeBatch(ctx, requests, 1)
	require.Len(t, outcomes, 5)

	var succeeded, denied int
	for _, outcome := range outcomes {
		if outcome.Err != nil {
			require.Equal(t, KindQuotaExceeded, AsError(outcome.Err).Kind)
			denied++
			continue
		}
		succeeded++
	}
	require.Equal(t, 2, succeeded)
	require.Equal(t, 3, denied)
}

// pickyUpstream fails only for content containing a marker.
type pickyUpstream struct {
	marker string
}

func (p *pickyUpstream) Summarize(ctx context.Context, content string, style Style) (UpstreamResult, error) {
	if strings.Contains(content, p.marker) {
		return UpstreamResult{}, newError(KindUpstreamTransient, "scripted failure")
	}
	return UpstreamResult{SummaryText: "summary: " + Normalize(content)}, nil
}

func TestBatchOneUpstreamFailure(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(&pickyUpstream{marker: "poison"}, 50)

	requests := make([]SummaryRequest, 5)
	for i := range requests {
		requests[i] = req("u1", fmt.Sprintf("note %d", i))
	}
	requests[2].Content = "poison note"

	outcomes := svc.SummarizeBatch(ctx, requests, 3)
	require.Len(t, outcomes, 5)

	for i, outcome := range outcomes {
		if i == 2 {
			require.Error(t, outcome.Err)
			require.Equal(t, KindUpstreamTransient, AsError(outcome.Err).Kind)
			continue
		}
		require.NoError(t, outcome.Err)
		require.Equal(t, "summary: note "+fmt.Sprint(i), outcome.Result.SummaryText)
	}
}

func TestBatchBoundedConcurrency(t *testing.T) {
	ctx := context.Background()
	up := &gaugedUpstream{}
	svc := newTestService(up, 100)

	requests := make([]SummaryRequest, 20)
	for i := range requests {
		requests[i] = req("u1", fmt.Sprintf("note %d", i))
	}

	outcomes := svc.SummarizeBatch(ctx, requests, 4)
	for _, outcome := range outcomes {
		require.NoError(t, outcome.Err)
	}
	require.LessOrEqual(t, up.peak.Load(), int64(4))
	require.Greater(t, up.peak.Load(), int64(0))
}

func TestBatchEmptyInput(t *testing.T) {
	svc := newTestService(&fakeUpstream{}, 10)
	outcomes := svc.SummarizeBatch(context.Background(), nil, 5)
	require.Empty(t, outcomes)
}

func TestBatchDuplicatesShareCache(t *testing.T) {
	ctx := context.Background()
	up := &fakeUpstream{}
	svc := newTestService(up, 100)

	requests := []SummaryRequest{
		req("u1", "the same note"),
		req("u1", "THE SAME note"),
		req("u1", "  the   same note "),
	}

	outcomes := svc.SummarizeBatch(ctx, requests, 1)
	require.Len(t, outcomes, 3)
	for _, outcome := range outcomes {
		require.NoError(t, outcome.Err)
		require.NotNil(t, outcome.Result)
	}
	require.EqualValues(t, 1, up.calls.Load(), "normalized duplicates resolve from cache")
}
