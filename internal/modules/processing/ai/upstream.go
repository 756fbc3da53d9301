package ai

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Upstream is the language-model call behind the pipeline.
type Upstream interface {
	Summarize(ctx context.Context, content string, style Style) (UpstreamResult, error)
}

// UpstreamResult is a successful upstream response.
type UpstreamResult struct {
	SummaryText string
	TokensUsed  int
}

// Disabled is the upstream used when summarization is turned off or no
// provider is configured.
type Disabled struct{}

func (Disabled) Summarize(ctx context.Context, content string, style Style) (UpstreamResult, error) {
	return UpstreamResult{}, newError(KindUpstreamPermanent, "AI summarization is disabled")
}

// callError is the raw outcome of one provider attempt, before the adapter
// maps it to the caller-facing taxonomy.
type callError struct {
	status     int           // HTTP status when known, 0 otherwise
	retryAfter time.Duration // from the upstream's own limiter, if present
	err        error
}

func (e *callError) Error() string { return e.err.Error() }
func (e *callError) Unwrap() error { return e.err }

func (e *callError) throttled() bool { return e.status == 429 }

func (e *callError) transient() bool {
	if e.status >= 500 {
		return true
	}
	if e.status != 0 {
		return false
	}
	// No HTTP status: timeouts, connection resets, broken streams.
	return !errors.Is(e.err, context.Canceled)
}

// caller performs a single provider attempt. Implementations do not retry;
// retry policy belongs to the Adapter alone.
type caller interface {
	call(ctx context.Context, systemPrompt, prompt string) (string, int, error)
}

// Adapter wraps the provider call with a per-attempt timeout, bounded retry
// with exponential backoff on transient failures, and error normalization.
// The upstream's own rate-limit signal is surfaced immediately rather than
// retried locally, so the two limiters never compound.
type Adapter struct {
	caller     caller
	timeout    time.Duration
	maxRetries int
	backoff    time.Duration
	log        *zap.Logger

	sleep func(ctx context.Context, d time.Duration) error
}

func NewAdapter(c caller, timeout time.Duration, maxRetries int, backoff time.Duration, log *zap.Logger) *Adapter {
	return &Adapter{
		caller:     c,
		timeout:    timeout,
		maxRetries: maxRetries,
		backoff:    backoff,
		log:        log,
		sleep:      sleepCtx,
	}
}

// Summarize implements Upstream.
func (a *Adapter) Summarize(ctx context.Context, content string, style Style) (UpstreamResult, error) {
	systemPrompt, prompt := buildSummaryPrompt(style, content)

	var lastErr *callError
	delay := a.backoff
	for attempt := 0; attempt <= a.maxRetries; attempt++ {
		if attempt > 0 {
			if err := a.sleep(ctx, delay); err != nil {
				return UpstreamResult{}, wrapError(KindUpstreamTransient, "summarization aborted", err)
			}
			delay *= 3
		}

		raw, tokens, err := a.attempt(ctx, systemPrompt, prompt)
		if err == nil {
			summary, perr := extractSummaryFromAIResponse(raw)
			if perr != nil {
				return UpstreamResult{}, wrapError(KindUpstreamPermanent, "malformed upstream response", perr)
			}
			return UpstreamResult{SummaryText: summary, TokensUsed: tokens}, nil
		}

		var ce *callError
		if !errors.As(err, &ce) {
			ce = &callError{err: err}
		}

		if ctx.Err() != nil {
			// Caller went away; nothing to retry against.
			return UpstreamResult{}, wrapError(KindUpstreamTransient, "summarization aborted", ctx.Err())
		}

		if ce.throttled() {
			return UpstreamResult{}, &Error{
				Kind:       KindUpstreamThrottled,
				Message:    "upstream rate limit hit",
				RetryAfter: ce.retryAfter,
				cause:      ce.err,
			}
		}
		if !ce.transient() {
			return UpstreamResult{}, wrapError(KindUpstreamPermanent, "upstream rejected request", ce.err)
		}

		lastErr = ce
		a.log.Warn("upstream attempt failed",
			zap.Int("attempt", attempt+1),
			zap.Int("status", ce.status),
			zap.Error(ce.err),
		)
	}

	return UpstreamResult{}, wrapError(KindUpstreamTransient, "upstream unavailable after retries", lastErr.err)
}

func (a *Adapter) attempt(ctx context.Context, systemPrompt, prompt string) (string, int, error) {
	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	return a.caller.call(callCtx, systemPrompt, prompt)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
