package ai

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const maxContentRunes = 100_000

// DurableStore is the optional persistent tier under the memory cache. It is
// best effort: the pipeline treats its failures as outages to ride out, not
// as request errors.
type DurableStore interface {
	Get(ctx context.Context, fp Fingerprint) (*CacheEntry, error)
	Put(ctx context.Context, entry CacheEntry) error
	Associate(ctx context.Context, fp Fingerprint, noteID string)
}

// Service is the summarization orchestrator. It owns no request state of its
// own; everything shared lives in the injected cache and ledger, so each
// request re-enters at the top.
type Service struct {
	cache    Cache
	store    DurableStore // may be nil
	ledger   Ledger
	upstream Upstream
	log      *zap.Logger

	group singleflight.Group
}

func NewService(cache Cache, store DurableStore, ledger Ledger, upstream Upstream, log *zap.Logger) *Service {
	return &Service{
		cache:    cache,
		store:    store,
		ledger:   ledger,
		upstream: upstream,
		log:      log,
	}
}

// Summarize runs one request through the pipeline: cache check, quota check,
// upstream call, write-through. A cache hit costs no quota and no upstream
// call; that short-circuit is the primary cost control.
func (s *Service) Summarize(ctx context.Context, req SummaryRequest) (*SummaryResult, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	fp := NewFingerprint(req.Content, req.Style)
	contentHash := ContentHash(req.Content)

	if entry, err := s.lookup(ctx, fp); err != nil {
		return nil, wrapError(KindInternal, "cache lookup failed", err)
	} else if entry != nil {
		return &SummaryResult{
			SummaryText: entry.SummaryText,
			Style:       entry.Style,
			FromCache:   true,
			TokensUsed:  entry.TokensUsed,
		}, nil
	}

	admission, err := s.ledger.TryAdmit(ctx, req.UserID)
	if err != nil {
		return nil, wrapError(KindInternal, "quota check failed", err)
	}
	if !admission.Admitted {
		return nil, &Error{
			Kind:       KindQuotaExceeded,
			Message:    "AI call quota exceeded",
			RetryAfter: admission.RetryAfter,
		}
	}

	// Concurrent misses for the same fingerprint collapse into a single
	// upstream call. Each collapsed caller has already paid quota above,
	// and the shared call is detached from any one caller's cancellation.
	v, err, _ := s.group.Do(string(fp), func() (interface{}, error) {
		res, err := s.upstream.Summarize(context.WithoutCancel(ctx), req.Content, req.Style)
		if err != nil {
			// Failures are never cached.
			return nil, err
		}

		entry := CacheEntry{
			Fingerprint: fp,
			SummaryText: res.SummaryText,
			Style:       req.Style,
			ContentHash: contentHash,
			TokensUsed:  res.TokensUsed,
		}
		if err := s.storeEntry(ctx, entry, req.NoteID); err != nil {
			return nil, err
		}
		return &res, nil
	})
	if err != nil {
		e := AsError(err)
		if e.Kind == KindInternal {
			s.log.Error("summarization failed",
				zap.String("user_id", req.UserID),
				zap.String("note_id", req.NoteID),
				zap.String("fingerprint", string(fp)),
				zap.Error(err),
			)
		}
		return nil, e
	}

	res := v.(*UpstreamResult)
	return &SummaryResult{
		SummaryText: res.SummaryText,
		Style:       req.Style,
		FromCache:   false,
		TokensUsed:  res.TokensUsed,
	}, nil
}

// Usage reports the caller's quota consumption.
func (s *Service) Usage(ctx context.Context, userID string) (UsageSnapshot, error) {
	return s.ledger.Usage(ctx, userID)
}

// lookup checks the memory tier first, then the durable store, backfilling
// the memory tier on a store hit. A store outage degrades to a miss; the
// upstream call path stays available.
func (s *Service) lookup(ctx context.Context, fp Fingerprint) (*CacheEntry, error) {
	entry, err := s.cache.Get(ctx, fp)
	if err != nil || entry != nil {
		return entry, err
	}
	if s.store == nil {
		return nil, nil
	}
	entry, err = s.store.Get(ctx, fp)
	if err != nil {
		s.log.Warn("summary store read failed", zap.String("fingerprint", string(fp)), zap.Error(err))
		return nil, nil
	}
	if entry == nil {
		return nil, nil
	}
	if err := s.cache.Put(ctx, *entry); err != nil {
		s.log.Warn("cache backfill failed", zap.String("fingerprint", string(fp)), zap.Error(err))
	}
	return entry, nil
}

// storeEntry writes through to both tiers. A fingerprint collision is an
// invariant violation and fails the request; any other durable-tier failure
// must not fail a produced summary.
func (s *Service) storeEntry(ctx context.Context, entry CacheEntry, noteID string) error {
	if err := s.cache.Put(ctx, entry); err != nil {
		return err
	}
	if s.store == nil {
		return nil
	}
	if err := s.store.Put(ctx, entry); err != nil {
		var e *Error
		if errors.As(err, &e) && e.Kind == KindInternal {
			return err
		}
		s.log.Warn("summary store write failed", zap.String("fingerprint", string(entry.Fingerprint)), zap.Error(err))
		return nil
	}
	s.store.Associate(ctx, entry.Fingerprint, noteID)
	return nil
}

func validateRequest(req SummaryRequest) error {
	if strings.TrimSpace(req.UserID) == "" {
		return newError(KindValidation, "userId is required")
	}
	if strings.TrimSpace(req.Content) == "" {
		return newError(KindValidation, "content is empty")
	}
	if len([]rune(req.Content)) > maxContentRunes {
		return newError(KindValidation, "content exceeds maximum length")
	}
	if _, ok := styleInstructions[req.Style]; !ok {
		return newError(KindValidation, "unknown summary style")
	}
	return nil
}
