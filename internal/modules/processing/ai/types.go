package ai

import "time"

// Style selects the instruction template for a summary.
type Style string

const (
	StyleConcise  Style = "concise"
	StyleBulleted Style = "bulleted"
	StyleDetailed Style = "detailed"
)

// ParseStyle validates a raw style value. Empty input maps to concise.
func ParseStyle(raw string) (Style, bool) {
	switch Style(raw) {
	case "":
		return StyleConcise, true
	case StyleConcise, StyleBulleted, StyleDetailed:
		return Style(raw), true
	}
	return "", false
}

// SummaryRequest is a single summarization request. Immutable once built.
type SummaryRequest struct {
	UserID  string
	NoteID  string
	Content string
	Style   Style
}

// SummaryResult is returned to callers; never persisted by the pipeline.
type SummaryResult struct {
	SummaryText string `json:"summary"`
	Style       Style  `json:"style"`
	FromCache   bool   `json:"from_cache"`
	TokensUsed  int    `json:"tokens_used,omitempty"`
}

// CacheEntry is an immutable cached summary, owned by the Summary Cache.
type CacheEntry struct {
	Fingerprint Fingerprint
	SummaryText string
	Style       Style
	CreatedAt   time.Time
	ContentHash string
	TokensUsed  int
}

// UsageSnapshot reports a user's quota consumption in the current window.
type UsageSnapshot struct {
	WindowStart time.Time `json:"window_start"`
	Count       int       `json:"count"`
	Limit       int       `json:"limit"`
	Remaining   int       `json:"remaining"`
}

// Admission is the outcome of a quota check.
type Admission struct {
	Admitted   bool
	RetryAfter time.Duration // set when denied
}

type generateSummaryDTO struct {
	NoteID  string `json:"noteId"`
	Content string `json:"content"`
	Style   string `json:"style"`
}

type batchSummaryDTO struct {
	Requests []generateSummaryDTO `json:"requests" binding:"required"`
}

type batchItemResponse struct {
	NoteID  string         `json:"noteId,omitempty"`
	Result  *SummaryResult `json:"result,omitempty"`
	Error   string         `json:"error,omitempty"`
	ErrKind string         `json:"error_kind,omitempty"`
}

type createSummaryTaskDTO struct {
	NoteID string `json:"noteId" binding:"required"`
	Style  string `json:"style"`
}

// SummaryPayload is the task payload for background summary generation.
type SummaryPayload struct {
	NoteID string `json:"note_id"`
	UserID string `json:"user_id"`
	Style  Style  `json:"style"`
}
