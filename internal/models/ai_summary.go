package models

// AISummaryModel is the durable tier of the summary cache.
// Fingerprint is derived from normalized note content plus the requested
// style, so identical content always maps to the same row.
type AISummaryModel struct {
	Base
	Fingerprint string `json:"fingerprint"  gorm:"uniqueIndex;not null"`
	Summary     string `json:"summary"      gorm:"type:text;not null"`
	Style       string `json:"style"        gorm:"index;not null"`
	ContentHash string `json:"content_hash" gorm:"not null"` // collision guard
	RefID       string `json:"ref_id"       gorm:"index"`
	TokensUsed  int    `json:"tokens_used"`
}

func (AISummaryModel) TableName() string { return "ai_summaries" }
