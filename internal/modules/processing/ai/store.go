package ai

import (
	"context"
	"errors"
	"time"

	"github.com/notevault/core/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SummaryStore is the durable tier behind the in-memory cache: summaries
// survive process restarts and are shared between replicas. TTL is applied
// on read; a background sweep is unnecessary at this write volume.
type SummaryStore struct {
	db  *gorm.DB
	ttl time.Duration
	now func() time.Time
}

func NewSummaryStore(db *gorm.DB, ttl time.Duration) *SummaryStore {
	return &SummaryStore{db: db, ttl: ttl, now: time.Now}
}

// Get implements Cache. Expired rows behave as a miss.
func (s *SummaryStore) Get(ctx context.Context, fp Fingerprint) (*CacheEntry, error) {
	var row models.AISummaryModel
	err := s.db.WithContext(ctx).Where("fingerprint = ?", string(fp)).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if s.now().Sub(row.CreatedAt) >= s.ttl {
		return nil, nil
	}
	return &CacheEntry{
		Fingerprint: fp,
		SummaryText: row.Summary,
		Style:       Style(row.Style),
		CreatedAt:   row.CreatedAt,
		ContentHash: row.ContentHash,
		TokensUsed:  row.TokensUsed,
	}, nil
}

// Put implements Cache. The unique index on fingerprint plus DO NOTHING on
// conflict gives first-writer-wins across replicas; a mismatched content
// hash for an existing row is a collision and is reported, not overwritten.
func (s *SummaryStore) Put(ctx context.Context, entry CacheEntry) error {
	var existing models.AISummaryModel
	err := s.db.WithContext(ctx).Where("fingerprint = ?", string(entry.Fingerprint)).First(&existing).Error
	if err == nil {
		if existing.ContentHash != entry.ContentHash {
			return newError(KindInternal, "fingerprint collision with mismatched content")
		}
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	row := models.AISummaryModel{
		Fingerprint: string(entry.Fingerprint),
		Summary:     entry.SummaryText,
		Style:       string(entry.Style),
		ContentHash: entry.ContentHash,
		TokensUsed:  entry.TokensUsed,
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "fingerprint"}}, DoNothing: true}).
		Create(&row).Error
}

// GetByNote returns the stored summary for a note and style, if any.
func (s *SummaryStore) GetByNote(ctx context.Context, noteID string, style Style) (*models.AISummaryModel, error) {
	var row models.AISummaryModel
	err := s.db.WithContext(ctx).
		Where("ref_id = ? AND style = ?", noteID, string(style)).
		Order("created_at DESC").
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// Associate records which note a fingerprint was produced for. Best effort;
// the association is bookkeeping for lookups, not pipeline state.
func (s *SummaryStore) Associate(ctx context.Context, fp Fingerprint, noteID string) {
	if noteID == "" {
		return
	}
	s.db.WithContext(ctx).
		Model(&models.AISummaryModel{}).
		Where("fingerprint = ? AND ref_id = ''", string(fp)).
		Update("ref_id", noteID)
}
