package note

import (
	"context"
	"errors"

	"github.com/notevault/core/internal/models"
	aimod "github.com/notevault/core/internal/modules/processing/ai"
	"github.com/notevault/core/internal/pkg/pagination"
	"github.com/notevault/core/internal/pkg/response"
	"gorm.io/gorm"
)

// Service handles note CRUD.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// List returns the user's notes, newest first.
func (s *Service) List(userID string, q pagination.Query) ([]models.NoteModel, response.Pagination, error) {
	tx := s.db.Model(&models.NoteModel{}).
		Where("user_id = ?", userID).
		Order("created_at DESC")
	var notes []models.NoteModel
	pag, err := pagination.Paginate(tx, q, &notes)
	return notes, pag, err
}

// GetByID returns a note owned by the user, or nil if absent.
func (s *Service) GetByID(id, userID string) (*models.NoteModel, error) {
	var n models.NoteModel
	err := s.db.Where("id = ? AND user_id = ?", id, userID).First(&n).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &n, nil
}

// Create stores a new note.
func (s *Service) Create(n *models.NoteModel) error {
	return s.db.Create(n).Error
}

// Update applies changes to an owned note.
func (s *Service) Update(id, userID string, changes map[string]interface{}) (*models.NoteModel, error) {
	existing, err := s.GetByID(id, userID)
	if err != nil || existing == nil {
		return nil, err
	}
	if err := s.db.Model(existing).Updates(changes).Error; err != nil {
		return nil, err
	}
	return s.GetByID(id, userID)
}

// Delete soft-deletes an owned note. Returns false if it did not exist.
func (s *Service) Delete(id, userID string) (bool, error) {
	res := s.db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.NoteModel{})
	return res.RowsAffected > 0, res.Error
}

// GetText implements the summarization pipeline's NoteSource.
func (s *Service) GetText(ctx context.Context, noteID, userID string) (string, error) {
	var n models.NoteModel
	err := s.db.WithContext(ctx).
		Select("text").
		Where("id = ? AND user_id = ?", noteID, userID).
		First(&n).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", aimod.ErrNoteNotFound
		}
		return "", err
	}
	return n.Text, nil
}
