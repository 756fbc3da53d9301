package models

import "time"

// NoteModel is a personal note entry.
type NoteModel struct {
	Base
	UserID      string     `json:"-"            gorm:"index;not null"`
	Title       string     `json:"title"        gorm:"not null"`
	Text        string     `json:"text"         gorm:"type:longtext"`
	IsPublished bool       `json:"is_published" gorm:"default:false;index"`
	PublicAt    *time.Time `json:"public_at"`
	Mood        string     `json:"mood"`
	Weather     string     `json:"weather"`
	Bookmark    bool       `json:"bookmark"     gorm:"default:false"`
}

func (NoteModel) TableName() string { return "notes" }
