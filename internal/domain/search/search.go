package search

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SearchDocument is the denormalized, searchable projection of one business
// record. Modules upsert their rows here; the search service never reads the
// source tables directly.
type SearchDocument struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SourceTable string    `gorm:"column:source_table;not null;uniqueIndex:idx_search_doc_record,priority:1" json:"table_name"`
	RecordID    string    `gorm:"column:record_id;not null;uniqueIndex:idx_search_doc_record,priority:2" json:"record_id"`
	Title       string    `gorm:"column:title;not null" json:"title"`
	Subtitle    string    `gorm:"column:subtitle" json:"subtitle,omitempty"`
	Content     string    `gorm:"column:content;type:text" json:"content"`
	Status      string    `gorm:"column:status;index" json:"status,omitempty"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (SearchDocument) TableName() string { return "search_documents" }

func (d *SearchDocument) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	now := time.Now().UTC()
	if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}
	if d.UpdatedAt.IsZero() {
		d.UpdatedAt = now
	}
	return nil
}

// SearchHistory is one executed query, used for prefix suggestions.
type SearchHistory struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`
	Query        string     `gorm:"column:query;not null;index" json:"query"`
	ResultsCount int        `gorm:"column:results_count;not null" json:"results_count"`
	CreatedAt    time.Time  `gorm:"not null;autoCreateTime;index" json:"created_at"`
}

func (SearchHistory) TableName() string { return "search_history" }

func (h *SearchHistory) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}
