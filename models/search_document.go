package models

import (
	"time"

	"gorm.io/datatypes"
)

// SearchDocument is one entry of the application-maintained search index.
// Document holds the searchable projection; Body is its lower-cased text.
type SearchDocument struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	IndexName  string         `json:"index_name" gorm:"type:varchar(64);not null;uniqueIndex:idx_search_documents_key"`
	DocumentID uint           `json:"document_id" gorm:"not null;uniqueIndex:idx_search_documents_key"`
	Document   datatypes.JSON `json:"document"`
	Body       string         `json:"-" gorm:"type:text;not null"`
	UpdatedAt  time.Time      `json:"updated_at"`
}
