package database

import (
	"context"

	"github.com/rpupo63/blog-admin-backend/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SearchDocumentRepo struct {
	db *gorm.DB
}

func NewSearchDocumentRepo(db *gorm.DB) *SearchDocumentRepo {
	return &SearchDocumentRepo{db}
}

// Upsert inserts the document or replaces the stored projection of the same key.
func (r *SearchDocumentRepo) Upsert(ctx context.Context, doc *models.SearchDocument) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "index_name"}, {Name: "document_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"document", "body", "updated_at"}),
	}).Create(doc).Error
}

// Delete removes a document; removing a missing document is not an error.
func (r *SearchDocumentRepo) Delete(ctx context.Context, index string, documentID uint) error {
	return r.db.WithContext(ctx).
		Where("index_name = ? AND document_id = ?", index, documentID).
		Delete(&models.SearchDocument{}).Error
}

// Find returns the stored document for a key.
func (r *SearchDocumentRepo) Find(ctx context.Context, index string, documentID uint) (*models.SearchDocument, error) {
	var doc models.SearchDocument
	err := r.db.WithContext(ctx).
		Where("index_name = ? AND document_id = ?", index, documentID).
		First(&doc).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// MatchIDs returns document ids whose body contains the LIKE pattern, most recently indexed first.
func (r *SearchDocumentRepo) MatchIDs(ctx context.Context, index string, pattern string, limit int) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.SearchDocument{}).
		Where("index_name = ?", index).
		Where(`body LIKE ? ESCAPE '\'`, pattern).
		Order("updated_at DESC").
		Order("document_id DESC").
		Limit(limit).
		Pluck("document_id", &ids).Error
	return ids, err
}
