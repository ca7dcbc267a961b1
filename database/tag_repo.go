package database

import (
	"context"

	"github.com/rpupo63/blog-admin-backend/errs"
	"github.com/rpupo63/blog-admin-backend/models"
	"gorm.io/gorm"
)

type TagRepo struct {
	db *gorm.DB
}

func NewTagRepo(db *gorm.DB) *TagRepo {
	return &TagRepo{db}
}

// GetDB returns the underlying database connection for debugging purposes
func (r *TagRepo) GetDB() *gorm.DB {
	return r.db
}

// FindAll returns all tags from the database
func (r *TagRepo) FindAll(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	err := r.db.WithContext(ctx).Order("name").Find(&tags).Error
	return tags, err
}

// ReplaceBlogTags makes the given tags the complete tag set of blog in one transaction.
// ids must refer to existing tags (unknown ids are ignored); names are created when missing.
// An empty request clears every tag.
func (r *TagRepo) ReplaceBlogTags(ctx context.Context, blog *models.Blog, ids []uint, names []string) ([]models.Tag, error) {
	var tags []models.Tag

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(ids) > 0 {
			if err := tx.Where("id IN ?", ids).Order("id").Find(&tags).Error; err != nil {
				return err
			}
		}

		for _, name := range names {
			var tag models.Tag
			if err := tx.Where(models.Tag{Name: name}).FirstOrCreate(&tag).Error; err != nil {
				return err
			}
			tags = appendUniqueTag(tags, tag)
		}

		association := tx.Model(blog).Association("Tags")
		if len(tags) == 0 {
			return association.Clear()
		}
		return association.Replace(tags)
	})
	if err != nil {
		return nil, errs.NewTransactionFailedError("replace blog tags", err)
	}

	blog.Tags = tags
	return tags, nil
}

func appendUniqueTag(tags []models.Tag, tag models.Tag) []models.Tag {
	for _, existing := range tags {
		if existing.ID == tag.ID {
			return tags
		}
	}
	return append(tags, tag)
}
