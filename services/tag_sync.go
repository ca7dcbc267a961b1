package services

import (
	"context"
	"strconv"
	"strings"

	"github.com/rpupo63/blog-admin-backend/database"
	"github.com/rpupo63/blog-admin-backend/errs"
	"github.com/rpupo63/blog-admin-backend/models"
)

// TagSynchronizer replaces the full tag set of a blog.
type TagSynchronizer interface {
	Sync(ctx context.Context, blog *models.Blog, values []string) error
}

// DatabaseTagSynchronizer treats numeric values as tag ids and anything else as a tag name.
type DatabaseTagSynchronizer struct {
	repo *database.TagRepo
}

func NewDatabaseTagSynchronizer(repo *database.TagRepo) *DatabaseTagSynchronizer {
	return &DatabaseTagSynchronizer{repo: repo}
}

func (s *DatabaseTagSynchronizer) Sync(ctx context.Context, blog *models.Blog, values []string) error {
	ids, names := splitTagValues(values)
	if _, err := s.repo.ReplaceBlogTags(ctx, blog, ids, names); err != nil {
		return errs.NewTagSyncError(blog.TaggableType(), blog.TaggableID(), err)
	}
	return nil
}

func splitTagValues(values []string) (ids []uint, names []string) {
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if id, err := strconv.ParseUint(value, 10, 64); err == nil {
			ids = append(ids, uint(id))
			continue
		}
		names = append(names, value)
	}
	return ids, names
}
