package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rpupo63/blog-admin-backend/database"
	"github.com/rpupo63/blog-admin-backend/errs"
	"github.com/rpupo63/blog-admin-backend/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SearchIndexer mirrors searchable entities into a full-text index.
type SearchIndexer interface {
	Upsert(ctx context.Context, s models.Searchable) error
	Remove(ctx context.Context, index string, id uint) error
	Search(ctx context.Context, index string, query string, limit int) ([]uint, error)
}

// SyncSearchable indexes s while it should be searchable and removes it otherwise.
func SyncSearchable(ctx context.Context, indexer SearchIndexer, s models.Searchable) error {
	if s.ShouldBeSearchable() {
		return indexer.Upsert(ctx, s)
	}
	return indexer.Remove(ctx, s.SearchableAs(), s.SearchKey())
}

// DatabaseSearchIndexer keeps the index in the search_documents table.
type DatabaseSearchIndexer struct {
	logger zerolog.Logger
	repo   *database.SearchDocumentRepo
}

func NewDatabaseSearchIndexer(repo *database.SearchDocumentRepo) *DatabaseSearchIndexer {
	return &DatabaseSearchIndexer{
		logger: log.With().Str("serviceName", "searchIndexer").Logger(),
		repo:   repo,
	}
}

func (i *DatabaseSearchIndexer) Upsert(ctx context.Context, s models.Searchable) error {
	projection := s.ToSearchableMap()

	document, err := json.Marshal(projection)
	if err != nil {
		return errs.NewSearchIndexError(s.SearchableAs(), s.SearchKey(), err)
	}

	doc := &models.SearchDocument{
		IndexName:  s.SearchableAs(),
		DocumentID: s.SearchKey(),
		Document:   document,
		Body:       searchBody(projection),
	}
	if err := i.repo.Upsert(ctx, doc); err != nil {
		return errs.NewSearchIndexError(s.SearchableAs(), s.SearchKey(), err)
	}

	i.logger.Debug().Str("index", doc.IndexName).Uint("id", doc.DocumentID).Msg("document indexed")
	return nil
}

func (i *DatabaseSearchIndexer) Remove(ctx context.Context, index string, id uint) error {
	if err := i.repo.Delete(ctx, index, id); err != nil {
		return errs.NewSearchIndexError(index, id, err)
	}
	return nil
}

func (i *DatabaseSearchIndexer) Search(ctx context.Context, index string, query string, limit int) ([]uint, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = -1
	}
	return i.repo.MatchIDs(ctx, index, database.LikePattern(query), limit)
}

// searchIndexError wraps failures of indexers that do not report an api error themselves.
func searchIndexError(index string, id uint, err error) error {
	var apiErr *errs.ApiErr
	if errors.As(err, &apiErr) {
		return err
	}
	return errs.NewSearchIndexError(index, id, err)
}

// searchBody flattens the projection into lower-cased text, in key order.
func searchBody(projection map[string]any) string {
	keys := make([]string, 0, len(projection))
	for key := range projection {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprint(projection[key]))
	}
	return strings.ToLower(strings.Join(parts, "\n"))
}
