package services

import (
	"context"
	"errors"
	"time"

	"github.com/rpupo63/blog-admin-backend/database"
	"github.com/rpupo63/blog-admin-backend/errs"
	"github.com/rpupo63/blog-admin-backend/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// BlogService implements the admin operations on blog posts. Side effects run in a
// fixed order after validation: store cover, save row, sync search index, sync tags.
// A failing side effect is returned as is and nothing before it is undone.
type BlogService struct {
	logger       zerolog.Logger
	blogs        *database.BlogRepo
	countries    *database.CountryRepo
	directory    CountryDirectory
	tags         TagSynchronizer
	indexer      SearchIndexer
	covers       CoverStorage
	defaultCover string
	coverMaxKB   int
	now          func() time.Time
}

func WithSearchIndexer(indexer SearchIndexer) func(*BlogService) {
	return func(s *BlogService) {
		s.indexer = indexer
	}
}

func WithTagSynchronizer(tags TagSynchronizer) func(*BlogService) {
	return func(s *BlogService) {
		s.tags = tags
	}
}

func WithCountryDirectory(directory CountryDirectory) func(*BlogService) {
	return func(s *BlogService) {
		s.directory = directory
	}
}

func WithDefaultCover(url string) func(*BlogService) {
	return func(s *BlogService) {
		s.defaultCover = url
	}
}

func WithCoverMaxKB(maxKB int) func(*BlogService) {
	return func(s *BlogService) {
		s.coverMaxKB = maxKB
	}
}

func WithClock(now func() time.Time) func(*BlogService) {
	return func(s *BlogService) {
		s.now = now
	}
}

func NewBlogService(db database.Database, covers CoverStorage, opts ...func(*BlogService)) *BlogService {
	s := &BlogService{
		logger:     log.With().Str("serviceName", "blogService").Logger(),
		blogs:      db.BlogRepo(),
		countries:  db.CountryRepo(),
		directory:  NewCountryDirectory(db.CountryRepo()),
		tags:       NewDatabaseTagSynchronizer(db.TagRepo()),
		indexer:    NewDatabaseSearchIndexer(db.SearchDocumentRepo()),
		covers:     covers,
		coverMaxKB: DefaultCoverMaxKB,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Table returns one page of the admin table.
func (s *BlogService) Table(ctx context.Context, q database.BlogTableQuery) (database.BlogTablePage, error) {
	page, err := s.blogs.Table(ctx, q)
	if err != nil {
		return page, errs.NewDatabaseError("list", "blogs", err)
	}
	return page, nil
}

func (s *BlogService) Find(ctx context.Context, id uint) (*models.Blog, error) {
	blog, err := s.blogs.FindByID(ctx, id)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "blog", err)
	}
	return blog, nil
}

func (s *BlogService) Countries(ctx context.Context) ([]models.Country, error) {
	countries, err := s.directory.ListCountries(ctx)
	if err != nil {
		return nil, errs.NewDatabaseError("list", "countries", err)
	}
	return countries, nil
}

// CoverURL resolves the public cover of a blog.
func (s *BlogService) CoverURL(blog *models.Blog) string {
	return blog.CoverURL(s.covers, s.defaultCover)
}

// Create validates the form and persists a new blog.
func (s *BlogService) Create(ctx context.Context, in BlogInput) (*models.Blog, error) {
	in = in.trimmed()
	countryID, upload, err := s.validateInput(ctx, in, 0)
	if err != nil {
		return nil, err
	}

	now := s.now()
	blog := &models.Blog{}
	fillBlog(blog, in, countryID)
	blog.Publish(in.Published, now)

	if upload != nil {
		if blog.Cover, err = StoreCover(ctx, s.covers, upload, now); err != nil {
			return nil, err
		}
	}

	if err := s.blogs.Create(ctx, blog); err != nil {
		return nil, errs.NewDatabaseError("create", "blog", err)
	}

	if err := s.afterSave(ctx, blog, in.Tags); err != nil {
		return nil, err
	}

	s.logger.Info().Uint("blogID", blog.ID).Str("slug", blog.Slug).Bool("published", blog.IsPublished()).Msg("blog created")
	return blog, nil
}

// Update validates the form before looking the blog up, then overwrites every
// submitted field. published_at follows the published flag on every update, so a
// form without the flag turns a live post back into a draft.
func (s *BlogService) Update(ctx context.Context, id uint, in BlogInput) (*models.Blog, error) {
	in = in.trimmed()
	countryID, upload, err := s.validateInput(ctx, in, id)
	if err != nil {
		return nil, err
	}

	blog, err := s.blogs.FindByID(ctx, id)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "blog", err)
	}

	now := s.now()
	wasPublished := blog.IsPublished()

	fillBlog(blog, in, countryID)
	blog.Publish(in.Published, now)

	if wasPublished && !blog.IsPublished() {
		s.logger.Warn().Uint("blogID", blog.ID).Msg("update without published flag unpublished a live blog")
	}

	if upload != nil {
		if blog.Cover, err = StoreCover(ctx, s.covers, upload, now); err != nil {
			return nil, err
		}
	}

	if err := s.blogs.Save(ctx, blog); err != nil {
		return nil, errs.NewDatabaseError("update", "blog", err)
	}

	if err := s.afterSave(ctx, blog, in.Tags); err != nil {
		return nil, err
	}

	s.logger.Info().Uint("blogID", blog.ID).Bool("published", blog.IsPublished()).Msg("blog updated")
	return blog, nil
}

// Destroy soft deletes a blog and returns the number of rows affected.
// Destroying a missing or already deleted blog returns zero.
func (s *BlogService) Destroy(ctx context.Context, id uint) (int64, error) {
	affected, err := s.blogs.SoftDelete(ctx, id)
	if err != nil {
		return 0, errs.NewDatabaseError("delete", "blog", err)
	}

	if err := s.indexer.Remove(ctx, models.BlogSearchIndex, id); err != nil {
		return affected, searchIndexError(models.BlogSearchIndex, id, err)
	}

	if affected > 0 {
		s.logger.Info().Uint("blogID", id).Msg("blog deleted")
	}
	return affected, nil
}

// Search returns published blogs matching query, best match first.
func (s *BlogService) Search(ctx context.Context, query string, limit int) ([]*models.Blog, error) {
	ids, err := s.indexer.Search(ctx, models.BlogSearchIndex, query, limit)
	if err != nil {
		return nil, errs.NewDatabaseError("search", "blogs", err)
	}

	blogs, err := s.blogs.FindPublishedByIDs(ctx, ids)
	if err != nil {
		return nil, errs.NewDatabaseError("load", "blogs", err)
	}
	return blogs, nil
}

func (s *BlogService) afterSave(ctx context.Context, blog *models.Blog, tags []string) error {
	if err := SyncSearchable(ctx, s.indexer, blog); err != nil {
		return searchIndexError(blog.SearchableAs(), blog.ID, err)
	}
	if err := s.tags.Sync(ctx, blog, tags); err != nil {
		var apiErr *errs.ApiErr
		if errors.As(err, &apiErr) {
			return err
		}
		return errs.NewTagSyncError(blog.TaggableType(), blog.TaggableID(), err)
	}
	return nil
}

func fillBlog(blog *models.Blog, in BlogInput, countryID uint) {
	if blog.GetCountryID() != countryID {
		blog.Country = nil
	}

	blog.Title = in.Title
	blog.Slug = in.Slug
	blog.CountryID = countryID
	blog.Content = in.Content
	blog.SeoTitle = in.SeoTitle
	blog.SeoURL = in.SeoURL
	blog.SeoH1 = in.SeoH1
	blog.SeoKeywords = in.SeoKeywords
	blog.SeoDescription = in.SeoDescription
	blog.CanComment = in.CanComment
}
