package services

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rpupo63/blog-admin-backend/database"
	"github.com/rpupo63/blog-admin-backend/errs"
	"github.com/rpupo63/blog-admin-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC)

// pngHeader is enough of a PNG for content sniffing.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

type serviceFixture struct {
	service *BlogService
	db      database.Database
	root    string
	country models.Country
}

func newServiceFixture(t *testing.T, opts ...func(*BlogService)) serviceFixture {
	t.Helper()

	gormDB, err := database.OpenSQLite(":memory:", nil)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(gormDB))
	t.Cleanup(func() {
		if sqlDB, err := gormDB.DB(); err == nil {
			sqlDB.Close()
		}
	})
	db := database.New(gormDB)

	root := t.TempDir()
	storage, err := NewLocalCoverStorage(root, "http://localhost/storage")
	require.NoError(t, err)

	country := models.Country{Name: "Portugal", Alpha2: "PT"}
	require.NoError(t, db.CountryRepo().Add(context.Background(), &country))

	opts = append([]func(*BlogService){WithClock(func() time.Time { return fixedNow }), WithDefaultCover("/images/default.png")}, opts...)

	return serviceFixture{
		service: NewBlogService(db, storage, opts...),
		db:      db,
		root:    root,
		country: country,
	}
}

func (f serviceFixture) input(title, slug string) BlogInput {
	return BlogInput{
		Title:     title,
		Slug:      slug,
		CountryID: fmt.Sprint(f.country.ID),
		Content:   "Hello world, this is **markdown**.",
	}
}

func formFile(t *testing.T, filename string, data []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("cover", filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	return form.File["cover"][0]
}

func TestCreateBlog(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)

	in := f.input("Hello", "hello")
	in.Published = true
	in.CanComment = true
	in.Tags = []string{"go", "news", "go"}

	blog, err := f.service.Create(ctx, in)
	require.NoError(t, err)
	require.NotZero(t, blog.ID)

	stored, err := f.service.Find(ctx, blog.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hello", stored.Title)
	assert.True(t, stored.CanComment)
	require.NotNil(t, stored.PublishedAt)
	assert.True(t, fixedNow.Equal(*stored.PublishedAt))
	assert.Equal(t, "Portugal", stored.CountryName())
	assert.Equal(t, []string{"go", "news"}, stored.TagNames())
	assert.Equal(t, "/images/default.png", f.service.CoverURL(stored))

	found, err := f.service.Search(ctx, "hello", 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, blog.ID, found[0].ID)
}

func TestCreateDraftIsNotSearchable(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)

	_, err := f.service.Create(ctx, f.input("Hello", "hello"))
	require.NoError(t, err)

	found, err := f.service.Search(ctx, "hello", 10)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestCreateBlogRejectsDuplicateSlug(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)

	_, err := f.service.Create(ctx, f.input("First", "shared-slug"))
	require.NoError(t, err)

	_, err = f.service.Create(ctx, f.input("Second", "shared-slug"))
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))
	assert.Equal(t, []string{"The slug has already been taken."}, errs.ValidationFields(err)["slug"])

	page, err := f.service.Table(ctx, database.BlogTableQuery{Limit: -1, SortColumn: "id"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)
}

func TestCreateBlogValidation(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)

	in := BlogInput{Title: "  ", Slug: "Not A Slug", CountryID: "999"}
	_, err := f.service.Create(ctx, in)
	require.Error(t, err)
	require.True(t, errs.IsValidation(err))

	fields := errs.ValidationFields(err)
	assert.Equal(t, []string{"The title field is required."}, fields["title"])
	assert.Len(t, fields["slug"], 1)
	assert.Equal(t, []string{"The selected country id is invalid."}, fields["country_id"])
	assert.NotContains(t, fields, "content")
}

func TestCreateBlogStoresCover(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)

	in := f.input("With cover", "with-cover")
	in.Cover = formFile(t, "photo.png", pngHeader)

	blog, err := f.service.Create(ctx, in)
	require.NoError(t, err)

	expected := fmt.Sprintf("blog/images/20240305/%d.png", fixedNow.Unix())
	assert.Equal(t, expected, blog.Cover)
	assert.Equal(t, "http://localhost/storage/"+expected, f.service.CoverURL(blog))

	data, err := os.ReadFile(filepath.Join(f.root, filepath.FromSlash(expected)))
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)
}

func TestCreateBlogRejectsInvalidCover(t *testing.T) {
	ctx := context.Background()

	t.Run("not an image", func(t *testing.T) {
		f := newServiceFixture(t)
		in := f.input("Bad cover", "bad-cover")
		in.Cover = formFile(t, "notes.png", []byte("just some text"))

		_, err := f.service.Create(ctx, in)
		require.True(t, errs.IsValidation(err))
		assert.Equal(t, []string{"The cover must be an image."}, errs.ValidationFields(err)["cover"])
	})

	t.Run("too large", func(t *testing.T) {
		f := newServiceFixture(t, WithCoverMaxKB(1))
		in := f.input("Big cover", "big-cover")
		in.Cover = formFile(t, "big.png", append(append([]byte{}, pngHeader...), make([]byte, 2048)...))

		_, err := f.service.Create(ctx, in)
		require.True(t, errs.IsValidation(err))
		assert.Equal(t, []string{"The cover must not be greater than 1 kilobytes."}, errs.ValidationFields(err)["cover"])
	})
}

func TestUpdateBlogWithoutPublishedFlagUnpublishes(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)

	in := f.input("Hello", "hello")
	in.Published = true
	blog, err := f.service.Create(ctx, in)
	require.NoError(t, err)

	in.Published = false
	in.Title = "Hello again"
	updated, err := f.service.Update(ctx, blog.ID, in)
	require.NoError(t, err)
	assert.Nil(t, updated.PublishedAt)
	assert.Equal(t, "Hello again", updated.Title)

	found, err := f.service.Search(ctx, "hello", 10)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestUpdateBlogKeepsCoverAndOwnSlug(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)

	in := f.input("Cover kept", "cover-kept")
	in.Cover = formFile(t, "photo.png", pngHeader)
	blog, err := f.service.Create(ctx, in)
	require.NoError(t, err)

	in.Cover = nil
	in.Content = "changed"
	updated, err := f.service.Update(ctx, blog.ID, in)
	require.NoError(t, err)
	assert.Equal(t, blog.Cover, updated.Cover)
	assert.Equal(t, "changed", updated.Content)
}

func TestUpdateBlogReplacesAndClearsTags(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)

	in := f.input("Tagged", "tagged")
	in.Tags = []string{"one", "two"}
	blog, err := f.service.Create(ctx, in)
	require.NoError(t, err)

	in.Tags = []string{"two", "three"}
	_, err = f.service.Update(ctx, blog.ID, in)
	require.NoError(t, err)

	stored, err := f.service.Find(ctx, blog.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"two", "three"}, stored.TagNames())

	in.Tags = nil
	_, err = f.service.Update(ctx, blog.ID, in)
	require.NoError(t, err)

	stored, err = f.service.Find(ctx, blog.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Tags)
}

func TestUpdateBlogValidatesBeforeLookup(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)

	_, err := f.service.Update(ctx, 999, BlogInput{})
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))

	_, err = f.service.Update(ctx, 999, f.input("Missing", "missing"))
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))
}

func TestDestroyBlog(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)

	in := f.input("Hello", "hello")
	in.Published = true
	blog, err := f.service.Create(ctx, in)
	require.NoError(t, err)

	affected, err := f.service.Destroy(ctx, blog.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, affected)

	affected, err = f.service.Destroy(ctx, blog.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, affected)

	_, err = f.service.Find(ctx, blog.ID)
	assert.True(t, errs.IsNotFound(err))

	_, err = f.db.SearchDocumentRepo().Find(ctx, models.BlogSearchIndex, blog.ID)
	assert.Error(t, err)

	trashed, err := f.db.BlogRepo().FindTrashedByID(ctx, blog.ID)
	require.NoError(t, err)
	assert.True(t, trashed.IsTrashed())

	// the slug is free again once the post is gone
	_, err = f.service.Create(ctx, f.input("Hello", "hello"))
	assert.NoError(t, err)
}

type failingIndexer struct{}

func (failingIndexer) Upsert(context.Context, models.Searchable) error {
	return fmt.Errorf("index offline")
}

func (failingIndexer) Remove(context.Context, string, uint) error {
	return fmt.Errorf("index offline")
}

func (failingIndexer) Search(context.Context, string, string, int) ([]uint, error) {
	return nil, fmt.Errorf("index offline")
}

func TestCreateBlogKeepsRowWhenIndexingFails(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t, WithSearchIndexer(failingIndexer{}))

	in := f.input("Hello", "hello")
	in.Published = true
	_, err := f.service.Create(ctx, in)
	require.Error(t, err)
	assert.True(t, errs.IsSideEffectError(err))

	page, err := f.service.Table(ctx, database.BlogTableQuery{Limit: -1, SortColumn: "id"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)
}

type mockIndexer struct {
	mock.Mock
}

func (m *mockIndexer) Upsert(ctx context.Context, s models.Searchable) error {
	return m.Called(s.SearchableAs(), s.SearchKey()).Error(0)
}

func (m *mockIndexer) Remove(ctx context.Context, index string, id uint) error {
	return m.Called(index, id).Error(0)
}

func (m *mockIndexer) Search(ctx context.Context, index string, query string, limit int) ([]uint, error) {
	args := m.Called(index, query, limit)
	return args.Get(0).([]uint), args.Error(1)
}

type mockTagSynchronizer struct {
	mock.Mock
}

func (m *mockTagSynchronizer) Sync(ctx context.Context, blog *models.Blog, values []string) error {
	return m.Called(blog.ID, values).Error(0)
}

func TestCreateBlogSideEffects(t *testing.T) {
	ctx := context.Background()

	indexer := &mockIndexer{}
	tags := &mockTagSynchronizer{}
	f := newServiceFixture(t, WithSearchIndexer(indexer), WithTagSynchronizer(tags))

	var order []string
	indexer.On("Upsert", models.BlogSearchIndex, uint(1)).Return(nil).Run(func(mock.Arguments) {
		order = append(order, "index")
	}).Once()
	tags.On("Sync", uint(1), []string{"7", "news"}).Return(nil).Run(func(mock.Arguments) {
		order = append(order, "tags")
	}).Once()

	in := f.input("Hello", "hello")
	in.Published = true
	in.Tags = []string{"7", "news"}
	_, err := f.service.Create(ctx, in)
	require.NoError(t, err)

	indexer.AssertExpectations(t)
	tags.AssertExpectations(t)
	assert.Equal(t, []string{"index", "tags"}, order)
}

func TestRejectedCreateHasNoSideEffects(t *testing.T) {
	ctx := context.Background()

	indexer := &mockIndexer{}
	tags := &mockTagSynchronizer{}
	f := newServiceFixture(t, WithSearchIndexer(indexer), WithTagSynchronizer(tags))

	_, err := f.service.Create(ctx, BlogInput{Slug: "hello"})
	require.True(t, errs.IsValidation(err))

	indexer.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	tags.AssertNotCalled(t, "Sync", mock.Anything, mock.Anything)
}

func TestDestroyAlwaysRemovesFromIndex(t *testing.T) {
	ctx := context.Background()

	indexer := &mockIndexer{}
	f := newServiceFixture(t, WithSearchIndexer(indexer))
	indexer.On("Remove", models.BlogSearchIndex, uint(404)).Return(nil).Once()

	affected, err := f.service.Destroy(ctx, 404)
	require.NoError(t, err)
	assert.Zero(t, affected)
	indexer.AssertExpectations(t)
}
