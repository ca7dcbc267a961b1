package database

import (
	"context"
	"testing"

	"github.com/rpupo63/blog-admin-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplaceBlogTags(t *testing.T) {
	ctx := context.Background()
	d := newTestDatabase(t)
	country := seedCountry(t, d, "Japan")
	blog := seedBlog(t, d, models.Blog{Title: "Ramen", Slug: "ramen", CountryID: country.ID})

	tags, err := d.TagRepo().ReplaceBlogTags(ctx, blog, nil, []string{"food", "travel", "food"})
	require.NoError(t, err)
	require.Len(t, tags, 2)

	food := tags[0]
	loaded, err := d.BlogRepo().FindByID(ctx, blog.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"food", "travel"}, loaded.TagNames())

	// existing ids plus a new name, unknown ids are ignored
	_, err = d.TagRepo().ReplaceBlogTags(ctx, blog, []uint{food.ID, 4242}, []string{"noodles"})
	require.NoError(t, err)
	loaded, err = d.BlogRepo().FindByID(ctx, blog.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"food", "noodles"}, loaded.TagNames())

	_, err = d.TagRepo().ReplaceBlogTags(ctx, blog, nil, nil)
	require.NoError(t, err)
	loaded, err = d.BlogRepo().FindByID(ctx, blog.ID)
	require.NoError(t, err)
	assert.Empty(t, loaded.Tags)

	all, err := d.TagRepo().FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestSearchDocumentRepo(t *testing.T) {
	ctx := context.Background()
	d := newTestDatabase(t)
	repo := d.SearchDocumentRepo()

	require.NoError(t, repo.Upsert(ctx, &models.SearchDocument{IndexName: "blogs", DocumentID: 1, Document: []byte(`{"title":"Hello"}`), Body: "hello"}))
	require.NoError(t, repo.Upsert(ctx, &models.SearchDocument{IndexName: "blogs", DocumentID: 1, Document: []byte(`{"title":"Bye"}`), Body: "bye"}))
	require.NoError(t, repo.Upsert(ctx, &models.SearchDocument{IndexName: "pages", DocumentID: 1, Document: []byte(`{}`), Body: "bye"}))

	doc, err := repo.Find(ctx, "blogs", 1)
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"Bye"}`, string(doc.Document))

	ids, err := repo.MatchIDs(ctx, "blogs", LikePattern("BY"), 10)
	require.NoError(t, err)
	assert.Equal(t, []uint{1}, ids)

	ids, err = repo.MatchIDs(ctx, "blogs", LikePattern("hello"), 10)
	require.NoError(t, err)
	assert.Empty(t, ids)

	require.NoError(t, repo.Delete(ctx, "blogs", 1))
	require.NoError(t, repo.Delete(ctx, "blogs", 1))
	_, err = repo.Find(ctx, "blogs", 1)
	assert.Error(t, err)
}
