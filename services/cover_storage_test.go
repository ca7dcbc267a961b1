package services

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rpupo63/blog-admin-backend/database"
	"github.com/rpupo63/blog-admin-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoverPath(t *testing.T) {
	at := time.Date(2023, 12, 31, 23, 59, 59, 0, time.UTC)
	prefix, filename := CoverPath(at, ".jpg")
	assert.Equal(t, "blog/images/20231231", prefix)
	assert.Equal(t, "1704067199.jpg", filename)
}

func TestLocalCoverStorage(t *testing.T) {
	ctx := context.Background()
	storage, err := NewLocalCoverStorage(t.TempDir(), "http://example.test/storage/")
	require.NoError(t, err)

	key, err := storage.StoreAs(ctx, "blog/images/20240101", "1.png", strings.NewReader("png"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "blog/images/20240101/1.png", key)
	assert.Equal(t, "http://example.test/storage/blog/images/20240101/1.png", storage.URL(key))

	_, err = storage.StoreAs(ctx, "../outside", "x.png", strings.NewReader("png"), "image/png")
	assert.Error(t, err)

	rec := httptest.NewRecorder()
	storage.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, LocalStorageRoute+"/"+key, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.Equal(t, "png", string(body))
}

func TestNewCoverStorage(t *testing.T) {
	ctx := context.Background()

	storage, err := NewCoverStorage(ctx, map[string]string{
		"APP_URL":            "http://localhost:8080/",
		"STORAGE_LOCAL_ROOT": t.TempDir(),
	})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/storage/a.png", storage.URL("a.png"))

	_, err = NewCoverStorage(ctx, map[string]string{"STORAGE_DRIVER": "ftp"})
	assert.Error(t, err)

	_, err = NewCoverStorage(ctx, map[string]string{"STORAGE_DRIVER": "s3"})
	assert.Error(t, err)
}

func TestCachedCountryDirectoryFallsThrough(t *testing.T) {
	ctx := context.Background()

	gormDB, err := database.OpenSQLite(":memory:", nil)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(gormDB))
	db := database.New(gormDB)

	for _, name := range []string{"Spain", "Austria"} {
		require.NoError(t, db.CountryRepo().Add(ctx, &models.Country{Name: name}))
	}

	// nothing listens on port 1, every cache call fails fast
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 100 * time.Millisecond})
	defer client.Close()

	directory := NewCachedCountryDirectory(NewCountryDirectory(db.CountryRepo()), client, time.Minute)
	countries, err := directory.ListCountries(ctx)
	require.NoError(t, err)
	require.Len(t, countries, 2)
	assert.Equal(t, "Austria", countries[0].Name)
	assert.Equal(t, "Spain", countries[1].Name)

	plain := NewCachedCountryDirectory(NewCountryDirectory(db.CountryRepo()), nil, time.Minute)
	_, isCached := plain.(cachedCountryDirectory)
	assert.False(t, isCached)
}
