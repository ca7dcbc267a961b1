package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalStorageRoute is where the API serves files of the local driver.
const LocalStorageRoute = "/storage"

// LocalCoverStorage writes covers below a directory on disk.
type LocalCoverStorage struct {
	root      string
	publicURL string
}

func NewLocalCoverStorage(root, publicURL string) (*LocalCoverStorage, error) {
	if root == "" {
		return nil, fmt.Errorf("local storage root is empty")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &LocalCoverStorage{root: root, publicURL: strings.TrimRight(publicURL, "/")}, nil
}

func (s *LocalCoverStorage) StoreAs(ctx context.Context, prefix, filename string, body io.Reader, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	key := path.Join(prefix, filename)
	if strings.HasPrefix(key, "../") || path.IsAbs(key) {
		return "", fmt.Errorf("invalid storage path %q", key)
	}

	target := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", err
	}

	file, err := os.Create(target)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(file, body); err != nil {
		file.Close()
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", err
	}

	return key, nil
}

func (s *LocalCoverStorage) URL(p string) string {
	return s.publicURL + "/" + strings.TrimLeft(p, "/")
}

// Handler serves stored files, mounted at LocalStorageRoute.
func (s *LocalCoverStorage) Handler() http.Handler {
	return http.StripPrefix(LocalStorageRoute+"/", http.FileServer(http.Dir(s.root)))
}
