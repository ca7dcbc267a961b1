package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rpupo63/blog-admin-backend/config"
	"github.com/rpupo63/blog-admin-backend/errs"
)

// DefaultCoverMaxKB is the largest accepted cover upload.
const DefaultCoverMaxKB = 1000

// CoverStorage stores uploaded cover images and resolves their public URL.
type CoverStorage interface {
	StoreAs(ctx context.Context, prefix, filename string, body io.Reader, contentType string) (string, error)
	URL(path string) string
}

// CoverUpload is an inspected cover file ready to be stored.
type CoverUpload struct {
	Data        []byte
	ContentType string
	Extension   string // with leading dot, guessed from the content
}

// CoverPath returns the date bucket and file name an upload received at t is stored under.
func CoverPath(t time.Time, extension string) (prefix, filename string) {
	return "blog/images/" + t.Format("20060102"), fmt.Sprintf("%d%s", t.Unix(), extension)
}

// InspectCover reads an uploaded file and checks it is an image no larger than maxKB.
// The returned messages are validation messages for the cover field.
func InspectCover(header *multipart.FileHeader, maxKB int) (*CoverUpload, []string, error) {
	if maxKB <= 0 {
		maxKB = DefaultCoverMaxKB
	}
	maxBytes := int64(maxKB) * 1024

	file, err := header.Open()
	if err != nil {
		return nil, nil, errs.NewMalformedPayloadError("cover", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		return nil, nil, errs.NewMalformedPayloadError("cover", err)
	}

	var messages []string

	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		messages = append(messages, "The cover must be an image.")
	}
	if header.Size > maxBytes || int64(len(data)) > maxBytes {
		messages = append(messages, fmt.Sprintf("The cover must not be greater than %d kilobytes.", maxKB))
	}
	if len(messages) > 0 {
		return nil, messages, nil
	}

	return &CoverUpload{
		Data:        data,
		ContentType: mtype.String(),
		Extension:   mtype.Extension(),
	}, nil, nil
}

// StoreCover writes the upload under its date bucket and returns the stored path.
func StoreCover(ctx context.Context, storage CoverStorage, upload *CoverUpload, now time.Time) (string, error) {
	if storage == nil {
		return "", errs.NewConfigError("STORAGE_DRIVER", fmt.Errorf("no cover storage configured"))
	}

	prefix, filename := CoverPath(now, upload.Extension)
	path, err := storage.StoreAs(ctx, prefix, filename, bytes.NewReader(upload.Data), upload.ContentType)
	if err != nil {
		return "", errs.NewStorageError(prefix+"/"+filename, err)
	}
	return path, nil
}

// NewCoverStorage builds the storage driver named by STORAGE_DRIVER.
func NewCoverStorage(ctx context.Context, c map[string]string) (CoverStorage, error) {
	appURL := strings.TrimRight(config.GetString(c, "APP_URL", ""), "/")

	switch driver := config.GetString(c, "STORAGE_DRIVER", "local"); driver {
	case "local":
		return NewLocalCoverStorage(
			config.GetString(c, "STORAGE_LOCAL_ROOT", "./storage/app/public"),
			config.GetString(c, "STORAGE_PUBLIC_URL", appURL+LocalStorageRoute),
		)
	case "s3":
		return NewS3CoverStorage(ctx, S3Options{
			Region:    config.GetString(c, "S3_REGION", "us-east-1"),
			Bucket:    config.GetString(c, "S3_BUCKET", ""),
			Endpoint:  config.GetString(c, "S3_ENDPOINT", ""),
			PublicURL: config.GetString(c, "S3_PUBLIC_URL", ""),
		})
	default:
		return nil, errs.NewConfigError("STORAGE_DRIVER", fmt.Errorf("unknown driver %q", driver))
	}
}
