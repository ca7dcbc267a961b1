package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Side effects that run after the blog row is committed
var (
	ErrSideEffect    = errors.New("dependent side effect failed")
	ErrStorageWrite  = errors.New("cover storage write failed")
	ErrSearchIndex   = errors.New("search index write failed")
	ErrTagSync       = errors.New("tag synchronization failed")
	ErrConfiguration = errors.New("configuration error")
)

// NewSideEffectError wraps a failure of a step that runs around the primary write.
// These are never compensated, so the caller sees a plain 500.
func NewSideEffectError(step error, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        fmt.Errorf("%w: %w", ErrSideEffect, step),
		Cause:      cause,
	}
}

func NewStorageError(path string, cause error) *ApiErr {
	apiErr := NewSideEffectError(ErrStorageWrite, cause)
	apiErr.Details = fmt.Sprintf("Could not store %s", path)
	return apiErr
}

func NewSearchIndexError(index string, id uint, cause error) *ApiErr {
	apiErr := NewSideEffectError(ErrSearchIndex, cause)
	apiErr.Details = fmt.Sprintf("Could not sync %s/%d", index, id)
	return apiErr
}

func NewTagSyncError(taggableType string, id uint, cause error) *ApiErr {
	apiErr := NewSideEffectError(ErrTagSync, cause)
	apiErr.Details = fmt.Sprintf("Could not sync tags of %s/%d", taggableType, id)
	return apiErr
}

func NewConfigError(configName string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrConfiguration,
		Details:    fmt.Sprintf("Invalid configuration for %s", configName),
		Cause:      cause,
		Field:      configName,
	}
}

func IsSideEffectError(err error) bool {
	return errors.Is(err, ErrSideEffect)
}
