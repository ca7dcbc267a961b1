package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApiErrCheckers(t *testing.T) {
	assert.True(t, IsNotFound(NewNotFound("blog")))
	assert.True(t, IsNotFound(NewNotFoundError("blog missing")))
	assert.True(t, IsForbidden(NewPermissionDeniedError("blogs.edit")))
	assert.True(t, IsForbidden(NewForbiddenError("nope")))
	assert.True(t, IsUnauthorized(NewUnauthorizedError("who are you")))
	assert.True(t, IsBadRequest(NewBadRequestError("bad")))
	assert.False(t, IsNotFound(NewBadRequestError("bad")))
	assert.True(t, IsInternal(NewInternalError("boom")))
	assert.True(t, IsMissingTokenError(NewMissingTokenError()))
	assert.True(t, IsForbidden(NewPermissionDeniedError("blogs.edit")))
	assert.True(t, IsCSRFError(NewCSRFError(errors.New("no token"))))
	assert.Equal(t, http.StatusForbidden, NewCSRFError(nil).StatusCode)
	assert.True(t, IsMalformedPayloadError(NewMalformedPayloadError("form", errors.New("eof"))))
	assert.True(t, IsMaxBodySizeExceededError(NewMaxBodySizeExceededError(1024)))
	assert.True(t, IsTransactionFailedError(NewTransactionFailedError("replace blog tags", errors.New("locked"))))
	assert.True(t, IsForeignKeyConstraintError(NewDatabaseError("save", "blog", errors.New("FOREIGN KEY constraint failed"))))
	assert.True(t, IsUniqueConstraintViolationError(NewDatabaseError("save", "blog", errors.New("UNIQUE constraint failed: blogs.slug"))))
}

func TestValidationError(t *testing.T) {
	fields := map[string][]string{"slug": {"The slug has already been taken."}}
	err := fmt.Errorf("create blog: %w", NewValidationError(fields))

	assert.True(t, IsValidation(err))
	assert.Equal(t, fields, ValidationFields(err))
	assert.Nil(t, ValidationFields(NewNotFound("blog")))

	var apiErr *ApiErr
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
}

func TestNewDatabaseError(t *testing.T) {
	tests := []struct {
		name   string
		cause  error
		status int
	}{
		{"postgres duplicate", errors.New(`ERROR: duplicate key value violates unique constraint "idx_blogs_live_slug"`), http.StatusConflict},
		{"sqlite unique", errors.New("UNIQUE constraint failed: blogs.slug"), http.StatusConflict},
		{"foreign key", errors.New("violates foreign key constraint fk_blogs_country"), http.StatusBadRequest},
		{"gorm not found", errors.New("record not found"), http.StatusNotFound},
		{"connection", errors.New("dial tcp: connection refused"), http.StatusServiceUnavailable},
		{"generic", errors.New("syntax error"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := NewDatabaseError("save", "blog", tt.cause)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Contains(t, apiErr.GetFullError(), tt.cause.Error())
		})
	}
}

func TestNewDatabaseErrorKeepsApiErr(t *testing.T) {
	notFound := NewNotFound("blog")
	assert.Same(t, notFound, NewDatabaseError("find", "blog", notFound))
}

func TestSideEffectErrors(t *testing.T) {
	cause := errors.New("bucket gone")
	err := NewStorageError("blog/images/20240102/1.png", cause)

	assert.True(t, IsSideEffectError(err))
	assert.True(t, errors.Is(err, ErrStorageWrite))
	assert.Equal(t, http.StatusInternalServerError, err.StatusCode)
	assert.Contains(t, err.GetFullError(), "bucket gone")
}
