package authz

import (
	"context"
	"testing"
	"time"

	"github.com/rpupo63/blog-admin-backend/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrincipalAllows(t *testing.T) {
	tests := []struct {
		name        string
		permissions []string
		action      Action
		want        bool
	}{
		{"exact", []string{"blogs.edit"}, BlogsEdit, true},
		{"other action", []string{"blogs.edit"}, BlogsDestroy, false},
		{"group wildcard", []string{"blogs.*"}, BlogsDestroy, true},
		{"other group wildcard", []string{"pages.*"}, BlogsIndex, false},
		{"superuser", []string{"*"}, BlogsCreate, true},
		{"none", nil, BlogsIndex, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Principal{Subject: "admin", Permissions: tt.permissions}
			assert.Equal(t, tt.want, p.Allows(tt.action))
		})
	}
}

func TestPrincipalPolicy(t *testing.T) {
	var policy PrincipalPolicy

	assert.False(t, policy.Can(context.Background(), BlogsIndex))

	ctx := WithPrincipal(context.Background(), Principal{Permissions: []string{"blogs.index"}})
	assert.True(t, policy.Can(ctx, BlogsIndex))
	assert.False(t, policy.Can(ctx, BlogsCreate))
}

func TestTokenVerifier(t *testing.T) {
	verifier, err := NewTokenVerifier("test-secret", "blog-admin")
	require.NoError(t, err)

	token, err := verifier.Issue(Principal{Subject: "42", Permissions: []string{"blogs.index"}}, time.Hour)
	require.NoError(t, err)

	p, err := verifier.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "42", p.Subject)
	assert.Equal(t, []string{"blogs.index"}, p.Permissions)

	t.Run("expired", func(t *testing.T) {
		expired, err := verifier.Issue(Principal{Subject: "42"}, -time.Minute)
		require.NoError(t, err)
		_, err = verifier.Verify(expired)
		assert.True(t, errs.IsExpiredTokenError(err))
	})

	t.Run("wrong secret", func(t *testing.T) {
		other, err := NewTokenVerifier("other-secret", "blog-admin")
		require.NoError(t, err)
		_, err = other.Verify(token)
		assert.True(t, errs.IsInvalidTokenError(err))
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other, err := NewTokenVerifier("test-secret", "someone-else")
		require.NoError(t, err)
		_, err = other.Verify(token)
		assert.True(t, errs.IsInvalidTokenError(err))
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := verifier.Verify("not.a.token")
		assert.True(t, errs.IsInvalidTokenError(err))
	})

	_, err = NewTokenVerifier("", "")
	assert.Error(t, err)
}
