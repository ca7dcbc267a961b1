package authz

import (
	"context"
	"strings"
)

// Action is a permission name checked before an admin blog operation runs.
type Action string

const (
	BlogsIndex   Action = "blogs.index"
	BlogsShow    Action = "blogs.show"
	BlogsCreate  Action = "blogs.create"
	BlogsEdit    Action = "blogs.edit"
	BlogsDestroy Action = "blogs.destroy"
)

// BlogActions lists every blog permission.
var BlogActions = []Action{BlogsIndex, BlogsShow, BlogsCreate, BlogsEdit, BlogsDestroy}

// Principal is the authenticated caller.
type Principal struct {
	Subject     string
	Permissions []string
}

// Allows reports whether the principal holds action, directly or through
// the "*" or "<group>.*" wildcards.
func (p Principal) Allows(action Action) bool {
	group, _, _ := strings.Cut(string(action), ".")
	for _, permission := range p.Permissions {
		switch permission {
		case string(action), "*", group + ".*":
			return true
		}
	}
	return false
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// Policy decides whether the caller in ctx may perform action.
type Policy interface {
	Can(ctx context.Context, action Action) bool
}

// PrincipalPolicy grants what the principal's permissions allow. Without a principal
// nothing is granted.
type PrincipalPolicy struct{}

func (PrincipalPolicy) Can(ctx context.Context, action Action) bool {
	p, ok := PrincipalFrom(ctx)
	return ok && p.Allows(action)
}
