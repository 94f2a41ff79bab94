package models

import "context"

// User type constants
const (
	UserTypeSystemManager = "System Manager"
	UserTypeWebsite       = "Website User"
)

// Principal is the authenticated caller of a single request.
type Principal struct {
	UserID    string `json:"userId"`
	SessionID string `json:"sessionId"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}

// IsSystemManager reports whether the principal bypasses ownership checks.
func (p *Principal) IsSystemManager() bool {
	return p != nil && p.Role == UserTypeSystemManager
}

// UserAccess is the part of a user record re-checked on every authenticated request.
type UserAccess struct {
	UserType string
	Enabled  bool
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the principal stored by the auth middleware, if any.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok && p != nil
}
