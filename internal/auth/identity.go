package auth

import (
	"context"
	"time"

	"github.com/Clark-Hu/movie-review/internal/domain"
)

// Identity is the verified caller behind a request.
type Identity struct {
	UserID    string
	Email     string
	Name      string
	Role      domain.Role
	ExpiresAt time.Time
}

// Authenticated reports whether the identity was resolved from a credential.
func (i Identity) Authenticated() bool {
	return i.UserID != ""
}

// IsAdmin reports whether the caller holds the admin role.
func (i Identity) IsAdmin() bool {
	return i.Authenticated() && i.Role == domain.RoleAdmin
}

// IsOwner reports whether the caller is the user identified by ownerID.
func (i Identity) IsOwner(ownerID string) bool {
	return i.Authenticated() && ownerID != "" && i.UserID == ownerID
}

// Operator is the identity used by local tooling acting with admin rights.
func Operator() Identity {
	return Identity{UserID: "moviectl", Name: "moviectl", Role: domain.RoleAdmin}
}

type identityKey struct{}

// WithIdentity stores id on ctx.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// FromContext returns the identity stored on ctx, if any.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
