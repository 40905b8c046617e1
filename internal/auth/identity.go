package auth

import "context"

// Identity is the console user behind a request.
type Identity struct {
	Subject string `json:"subject"`
	Name    string `json:"name,omitempty"`
	Role    Role   `json:"role"`
	Site    string `json:"site,omitempty"`
}

type identityKey struct{}

// WithIdentity stores id in ctx.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the identity stored by the middleware.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

// SubjectFromContext returns the token subject, or "" for anonymous requests.
func SubjectFromContext(ctx context.Context) string {
	id, _ := IdentityFromContext(ctx)
	return id.Subject
}
