package auth

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"
)

// Middleware validates console JWTs and enforces the role policy.
type Middleware struct {
	Secret []byte
	Policy Policy
	Logger zerolog.Logger

	// queryTokenPaths may carry the token in ?access_token= because
	// EventSource clients cannot set headers.
	queryTokenPaths map[string]struct{}
}

// NewMiddleware constructs an auth middleware. An empty secret disables it.
func NewMiddleware(secret []byte, policy Policy, logger zerolog.Logger) *Middleware {
	if len(secret) == 0 {
		return nil
	}
	return &Middleware{Secret: secret, Policy: policy, Logger: logger, queryTokenPaths: map[string]struct{}{}}
}

// AllowQueryToken accepts ?access_token= on GET requests to paths.
func (m *Middleware) AllowQueryToken(paths ...string) *Middleware {
	if m == nil {
		return nil
	}
	for _, p := range paths {
		m.queryTokenPaths[p] = struct{}{}
	}
	return m
}

// Wrap applies auth and RBAC to the handler.
func (m *Middleware) Wrap(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.Policy.IsExempt(r) {
			next.ServeHTTP(w, r)
			return
		}
		required, ok := m.Policy.RequiredRole(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		id, err := ParseToken(m.token(r), m.Secret)
		if err != nil {
			m.Logger.Debug().Err(err).Str("path", r.URL.Path).Msg("auth rejected")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if !id.Role.Allows(required) {
			m.Logger.Info().Str("subject", id.Subject).Str("role", string(id.Role)).Str("required", string(required)).
				Str("method", r.Method).Str("path", r.URL.Path).Msg("forbidden")
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

func (m *Middleware) token(r *http.Request) string {
	if token := bearer(r.Header.Get("Authorization")); token != "" {
		return token
	}
	if r.Method != http.MethodGet {
		return ""
	}
	if _, ok := m.queryTokenPaths[r.URL.Path]; ok {
		return strings.TrimSpace(r.URL.Query().Get("access_token"))
	}
	return ""
}

func bearer(header string) string {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
