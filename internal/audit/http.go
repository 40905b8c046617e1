package audit

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"monitoring-console/internal/auth"
)

// ClientIP extracts client ip from common headers or RemoteAddr.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return strings.TrimSpace(realIP)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}
	return r.RemoteAddr
}

// Record writes an entry for the request identity. A nil logger or an
// anonymous request is skipped; write failures are only logged.
func Record(r *http.Request, logger Logger, log zerolog.Logger, action Action, resourceID string, meta map[string]any) {
	if logger == nil || r == nil {
		return
	}
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok || id.Subject == "" {
		return
	}
	var payload json.RawMessage
	if len(meta) > 0 {
		payload, _ = json.Marshal(meta)
	}
	err := logger.Log(r.Context(), Entry{
		RequestID:  r.Header.Get("X-Request-ID"),
		Site:       id.Site,
		Actor:      id.Subject,
		ActorName:  id.Name,
		Role:       string(id.Role),
		Action:     action,
		ResourceID: resourceID,
		Metadata:   payload,
		IP:         ClientIP(r),
		UserAgent:  r.UserAgent(),
	})
	if err != nil {
		log.Warn().Err(err).Str("action", string(action)).Str("resource_id", resourceID).Msg("audit write failed")
	}
}
