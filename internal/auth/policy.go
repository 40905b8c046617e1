package auth

import (
	"net/http"
	"strings"
)

// AccessRule grants a role to the requests it matches. Path is exact unless
// it ends with "/" (prefix). Suffix matches the path end. An empty Method
// matches any method.
type AccessRule struct {
	Path   string
	Suffix string
	Method string
	Role   Role
}

func (a AccessRule) matches(r *http.Request) bool {
	if a.Method != "" && a.Method != r.Method {
		return false
	}
	path := r.URL.Path
	if a.Suffix != "" && !strings.HasSuffix(path, a.Suffix) {
		return false
	}
	switch {
	case a.Path == "":
		return true
	case strings.HasSuffix(a.Path, "/"):
		return path == strings.TrimSuffix(a.Path, "/") || strings.HasPrefix(path, a.Path)
	default:
		return path == a.Path
	}
}

// ConsoleRules are evaluated in order before the read/write default.
// Local state (filters, selection, flags, sidebar) and chart derivation only
// need a viewer; destructive rule and schedule calls need an admin.
var ConsoleRules = []AccessRule{
	{Path: "/api/v1/charts/derive", Role: RoleViewer},
	{Path: "/api/v1/view-state/", Role: RoleViewer},
	{Suffix: "/flags/clear", Role: RoleViewer},
	{Suffix: "/filters", Role: RoleViewer},
	{Path: "/api/v1/rules/selected", Role: RoleViewer},
	{Path: "/api/v1/reports/scheduled/", Method: http.MethodDelete, Role: RoleAdmin},
	{Path: "/api/v1/rules/", Method: http.MethodDelete, Role: RoleAdmin},
}

// Policy determines the role a request needs.
type Policy struct {
	ExemptPaths    map[string]struct{}
	ExemptPrefixes []string
	Rules          []AccessRule
}

// NewDefaultPolicy builds the console policy with exemptions.
func NewDefaultPolicy(exemptPaths []string, exemptPrefixes []string) Policy {
	set := make(map[string]struct{}, len(exemptPaths))
	for _, path := range exemptPaths {
		set[path] = struct{}{}
	}
	return Policy{ExemptPaths: set, ExemptPrefixes: exemptPrefixes, Rules: ConsoleRules}
}

// IsExempt returns true when a request skips auth entirely.
func (p Policy) IsExempt(r *http.Request) bool {
	if r == nil {
		return true
	}
	if _, ok := p.ExemptPaths[r.URL.Path]; ok {
		return true
	}
	for _, prefix := range p.ExemptPrefixes {
		if strings.HasPrefix(r.URL.Path, prefix) {
			return true
		}
	}
	return false
}

// RequiredRole resolves the role for the request. Paths outside /api/ need none.
func (p Policy) RequiredRole(r *http.Request) (Role, bool) {
	if r == nil {
		return "", false
	}
	for _, rule := range p.Rules {
		if rule.matches(r) {
			return rule.Role, true
		}
	}
	if !strings.HasPrefix(r.URL.Path, "/api/") {
		return "", false
	}
	switch r.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return RoleViewer, true
	default:
		return RoleOperator, true
	}
}
