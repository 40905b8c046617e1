package auth

import "strings"

// Role is a console user role. Viewers read, operators acknowledge alarms and
// edit rules, layouts and reports, admins delete rules and schedules.
type Role string

const (
	RoleViewer   Role = "viewer"
	RoleOperator Role = "operator"
	RoleAdmin    Role = "admin"
)

var roleRanks = map[Role]int{
	RoleViewer:   1,
	RoleOperator: 2,
	RoleAdmin:    3,
}

// ParseRole normalizes a role claim. Matching ignores case and surrounding space.
func ParseRole(value string) (Role, bool) {
	role := Role(strings.ToLower(strings.TrimSpace(value)))
	if _, ok := roleRanks[role]; !ok {
		return "", false
	}
	return role, true
}

// Allows reports whether r satisfies required. Unknown roles allow nothing.
func (r Role) Allows(required Role) bool {
	rank, ok := roleRanks[r]
	return ok && rank >= roleRanks[required]
}
