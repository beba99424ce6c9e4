package auth

import "strings"

// Role is the closed capability set resolved once when a session is
// built. The free-text job title on a profile ("Conseiller",
// "Directrice", ...) is display data only; anything whose title reads
// "admin" gets the elevated role, everyone else is a member.
type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

// DeriveRole maps a profile's job title to the capability role. The
// comparison happens here and nowhere else; check sites compare the
// enum.
func DeriveRole(title string) Role {
	if strings.EqualFold(strings.TrimSpace(title), "admin") {
		return RoleAdmin
	}
	return RoleMember
}

// ParseRole validates a role string coming off the wire (token claims).
func ParseRole(raw string) (Role, bool) {
	switch Role(strings.TrimSpace(strings.ToLower(raw))) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleMember:
		return RoleMember, true
	default:
		return "", false
	}
}

// IsAdmin reports whether the role bypasses scope-based visibility.
func (r Role) IsAdmin() bool { return r == RoleAdmin }
