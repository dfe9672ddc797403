package model

// Role is the capability granted to an authenticated principal. Only RoleAdmin
// exists today; call sites compare against the constant so new roles can be
// added without touching them.
type Role string

const (
	RoleAdmin Role = "admin"
)

var knownRoles = map[Role]struct{}{
	RoleAdmin: {},
}

// ParseRole converts a stored string into a Role, reporting whether it is a
// recognised value.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	_, ok := knownRoles[r]
	return r, ok
}

// IsAdmin reports whether r grants administrative access.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

func (r Role) String() string {
	return string(r)
}
