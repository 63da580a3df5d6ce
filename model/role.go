package model

// Role is the set of capabilities attached to a profile. A user may hold
// both roles at once (a librarian who also borrows books).
type Role uint8

const (
	RoleLibrarian Role = 1 << iota
	RoleMember
)

func RoleFromFlags(librarian, member bool) Role {
	var r Role
	if librarian {
		r |= RoleLibrarian
	}
	if member {
		r |= RoleMember
	}
	return r
}

// Has reports whether every capability in c is present.
func (r Role) Has(c Role) bool { return r&c == c }

// Flags splits the set back into the two persisted boolean columns.
func (r Role) Flags() (librarian, member bool) {
	return r.Has(RoleLibrarian), r.Has(RoleMember)
}

func (r Role) Strings() []string {
	out := make([]string, 0, 2)
	if r.Has(RoleLibrarian) {
		out = append(out, "librarian")
	}
	if r.Has(RoleMember) {
		out = append(out, "member")
	}
	return out
}
