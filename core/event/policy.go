package event

import "github.com/trezcool/agenda/core/user"

// CanEdit reports whether the principal may edit ev.
// Authors and admins may edit anything; teachers may also edit other people's public events.
func CanEdit(ev Event, principalID, role string) bool {
	switch {
	case principalID != "" && ev.CreatedBy == principalID:
		return true
	case role == user.RoleAdmin:
		return true
	case role == user.RoleTeacher && ev.IsPublic:
		return true
	}
	return false
}

// CanDelete reports whether the principal may delete ev. It is strictly narrower than CanEdit.
func CanDelete(ev Event, principalID, role string) bool {
	return (principalID != "" && ev.CreatedBy == principalID) || role == user.RoleAdmin
}
