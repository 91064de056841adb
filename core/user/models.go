package user

import (
	"github.com/pkg/errors"

	"github.com/trezcool/agenda/core"
)

// Roles
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

var (
	AllRoles = []string{RoleStudent, RoleTeacher, RoleAdmin}

	ErrUnknownRole = errors.New("unknown role")

	Roles = []Role{
		{Name: "Student", Value: RoleStudent},
		{Name: "Teacher", Value: RoleTeacher},
		{Name: "Admin", Value: RoleAdmin},
	}
)

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func IsRole(role string) bool {
	for _, r := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

// Principal is the authenticated user as exposed by the identity service.
type Principal struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// NewPrincipal cleans and checks its input.
func NewPrincipal(id, email, role string) (Principal, error) {
	p := Principal{
		ID:    core.CleanString(id),
		Email: core.CleanString(email, true /* lower */),
		Role:  core.CleanString(role, true /* lower */),
	}
	if p.ID == "" {
		return Principal{}, core.NewValidationError(nil, core.FieldError{Field: "id", Error: "this field is required"})
	}
	if !IsRole(p.Role) {
		return Principal{}, core.NewValidationError(ErrUnknownRole, core.FieldError{Field: "role", Error: ErrUnknownRole.Error()})
	}
	return p, nil
}

func (p Principal) IsZero() bool { return p.ID == "" }

func (p Principal) IsAdmin() bool   { return p.Role == RoleAdmin }
func (p Principal) IsTeacher() bool { return p.Role == RoleTeacher }
func (p Principal) IsStudent() bool { return p.Role == RoleStudent }
