package event

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/agenda/core/user"
)

func TestCanEditCanDelete(t *testing.T) {
	public := Event{ID: "e1", Draft: Draft{IsPublic: true}, CreatedBy: "u1"}
	private := Event{ID: "e2", Draft: Draft{IsPublic: false}, CreatedBy: "u1"}

	tests := []struct {
		name        string
		ev          Event
		principalID string
		role        string
		wantEdit    bool
		wantDelete  bool
	}{
		{name: "author student", ev: private, principalID: "u1", role: user.RoleStudent, wantEdit: true, wantDelete: true},
		{name: "other student public", ev: public, principalID: "u2", role: user.RoleStudent},
		{name: "other student private", ev: private, principalID: "u2", role: user.RoleStudent},
		{name: "other teacher public", ev: public, principalID: "u2", role: user.RoleTeacher, wantEdit: true},
		{name: "other teacher private", ev: private, principalID: "u2", role: user.RoleTeacher},
		{name: "admin public", ev: public, principalID: "u3", role: user.RoleAdmin, wantEdit: true, wantDelete: true},
		{name: "admin private", ev: private, principalID: "u3", role: user.RoleAdmin, wantEdit: true, wantDelete: true},
		{name: "anonymous on authorless event", ev: Event{}, principalID: "", role: user.RoleStudent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantEdit, CanEdit(tt.ev, tt.principalID, tt.role))
			assert.Equal(t, tt.wantDelete, CanDelete(tt.ev, tt.principalID, tt.role))
		})
	}
}

func TestCanDelete_NarrowerThanEdit(t *testing.T) {
	for _, role := range user.AllRoles {
		for _, isPublic := range []bool{true, false} {
			for _, principalID := range []string{"u1", "u2"} {
				ev := Event{Draft: Draft{IsPublic: isPublic}, CreatedBy: "u1"}
				if CanDelete(ev, principalID, role) {
					assert.True(t, CanEdit(ev, principalID, role), "%s/%v/%s", role, isPublic, principalID)
				}
				if role == user.RoleTeacher && principalID != "u1" {
					assert.False(t, CanDelete(ev, principalID, role))
				}
			}
		}
	}
}
