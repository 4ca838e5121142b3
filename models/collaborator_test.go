package models

import "testing"

func TestPermissionsForRoleAreAdditive(t *testing.T) {
	order := []CollaboratorRole{RoleViewer, RoleContributor, RoleEditor, RoleAdmin}

	for i := 1; i < len(order); i++ {
		lower := PermissionsForRole(order[i-1])
		higher := PermissionsForRole(order[i])
		if len(higher) <= len(lower) {
			t.Errorf("%s should carry more permissions than %s", order[i], order[i-1])
		}
		for _, perm := range lower {
			if !higher.Contains(perm) {
				t.Errorf("%s is missing %q held by %s", order[i], perm, order[i-1])
			}
		}
	}
}

func TestPermissionsForRoleFixedSets(t *testing.T) {
	tests := []struct {
		role CollaboratorRole
		want []string
	}{
		{RoleViewer, []string{PermissionView}},
		{RoleContributor, []string{PermissionView, PermissionComment, PermissionUpload}},
		{RoleEditor, []string{PermissionView, PermissionComment, PermissionUpload, PermissionEdit}},
		{RoleAdmin, []string{PermissionView, PermissionComment, PermissionUpload, PermissionEdit, PermissionManage}},
	}

	for _, tt := range tests {
		got := PermissionsForRole(tt.role)
		if len(got) != len(tt.want) {
			t.Errorf("%s: got %v, want %v", tt.role, got, tt.want)
			continue
		}
		for i := range tt.want {
			if got[i] != tt.want[i] {
				t.Errorf("%s: permission %d is %q, want %q", tt.role, i, got[i], tt.want[i])
			}
		}
	}

	if got := PermissionsForRole(CollaboratorRole("bogus")); got != nil {
		t.Errorf("unknown role should map to nil, got %v", got)
	}
}

func TestCollaboratorRoleValid(t *testing.T) {
	for _, role := range []CollaboratorRole{RoleViewer, RoleContributor, RoleEditor, RoleAdmin} {
		if !role.Valid() {
			t.Errorf("%s should be valid", role)
		}
	}
	if CollaboratorRole("owner").Valid() {
		t.Error("unknown role should be invalid")
	}
}
