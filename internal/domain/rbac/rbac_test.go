package rbac

import "testing"

// TestIsValidRole — допустимые и недопустимые роли.
func TestIsValidRole(t *testing.T) {
	for _, role := range []string{RoleViewer, RoleEditor, RoleAdmin} {
		if !IsValidRole(role) {
			t.Errorf("IsValidRole(%q) = false, ожидалось true", role)
		}
	}
	for _, role := range []string{"", "viewer", "ROOT", "admin"} {
		if IsValidRole(role) {
			t.Errorf("IsValidRole(%q) = true, ожидалось false", role)
		}
	}
}

// TestCanMutateFiles — мутации разрешены с EDITOR.
func TestCanMutateFiles(t *testing.T) {
	tests := []struct {
		role string
		want bool
	}{
		{RoleAdmin, true},
		{RoleEditor, true},
		{RoleViewer, false},
		{"", false},
		{"unknown", false},
	}

	for _, tt := range tests {
		if got := CanMutateFiles(tt.role); got != tt.want {
			t.Errorf("CanMutateFiles(%q) = %v, ожидалось %v", tt.role, got, tt.want)
		}
	}
}

// TestCanRead — чтение доступно любой валидной роли.
func TestCanRead(t *testing.T) {
	for _, role := range []string{RoleViewer, RoleEditor, RoleAdmin} {
		if !CanRead(role) {
			t.Errorf("CanRead(%q) = false", role)
		}
	}
	if CanRead("guest") {
		t.Error("CanRead(\"guest\") = true, ожидалось false")
	}
}

// TestIsAdmin — только ADMIN.
func TestIsAdmin(t *testing.T) {
	if !IsAdmin(RoleAdmin) {
		t.Error("IsAdmin(ADMIN) = false")
	}
	if IsAdmin(RoleEditor) || IsAdmin(RoleViewer) || IsAdmin("") {
		t.Error("IsAdmin должен быть true только для ADMIN")
	}
}
