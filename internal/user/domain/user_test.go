package domain

import "testing"

func TestCanManageWorkers(t *testing.T) {
	cases := []struct {
		role string
		want bool
	}{
		{RolePickerPacker, false},
		{RoleASM, true},
		{RoleStoreManager, true},
		{RoleOpsAdmin, true},
		{"", false},
	}
	for _, c := range cases {
		u := &User{Role: c.role}
		if got := u.CanManageWorkers(); got != c.want {
			t.Errorf("CanManageWorkers() with role %q = %v, want %v", c.role, got, c.want)
		}
	}
}
