// Package policy is the single declarative table mapping permission codes to
// the role names implicitly granted them. Both guard variants consult it, so
// page-level role overrides live in one place.
package policy

import "strings"

var rolesByPermission = map[string][]string{
	"EMP_VIEW":       {"Admin"},
	"EMP_EDIT":       {"Admin"},
	"USER_CREATE":    {"Admin"},
	"LEAVE_APPROVE":  {"Admin", "HR"},
	"LEAVE_REQUEST":  {"Admin", "HR", "Karyawan"},
	"ATTENDANCE_LOG": {"Admin", "HR", "Karyawan"},
	"ANN_MANAGE":     {"Admin", "HR"},
}

// RolesFor returns the union of role names implicitly granted any of the
// given permission codes.
func RolesFor(codes ...string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, code := range codes {
		for _, role := range rolesByPermission[code] {
			if _, dup := seen[role]; dup {
				continue
			}
			seen[role] = struct{}{}
			out = append(out, role)
		}
	}
	return out
}

// Allows reports whether role is implicitly granted every one of the required
// permission codes. Role comparison is case-insensitive. A code missing from
// the table is granted to no role.
func Allows(role string, required []string) bool {
	if role == "" || len(required) == 0 {
		return false
	}
	for _, code := range required {
		if !roleListed(role, rolesByPermission[code]) {
			return false
		}
	}
	return true
}

func roleListed(role string, roles []string) bool {
	for _, candidate := range roles {
		if strings.EqualFold(candidate, role) {
			return true
		}
	}
	return false
}
