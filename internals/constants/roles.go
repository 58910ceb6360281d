package constants

import "fmt"

const (
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
	RoleStaff   = "staff"
	RoleParent  = "parent"
)

// Template pesan error role
const (
	ErrOnlyAdminsCanAccess = "Only admins can access %s."
	ErrOnlyStaffCanAccess  = "Only admin or staff can access %s."
	ErrOnlyTeamCanAccess   = "Only admin, staff or teachers can access %s."
)

func RoleErrorAdmin(feature string) string {
	return fmt.Sprintf(ErrOnlyAdminsCanAccess, feature)
}

func RoleErrorStaff(feature string) string {
	return fmt.Sprintf(ErrOnlyStaffCanAccess, feature)
}

func RoleErrorTeam(feature string) string {
	return fmt.Sprintf(ErrOnlyTeamCanAccess, feature)
}

// ==========================
// Grouped Role Slices
// ==========================
var (
	AllRoles = []string{
		RoleAdmin,
		RoleTeacher,
		RoleStaff,
		RoleParent,
	}

	// StaffAndAbove manage school data (children, classes, bills).
	StaffAndAbove = []string{
		RoleAdmin,
		RoleStaff,
	}

	// TeamRoles are every non-parent role.
	TeamRoles = []string{
		RoleAdmin,
		RoleStaff,
		RoleTeacher,
	}

	AdminOnly = []string{
		RoleAdmin,
	}
)

func IsValidRole(role string) bool {
	for _, r := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

// IsManager reports whether role sees every record without per-parent scoping.
func IsManager(role string) bool {
	return role == RoleAdmin || role == RoleStaff
}
