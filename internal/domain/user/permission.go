package user

type Permission string

const (
	// Attendance
	PermissionAttendanceViewOwn  Permission = "attendance.view_own"
	PermissionAttendanceCreate   Permission = "attendance.create"
	PermissionAttendanceViewAll  Permission = "attendance.view_all"
	PermissionAttendanceApprove  Permission = "attendance.approve"
	PermissionAttendanceOverride Permission = "attendance.override"

	// Reports
	PermissionReportsView Permission = "reports.view"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleTeacher: {
		PermissionAttendanceViewOwn,
		PermissionAttendanceCreate,
	},
	RoleSupervisor: {
		// Supervisors still teach, so they keep their own attendance
		PermissionAttendanceViewOwn,
		PermissionAttendanceCreate,
		PermissionAttendanceViewAll,
		PermissionAttendanceApprove,
		PermissionAttendanceOverride,
		PermissionReportsView,
	},
	RolePrincipal: {
		PermissionAttendanceViewOwn,
		PermissionAttendanceCreate,
		PermissionAttendanceViewAll,
		PermissionAttendanceApprove,
		PermissionAttendanceOverride,
		PermissionReportsView,
	},
	RoleAdmin: {
		PermissionAttendanceViewAll,
		PermissionAttendanceOverride,
		PermissionReportsView,
	},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}

	return false
}
