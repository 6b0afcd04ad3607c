package user

type Role string

const (
	RoleTeacher    Role = "teacher"    // Checks in and out, requests early departure
	RoleSupervisor Role = "supervisor" // Approves requests and overrides records
	RolePrincipal  Role = "principal"  // Supervisor rights plus school-wide reports
	RoleAdmin      Role = "admin"      // School administration staff
)

func (r Role) IsValid() bool {
	switch r {
	case RoleTeacher, RoleSupervisor, RolePrincipal, RoleAdmin:
		return true
	}
	return false
}

// CanApprove checks if the role may resolve early departure requests
func (r Role) CanApprove() bool {
	return HasPermission(r, PermissionAttendanceApprove)
}
