package user

// Role groups used by route guards.
var (
	RolesAll        = []Role{RoleAdmin, RoleHRManager, RoleManager, RoleEmployee}
	RolesHR         = []Role{RoleAdmin, RoleHRManager}
	RolesManagement = []Role{RoleAdmin, RoleHRManager, RoleManager}
)

// HasRole checks whether role is part of allowed.
func HasRole(role Role, allowed []Role) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}
