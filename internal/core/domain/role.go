package domain

// UserRole defines the possible roles a user can hold in the workbench.
type UserRole string

const (
	RoleAdmin    UserRole = "ADMIN"
	RoleManager  UserRole = "MANAGER"
	RoleReviewer UserRole = "REVIEWER"
	RolePreparer UserRole = "PREPARER"
	RoleReadOnly UserRole = "READONLY"
)

var roleRank = map[UserRole]int{
	RoleReadOnly: 1,
	RolePreparer: 2,
	RoleReviewer: 3,
	RoleManager:  4,
	RoleAdmin:    5,
}

// IsValid reports whether r is a known role.
func (r UserRole) IsValid() bool {
	_, ok := roleRank[r]
	return ok
}

// HasRequiredRole reports whether actual is at least as privileged as required.
// Unknown roles never satisfy a requirement.
func HasRequiredRole(actual, required UserRole) bool {
	a, ok := roleRank[actual]
	if !ok {
		return false
	}
	return a >= roleRank[required]
}
