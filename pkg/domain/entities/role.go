package entities

import "fmt"

// Role selects which controls the dashboard offers. It is a presentation
// choice and grants nothing on the service side.
type Role string

const (
	RoleEmployee Role = "employee"
	RoleManager  Role = "manager"
)

// ParseRole converts a configured value into a Role
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleEmployee, RoleManager:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role: %q (expected employee or manager)", s)
	}
}

// CanDecide reports whether the role may approve or reject orders
func (r Role) CanDecide() bool {
	return r == RoleManager
}
