package enums

import (
	"fmt"
	"strings"
)

// Role identifies which side of the marketplace an account belongs to.
type Role string

const (
	RoleVendor   Role = "vendor"
	RoleSupplier Role = "supplier"
)

var validRoles = []Role{
	RoleVendor,
	RoleSupplier,
}

var homeRoutes = map[Role]string{
	RoleVendor:   "/vendor",
	RoleSupplier: "/supplier",
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether the value is a known Role.
func (r Role) IsValid() bool {
	for _, candidate := range validRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// HomeRoute returns the dashboard route a signed-in account lands on.
func (r Role) HomeRoute() string {
	if route, ok := homeRoutes[r]; ok {
		return route
	}
	return "/"
}

// ParseRole converts raw input into a Role.
func ParseRole(value string) (Role, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validRoles {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", value)
}
