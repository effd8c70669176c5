package enums

import "fmt"

// ActorRole distinguishes the two authenticated user populations.
type ActorRole string

const (
	ActorRoleAdmin  ActorRole = "admin"
	ActorRoleDealer ActorRole = "dealer"
)

var validActorRoles = []ActorRole{
	ActorRoleAdmin,
	ActorRoleDealer,
}

// String implements fmt.Stringer.
func (a ActorRole) String() string {
	return string(a)
}

// IsValid reports whether the value is a known ActorRole.
func (a ActorRole) IsValid() bool {
	for _, candidate := range validActorRoles {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseActorRole converts raw input into an ActorRole.
func ParseActorRole(value string) (ActorRole, error) {
	for _, candidate := range validActorRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid actor role %q", value)
}
