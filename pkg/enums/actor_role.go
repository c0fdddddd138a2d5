package enums

import "fmt"

// ActorRole identifies who is driving an order transition.
type ActorRole string

const (
	ActorRoleBuyer     ActorRole = "buyer"
	ActorRolePublisher ActorRole = "publisher"
	ActorRoleAdmin     ActorRole = "admin"
	ActorRoleSystem    ActorRole = "system"
)

var validActorRoles = []ActorRole{
	ActorRoleBuyer,
	ActorRolePublisher,
	ActorRoleAdmin,
	ActorRoleSystem,
}

func (a ActorRole) String() string {
	return string(a)
}

func (a ActorRole) IsValid() bool {
	for _, candidate := range validActorRoles {
		if candidate == a {
			return true
		}
	}
	return false
}

func ParseActorRole(value string) (ActorRole, error) {
	for _, candidate := range validActorRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid actor role %q", value)
}
