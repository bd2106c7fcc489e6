package domain

import "slices"

// Role is the authorization level of a user. It is fixed at creation.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ValidRoles returns the set of valid user roles.
func ValidRoles() []Role {
	return []Role{RoleUser, RoleAdmin}
}

// Valid reports whether r is one of the enumerated roles.
func (r Role) Valid() bool {
	return slices.Contains(ValidRoles(), r)
}

// Status governs whether a user may authenticate.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// ValidStatuses returns the set of valid account statuses.
func ValidStatuses() []Status {
	return []Status{StatusActive, StatusInactive}
}

// Valid reports whether s is one of the enumerated statuses.
func (s Status) Valid() bool {
	return slices.Contains(ValidStatuses(), s)
}
