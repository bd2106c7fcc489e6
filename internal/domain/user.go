package domain

import (
	"strings"
	"time"
)

// User is the identity and authorization unit. PasswordHash never leaves the
// service: it is excluded from JSON and cleared by Sanitized.
type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	FullName     string     `json:"fullName"`
	Role         Role       `json:"role"`
	Status       Status     `json:"status"`
	LastLogin    *time.Time `json:"lastLogin"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// IsActive reports whether the account may authenticate.
func (u *User) IsActive() bool {
	return u.Status == StatusActive
}

// HasRole reports whether the user holds role.
func (u *User) HasRole(role Role) bool {
	return u.Role == role
}

// Sanitized returns a copy of u with secret fields cleared.
func (u *User) Sanitized() *User {
	c := *u
	c.PasswordHash = ""
	if u.LastLogin != nil {
		t := *u.LastLogin
		c.LastLogin = &t
	}
	return &c
}

// NormalizeEmail trims and lower-cases an address so that uniqueness is
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ProfileUpdate carries the optional fields of a partial profile update. A nil
// field is left untouched.
type ProfileUpdate struct {
	FullName *string
	Email    *string
}

// Empty reports whether no field was supplied.
func (p ProfileUpdate) Empty() bool {
	return p.FullName == nil && p.Email == nil
}
