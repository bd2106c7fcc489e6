package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRole_Valid(t *testing.T) {
	assert.ElementsMatch(t, []Role{RoleUser, RoleAdmin}, ValidRoles())
	for _, r := range ValidRoles() {
		assert.True(t, r.Valid(), "expected %q to be valid", r)
	}
	assert.False(t, Role("").Valid())
	assert.False(t, Role("ADMIN").Valid())
	assert.False(t, Role("customer").Valid())
}

func TestStatus_Valid(t *testing.T) {
	assert.ElementsMatch(t, []Status{StatusActive, StatusInactive}, ValidStatuses())
	assert.True(t, StatusActive.Valid())
	assert.True(t, StatusInactive.Valid())
	assert.False(t, Status("suspended").Valid())
}

func TestUser_JSONOmitsPasswordHash(t *testing.T) {
	u := User{
		ID:           "3f1c2d4e-0000-4000-8000-000000000001",
		Email:        "ada@example.com",
		PasswordHash: "$2a$10$secret",
		FullName:     "Ada Lovelace",
		Role:         RoleAdmin,
		Status:       StatusActive,
	}

	raw, err := json.Marshal(u)
	require.NoError(t, err)

	var wire map[string]any
	require.NoError(t, json.Unmarshal(raw, &wire))
	assert.NotContains(t, wire, "passwordHash")
	assert.NotContains(t, string(raw), "secret")
	assert.Equal(t, u.ID, wire["id"])
	assert.Equal(t, "Ada Lovelace", wire["fullName"])
	assert.Equal(t, "admin", wire["role"])
	assert.Nil(t, wire["lastLogin"])
}

func TestUser_Sanitized(t *testing.T) {
	login := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	u := &User{ID: "u-1", PasswordHash: "hash", LastLogin: &login}

	s := u.Sanitized()
	assert.Empty(t, s.PasswordHash)
	assert.Equal(t, "hash", u.PasswordHash, "original must be untouched")
	require.NotNil(t, s.LastLogin)
	assert.NotSame(t, u.LastLogin, s.LastLogin)
	assert.Equal(t, login, *s.LastLogin)
}

func TestUser_IsActiveAndHasRole(t *testing.T) {
	u := &User{Role: RoleUser, Status: StatusInactive}
	assert.False(t, u.IsActive())
	assert.True(t, u.HasRole(RoleUser))
	assert.False(t, u.HasRole(RoleAdmin))

	u.Status = StatusActive
	assert.True(t, u.IsActive())
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "ada@example.com", NormalizeEmail("  Ada@Example.COM "))
	assert.Equal(t, "", NormalizeEmail("   "))
}

func TestProfileUpdate_Empty(t *testing.T) {
	name := "Grace"
	assert.True(t, ProfileUpdate{}.Empty())
	assert.False(t, ProfileUpdate{FullName: &name}.Empty())
}
