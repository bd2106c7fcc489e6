package auth

import (
	"errors"
	"fmt"
	"unicode"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/ThanishaDewangan/Mini-User-Management-System/pkg/errors"
)

// DefaultMinPasswordLength is the minimum password length when none is configured.
const DefaultMinPasswordLength = 6

// maxPasswordBytes is the bcrypt input limit.
const maxPasswordBytes = 72

// PasswordPolicy describes the complexity rules a new password must meet.
type PasswordPolicy struct {
	MinLength int
}

// CredentialService hashes passwords, compares them against stored hashes
// and enforces the password policy.
type CredentialService struct {
	cost   int
	policy PasswordPolicy
}

// NewCredentialService returns a CredentialService. Out-of-range costs fall
// back to bcrypt.DefaultCost.
func NewCredentialService(cost int, policy PasswordPolicy) *CredentialService {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	if policy.MinLength <= 0 {
		policy.MinLength = DefaultMinPasswordLength
	}
	return &CredentialService{cost: cost, policy: policy}
}

// Hash returns a salted bcrypt hash of password.
func (c *CredentialService) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), c.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Compare reports whether password matches hash. A mismatch is (false, nil);
// an unreadable hash is an error.
func (c *CredentialService) Compare(hash, password string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("compare password: %w", err)
	}
}

// ValidatePolicy checks password against the policy and returns a
// WeakPassword error describing the first rule it breaks.
func (c *CredentialService) ValidatePolicy(password string) error {
	if utf8.RuneCountInString(password) < c.policy.MinLength {
		return apperrors.WeakPassword(fmt.Sprintf("password must be at least %d characters long", c.policy.MinLength))
	}
	if len(password) > maxPasswordBytes {
		return apperrors.WeakPassword(fmt.Sprintf("password must be at most %d bytes long", maxPasswordBytes))
	}

	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !upper || !lower || !digit {
		return apperrors.WeakPassword("password must contain at least one uppercase letter, one lowercase letter, and one number")
	}
	return nil
}
