package service

import (
	"github.com/ThanishaDewangan/Mini-User-Management-System/internal/domain"
	apperrors "github.com/ThanishaDewangan/Mini-User-Management-System/pkg/errors"
)

// RequireRole fails with InsufficientPrivilege unless principal holds role.
// It trusts that the principal was produced by the Authenticator.
func RequireRole(principal *domain.User, role domain.Role) error {
	var err error
	if principal == nil || !principal.HasRole(role) {
		err = apperrors.InsufficientPrivilege()
	}
	authzOutcomes.WithLabelValues(string(role), outcome(err)).Inc()
	return err
}
