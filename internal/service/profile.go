package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ThanishaDewangan/Mini-User-Management-System/internal/auth"
	"github.com/ThanishaDewangan/Mini-User-Management-System/internal/domain"
	"github.com/ThanishaDewangan/Mini-User-Management-System/internal/event"
	"github.com/ThanishaDewangan/Mini-User-Management-System/internal/repository"
	apperrors "github.com/ThanishaDewangan/Mini-User-Management-System/pkg/errors"
)

// ProfileService updates profile fields and changes passwords.
type ProfileService struct {
	users       repository.UserRepository
	credentials *auth.CredentialService
	events      event.Publisher
	logger      *slog.Logger
}

// NewProfileService creates a ProfileService.
func NewProfileService(
	users repository.UserRepository,
	credentials *auth.CredentialService,
	events event.Publisher,
	logger *slog.Logger,
) *ProfileService {
	return &ProfileService{
		users:       users,
		credentials: credentials,
		events:      events,
		logger:      logger,
	}
}

// GetProfile returns the user with id, secrets cleared.
func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	u, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return u.Sanitized(), nil
}

// UpdateProfile applies the supplied fields and leaves the rest untouched.
// An email owned by another user fails with EmailTaken.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, update domain.ProfileUpdate) (*domain.User, error) {
	if update.FullName != nil {
		name := strings.TrimSpace(*update.FullName)
		if name == "" {
			return nil, apperrors.InvalidInput("full name must not be empty")
		}
		update.FullName = &name
	}
	if update.Email != nil {
		email := domain.NormalizeEmail(*update.Email)
		if email == "" {
			return nil, apperrors.InvalidInput("email must not be empty")
		}
		update.Email = &email
	}

	current, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	if update.Email != nil {
		if *update.Email == current.Email {
			update.Email = nil
		} else if err := s.ensureEmailFree(ctx, *update.Email, userID); err != nil {
			return nil, err
		}
	}
	if update.Empty() {
		return current.Sanitized(), nil
	}

	updated, err := s.users.UpdateProfile(ctx, userID, update)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("user", userID)
		}
		if apperrors.HasCode(err, apperrors.CodeEmailTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("update user profile: %w", err)
	}

	if err := s.events.UserUpdated(ctx, updated); err != nil {
		s.logger.WarnContext(ctx, "failed to publish user.updated event",
			slog.String("user_id", updated.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "user profile updated", slog.String("user_id", updated.ID))
	return updated.Sanitized(), nil
}

// ChangePassword replaces the password after verifying the current one. The
// policy is checked before the store is touched.
func (s *ProfileService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if currentPassword == "" {
		return apperrors.InvalidInput("current password is required")
	}
	if err := s.credentials.ValidatePolicy(newPassword); err != nil {
		return err
	}

	u, err := s.load(ctx, userID)
	if err != nil {
		return err
	}

	ok, err := s.credentials.Compare(u.PasswordHash, currentPassword)
	if err != nil {
		return fmt.Errorf("verify current password: %w", err)
	}
	if !ok {
		return apperrors.InvalidCredential("current password is incorrect")
	}

	hash, err := s.credentials.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePasswordHash(ctx, userID, hash); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NotFound("user", userID)
		}
		return fmt.Errorf("update password hash: %w", err)
	}

	if err := s.events.PasswordChanged(ctx, userID); err != nil {
		s.logger.WarnContext(ctx, "failed to publish user.password_changed event",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "password changed", slog.String("user_id", userID))
	return nil
}

func (s *ProfileService) load(ctx context.Context, userID string) (*domain.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("user", userID)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *ProfileService) ensureEmailFree(ctx context.Context, email, ownerID string) error {
	other, err := s.users.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("check email availability: %w", err)
	case other.ID != ownerID:
		return apperrors.EmailTaken()
	}
	return nil
}
