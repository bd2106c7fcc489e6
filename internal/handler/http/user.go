package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ThanishaDewangan/Mini-User-Management-System/internal/domain"
	"github.com/ThanishaDewangan/Mini-User-Management-System/internal/service"
	"github.com/ThanishaDewangan/Mini-User-Management-System/pkg/httputil"
	"github.com/ThanishaDewangan/Mini-User-Management-System/pkg/pagination"
)

// UserHandler handles HTTP requests for account administration and the
// caller's own profile.
type UserHandler struct {
	accounts  *service.AccountService
	lifecycle *service.AccountLifecycle
	profiles  *service.ProfileService
	logger    *slog.Logger
}

// NewUserHandler creates a new user HTTP handler.
func NewUserHandler(
	accounts *service.AccountService,
	lifecycle *service.AccountLifecycle,
	profiles *service.ProfileService,
	logger *slog.Logger,
) *UserHandler {
	return &UserHandler{accounts: accounts, lifecycle: lifecycle, profiles: profiles, logger: logger}
}

// --- Request DTOs ---

// UpdateProfileRequest is the JSON request body for a profile update. Absent
// fields are left unchanged.
type UpdateProfileRequest struct {
	FullName *string `json:"fullName" validate:"omitempty,notblank,min=2,max=100"`
	Email    *string `json:"email" validate:"omitempty,email"`
}

// ChangePasswordRequest is the JSON request body for a password change.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required"`
}

// --- Response types ---

// UserListResponse is one page of users.
type UserListResponse struct {
	Users      []domain.User   `json:"users"`
	Pagination pagination.Meta `json:"pagination"`
}

// --- Handlers ---

// List handles GET /api/users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.accounts.ListUsers(r.Context(), principal(r), pagination.FromRequest(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, "", UserListResponse{Users: page.Users, Pagination: page.Pagination})
}

// Activate handles PATCH /api/users/{id}/activate
func (h *UserHandler) Activate(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	u, err := h.lifecycle.Activate(r.Context(), principal(r), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, "User activated successfully", UserResponse{User: u})
}

// Deactivate handles PATCH /api/users/{id}/deactivate
func (h *UserHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	u, err := h.lifecycle.Deactivate(r.Context(), principal(r), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, "User deactivated successfully", UserResponse{User: u})
}

// GetProfile handles GET /api/users/profile
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	u, err := h.profiles.GetProfile(r.Context(), principal(r).ID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, "", UserResponse{User: u})
}

// UpdateProfile handles PATCH /api/users/profile
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if !decode(w, r, &req) {
		return
	}

	u, err := h.profiles.UpdateProfile(r.Context(), principal(r).ID, domain.ProfileUpdate{
		FullName: req.FullName,
		Email:    req.Email,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, "Profile updated successfully", UserResponse{User: u})
}

// ChangePassword handles PATCH /api/users/profile/password
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req ChangePasswordRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.profiles.ChangePassword(r.Context(), principal(r).ID, req.CurrentPassword, req.NewPassword); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, "Password changed successfully", nil)
}
