package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/ThanishaDewangan/Mini-User-Management-System/internal/domain"
	"github.com/ThanishaDewangan/Mini-User-Management-System/internal/service"
	"github.com/ThanishaDewangan/Mini-User-Management-System/pkg/httputil"
)

// AuthHandler handles HTTP requests for auth endpoints.
type AuthHandler struct {
	accounts *service.AccountService
	logger   *slog.Logger
}

// NewAuthHandler creates a new auth HTTP handler.
func NewAuthHandler(accounts *service.AccountService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{accounts: accounts, logger: logger}
}

// --- Request DTOs ---

// SignupRequest is the JSON request body for account creation.
type SignupRequest struct {
	FullName string `json:"fullName" validate:"required,notblank,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginRequest is the JSON request body for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// --- Response types ---

// AuthResponse carries a freshly issued token and its owner.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *domain.User `json:"user"`
}

// UserResponse wraps a single user.
type UserResponse struct {
	User *domain.User `json:"user"`
}

func authResponse(res *service.AuthResult) AuthResponse {
	return AuthResponse{Token: res.Token.Value, ExpiresAt: res.Token.ExpiresAt, User: res.User}
}

// --- Handlers ---

// Signup handles POST /api/auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if !decode(w, r, &req) {
		return
	}

	res, err := h.accounts.Signup(r.Context(), service.SignupInput{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteSuccess(w, http.StatusCreated, "User registered successfully", authResponse(res))
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decode(w, r, &req) {
		return
	}

	res, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, "Login successful", authResponse(res))
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	httputil.WriteSuccess(w, http.StatusOK, "", UserResponse{User: principal(r)})
}

// Logout handles POST /api/auth/logout. Tokens are stateless, so the client
// discards its copy; nothing is revoked server-side.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.logger.InfoContext(r.Context(), "user logged out", slog.String("user_id", principal(r).ID))
	httputil.WriteSuccess(w, http.StatusOK, "Logged out successfully", nil)
}
