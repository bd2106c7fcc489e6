package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an AppError. Transports pick a status from the Kind and Code;
// the Message is short and safe to show to callers.
type Kind string

const (
	KindAuthentication Kind = "authentication"
	KindAuthorization  Kind = "authorization"
	KindConflict       Kind = "conflict"
	KindValidation     Kind = "validation"
	KindNotFound       Kind = "not_found"
	KindInternal       Kind = "internal"
)

// Sentinel errors, one per Kind, so callers can match with errors.Is.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("resource not found")
	ErrInternal     = errors.New("internal error")
)

// Machine-readable error codes.
const (
	CodeMissingToken              = "MISSING_TOKEN"
	CodeInvalidToken              = "INVALID_TOKEN"
	CodeExpiredToken              = "EXPIRED_TOKEN"
	CodePrincipalNotFound         = "PRINCIPAL_NOT_FOUND"
	CodeAccountInactive           = "ACCOUNT_INACTIVE"
	CodeInvalidCredential         = "INVALID_CREDENTIAL"
	CodeInsufficientPrivilege     = "INSUFFICIENT_PRIVILEGE"
	CodeSelfModificationForbidden = "SELF_MODIFICATION_FORBIDDEN"
	CodeNoOpConflict              = "NO_OP_CONFLICT"
	CodeEmailTaken                = "EMAIL_TAKEN"
	CodeWeakPassword              = "WEAK_PASSWORD"
	CodeInvalidInput              = "INVALID_INPUT"
	CodeNotFound                  = "NOT_FOUND"
	CodeInternalAuth              = "INTERNAL_AUTH_ERROR"
	CodeInternal                  = "INTERNAL_ERROR"
)

// AppError represents a structured application error with HTTP status mapping.
type AppError struct {
	Kind    Kind   `json:"kind"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel of this error's kind, so that an
// internal error wrapping an arbitrary cause still matches ErrInternal.
func (e *AppError) Is(target error) bool {
	return sentinelFor(e.Kind) == target
}

func sentinelFor(k Kind) error {
	switch k {
	case KindAuthentication:
		return ErrUnauthorized
	case KindAuthorization:
		return ErrForbidden
	case KindConflict:
		return ErrConflict
	case KindValidation:
		return ErrInvalidInput
	case KindNotFound:
		return ErrNotFound
	case KindInternal:
		return ErrInternal
	default:
		return nil
	}
}

func newError(kind Kind, code string, status int, message string, cause error) *AppError {
	if cause == nil {
		cause = sentinelFor(kind)
	}
	return &AppError{Kind: kind, Code: code, Message: message, Status: status, Err: cause}
}

// --- Authentication ---

// MissingToken is returned when a request carries no credential header.
func MissingToken() *AppError {
	return newError(KindAuthentication, CodeMissingToken, http.StatusUnauthorized,
		"authentication required, please provide a token", nil)
}

// InvalidToken is returned for malformed tokens and bad signatures.
func InvalidToken(cause error) *AppError {
	return newError(KindAuthentication, CodeInvalidToken, http.StatusUnauthorized, "invalid token", cause)
}

// ExpiredToken is returned when the token expiry has passed.
func ExpiredToken(cause error) *AppError {
	return newError(KindAuthentication, CodeExpiredToken, http.StatusUnauthorized,
		"token expired, please login again", cause)
}

// PrincipalNotFound is returned when a valid token names a user that no longer exists.
func PrincipalNotFound() *AppError {
	return newError(KindAuthentication, CodePrincipalNotFound, http.StatusNotFound, "user not found", nil)
}

// AccountInactive is returned when the credential is valid but the account is not eligible.
func AccountInactive() *AppError {
	return newError(KindAuthentication, CodeAccountInactive, http.StatusForbidden,
		"account is inactive, please contact an administrator", nil)
}

// InvalidCredential is returned when a presented password does not match.
func InvalidCredential(message string) *AppError {
	return newError(KindAuthentication, CodeInvalidCredential, http.StatusUnauthorized, message, nil)
}

// InternalAuth wraps an unexpected failure inside the authentication gate.
func InternalAuth(err error) *AppError {
	return newError(KindInternal, CodeInternalAuth, http.StatusInternalServerError, "authentication error", err)
}

// --- Authorization ---

// InsufficientPrivilege is returned when the principal lacks the required role.
func InsufficientPrivilege() *AppError {
	return newError(KindAuthorization, CodeInsufficientPrivilege, http.StatusForbidden,
		"access denied, admin privileges required", nil)
}

// --- Conflict ---

// SelfModificationForbidden is returned when an admin targets their own account.
func SelfModificationForbidden(message string) *AppError {
	return newError(KindConflict, CodeSelfModificationForbidden, http.StatusBadRequest, message, nil)
}

// NoOpConflict is returned when a transition would not change anything.
func NoOpConflict(message string) *AppError {
	return newError(KindConflict, CodeNoOpConflict, http.StatusBadRequest, message, nil)
}

// EmailTaken is returned when the email belongs to another user.
func EmailTaken() *AppError {
	return newError(KindConflict, CodeEmailTaken, http.StatusBadRequest, "email is already taken by another user", nil)
}

// --- Validation ---

// WeakPassword is returned when a password fails the complexity policy.
func WeakPassword(message string) *AppError {
	return newError(KindValidation, CodeWeakPassword, http.StatusBadRequest, message, nil)
}

// InvalidInput creates a 400 error.
func InvalidInput(message string) *AppError {
	return newError(KindValidation, CodeInvalidInput, http.StatusBadRequest, message, nil)
}

// --- Not found ---

// NotFound creates a 404 error.
func NotFound(resource, id string) *AppError {
	return newError(KindNotFound, CodeNotFound, http.StatusNotFound,
		fmt.Sprintf("%s with id %s not found", resource, id), nil)
}

// --- Internal ---

// Internal creates a 500 error. The cause is kept for logs and never rendered.
func Internal(err error) *AppError {
	return newError(KindInternal, CodeInternal, http.StatusInternalServerError, "an internal error occurred", err)
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// HasCode reports whether err is an AppError carrying the given code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// HTTPStatus returns the HTTP status code for the given error.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict), errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
