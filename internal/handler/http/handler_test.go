package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ThanishaDewangan/Mini-User-Management-System/internal/auth"
	"github.com/ThanishaDewangan/Mini-User-Management-System/internal/domain"
	"github.com/ThanishaDewangan/Mini-User-Management-System/internal/event"
	"github.com/ThanishaDewangan/Mini-User-Management-System/internal/repository/memory"
	"github.com/ThanishaDewangan/Mini-User-Management-System/internal/service"
	"github.com/ThanishaDewangan/Mini-User-Management-System/pkg/health"
	"github.com/ThanishaDewangan/Mini-User-Management-System/pkg/middleware"
	"github.com/ThanishaDewangan/Mini-User-Management-System/pkg/validator"
)

// envelope mirrors httputil.Response with Data left raw.
type envelope struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Code    string                 `json:"code"`
	Data    json.RawMessage        `json:"data"`
	Errors  []validator.FieldError `json:"errors"`
}

type testServer struct {
	handler  http.Handler
	repo     *memory.UserRepository
	accounts *service.AccountService
	tokens   *auth.TokenService
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := testLogger()
	repo := memory.NewUserRepository()

	tokens, err := auth.NewTokenService(auth.TokenConfig{
		Secret: "handler-test-secret-with-enough-length",
		TTL:    time.Hour,
		Issuer: "account-service",
	})
	require.NoError(t, err)

	creds := auth.NewCredentialService(bcrypt.MinCost, auth.PasswordPolicy{MinLength: 6})
	events := event.Noop{}
	accounts := service.NewAccountService(repo, tokens, creds, events, logger)

	svc := Services{
		Accounts:      accounts,
		Lifecycle:     service.NewAccountLifecycle(repo, events, logger),
		Profiles:      service.NewProfileService(repo, creds, events, logger),
		Authenticator: service.NewAuthenticator(repo, tokens),
	}

	h := NewRouter(svc, health.NewHandler(), logger, RouterConfig{CORS: middleware.DefaultCORSConfig()})
	return &testServer{handler: h, repo: repo, accounts: accounts, tokens: tokens}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), "body: %s", rec.Body.String())
	return rec, env
}

// signup registers an account over HTTP and returns its token and id.
func (s *testServer) signup(t *testing.T, fullName, email, password string) (string, string) {
	t.Helper()
	rec, env := s.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"fullName": fullName,
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var data AuthResponse
	require.NoError(t, json.Unmarshal(env.Data, &data))
	return data.Token, data.User.ID
}

// admin bootstraps an admin account and logs it in.
func (s *testServer) admin(t *testing.T) (string, string) {
	t.Helper()
	created, err := s.accounts.BootstrapAdmin(context.Background(), service.SignupInput{
		FullName: "Admin",
		Email:    "admin@example.com",
		Password: "Admin123",
	})
	require.NoError(t, err)
	require.True(t, created)

	rec, env := s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "admin@example.com",
		"password": "Admin123",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var data AuthResponse
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Equal(t, domain.RoleAdmin, data.User.Role)
	return data.Token, data.User.ID
}

func decodeUser(t *testing.T, env envelope) *domain.User {
	t.Helper()
	var data UserResponse
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotNil(t, data.User)
	return data.User
}
