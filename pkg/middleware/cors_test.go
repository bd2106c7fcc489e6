package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func serveCORS(cfg CORSConfig, req *http.Request) *httptest.ResponseRecorder {
	handler := CORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestCORS_AllowOrigin(t *testing.T) {
	prod := CORSConfig{AllowedOrigins: []string{"https://admin.example.com/", " https://app.example.com"}, Environment: "production"}

	tests := []struct {
		name   string
		cfg    CORSConfig
		origin string
		want   string
	}{
		{"development allows any", CORSConfig{Environment: "development"}, "https://evil.com", "*"},
		{"wildcard in list", CORSConfig{AllowedOrigins: []string{"*"}, Environment: "production"}, "https://x.com", "*"},
		{"listed origin echoed", prod, "https://admin.example.com", "https://admin.example.com"},
		{"trimmed entry matches", prod, "https://app.example.com", "https://app.example.com"},
		{"unlisted origin rejected", prod, "https://evil.com", ""},
		{"no origin header", prod, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rr := serveCORS(tt.cfg, req)

			assert.Equal(t, tt.want, rr.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, http.StatusOK, rr.Code)
		})
	}
}

func TestCORS_VaryOnOrigin(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://admin.example.com")
	rr := serveCORS(CORSConfig{AllowedOrigins: []string{"https://admin.example.com"}}, req)

	assert.Equal(t, "Origin", rr.Header().Get("Vary"))
}

func TestCORS_Preflight_Returns204(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/users/profile", nil)
	req.Header.Set("Origin", "https://admin.example.com")
	req.Header.Set("Access-Control-Request-Method", "PATCH")
	rr := serveCORS(DefaultCORSConfig(), req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "GET, POST, PATCH, OPTIONS", rr.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Accept, Authorization, Content-Type, X-Correlation-ID", rr.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "3600", rr.Header().Get("Access-Control-Max-Age"))
}

func TestCORS_PlainOptionsReachesHandler(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/users", nil)
	rr := serveCORS(DefaultCORSConfig(), req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestCORS_ExposedHeaders(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := serveCORS(DefaultCORSConfig(), req)

	assert.Equal(t, "X-Correlation-ID", rr.Header().Get("Access-Control-Expose-Headers"))
}

func TestCORS_AllowCredentials_OnlyForListedOrigin(t *testing.T) {
	cfg := CORSConfig{AllowedOrigins: []string{"https://admin.example.com"}, AllowCredentials: true}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://admin.example.com")
	rr := serveCORS(cfg, req)
	assert.Equal(t, "true", rr.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.com")
	rr = serveCORS(cfg, req)
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORS_CustomMaxAge(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := serveCORS(CORSConfig{MaxAge: 60}, req)

	assert.Equal(t, "60", rr.Header().Get("Access-Control-Max-Age"))
}
