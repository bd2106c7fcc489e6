package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"

	"github.com/ThanishaDewangan/Mini-User-Management-System/pkg/logger"
)

// logOnce runs one request through RequestLogger with ctx and returns the
// single JSON line the handler logged.
func logOnce(t *testing.T, ctx context.Context, header http.Header) map[string]any {
	t.Helper()

	var buf bytes.Buffer
	h := RequestLogger(logger.NewWithWriter("account-test", "info", &buf))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.FromContext(r.Context()).InfoContext(r.Context(), "profile fetched")
		}))

	req := httptest.NewRequest(http.MethodGet, "/api/users/profile", nil).WithContext(ctx)
	for k, v := range header {
		req.Header[k] = v
	}
	h.ServeHTTP(httptest.NewRecorder(), req)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line), "expected one JSON log line, got %q", buf.String())
	return line
}

func TestRequestLogger_ContextFields(t *testing.T) {
	traceID, err := trace.TraceIDFromHex(inboundTraceID)
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	spanCtx := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})

	tests := []struct {
		name   string
		ctx    context.Context
		header http.Header
		want   map[string]any
		absent []string
	}{
		{
			name:   "bare request",
			ctx:    context.Background(),
			want:   map[string]any{"service": "account-test", "msg": "profile fetched"},
			absent: []string{"user_id", "correlation_id", "trace_id"},
		},
		{
			name: "correlation id",
			ctx:  logger.WithCorrelationID(context.Background(), "req-7f3a"),
			want: map[string]any{"correlation_id": "req-7f3a"},
		},
		{
			name: "authenticated caller",
			ctx:  WithIdentity(context.Background(), Identity{UserID: "2b1e6a52-user", Role: "admin"}),
			want: map[string]any{"user_id": "2b1e6a52-user"},
		},
		{
			name:   "spoofed user header",
			ctx:    context.Background(),
			header: http.Header{"X-User-Id": {"someone-else"}},
			absent: []string{"user_id"},
		},
		{
			name: "active span",
			ctx:  trace.ContextWithSpanContext(context.Background(), spanCtx),
			want: map[string]any{"trace_id": inboundTraceID, "span_id": "00f067aa0ba902b7"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := logOnce(t, tt.ctx, tt.header)
			for k, v := range tt.want {
				assert.Equal(t, v, line[k], k)
			}
			for _, k := range tt.absent {
				assert.NotContains(t, line, k)
			}
		})
	}
}

func TestRequestLogger_RedactsSecretsAttachedByHandlers(t *testing.T) {
	var buf bytes.Buffer
	h := RequestLogger(logger.NewWithWriter("account-test", "info", &buf))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.FromContext(r.Context()).Info("login attempt",
				"email", "jane@example.com",
				"password", "Secret123",
			)
		}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/auth/login", nil))

	assert.NotContains(t, buf.String(), "Secret123")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, logger.Redacted, line["password"])
	assert.Equal(t, "jane@example.com", line["email"])
}
