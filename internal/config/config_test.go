package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})

	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 5000, cfg.HTTPPort)
	assert.Equal(t, StoragePostgres, cfg.StorageDriver)
	assert.Equal(t, 168*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, "account-service", cfg.JWTIssuer)
	assert.Equal(t, 6, cfg.PasswordMinLength)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.False(t, cfg.KafkaEnabled)
	assert.False(t, cfg.BootstrapAdminEnabled())
}

func TestLoad_ReadsProcessEnvironment(t *testing.T) {
	t.Setenv("HTTP_PORT", "8080")
	t.Setenv("STORAGE_DRIVER", "Memory")
	t.Setenv("JWT_EXPIRY", "30m")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, StorageMemory, cfg.StorageDriver)
	assert.Equal(t, 30*time.Minute, cfg.Token().TTL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
}

func TestLoadFrom_Development_AcceptsDefaultSecret(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{"ENVIRONMENT": "development"})

	require.NoError(t, err)
	assert.Equal(t, defaultJWTSecret, cfg.JWTSecret)
}

func TestLoadFrom_JWTSecretRules(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		secret  string
		wantErr string
	}{
		{"production default", "production", defaultJWTSecret, "JWT_SECRET must be explicitly set"},
		{"staging default", "staging", defaultJWTSecret, "JWT_SECRET must be explicitly set"},
		{"production short", "production", "short-but-not-default-secret", "JWT_SECRET must be at least 32 characters"},
		{"31 chars", "production", "abcdefghijklmnopqrstuvwxyz12345", "JWT_SECRET must be at least 32 characters"},
		{"32 chars", "production", "abcdefghijklmnopqrstuvwxyz123456", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadFrom(map[string]string{"ENVIRONMENT": tt.env, "JWT_SECRET": tt.secret})
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.secret, cfg.JWTSecret)
				return
			}
			assert.Nil(t, cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFrom_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		vars    map[string]string
		wantErr string
	}{
		{"port", map[string]string{"HTTP_PORT": "70000"}, "invalid HTTP port"},
		{"storage", map[string]string{"STORAGE_DRIVER": "sqlite"}, "STORAGE_DRIVER"},
		{"expiry", map[string]string{"JWT_EXPIRY": "0s"}, "JWT_EXPIRY"},
		{"expiry format", map[string]string{"JWT_EXPIRY": "7d"}, "parse config"},
		{"bcrypt", map[string]string{"BCRYPT_COST": "99"}, "BCRYPT_COST"},
		{"min length", map[string]string{"PASSWORD_MIN_LENGTH": "0"}, "PASSWORD_MIN_LENGTH"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadFrom(tt.vars)
			assert.Nil(t, cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_Derived(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"POSTGRES_HOST":           "db",
		"DB_MAX_CONNS":            "12",
		"SLOW_QUERY_THRESHOLD_MS": "250",
		"PASSWORD_MIN_LENGTH":     "8",
		"ADMIN_EMAIL":             "root@example.com",
		"ADMIN_PASSWORD":          "Admin123",
		"OTEL_ENABLED":            "true",
		"OTEL_SAMPLE_RATE":        "0.25",
	})
	require.NoError(t, err)

	pg := cfg.Postgres()
	assert.Equal(t, "db", pg.Host)
	assert.Equal(t, int32(12), pg.MaxConns)
	assert.Equal(t, time.Hour, pg.MaxConnLifetime)

	assert.Equal(t, 250*time.Millisecond, cfg.SlowQueryThreshold())
	assert.Equal(t, 8, cfg.PasswordPolicy().MinLength)
	assert.True(t, cfg.BootstrapAdminEnabled())

	tc := cfg.Tracing("account", "1.0.0")
	assert.True(t, tc.Enabled)
	assert.Equal(t, 0.25, tc.SampleRate)
	assert.Equal(t, "account", tc.ServiceName)
}
