package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authConfig struct {
	Port      int           `env:"ACCT_TEST_PORT" envDefault:"5000"`
	Issuer    string        `env:"ACCT_TEST_ISSUER" envDefault:"account-service"`
	Expiry    time.Duration `env:"ACCT_TEST_EXPIRY" envDefault:"168h"`
	Brokers   []string      `env:"ACCT_TEST_BROKERS" envDefault:"localhost:9092" envSeparator:","`
	KafkaOn   bool          `env:"ACCT_TEST_KAFKA"`
	SecretKey string        `env:"ACCT_TEST_SECRET,required"`
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("ACCT_TEST_SECRET", "s")

		var cfg authConfig
		require.NoError(t, Load(&cfg))
		assert.Equal(t, authConfig{
			Port:      5000,
			Issuer:    "account-service",
			Expiry:    168 * time.Hour,
			Brokers:   []string{"localhost:9092"},
			SecretKey: "s",
		}, cfg)
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("ACCT_TEST_SECRET", "s")
		t.Setenv("ACCT_TEST_PORT", "8081")
		t.Setenv("ACCT_TEST_EXPIRY", "15m")
		t.Setenv("ACCT_TEST_BROKERS", "k1:9092,k2:9092")
		t.Setenv("ACCT_TEST_KAFKA", "true")

		var cfg authConfig
		require.NoError(t, Load(&cfg))
		assert.Equal(t, 8081, cfg.Port)
		assert.Equal(t, 15*time.Minute, cfg.Expiry)
		assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Brokers)
		assert.True(t, cfg.KafkaOn)
	})
}

func TestLoadFrom(t *testing.T) {
	tests := []struct {
		name    string
		environ map[string]string
		wantErr bool
	}{
		{"required present", map[string]string{"ACCT_TEST_SECRET": "s"}, false},
		{"required missing", map[string]string{}, true},
		{"nil environment", nil, true},
		{"bad int", map[string]string{"ACCT_TEST_SECRET": "s", "ACCT_TEST_PORT": "five"}, true},
		{"bad duration", map[string]string{"ACCT_TEST_SECRET": "s", "ACCT_TEST_EXPIRY": "a week"}, true},
		{"bad bool", map[string]string{"ACCT_TEST_SECRET": "s", "ACCT_TEST_KAFKA": "maybe"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// The process value must never leak into LoadFrom.
			t.Setenv("ACCT_TEST_SECRET", "from-process")

			var cfg authConfig
			err := LoadFrom(&cfg, tt.environ)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "parse config")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.environ["ACCT_TEST_SECRET"], cfg.SecretKey)
		})
	}
}
