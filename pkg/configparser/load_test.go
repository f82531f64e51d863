package configparser

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type mode string

type testConfig struct {
	Mode mode `env:"TEST_MODE" default:"ride-service"`

	Database struct {
		Host     string        `env:"TEST_DATABASE_HOST" default:"localhost"`
		Port     int32         `env:"TEST_DATABASE_PORT" default:"5432"`
		Lifetime time.Duration `env:"TEST_DATABASE_LIFETIME" default:"30m"`
	}

	Kafka struct {
		Brokers []string `env:"TEST_KAFKA_BROKERS" default:"localhost:9092"`
		Enabled bool     `env:"TEST_KAFKA_ENABLED" default:"false"`
	}

	Charge float64 `env:"TEST_CHARGE" default:"5000"`
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg testConfig
	require.NoError(t, ParseEnv(&cfg))

	require.Equal(t, mode("ride-service"), cfg.Mode)
	require.Equal(t, "localhost", cfg.Database.Host)
	require.EqualValues(t, 5432, cfg.Database.Port)
	require.Equal(t, 30*time.Minute, cfg.Database.Lifetime)
	require.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	require.False(t, cfg.Kafka.Enabled)
	require.Equal(t, 5000.0, cfg.Charge)
}

func TestYamlIsFlattenedIntoEnv(t *testing.T) {
	path := writeFile(t, "config.yaml", `
test:
  database:
    host: db.internal
    port: 6543
  kafka:
    brokers:
      - k1:9092
      - k2:9092
    enabled: true
  charge: ${TEST_CHARGE_OVERRIDE:-7500}
`)
	for _, k := range []string{"TEST_DATABASE_HOST", "TEST_DATABASE_PORT", "TEST_KAFKA_BROKERS", "TEST_KAFKA_ENABLED", "TEST_CHARGE"} {
		t.Setenv(k, "")
	}

	require.NoError(t, LoadYamlFile(path))

	var cfg testConfig
	require.NoError(t, ParseEnv(&cfg))
	require.Equal(t, "db.internal", cfg.Database.Host)
	require.EqualValues(t, 6543, cfg.Database.Port)
	require.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	require.True(t, cfg.Kafka.Enabled)
	require.Equal(t, 7500.0, cfg.Charge)
}

func TestEnvironmentWinsOverYaml(t *testing.T) {
	path := writeFile(t, "config.yaml", "test:\n  database:\n    host: from-yaml\n")
	t.Setenv("TEST_DATABASE_HOST", "from-env")

	require.NoError(t, LoadYamlFile(path))
	require.Equal(t, "from-env", os.Getenv("TEST_DATABASE_HOST"))
}

func TestParseEnvRejectsBadValues(t *testing.T) {
	t.Setenv("TEST_DATABASE_PORT", "not-a-number")

	var cfg testConfig
	require.Error(t, ParseEnv(&cfg))
	require.ErrorIs(t, ParseEnv(cfg), ErrNotStructPointer)
}

func TestLoadYamlFileRequiresPath(t *testing.T) {
	require.ErrorIs(t, LoadYamlFile(""), ErrNoFilePath)
}
