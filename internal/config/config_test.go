package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:    AppConfig{Environment: "development"},
		Logger: LoggerConfig{Level: "info"},
		Data:   DataConfig{BasePath: "/tmp/bookhaven"},
		Server: ServerConfig{Port: "8080", ReadTimeout: 15 * time.Second},
		Auth:   AuthConfig{LoginRatePerMinute: 10},
	}
}

func TestValidate_OK(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_InvalidEnvironment(t *testing.T) {
	cfg := validConfig()
	cfg.App.Environment = "qa"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid environment")
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := validConfig()
	cfg.Logger.Level = "verbose"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestValidate_EmptyDataPath(t *testing.T) {
	cfg := validConfig()
	cfg.Data.BasePath = ""

	assert.Error(t, cfg.Validate())
}

func TestValidate_NonPositiveLoginRate(t *testing.T) {
	cfg := validConfig()
	cfg.Auth.LoginRatePerMinute = 0

	assert.Error(t, cfg.Validate())
}

func TestDerivedPaths(t *testing.T) {
	cfg := validConfig()

	assert.Equal(t, filepath.Join("/tmp/bookhaven", "db"), cfg.DatabasePath())
	assert.Equal(t, filepath.Join("/tmp/bookhaven", "search"), cfg.SearchPath())
}

func TestExpandPath_Tilde(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := expandPath("~/bookhaven", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "bookhaven"), got)
}

func TestExpandPath_EmptyUsesDefault(t *testing.T) {
	got, err := expandPath("", "/default/path")
	require.NoError(t, err)
	assert.Equal(t, "/default/path", got)
}

func TestGetConfigValue_Precedence(t *testing.T) {
	t.Setenv("BOOKHAVEN_TEST_KEY", "from-env")

	// Flag wins over env.
	assert.Equal(t, "from-flag", getConfigValue("from-flag", "BOOKHAVEN_TEST_KEY", "fallback"))
	// Env wins over default.
	assert.Equal(t, "from-env", getConfigValue("", "BOOKHAVEN_TEST_KEY", "fallback"))
	// Default when nothing else set.
	assert.Equal(t, "fallback", getConfigValue("", "BOOKHAVEN_TEST_MISSING", "fallback"))
}

func TestGetIntConfigValue(t *testing.T) {
	t.Setenv("BOOKHAVEN_TEST_INT", "42")
	assert.Equal(t, 42, getIntConfigValue("", "BOOKHAVEN_TEST_INT", 7))

	t.Setenv("BOOKHAVEN_TEST_INT", "not-a-number")
	assert.Equal(t, 7, getIntConfigValue("", "BOOKHAVEN_TEST_INT", 7))
}

func TestParseDurationValue(t *testing.T) {
	d, err := parseDurationValue("", "BOOKHAVEN_TEST_UNSET_DURATION", "90s")
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, d)

	_, err = parseDurationValue("bogus", "BOOKHAVEN_TEST_UNSET_DURATION", "90s")
	assert.Error(t, err)
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "# comment\nBOOKHAVEN_ENVFILE_A=alpha\nBOOKHAVEN_ENVFILE_B=\"quoted\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Cleanup(func() {
		_ = os.Unsetenv("BOOKHAVEN_ENVFILE_A")
		_ = os.Unsetenv("BOOKHAVEN_ENVFILE_B")
	})

	require.NoError(t, loadEnvFile(path))
	assert.Equal(t, "alpha", os.Getenv("BOOKHAVEN_ENVFILE_A"))
	assert.Equal(t, "quoted", os.Getenv("BOOKHAVEN_ENVFILE_B"))
}

func TestLoadEnvFile_DoesNotOverrideEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("BOOKHAVEN_ENVFILE_C=file\n"), 0o600))

	t.Setenv("BOOKHAVEN_ENVFILE_C", "env")

	require.NoError(t, loadEnvFile(path))
	assert.Equal(t, "env", os.Getenv("BOOKHAVEN_ENVFILE_C"))
}

func TestLoadEnvFile_BadLine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("JUSTAKEY\n"), 0o600))

	assert.Error(t, loadEnvFile(path))
}
