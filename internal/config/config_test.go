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
		Data:   DataConfig{BasePath: "/some/path"},
		Store:  StoreConfig{Driver: DriverBadger},
		Auth:   AuthConfig{BcryptCost: 10},
		Files:  FilesConfig{Backend: FilesBackendStore},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_AllEnvironments(t *testing.T) {
	tests := []struct {
		env   string
		valid bool
	}{
		{"development", true},
		{"staging", true},
		{"production", true},
		{"test", false},
		{"", false},
		{"DEVELOPMENT", false}, // case sensitive
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := validConfig()
			cfg.App.Environment = tt.env

			if tt.valid {
				assert.NoError(t, cfg.Validate())
			} else {
				assert.Error(t, cfg.Validate())
			}
		})
	}
}

func TestValidate_StoreDriver(t *testing.T) {
	cfg := validConfig()
	cfg.Store.Driver = DriverSQLite
	assert.NoError(t, cfg.Validate())

	cfg.Store.Driver = "mongo"
	assert.ErrorContains(t, cfg.Validate(), "invalid store driver")
}

func TestValidate_S3RequiresBucket(t *testing.T) {
	cfg := validConfig()
	cfg.Files.Backend = FilesBackendS3
	assert.ErrorContains(t, cfg.Validate(), "S3_BUCKET")

	cfg.Files.S3Bucket = "models"
	assert.NoError(t, cfg.Validate())
}

func TestValidate_BcryptCost(t *testing.T) {
	cfg := validConfig()
	cfg.Auth.BcryptCost = 3
	assert.Error(t, cfg.Validate())
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	chdirTemp(t)

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 60*time.Second, cfg.Server.IdleTimeout)
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTokenDuration)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
	assert.Equal(t, DriverBadger, cfg.Store.Driver)
	assert.Equal(t, filepath.Join(cfg.Data.BasePath, "badger"), cfg.Store.Path)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.True(t, cfg.Search.Enabled)
}

func TestLoad_Precedence(t *testing.T) {
	dir := chdirTemp(t)
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("LOG_LEVEL", "warn")

	envFile := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("LOG_LEVEL=debug\nSTORE_DRIVER=sqlite\n"), 0o600))

	cfg, err := Load([]string{"-env-file", envFile, "-port", "7000", "-data-path", dir})
	require.NoError(t, err)

	assert.Equal(t, "7000", cfg.Server.Port, "flag beats env")
	assert.Equal(t, "warn", cfg.Logger.Level, "env beats .env file")
	assert.Equal(t, DriverSQLite, cfg.Store.Driver, ".env file beats default")
	assert.Equal(t, filepath.Join(dir, "modelshare.db"), cfg.Store.Path)
}

func TestLoad_InvalidDuration(t *testing.T) {
	chdirTemp(t)

	_, err := Load([]string{"-read-timeout", "soon", "-data-path", t.TempDir()})
	assert.ErrorContains(t, err, "invalid read timeout")
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := expandPath("~/models", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "models"), got)

	got, err = expandPath("", "/default")
	require.NoError(t, err)
	assert.Equal(t, "/default", got)

	got, err = expandPath("/abs/../abs/path", "")
	require.NoError(t, err)
	assert.Equal(t, "/abs/path", got)
}

func TestGetConfigValue_Precedence(t *testing.T) {
	t.Setenv("TEST_CONFIG_KEY", "env")

	assert.Equal(t, "flag", getConfigValue("flag", "TEST_CONFIG_KEY", "default"))
	assert.Equal(t, "env", getConfigValue("", "TEST_CONFIG_KEY", "default"))
	assert.Equal(t, "default", getConfigValue("", "TEST_CONFIG_MISSING", "default"))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList(" a, ,b "))
	assert.Nil(t, splitList(""))
}

// chdirTemp moves into an empty directory so no stray .env file is picked up.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}
