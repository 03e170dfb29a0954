package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
[mainConfig]
appName = "chat_test"
port = 9001

[databaseConfig]
driver = "sqlite"

[mysqlConfig]
host = "db.local"
port = 3307

[jwtConfig]
secret = "from-file"
accessTokenExpiry = 60
`

func TestLoadDecodesFileAndAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "chat_test", cfg.AppName)
	assert.Equal(t, 9001, cfg.MainConfig.Port)
	assert.Equal(t, 3307, cfg.MysqlConfig.Port)
	assert.Equal(t, "sqlite", cfg.Driver)
	assert.Equal(t, "from-file", cfg.JWTConfig.Secret)
	assert.Equal(t, 60, cfg.AccessTokenExpiry)
	// 未配置项使用默认值
	assert.Equal(t, "channel", cfg.MessageMode)
	assert.Equal(t, 168, cfg.RefreshTokenExpiry)
	assert.Equal(t, "@every 1m", cfg.MuteSweepSpec)
}

func TestLoadEnvOverridesSecrets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o600))
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.JWTConfig.Secret)
	assert.True(t, cfg.MongoConfig.Enabled)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoConfig.URI)
}

func TestLoadMissingFileStillReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.Error(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, 8000, cfg.MainConfig.Port)
	assert.Equal(t, "mysql", cfg.Driver)
	assert.Equal(t, 7*24*60, cfg.AccessTokenExpiry)
}
