package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseEnv() map[string]string {
	return map[string]string{
		"JWT_ACCESS_SECRET_KEY":  "access",
		"JWT_REFRESH_SECRET_KEY": "refresh",
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFrom(baseEnv())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, time.Hour, cfg.AccessTTL.Duration())
	assert.Equal(t, 15*24*time.Hour, cfg.RefreshTTL.Duration())
	assert.Equal(t, "refresh_token", cfg.RefreshKeyPrefix)
	assert.Equal(t, DriverMongo, cfg.StoreDriver)
	assert.Equal(t, defaultRedisURL, cfg.RedisURL)
	assert.Equal(t, []string{"admin", "member"}, cfg.Roles)
	assert.False(t, cfg.RotateOnRefresh)
	assert.False(t, cfg.IsProduction())

	engineCfg := cfg.Engine()
	require.NoError(t, engineCfg.Validate())
	assert.Equal(t, []byte("access"), engineCfg.JWT.AccessSecret)
	assert.Equal(t, 10, engineCfg.Password.BcryptCost)
	assert.Equal(t, "member", engineCfg.Account.DefaultRole)
}

func TestLoadRequiresSecrets(t *testing.T) {
	for _, missing := range []string{"JWT_ACCESS_SECRET_KEY", "JWT_REFRESH_SECRET_KEY"} {
		environ := baseEnv()
		delete(environ, missing)
		_, err := LoadFrom(environ)
		require.Error(t, err, missing)
		assert.Contains(t, err.Error(), missing)

		environ[missing] = ""
		_, err = LoadFrom(environ)
		require.Error(t, err, missing)
	}
}

func TestLoadOverrides(t *testing.T) {
	environ := baseEnv()
	environ["APP_ENV"] = "Production"
	environ["JWT_ACCESS_EXPIRE_TIME"] = "30m"
	environ["JWT_REFRESH_EXPIRE_TIME"] = "7d"
	environ["UPSTASH_REDIS_URL"] = "rediss://default:pw@upstash.example:6379"
	environ["STORE_DRIVER"] = " SQLite "
	environ["REFRESH_ROTATE_ON_USE"] = "true"
	environ["ROLES"] = "owner, admin,member"
	environ["PASSWORD_ALGORITHM"] = "argon2id"

	cfg, err := LoadFrom(environ)
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 30*time.Minute, cfg.AccessTTL.Duration())
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTTL.Duration())
	assert.Equal(t, "rediss://default:pw@upstash.example:6379", cfg.RedisURL)
	assert.Equal(t, DriverSQLite, cfg.StoreDriver)

	engineCfg := cfg.Engine()
	require.NoError(t, engineCfg.Validate())
	assert.True(t, engineCfg.Session.RotateOnRefresh)
	assert.Equal(t, []string{"owner", "admin", "member"}, engineCfg.Account.Roles)
	assert.Equal(t, "argon2id", engineCfg.Password.Algorithm)
}

func TestRedisURLWinsOverAlias(t *testing.T) {
	environ := baseEnv()
	environ["REDIS_URL"] = "redis://primary:6379"
	environ["UPSTASH_REDIS_URL"] = "redis://alias:6379"

	cfg, err := LoadFrom(environ)
	require.NoError(t, err)
	assert.Equal(t, "redis://primary:6379", cfg.RedisURL)
}

func TestLoadRejects(t *testing.T) {
	tests := map[string]map[string]string{
		"unknown driver":   {"STORE_DRIVER": "postgres"},
		"bad level":        {"LOG_LEVEL": "loud"},
		"bad duration":     {"JWT_ACCESS_EXPIRE_TIME": "soon"},
		"bad day count":    {"JWT_REFRESH_EXPIRE_TIME": "xd"},
		"empty sqlite":     {"STORE_DRIVER": "sqlite", "SQLITE_PATH": " "},
		"bad bcrypt value": {"BCRYPT_COST": "ten"},
	}

	for name, overrides := range tests {
		t.Run(name, func(t *testing.T) {
			environ := baseEnv()
			for k, v := range overrides {
				environ[k] = v
			}
			_, err := LoadFrom(environ)
			require.Error(t, err)
		})
	}
}

func TestParseLifetime(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"1h", time.Hour},
		{"15d", 15 * 24 * time.Hour},
		{"1d12h", 36 * time.Hour},
		{" 90s ", 90 * time.Second},
		{"0d", 0},
	}
	for _, tt := range tests {
		got, err := ParseLifetime(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	for _, bad := range []string{"", "d", "-1d", "1d-1h", "1w"} {
		_, err := ParseLifetime(bad)
		assert.Error(t, err, bad)
	}
}
