package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOMELIST_AUTH_JWTSECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "data/homelist.db", cfg.Database.DSN)
	assert.Equal(t, 30*time.Minute, cfg.Auth.TokenTTL)
	assert.Equal(t, 5, cfg.Auth.LoginRate)
	assert.Equal(t, time.Minute, cfg.Auth.LoginWindow)
	assert.Equal(t, "listings", cfg.Storage.KeyPrefix)
	assert.Equal(t, 15*time.Minute, cfg.Storage.PresignTTL)
	assert.Empty(t, cfg.Storage.Bucket)
	assert.Empty(t, cfg.Server.TrustedProxies)
}

func TestLoadFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOMELIST_AUTH_JWTSECRET", "secret")
	t.Setenv("HOMELIST_DATABASE_DRIVER", "postgres")
	t.Setenv("HOMELIST_AUTH_TOKENTTL", "5m")
	t.Setenv("HOMELIST_AUTH_LOGINRATE", "10")
	t.Setenv("HOMELIST_STORAGE_BUCKET", "photos")
	t.Setenv("HOMELIST_SERVER_TRUSTEDPROXIES", "10.0.0.0/8,192.168.1.1")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 5*time.Minute, cfg.Auth.TokenTTL)
	assert.Equal(t, 10, cfg.Auth.LoginRate)
	assert.Equal(t, "photos", cfg.Storage.Bucket)
	assert.Equal(t, []string{"10.0.0.0/8", "192.168.1.1"}, cfg.Server.TrustedProxies)
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOMELIST_AUTH_JWTSECRET", "secret")
	base, err := Load()
	require.NoError(t, err)

	noSecret := base
	noSecret.Auth.JWTSecret = " "
	assert.Error(t, noSecret.Validate())

	badDriver := base
	badDriver.Database.Driver = "mysql"
	assert.Error(t, badDriver.Validate())

	badProxy := base
	badProxy.Server.TrustedProxies = []string{"not-an-ip"}
	assert.Error(t, badProxy.Validate())

	badRate := base
	badRate.Auth.LoginRate = 0
	assert.Error(t, badRate.Validate())
}
