package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitTest(t *testing.T) {
	require.NoError(t, InitTest())

	assert.Equal(t, "sqlite", GlobalConfig.Database.Driver)
	assert.Equal(t, "test-secret", GlobalConfig.JWT.Secret)
	assert.Equal(t, 7*24*time.Hour, GlobalConfig.JWT.Expiration)
	assert.Equal(t, time.Minute, GlobalConfig.OTP.TTL)
	assert.Equal(t, int64(30*1024*1024), GlobalConfig.Upload.MaxSize)
	assert.False(t, GlobalConfig.Sharing.EnforceTokenExpiry)
	assert.True(t, GlobalConfig.Server.IsDevelopment())
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("PICWALL_JWT_SECRET", "from-env")
	t.Setenv("PICWALL_SHARING_ENFORCE_TOKEN_EXPIRY", "true")

	require.NoError(t, InitTest())

	assert.Equal(t, "from-env", GlobalConfig.JWT.Secret)
	assert.True(t, GlobalConfig.Sharing.EnforceTokenExpiry)
}
