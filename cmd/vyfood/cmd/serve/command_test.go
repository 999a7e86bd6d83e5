package serve

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyfood/storefront/internal/appcontext"
	"github.com/vyfood/storefront/internal/server"
)

func TestConfigFromFlags(t *testing.T) {
	cmd := NewCommand(&appcontext.Mock{})
	require.NoError(t, cmd.ParseFlags([]string{
		"--port", "9090",
		"--cors-origins", "https://vyfood.vn,https://m.vyfood.vn",
		"--secure-cookies",
		"--cache-ttl", "1m",
		"--trusted-proxies", "10.0.0.0/8",
	}))

	base := server.DefaultConfig()
	base.AdminKey = "from-config"
	cfg := configFromFlags(cmd, base)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "localhost", cfg.Host)
	assert.True(t, cfg.CORSEnabled)
	assert.Equal(t, []string{"https://vyfood.vn", "https://m.vyfood.vn"}, cfg.CORSOrigins)
	assert.True(t, cfg.SecureCookies)
	assert.Equal(t, time.Minute, cfg.CacheTTL)
	assert.Equal(t, "from-config", cfg.AdminKey, "unset flags keep configured values")
	assert.Equal(t, 300, cfg.RateLimit)
	assert.Equal(t, []string{"10.0.0.0/8"}, cfg.TrustedProxies)
}

func TestServeNeedsStorefront(t *testing.T) {
	cmd := NewCommand(&appcontext.Mock{})
	cmd.SetArgs(nil)
	err := cmd.Execute()
	assert.Error(t, err)
}
