package app_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aixcyberchallenge/data-form/internal/app"
	"github.com/aixcyberchallenge/data-form/internal/config"
	"github.com/aixcyberchallenge/data-form/internal/dataapi"
)

func loadConfig(t *testing.T, content string) *config.Config {
	t.Helper()

	path := filepath.Join(t.TempDir(), "dataform.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	return cfg
}

func TestNew(t *testing.T) {
	cfg := loadConfig(t, `
form:
  environments:
    development:
      api_url: http://localhost:1323/
      timeout: 1s
`)

	t.Run("Development", func(t *testing.T) {
		a := app.New(cfg, "localhost")

		assert.Equal(t, config.Development, a.Environment.Name)
		assert.Equal(t, time.Second, a.Environment.Timeout)

		client, ok := a.API.(*dataapi.Client)
		require.True(t, ok)
		assert.Equal(t, "http://localhost:1323/data", client.Endpoint())
	})

	t.Run("Production", func(t *testing.T) {
		a := app.New(cfg, "example.com")

		assert.Equal(t, config.Production, a.Environment.Name)

		client, ok := a.API.(*dataapi.Client)
		require.True(t, ok)
		assert.Equal(t, config.DefaultEnvironments().Production.APIURL+"/data", client.Endpoint())
	})
}

func TestNewHTTPClient(t *testing.T) {
	client := app.NewHTTPClient(config.Environment{Timeout: 3 * time.Second})
	assert.Equal(t, 3*time.Second, client.Timeout)
	assert.NotNil(t, client.Transport)
}

func TestHostName(t *testing.T) {
	t.Run("Override", func(t *testing.T) {
		cfg := loadConfig(t, "form:\n  host: example.com\n")
		assert.Equal(t, "localhost", app.HostName(cfg, "localhost"))
	})

	t.Run("Configured", func(t *testing.T) {
		cfg := loadConfig(t, "form:\n  host: example.com\n")
		assert.Equal(t, "example.com", app.HostName(cfg, ""))
	})

	t.Run("Machine", func(t *testing.T) {
		cfg := loadConfig(t, "{}\n")
		expected, err := os.Hostname()
		require.NoError(t, err)
		assert.Equal(t, expected, app.HostName(cfg, ""))
	})
}
