package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Cleanup(func() { require.NoError(t, LoadConfig("")) })

	t.Run("defaults", func(t *testing.T) {
		require.NoError(t, LoadConfig(""))
		assert.Equal(t, DefaultServerPort, Config().ServerPort)
		assert.Equal(t, DefaultAccessToken, Config().AccessToken)
		assert.False(t, Config().HandleCORS)
	})

	t.Run("from file", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "dscloud.toml")
		content := `server_port = "9000"
handle_cors = true
access_token = "secret"
log_level = "debug"
`
		require.NoError(t, os.WriteFile(file, []byte(content), 0o644))
		require.NoError(t, LoadConfig(file))
		assert.Equal(t, "9000", Config().ServerPort)
		assert.Equal(t, "secret", Config().AccessToken)
		assert.Equal(t, "debug", Config().LogLevel)
		assert.True(t, Config().HandleCORS)
		assert.Equal(t, []string{"http://localhost:*"}, Config().AllowedOrigins)
	})

	t.Run("partial file keeps defaults", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "dscloud.toml")
		require.NoError(t, os.WriteFile(file, []byte(`log_level = "warn"`), 0o644))
		require.NoError(t, LoadConfig(file))
		assert.Equal(t, DefaultServerPort, Config().ServerPort)
		assert.Equal(t, "warn", Config().LogLevel)
	})

	t.Run("missing file", func(t *testing.T) {
		assert.Error(t, LoadConfig(filepath.Join(t.TempDir(), "nope.toml")))
	})

	t.Run("invalid toml", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "dscloud.toml")
		require.NoError(t, os.WriteFile(file, []byte("server_port = "), 0o644))
		assert.Error(t, LoadConfig(file))
	})
}
