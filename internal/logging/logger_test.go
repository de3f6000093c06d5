package logging

import (
	"path/filepath"
	"testing"

	"appointd/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	app := config.AppConfig{Name: "appointd", Environment: "test", Version: "0.0.0"}

	t.Run("DefaultsToStdout", func(t *testing.T) {
		logger, closer, err := New(config.LoggingConfig{}, app)
		require.NoError(t, err)
		require.NotNil(t, logger)
		assert.Nil(t, closer)
	})

	t.Run("Stderr", func(t *testing.T) {
		logger, closer, err := New(config.LoggingConfig{Level: "debug", Output: "stderr"}, app)
		require.NoError(t, err)
		require.NotNil(t, logger)
		assert.Nil(t, closer)
	})

	t.Run("ConsoleFormat", func(t *testing.T) {
		logger, closer, err := New(config.LoggingConfig{Format: "console"}, app)
		require.NoError(t, err)
		require.NotNil(t, logger)
		assert.Nil(t, closer)
	})

	t.Run("File", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "app.log")
		logger, closer, err := New(config.LoggingConfig{Output: "file", FilePath: path}, app)
		require.NoError(t, err)
		require.NotNil(t, logger)
		require.NotNil(t, closer)
		logger.Info().Msg("hello")
		require.NoError(t, closer.Close())
		assert.FileExists(t, path)
	})

	t.Run("FileWithoutPath", func(t *testing.T) {
		_, _, err := New(config.LoggingConfig{Output: "file"}, app)
		assert.Error(t, err)
	})

	t.Run("UnknownLevelFallsBack", func(t *testing.T) {
		logger, _, err := New(config.LoggingConfig{Level: "chatty"}, app)
		require.NoError(t, err)
		require.NotNil(t, logger)
	})
}
