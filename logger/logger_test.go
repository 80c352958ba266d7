package logger_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AmarBackInField/Legal-MultiAgent-Chatbot/logger"
)

func TestNew_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	log, err := logger.New(logger.Config{Level: "debug", File: path})
	require.NoError(t, err)

	log.Info("hello")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
}

func TestNew_BadLevel(t *testing.T) {
	_, err := logger.New(logger.Config{Level: "loud"})
	assert.Error(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", logger.Truncate("abc", 5))
	assert.Equal(t, "ab...", logger.Truncate("abcdef", 2))
}
