package logger_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NamanBalaji/modsync/internal/logger"
)

func TestDiscardBeforeInit(t *testing.T) {
	logger.Close()
	// Nothing to assert beyond not panicking on an uninitialised logger.
	logger.Infof("dropped %d", 1)
}

func TestSetOutputLevels(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf, false)
	t.Cleanup(logger.Close)

	logger.Debugf("hidden %s", "debug")
	logger.Infof("visible %s", "info")
	logger.Errorf("visible %s", "error")

	out := buf.String()
	assert.NotContains(t, out, "hidden debug")
	assert.Contains(t, out, "visible info")
	assert.Contains(t, out, "visible error")

	buf.Reset()
	logger.SetOutput(&buf, true)
	logger.Debugf("shown %s", "debug")
	assert.Contains(t, buf.String(), "shown debug")
	assert.True(t, logger.DebugEnabled)
}

func TestInitLoggingToFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "nested", "modsync.log")

	require.NoError(t, logger.InitLogging(true, logPath))
	logger.Warnf("disk almost full: %d%%", 97)
	logger.Close()

	b, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(b), "disk almost full: 97%")
	assert.Contains(t, string(b), "level=warn")
}
