package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestOpenLogFile_EmptyPathDisablesFileLogging(t *testing.T) {
	file, err := OpenLogFile("")

	require.NoError(t, err)
	assert.Nil(t, file)

	base := zap.NewNop()
	assert.Same(t, base, AttachFileLogger(base, nil, false))
}

func TestAttachFileLogger_WritesJSONEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "bi.log")
	file, err := OpenLogFile(path)
	require.NoError(t, err)

	logger := AttachFileLogger(zap.NewNop(), file, false)
	logger.Debug("hidden below info")
	logger.Info("report loaded", zap.String("report", "churn"))
	require.NoError(t, logger.Sync())
	require.NoError(t, file.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"report loaded"`)
	assert.Contains(t, string(data), `"report":"churn"`)
	assert.Contains(t, string(data), `"service":"bi-dashboard"`)
	assert.NotContains(t, string(data), "hidden below info")
}

func TestLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, Level(true))
	assert.Equal(t, zapcore.InfoLevel, Level(false))
}
