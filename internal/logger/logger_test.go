package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"warn":    zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"info":    zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
	}
	for in, want := range cases {
		require.Equal(t, want, parseLevel(in), "level %q", in)
	}
}

func TestFileOutput(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "review.log")
	require.NoError(t, InitWithFileConfig("warn", FileConfig{Path: logFile, MaxSizeMB: 1}, false))
	t.Cleanup(func() { Log = zap.NewNop(); Sugar = Log.Sugar() })

	Named("normalize").Info("dropped at info level")
	Named("normalize").Warn("skipped candidate", zap.Int64("id", 42))
	Sync()

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	require.Contains(t, string(data), `"msg":"skipped candidate"`)
	require.Contains(t, string(data), `"logger":"normalize"`)
	require.NotContains(t, string(data), "dropped at info level")
}
