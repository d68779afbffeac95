package logger

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want log.Level
	}{
		{"debug", log.DebugLevel},
		{"DEBUG", log.DebugLevel},
		{"warn", log.WarnLevel},
		{"warning", log.WarnLevel},
		{"error", log.ErrorLevel},
		{"", log.InfoLevel},
		{"chatty", log.InfoLevel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), "level %q", tt.in)
	}
}

func TestConfigureWritesToFile(t *testing.T) {
	orig := Logger
	t.Cleanup(func() { Logger = orig })

	path := filepath.Join(t.TempDir(), "advisor.log")
	require.NoError(t, Configure("debug", path))
	assert.Equal(t, log.DebugLevel, Logger.GetLevel())
}

func TestSetOutputKeepsLevel(t *testing.T) {
	orig := Logger
	t.Cleanup(func() { Logger = orig })

	Logger.SetLevel(log.WarnLevel)
	var buf bytes.Buffer
	SetOutput(&buf)

	Info("hidden")
	Warn("shown", "key", "value")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "key=value")
}
