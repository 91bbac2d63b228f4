package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetDefaults restores the default logger to a known state between tests.
// Necessary because charmbracelet/log keeps global state.
func resetDefaults(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		log.SetLevel(log.InfoLevel)
		log.SetOutput(os.Stderr)
		log.SetFormatter(log.TextFormatter)
		log.SetReportCaller(false)
	})
}

func TestSetup_Levels(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		quiet   bool
		want    log.Level
	}{
		{"default is info", false, false, log.InfoLevel},
		{"verbose is debug", true, false, log.DebugLevel},
		{"quiet is error", false, true, log.ErrorLevel},
		{"quiet wins over verbose", true, true, log.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetDefaults(t)
			Setup(tt.verbose, tt.quiet, false)
			assert.Equal(t, tt.want, log.GetLevel())
		})
	}
}

func TestSetup_JSONFormatter(t *testing.T) {
	resetDefaults(t)

	var buf bytes.Buffer
	Setup(false, false, true)
	SetOutput(&buf)

	log.Info("json test")

	output := buf.String()
	require.NotEmpty(t, output)

	var parsed map[string]any
	err := json.Unmarshal([]byte(strings.TrimSpace(output)), &parsed)
	require.NoError(t, err, "JSON formatter should produce valid JSON: %s", output)

	assert.Equal(t, "info", parsed["level"])
	assert.Equal(t, "json test", parsed["msg"])
}

func TestSetup_OutputToStderr(t *testing.T) {
	resetDefaults(t)

	var buf bytes.Buffer
	log.SetOutput(&buf)

	Setup(false, false, false)

	// After Setup, output goes to stderr; the previous writer sees nothing.
	buf.Reset()
	log.Info("test message")

	assert.Empty(t, buf.String())
}

func TestNew_WithComponent(t *testing.T) {
	resetDefaults(t)

	var buf bytes.Buffer
	Setup(false, false, true)
	SetOutput(&buf)

	logger := New("config")
	require.NotNil(t, logger)

	logger.Info("loading file", "path", "plume.toml")

	var parsed map[string]any
	err := json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &parsed)
	require.NoError(t, err)

	assert.Equal(t, "config", parsed["prefix"])
	assert.Equal(t, "loading file", parsed["msg"])
	assert.Equal(t, "plume.toml", parsed["path"])
}

func TestNew_EmptyComponent(t *testing.T) {
	resetDefaults(t)

	var buf bytes.Buffer
	Setup(false, false, true)
	SetOutput(&buf)

	logger := New("")
	require.NotNil(t, logger)

	logger.Info("no prefix")

	var parsed map[string]any
	err := json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &parsed)
	require.NoError(t, err)

	_, hasPrefix := parsed["prefix"]
	assert.False(t, hasPrefix, "empty component should not produce a prefix field")
}

func TestNew_LoggerRespectsLevel(t *testing.T) {
	resetDefaults(t)

	var buf bytes.Buffer
	Setup(false, false, false)
	SetOutput(&buf)

	logger := New("gap")

	logger.Debug("should be hidden")
	assert.Empty(t, buf.String(), "debug should be hidden at info level")

	logger.Info("should be visible")
	assert.Contains(t, buf.String(), "should be visible")
}

func TestSetup_QuietFiltersWarn(t *testing.T) {
	resetDefaults(t)

	var buf bytes.Buffer
	Setup(false, true, false)
	SetOutput(&buf)

	log.Warn("hidden warning")
	assert.Empty(t, buf.String())

	log.Error("visible error")
	assert.Contains(t, buf.String(), "visible error")
}

func TestLevelConstants(t *testing.T) {
	// The re-exported constants must match the library's and order from most
	// to least verbose.
	assert.Equal(t, log.DebugLevel, LevelDebug)
	assert.Equal(t, log.InfoLevel, LevelInfo)
	assert.Equal(t, log.WarnLevel, LevelWarn)
	assert.Equal(t, log.ErrorLevel, LevelError)
	assert.Equal(t, log.FatalLevel, LevelFatal)
	assert.Less(t, int(LevelDebug), int(LevelInfo))
	assert.Less(t, int(LevelError), int(LevelFatal))
}
