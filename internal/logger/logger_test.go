package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG", zerolog.InfoLevel))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("warn", zerolog.InfoLevel))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("verbose", zerolog.InfoLevel))
	assert.Equal(t, zerolog.TraceLevel, ParseLevel("trace", zerolog.InfoLevel))
	assert.Equal(t, zerolog.FatalLevel, ParseLevel("Fatal", zerolog.InfoLevel))
	assert.Equal(t, zerolog.PanicLevel, ParseLevel("panic", zerolog.InfoLevel))
	assert.Equal(t, zerolog.ErrorLevel, ParseLevel("", zerolog.ErrorLevel))
}

func TestNewWithWriter(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "warn")

	log.Info().Msg("dropped")
	assert.Zero(t, buf.Len())

	log.Warn().Str("component", "store").Msg("kept")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "kept", entry["message"])
	assert.Equal(t, "store", entry["component"])
	assert.Contains(t, entry["caller"], "logger_test.go:")
	assert.NotContains(t, entry["caller"], "/")
}
