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
	cases := []struct {
		in   string
		want zerolog.Level
		ok   bool
	}{
		{"debug", zerolog.DebugLevel, true},
		{" WARN ", zerolog.WarnLevel, true},
		{"warning", zerolog.WarnLevel, true},
		{"off", zerolog.Disabled, true},
		{"", zerolog.InfoLevel, false},
		{"loud", zerolog.InfoLevel, false},
	}
	for _, tc := range cases {
		got, ok := ParseLevel(tc.in)
		assert.Equal(t, tc.want, got, tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
	}
}

func TestNew_JSONWithAppField(t *testing.T) {
	t.Setenv(EnvLogLevel, "")
	t.Setenv(EnvLogJSON, "")
	var buf bytes.Buffer
	l := New("ubx-sim", Config{Level: "warn", JSON: true}, &buf)

	l.Info().Msg("hidden")
	l.Warn().Int("baud", 9600).Msg("shown")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "ubx-sim", rec["app"])
	assert.Equal(t, "shown", rec["message"])
	assert.Equal(t, float64(9600), rec["baud"])
}

func TestNew_EnvOverrides(t *testing.T) {
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvLogJSON, "true")
	var buf bytes.Buffer
	l := New("ubx-sim", Config{Level: "error"}, &buf)

	l.Debug().Msg("visible")
	require.Contains(t, buf.String(), `"message":"visible"`)
}

func TestNew_ConsoleNoColor(t *testing.T) {
	t.Setenv(EnvLogLevel, "")
	t.Setenv(EnvLogJSON, "")
	t.Setenv(EnvLogNoColor, "1")
	var buf bytes.Buffer
	l := New("ubx-sim", Config{Level: "info"}, &buf)

	l.Info().Msg("receiver started")
	out := buf.String()
	require.Contains(t, out, "receiver started")
	require.Contains(t, out, "app=ubx-sim")
	require.NotContains(t, out, "\x1b[")
}
