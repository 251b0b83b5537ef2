package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_WritesJSONWithServiceField(t *testing.T) {
	t.Cleanup(Reset)
	var buf bytes.Buffer

	log := Init(Options{Level: "debug", Service: "blog", Output: &buf})
	log.Info().Str("post_id", "abc").Msg("new blog posted")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "blog", entry["service"])
	assert.Equal(t, "abc", entry["post_id"])
	assert.Equal(t, "new blog posted", entry["message"])
}

func TestInit_OnlyFirstCallApplies(t *testing.T) {
	t.Cleanup(Reset)
	var first, second bytes.Buffer

	Init(Options{Output: &first})
	l := Init(Options{Output: &second})
	l.Info().Msg("hello")

	assert.NotEmpty(t, first.String())
	assert.Empty(t, second.String())
}

func TestComponent_AddsField(t *testing.T) {
	t.Cleanup(Reset)
	var buf bytes.Buffer
	Init(Options{Output: &buf})

	l := Component("http")
	l.Info().Msg("x")

	assert.Contains(t, buf.String(), `"component":"http"`)
}

func TestGet_PanicsBeforeInit(t *testing.T) {
	Reset()
	assert.Panics(t, func() { Get() })
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		"DEBUG":   zerolog.DebugLevel,
		" info ":  zerolog.InfoLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"loud":    zerolog.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, parseLevel(in), "level %q", in)
	}
}
