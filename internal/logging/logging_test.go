package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		raw    string
		want   zerolog.Level
		wantOK bool
	}{
		{"", zerolog.InfoLevel, false},
		{"DEBUG", zerolog.DebugLevel, true},
		{" warning ", zerolog.WarnLevel, true},
		{"off", zerolog.Disabled, true},
		{"loud", zerolog.InfoLevel, false},
	}
	for _, tt := range tests {
		got, ok := parseLevel(tt.raw)
		assert.Equal(t, tt.want, got, "level %q", tt.raw)
		assert.Equal(t, tt.wantOK, ok, "ok %q", tt.raw)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv(EnvLogLevel, "error")
	t.Setenv(EnvLogTimestamp, "false")
	t.Setenv(EnvLogNoColor, "not-a-bool")

	cfg := defaultConfig(ProfileRuntime)
	applyEnvOverrides(&cfg)

	assert.Equal(t, zerolog.ErrorLevel, cfg.Level)
	assert.False(t, cfg.Timestamp)
	assert.False(t, cfg.NoColor, "invalid bool leaves the default")
}

func TestNew_LevelAndFormat(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, Config{Level: zerolog.InfoLevel, NoColor: true})

	l.Debug().Msg("hidden")
	l.Info().Str("notebook", "a.ipynb").Msg("launched")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "launched")
	assert.Contains(t, out, "notebook=a.ipynb")
}

func TestLogger_DefaultIsNop(t *testing.T) {
	l := Logger()
	assert.Equal(t, zerolog.Disabled, l.GetLevel())
}
