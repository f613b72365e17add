package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	biquad "github.com/tphakala/go-audio-biquad"
)

func TestRunSingleDesign(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run([]string{"-points", "5", "peaking", "3000", "1.5", "6"}, &out))

	text := out.String()
	assert.Contains(t, text, "=== peaking @ 48000 Hz ===")
	assert.Contains(t, text, "Stable: true")
	assert.Contains(t, text, "freq (Hz)")
	assert.NotContains(t, text, "false")

	// Header plus five rows.
	table := text[strings.Index(text, "freq (Hz)"):]
	assert.Len(t, strings.Split(strings.TrimSpace(table), "\n"), 6)
}

func TestRunDemo(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run([]string{"-demo", "-rate", "44100"}, &out))

	for _, ft := range biquad.FilterTypes() {
		assert.Contains(t, out.String(), ft.String())
	}
	assert.NotContains(t, out.String(), "false")
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no_filter", nil},
		{"unknown_filter", []string{"wobble", "1", "2"}},
		{"missing_params", []string{"lowshelf", "100", "1"}},
		{"bad_number", []string{"notch", "sixty", "1"}},
		{"bad_rate", []string{"-rate", "0", "lowpass", "1000", "0"}},
		{"nan_frequency", []string{"bandpass", "NaN", "1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			assert.Error(t, run(tt.args, &out))
		})
	}
}

func TestParseConfig(t *testing.T) {
	cfg, err := parseConfig("highpass", []string{"250", "1", "ignored"}, biquad.RateCD)
	require.NoError(t, err)
	assert.Equal(t, biquad.TypeHighpass, cfg.Type)
	assert.Equal(t, biquad.RateCD, cfg.Rate)
	assert.InDelta(t, 250, cfg.Frequency, 1e-6)
	assert.InDelta(t, 1, cfg.Resonance, 1e-6)
}
