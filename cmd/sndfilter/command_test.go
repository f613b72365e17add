package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	biquad "github.com/tphakala/go-audio-biquad"
	"github.com/tphakala/go-audio-biquad/internal/effects"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name    string
		filter  string
		args    []string
		wantErr error
	}{
		{"lowpass", "lowpass", []string{"1000", "0.5"}, nil},
		{"extra_params_ignored", "notch", []string{"60", "10", "whatever", "1"}, nil},
		{"negative_gain", "highshelf", []string{"8000", "0.7", "-3"}, nil},
		{"missing_param", "lowpass", []string{"1000"}, errBadArgs},
		{"missing_gain", "peaking", []string{"1000", "1"}, errBadArgs},
		{"not_a_number", "bandpass", []string{"1k", "1"}, errBadArgs},
		{"out_of_float32_range", "allpass", []string{"1e60", "1"}, errBadArgs},
		{"unknown_filter", "wobble", []string{"1", "2"}, errBadFilter},
		{"compressor", "compressor", []string{"5", "-24", "30", "12", "0.003", "0.25"}, nil},
		{"compressor_short", "compressor", []string{"5", "-24", "30", "12", "0.003"}, errBadArgs},
		{"reverb", "reverb", []string{"2", "mediumhall1"}, nil},
		{"reverb_missing_preset", "reverb", []string{"2"}, errBadArgs},
		{"reverb_bad_tail", "reverb", []string{"long", "default"}, errBadArgs},
		{"reverb_unknown_preset", "reverb", []string{"2", "cathedral"}, effects.ErrUnknownPreset},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := parseCommand(tt.filter, tt.args)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, cmd)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.filter, cmd.name)
		})
	}
}

func TestParseCommandMessages(t *testing.T) {
	_, err := parseCommand("lowpass", nil)
	require.Error(t, err)
	assert.Equal(t, "bad arguments for lowpass", err.Error())

	_, err = parseCommand("wobble", nil)
	require.Error(t, err)
	assert.Equal(t, `bad filter "wobble"`, err.Error())
}

func TestParseCommandValues(t *testing.T) {
	cmd, err := parseCommand("peaking", []string{"3000", "1.5", "-6"})
	require.NoError(t, err)
	assert.Equal(t, biquad.TypePeaking, cmd.filterType)
	assert.Equal(t, []float32{3000, 1.5, -6}, cmd.params)
	assert.True(t, cmd.streamable())
	assert.Equal(t, "peaking 3000 1.5 -6", cmd.String())

	comp, err := parseCommand("compressor", []string{"5", "-24", "30", "12", "0.003", "0.25"})
	require.NoError(t, err)
	assert.Equal(t, effects.CompressorParams{
		Pregain: 5, Threshold: -24, Knee: 30, Ratio: 12, Attack: 0.003, Release: 0.25,
	}, comp.compressor)
	assert.True(t, comp.streamable())
	assert.Contains(t, comp.String(), "ratio=12")

	rev, err := parseCommand("reverb", []string{"1.5", "platelow"})
	require.NoError(t, err)
	assert.InDelta(t, 1.5, rev.tail, 1e-9)
	assert.Equal(t, "platelow", rev.preset)
	assert.False(t, rev.streamable())
	assert.Equal(t, "reverb tail=1.5s preset=platelow", rev.String())
}

func TestCommandProcessor(t *testing.T) {
	for _, spec := range [][]string{
		{"lowpass", "1000", "0"},
		{"lowshelf", "200", "0.7", "6"},
		{"compressor", "0", "-20", "6", "4", "0.01", "0.1"},
		{"reverb", "0.5", "default"},
	} {
		cmd, err := parseCommand(spec[0], spec[1:])
		require.NoError(t, err)

		proc, err := cmd.processor(biquad.RateCD, nil, true)
		require.NoError(t, err, spec[0])
		require.NotNil(t, proc)
	}

	// The compressor rejects a ratio below 1 once it is built.
	cmd, err := parseCommand("compressor", []string{"0", "-20", "6", "0.5", "0.01", "0.1"})
	require.NoError(t, err)
	_, err = cmd.processor(biquad.RateCD, nil, false)
	assert.ErrorIs(t, err, effects.ErrInvalidParams)

	// NaN parses but is not a valid filter parameter.
	cmd, err = parseCommand("lowpass", []string{"NaN", "0"})
	require.NoError(t, err)
	_, err = cmd.processor(biquad.RateCD, nil, false)
	assert.ErrorIs(t, err, biquad.ErrInvalidConfig)
}

func TestFilterHelp(t *testing.T) {
	lines := filterHelp()
	require.Len(t, lines, len(biquad.FilterTypes())+2)
	assert.Contains(t, lines[0], "lowpass")
	assert.Contains(t, lines[0], "cutoff resonance")
	assert.Contains(t, lines[len(lines)-1], "mediumhall1")
}
