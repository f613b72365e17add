package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	biquad "github.com/tphakala/go-audio-biquad"
	"github.com/tphakala/go-audio-biquad/internal/effects"
)

var (
	errBadFilter = errors.New("bad filter")
	errBadArgs   = errors.New("bad arguments")
)

const (
	compressorName = "compressor"
	reverbName     = "reverb"
)

// command is a parsed filter invocation. Building the processor waits for
// the sample rate of the input.
type command struct {
	name       string
	filterType biquad.FilterType
	params     []float32
	compressor effects.CompressorParams
	tail       float64
	preset     string
}

// parseCommand validates the filter name and its parameters. Parameters
// beyond the required count are ignored.
func parseCommand(name string, args []string) (*command, error) {
	switch name {
	case compressorName:
		return parseCompressor(args)
	case reverbName:
		return parseReverb(args)
	}

	ft, err := biquad.ParseFilterType(name)
	if err != nil {
		return nil, fmt.Errorf("%w %q", errBadFilter, name)
	}

	params, err := parseFloats(ft.String(), args, ft.NumParams())
	if err != nil {
		return nil, err
	}
	p32 := make([]float32, len(params))
	for i, v := range params {
		p32[i] = float32(v)
	}
	return &command{name: ft.String(), filterType: ft, params: p32}, nil
}

func parseCompressor(args []string) (*command, error) {
	p, err := parseFloats(compressorName, args, compressorParams)
	if err != nil {
		return nil, err
	}
	return &command{
		name: compressorName,
		compressor: effects.CompressorParams{
			Pregain:   p[0],
			Threshold: p[1],
			Knee:      p[2],
			Ratio:     p[3],
			Attack:    p[4],
			Release:   p[5],
		},
	}, nil
}

func parseReverb(args []string) (*command, error) {
	if len(args) < reverbParams {
		return nil, badArgs(reverbName)
	}
	tail, err := parseFloats(reverbName, args[:1], 1)
	if err != nil {
		return nil, err
	}
	if _, err := effects.LookupReverbPreset(args[1]); err != nil {
		return nil, fmt.Errorf("invalid reverb preset: %w", err)
	}
	return &command{name: reverbName, tail: tail[0], preset: args[1]}, nil
}

// parseFloats reads the first n arguments as numbers.
func parseFloats(filter string, args []string, n int) ([]float64, error) {
	if len(args) < n {
		return nil, badArgs(filter)
	}

	out := make([]float64, n)
	for i := range n {
		v, err := strconv.ParseFloat(args[i], paramBitSize)
		if err != nil {
			return nil, fmt.Errorf("%w: parameter %d %q", badArgs(filter), i+1, args[i])
		}
		out[i] = v
	}
	return out, nil
}

func badArgs(filter string) error {
	return fmt.Errorf("%w for %s", errBadArgs, filter)
}

// streamable reports whether the command preserves length and can run over
// successive chunks.
func (c *command) streamable() bool {
	return c.name != reverbName
}

func (c *command) String() string {
	switch c.name {
	case compressorName:
		p := c.compressor
		return fmt.Sprintf("compressor pregain=%gdB threshold=%gdB knee=%gdB ratio=%g attack=%gs release=%gs",
			p.Pregain, p.Threshold, p.Knee, p.Ratio, p.Attack, p.Release)
	case reverbName:
		return fmt.Sprintf("reverb tail=%gs preset=%s", c.tail, c.preset)
	}

	parts := make([]string, len(c.params))
	for i, v := range c.params {
		parts[i] = strconv.FormatFloat(float64(v), 'g', -1, paramBitSize)
	}
	return c.name + " " + strings.Join(parts, " ")
}

// processor builds the filter or effect for audio at rate.
func (c *command) processor(rate int, alloc biquad.Allocator, parallel bool) (effects.Processor, error) {
	switch c.name {
	case compressorName:
		comp, err := effects.NewCompressor(rate, c.compressor,
			effects.WithAllocator(alloc), effects.Parallel(parallel))
		if err != nil {
			return nil, err
		}
		return comp, nil
	case reverbName:
		rev, err := effects.NewReverb(rate, c.preset, c.tail,
			effects.WithAllocator(alloc), effects.Parallel(parallel))
		if err != nil {
			return nil, err
		}
		return rev, nil
	}

	cfg, err := biquad.ConfigFromParams(c.filterType, rate, c.params)
	if err != nil {
		return nil, err
	}
	f, err := biquad.New(cfg, biquad.WithAllocator(alloc))
	if err != nil {
		return nil, err
	}
	return f, nil
}

// filterHelp lists every filter with its parameters.
func filterHelp() []string {
	lines := make([]string, 0, len(biquad.FilterTypes())+2)
	for _, ft := range biquad.FilterTypes() {
		params := "freq Q"
		if ft.UsesResonance() {
			params = "cutoff resonance"
		}
		if ft.HasGain() {
			params += " gain"
		}
		lines = append(lines, fmt.Sprintf("%-10s %s", ft, params))
	}
	lines = append(lines,
		fmt.Sprintf("%-10s pregain threshold knee ratio attack release", compressorName),
		fmt.Sprintf("%-10s tail preset (%s)", reverbName, strings.Join(effects.ReverbPresets(), ", ")),
	)
	return lines
}
