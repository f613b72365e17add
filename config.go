package biquad

import (
	"fmt"
	"math"
	"strings"
)

// FilterType enumerates the supported filter families.
type FilterType int

const (
	// TypeLowpass passes frequencies below the cutoff.
	TypeLowpass FilterType = iota

	// TypeHighpass passes frequencies above the cutoff.
	TypeHighpass

	// TypeBandpass passes a band around the center frequency.
	TypeBandpass

	// TypeNotch rejects a band around the center frequency.
	TypeNotch

	// TypePeaking boosts or cuts a band around the center frequency.
	TypePeaking

	// TypeAllpass shifts phase around the center frequency.
	TypeAllpass

	// TypeLowshelf boosts or cuts everything below the corner frequency.
	TypeLowshelf

	// TypeHighshelf boosts or cuts everything above the corner frequency.
	TypeHighshelf
)

var filterTypeNames = [...]string{
	TypeLowpass:   "lowpass",
	TypeHighpass:  "highpass",
	TypeBandpass:  "bandpass",
	TypeNotch:     "notch",
	TypePeaking:   "peaking",
	TypeAllpass:   "allpass",
	TypeLowshelf:  "lowshelf",
	TypeHighshelf: "highshelf",
}

// String returns the command-line name of the filter type.
func (t FilterType) String() string {
	if t < 0 || int(t) >= len(filterTypeNames) {
		return fmt.Sprintf("FilterType(%d)", int(t))
	}
	return filterTypeNames[t]
}

// NumParams returns how many positional parameters the family takes on the
// command line: frequency plus resonance or Q, and gain where applicable.
func (t FilterType) NumParams() int {
	switch t {
	case TypePeaking, TypeLowshelf, TypeHighshelf:
		return 3
	default:
		return 2
	}
}

// HasGain reports whether the family uses the Gain parameter.
func (t FilterType) HasGain() bool {
	return t.NumParams() == 3
}

// UsesResonance reports whether the second parameter is a resonance in dB
// rather than a Q factor.
func (t FilterType) UsesResonance() bool {
	return t == TypeLowpass || t == TypeHighpass
}

// FilterTypes returns every supported family in declaration order.
func FilterTypes() []FilterType {
	types := make([]FilterType, len(filterTypeNames))
	for i := range filterTypeNames {
		types[i] = FilterType(i)
	}
	return types
}

// ParseFilterType maps a command-line name to a filter family.
func ParseFilterType(name string) (FilterType, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range filterTypeNames {
		if n == name {
			return FilterType(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown filter type %q", ErrInvalidConfig, name)
}

// Config holds filter configuration.
type Config struct {
	// Type selects the filter family.
	Type FilterType

	// Rate is the sample rate of the audio in Hz.
	Rate int

	// Frequency is the cutoff, center or corner frequency in Hz depending on
	// the family. Values outside (0, Rate/2) select the family's degenerate
	// branch; they are not an error.
	Frequency float32

	// Resonance is the boost near cutoff in dB. Used by lowpass and highpass.
	Resonance float32

	// Q is the inverse fractional bandwidth. Used by every family except
	// lowpass and highpass. Non-positive values select degenerate branches.
	Q float32

	// Gain is the boost or cut in dB. Used by peaking and the shelves.
	Gain float32
}

// Validate checks if the configuration is valid.
//
// Out-of-range frequencies and Q values are defined behavior and pass
// validation. Only an unknown type, a non-positive rate, or non-finite
// parameters are rejected.
func (c *Config) Validate() error {
	if c.Type < 0 || int(c.Type) >= len(filterTypeNames) {
		return fmt.Errorf("%w: unknown filter type %d", ErrInvalidConfig, int(c.Type))
	}

	if c.Rate < minRate {
		return fmt.Errorf("%w: sample rate must be positive", ErrInvalidConfig)
	}

	params := []struct {
		name  string
		value float32
	}{
		{"frequency", c.Frequency},
		{"resonance", c.Resonance},
		{"Q", c.Q},
		{"gain", c.Gain},
	}
	for _, p := range params {
		v := float64(p.value)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s must be finite", ErrInvalidConfig, p.name)
		}
	}

	return nil
}

// Coefficients synthesizes the coefficients described by the configuration.
// It does not validate; call Validate first for untrusted input.
func (c *Config) Coefficients() Coefficients {
	switch c.Type {
	case TypeLowpass:
		return Lowpass(c.Rate, c.Frequency, c.Resonance)
	case TypeHighpass:
		return Highpass(c.Rate, c.Frequency, c.Resonance)
	case TypeBandpass:
		return Bandpass(c.Rate, c.Frequency, c.Q)
	case TypeNotch:
		return Notch(c.Rate, c.Frequency, c.Q)
	case TypePeaking:
		return Peaking(c.Rate, c.Frequency, c.Q, c.Gain)
	case TypeAllpass:
		return Allpass(c.Rate, c.Frequency, c.Q)
	case TypeLowshelf:
		return Lowshelf(c.Rate, c.Frequency, c.Q, c.Gain)
	case TypeHighshelf:
		return Highshelf(c.Rate, c.Frequency, c.Q, c.Gain)
	default:
		return Passthrough()
	}
}

// Design validates config and synthesizes its coefficients.
func Design(config *Config) (Coefficients, error) {
	if config == nil {
		return Coefficients{}, fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	if err := config.Validate(); err != nil {
		return Coefficients{}, err
	}
	return config.Coefficients(), nil
}

// ConfigFromParams builds a configuration from the positional parameters of
// the command surface: frequency, then resonance or Q, then gain.
// Missing parameters are an error; extra ones are ignored.
func ConfigFromParams(t FilterType, rate int, params []float32) (*Config, error) {
	if len(params) < t.NumParams() {
		return nil, fmt.Errorf("%w: %s takes %d parameters, got %d",
			ErrInvalidConfig, t, t.NumParams(), len(params))
	}

	cfg := &Config{Type: t, Rate: rate, Frequency: params[0]}
	if t.UsesResonance() {
		cfg.Resonance = params[1]
	} else {
		cfg.Q = params[1]
	}
	if t.HasGain() {
		cfg.Gain = params[2]
	}

	return cfg, nil
}

// New creates a filter state with zero history from the configuration.
func New(config *Config, opts ...Option) (*FilterState, error) {
	c, err := Design(config)
	if err != nil {
		return nil, err
	}

	return NewFilterState(c, opts...), nil
}
