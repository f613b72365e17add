// Command biquad-analyze prints the coefficients, poles and magnitude
// response of one biquad filter design.
//
// Usage:
//
//	biquad-analyze lowpass 1000 3
//	biquad-analyze -rate 44100 -points 24 peaking 3000 1.5 6
//	biquad-analyze -demo
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"math/cmplx"
	"os"
	"strconv"
	"text/tabwriter"

	biquad "github.com/tphakala/go-audio-biquad"
	"github.com/tphakala/go-audio-biquad/internal/analysis"
)

const (
	defaultRate     = biquad.RateDAT
	defaultPoints   = 12
	defaultIRLength = 8192

	lowestFrequency = 20.0
	nyquistDivisor  = 2
	paramBitSize    = 32

	// Largest deviation between the closed form and the FFT measurement
	// that is reported as agreement.
	agreementDB = 0.1
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("biquad-analyze", flag.ContinueOnError)
	var (
		rate     = fs.Int("rate", defaultRate, "Sample rate in Hz")
		points   = fs.Int("points", defaultPoints, "Number of log-spaced frequencies in the magnitude table")
		irLength = fs.Int("ir-length", defaultIRLength, "Impulse response length used for FFT measurement")
		demo     = fs.Bool("demo", false, "Analyze one design of every filter family")
	)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if *rate < 1 || *points < 1 || *irLength < 2 {
		return fmt.Errorf("rate, points and ir-length must be positive")
	}

	if *demo {
		return runDemo(stdout, *rate, *irLength)
	}

	pos := fs.Args()
	if len(pos) == 0 {
		return fmt.Errorf("usage: biquad-analyze [options] <filter> <params...>")
	}

	cfg, err := parseConfig(pos[0], pos[1:], *rate)
	if err != nil {
		return err
	}
	c, err := biquad.Design(cfg)
	if err != nil {
		return err
	}

	report := analysis.Analyze(c, float64(*rate), *irLength)
	printReport(stdout, cfg, report)
	return printMagnitudeTable(stdout, c, float64(*rate), *points, *irLength)
}

func parseConfig(name string, args []string, rate int) (*biquad.Config, error) {
	ft, err := biquad.ParseFilterType(name)
	if err != nil {
		return nil, err
	}
	if len(args) < ft.NumParams() {
		return nil, fmt.Errorf("bad arguments for %s: need %d parameters", ft, ft.NumParams())
	}

	params := make([]float32, ft.NumParams())
	for i := range params {
		v, err := strconv.ParseFloat(args[i], paramBitSize)
		if err != nil {
			return nil, fmt.Errorf("bad arguments for %s: %w", ft, err)
		}
		params[i] = float32(v)
	}
	return biquad.ConfigFromParams(ft, rate, params)
}

func printReport(w io.Writer, cfg *biquad.Config, r analysis.Report) {
	c := r.Coefficients
	fmt.Fprintf(w, "=== %s @ %d Hz ===\n", cfg.Type, cfg.Rate)
	fmt.Fprintf(w, "Coefficients:\n")
	fmt.Fprintf(w, "  b0=%.9g b1=%.9g b2=%.9g\n", c.B0, c.B1, c.B2)
	fmt.Fprintf(w, "  a1=%.9g a2=%.9g\n", c.A1, c.A2)
	fmt.Fprintf(w, "Poles: %s, %s (max radius %.6f)\n", formatRoot(r.Poles[0]), formatRoot(r.Poles[1]), r.PoleRadius)
	fmt.Fprintf(w, "Zeros: %s, %s\n", formatRoot(r.Zeros[0]), formatRoot(r.Zeros[1]))
	fmt.Fprintf(w, "Stable: %v\n", r.Stable)
	fmt.Fprintf(w, "DC gain: %.3f dB, Nyquist gain: %.3f dB\n", r.DCGainDB, r.NyquistGainDB)
	fmt.Fprintf(w, "Impulse response: energy %.6g, decays below -80 dB after %d of %d samples\n",
		r.Energy, r.DecaySamples, r.ResponseLength)
}

func formatRoot(z complex128) string {
	if cmplx.IsNaN(z) {
		return "NaN"
	}
	return fmt.Sprintf("%.6f%+.6fi", real(z), imag(z))
}

// printMagnitudeTable compares the closed-form response against the FFT of
// the impulse response at log-spaced frequencies.
func printMagnitudeTable(w io.Writer, c biquad.Coefficients, rate float64, points, irLength int) error {
	bins := analysis.FrequencyResponse(c, rate, irLength)
	binWidth := rate / float64(irLength)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "freq (Hz)\tclosed form (dB)\tFFT (dB)\tagree\t\n")
	for _, f := range analysis.LogSpacedFrequencies(lowestFrequency, rate/nyquistDivisor, points) {
		k := min(int(f/binWidth+0.5), len(bins)-1)
		closed := analysis.MagnitudeDB(c, bins[k].Frequency, rate)
		measured := bins[k].MagnitudeDB
		agree := closed-measured < agreementDB && measured-closed < agreementDB
		fmt.Fprintf(tw, "%.1f\t%.3f\t%.3f\t%v\t\n", bins[k].Frequency, closed, measured, agree)
	}
	return tw.Flush()
}

// runDemo analyzes a representative design of each family.
func runDemo(w io.Writer, rate, irLength int) error {
	designs := []biquad.Config{
		{Type: biquad.TypeLowpass, Frequency: 1000, Resonance: 3},
		{Type: biquad.TypeHighpass, Frequency: 200, Resonance: 0},
		{Type: biquad.TypeBandpass, Frequency: 2000, Q: 2},
		{Type: biquad.TypeNotch, Frequency: 60, Q: 10},
		{Type: biquad.TypePeaking, Frequency: 3000, Q: 1.5, Gain: 6},
		{Type: biquad.TypeAllpass, Frequency: 1500, Q: 0.7},
		{Type: biquad.TypeLowshelf, Frequency: 150, Q: 0.7, Gain: 4},
		{Type: biquad.TypeHighshelf, Frequency: 8000, Q: 0.7, Gain: -6},
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "filter\tstable\tpole radius\tDC (dB)\tNyquist (dB)\tdecay (samples)\t\n")
	for i := range designs {
		cfg := &designs[i]
		cfg.Rate = rate
		c, err := biquad.Design(cfg)
		if err != nil {
			return fmt.Errorf("%s: %w", cfg.Type, err)
		}
		r := analysis.Analyze(c, float64(rate), irLength)
		fmt.Fprintf(tw, "%s\t%v\t%.6f\t%.3f\t%.3f\t%d\t\n",
			cfg.Type, r.Stable, r.PoleRadius, r.DCGainDB, r.NyquistGainDB, r.DecaySamples)
	}
	return tw.Flush()
}
