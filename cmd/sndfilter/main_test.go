package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	biquad "github.com/tphakala/go-audio-biquad"
	"github.com/tphakala/go-audio-biquad/internal/testutil"
	"github.com/tphakala/go-audio-biquad/internal/wavio"
)

// writeInput saves n frames of noise as a WAV file and returns its path.
func writeInput(t *testing.T, n int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "in.wav")
	require.NoError(t, wavio.Save(path, biquad.WrapSamples(testutil.Noise(n, 0.6), biquad.RateDAT)))
	return path
}

func runCLI(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err = run(args, &out, &errOut)
	return out.String(), errOut.String(), err
}

func TestRunUsage(t *testing.T) {
	for _, args := range [][]string{nil, {"in.wav"}, {"in.wav", "out.wav"}} {
		_, stderr, err := runCLI(t, args...)
		require.NoError(t, err, "too few arguments is not an error")
		assert.Contains(t, stderr, "Usage: sndfilter")
		assert.Contains(t, stderr, "highshelf")
		assert.Contains(t, stderr, "-chunk")
	}

	_, stderr, err := runCLI(t, "-h")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Usage: sndfilter")
}

func TestRunBadFilter(t *testing.T) {
	in := writeInput(t, 100)
	out := filepath.Join(t.TempDir(), "out.wav")

	_, stderr, err := runCLI(t, in, out, "wobble", "1", "2")
	require.ErrorIs(t, err, errBadFilter)
	assert.Contains(t, stderr, "Usage: sndfilter")
	assert.NoFileExists(t, out)
}

func TestRunBadArguments(t *testing.T) {
	in := writeInput(t, 100)
	out := filepath.Join(t.TempDir(), "out.wav")

	stdout, stderr, err := runCLI(t, in, out, "peaking", "1000", "1")
	require.ErrorIs(t, err, errBadArgs)
	assert.Contains(t, err.Error(), "peaking")
	assert.Empty(t, stdout)
	assert.NotContains(t, stderr, "Usage:")
	assert.NoFileExists(t, out)
}

func TestRunInvalidFlags(t *testing.T) {
	_, _, err := runCLI(t, "-chunk", "-5", "a.wav", "b.wav", "lowpass", "1", "1")
	require.Error(t, err)

	_, _, err = runCLI(t, "-max-samples", "-1", "a.wav", "b.wav", "lowpass", "1", "1")
	require.Error(t, err)

	_, _, err = runCLI(t, "-bogus", "a.wav", "b.wav", "lowpass", "1", "1")
	require.Error(t, err)
}

func TestRunMissingInput(t *testing.T) {
	dir := t.TempDir()
	_, _, err := runCLI(t, filepath.Join(dir, "missing.wav"), filepath.Join(dir, "out.wav"), "lowpass", "1000", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open input file")
}

func TestRunFilterMatchesLibrary(t *testing.T) {
	in := writeInput(t, 5000)
	out := filepath.Join(t.TempDir(), "out.wav")

	stdout, _, err := runCLI(t, in, out, "lowpass", "2000", "3")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Filtered in.wav -> out.wav (lowpass)")
	assert.Contains(t, stdout, "5000 samples -> 5000 samples at 48000 Hz")

	input, err := wavio.Load(in, nil)
	require.NoError(t, err)
	want, err := biquad.Apply(biquad.Lowpass(biquad.RateDAT, 2000, 3), input)
	require.NoError(t, err)

	got, err := wavio.Load(out, nil)
	require.NoError(t, err)
	assert.Equal(t, biquad.RateDAT, got.Rate)
	require.Equal(t, want.Len(), got.Len())
	quantize := func(x float32) float32 { return wavio.PCM16ToFloat(wavio.FloatToPCM16(x)) }
	for i, w := range want.Samples {
		require.Equal(t, biquad.Sample{L: quantize(w.L), R: quantize(w.R)}, got.Samples[i], "frame %d", i)
	}
}

func TestRunStreamingMatchesOneShot(t *testing.T) {
	in := writeInput(t, 20000)
	dir := t.TempDir()

	commands := [][]string{
		{"lowpass", "1000", "0.5"},
		{"highshelf", "8000", "0.7", "-3"},
		{"allpass", "3000", "0.7"},
		{"compressor", "5", "-24", "30", "12", "0.003", "0.25"},
	}

	for _, cmd := range commands {
		t.Run(cmd[0], func(t *testing.T) {
			whole := filepath.Join(dir, cmd[0]+"-whole.wav")
			_, _, err := runCLI(t, append([]string{in, whole}, cmd...)...)
			require.NoError(t, err)

			for _, chunk := range []string{"1", "333", "4096"} {
				streamed := filepath.Join(dir, cmd[0]+"-"+chunk+".wav")
				_, _, err := runCLI(t, append([]string{"-chunk", chunk, "-v", in, streamed}, cmd...)...)
				require.NoError(t, err)

				a, err := os.ReadFile(whole)
				require.NoError(t, err)
				b, err := os.ReadFile(streamed)
				require.NoError(t, err)
				assert.True(t, bytes.Equal(a, b), "chunk %s output differs from one-shot output", chunk)
			}
		})
	}
}

func TestRunReverbAppendsTail(t *testing.T) {
	in := writeInput(t, 1000)
	out := filepath.Join(t.TempDir(), "out.wav")

	// -chunk is ignored for effects with a tail.
	_, _, err := runCLI(t, "-chunk", "256", "-parallel=false", in, out, "reverb", "0.5", "smallroom1")
	require.NoError(t, err)

	got, err := wavio.Load(out, nil)
	require.NoError(t, err)
	assert.Equal(t, 1000+24000, got.Len())
}

func TestRunAllocationBudget(t *testing.T) {
	in := writeInput(t, 1000)
	dir := t.TempDir()

	// Input and output both need to fit.
	_, _, err := runCLI(t, "-max-samples", "1500", in, filepath.Join(dir, "a.wav"), "notch", "60", "10")
	require.ErrorIs(t, err, biquad.ErrAllocation)

	_, _, err = runCLI(t, "-max-samples", "2000", in, filepath.Join(dir, "b.wav"), "notch", "60", "10")
	require.NoError(t, err)

	// Streaming only holds one chunk at a time.
	_, _, err = runCLI(t, "-max-samples", "100", "-chunk", "100", in, filepath.Join(dir, "c.wav"), "notch", "60", "10")
	require.NoError(t, err)
}

func TestRunCPUProfile(t *testing.T) {
	in := writeInput(t, 500)
	dir := t.TempDir()
	prof := filepath.Join(dir, "cpu.pprof")

	_, _, err := runCLI(t, "-cpuprofile", prof, in, filepath.Join(dir, "out.wav"), "bandpass", "1000", "2")
	require.NoError(t, err)
	assert.FileExists(t, prof)
}
