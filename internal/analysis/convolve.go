package analysis

import (
	"slices"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/tphakala/go-audio-biquad/internal/simdops"
)

const (
	// minKernelForFFT is the kernel length from which overlap-save beats
	// direct convolution.
	minKernelForFFT = 400

	// minFFTSize is the smallest transform the FIR filter uses.
	minFFTSize = 512
)

// FIR applies a truncated impulse response as a causal FIR filter:
// y[n] = Σ h[k]·x[n-k], with x taken as zero before the first sample.
// Used to check the recurrence against its own impulse response.
type FIR struct {
	fft       *fourier.FFT
	fftSize   int
	blockSize int
	kernel    []float64

	kernelFFT []complex128
	scale     float64

	block   []float64
	spec    []complex128
	product []complex128
	result  []float64
}

// NewFIR prepares h for repeated filtering. It returns nil for an empty
// kernel.
func NewFIR(h []float64) *FIR {
	if len(h) == 0 {
		return nil
	}

	f := &FIR{kernel: slices.Clone(h)}
	if len(h) < minKernelForFFT {
		return f
	}

	fftSize := minFFTSize
	for fftSize < 2*len(h) {
		fftSize *= 2
	}

	f.fft = fourier.NewFFT(fftSize)
	f.fftSize = fftSize
	f.blockSize = fftSize - len(h) + 1
	f.scale = 1 / float64(fftSize)

	padded := make([]float64, fftSize)
	copy(padded, h)
	f.kernelFFT = f.fft.Coefficients(nil, padded)

	bins := fftSize/hermitianDivisor + 1
	f.block = make([]float64, fftSize)
	f.spec = make([]complex128, bins)
	f.product = make([]complex128, bins)
	f.result = make([]float64, fftSize)
	return f
}

// Filter returns len(x) output samples.
func (f *FIR) Filter(x []float64) []float64 {
	out := make([]float64, len(x))
	if len(x) == 0 {
		return out
	}

	// Leading zeros stand in for the signal before x[0].
	overlap := len(f.kernel) - 1
	padded := make([]float64, overlap+len(x))
	copy(padded[overlap:], x)

	if f.fft == nil {
		reversed := slices.Clone(f.kernel)
		slices.Reverse(reversed)
		simdops.Float64Ops().ConvolveValid(out, padded, reversed)
		return out
	}

	f.overlapSave(out, padded)
	return out
}

// overlapSave fills out from padded, blockSize samples per transform. The
// first overlap samples of each inverse transform wrap around and are
// discarded.
func (f *FIR) overlapSave(out, padded []float64) {
	ops := simdops.Float64Ops()
	overlap := len(f.kernel) - 1

	for pos := 0; pos < len(out); pos += f.blockSize {
		clear(f.block)
		copy(f.block, padded[pos:])

		f.spec = f.fft.Coefficients(f.spec, f.block)
		ops.MulComplex(f.product, f.spec, f.kernelFFT)
		f.result = f.fft.Sequence(f.result, f.product)
		// gonum does not normalize the inverse transform.
		ops.Scale(f.result, f.result, f.scale)

		n := min(f.blockSize, len(out)-pos)
		copy(out[pos:pos+n], f.result[overlap:overlap+n])
	}
}
