package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"

	biquad "github.com/tphakala/go-audio-biquad"
	"github.com/tphakala/go-audio-biquad/internal/decode"
	"github.com/tphakala/go-audio-biquad/internal/effects"
	"github.com/tphakala/go-audio-biquad/internal/wavio"
)

// processStats summarizes one run.
type processStats struct {
	rate          int
	inputSamples  int64
	outputSamples int64
}

// newAllocator returns the allocator for sample buffers. A positive limit
// caps the samples held at once; otherwise chunked runs recycle buffers
// through a pool and one-shot runs use the heap.
func newAllocator(limit int, chunked bool) biquad.Allocator {
	switch {
	case limit > 0:
		return biquad.NewLimitedAllocator(limit)
	case chunked:
		return biquad.NewPooledAllocator()
	default:
		return biquad.DefaultAllocator
	}
}

func isWAV(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav", ".wave":
		return true
	}
	return false
}

// process applies cmd to the file at inputPath and writes outputPath.
func process(inputPath, outputPath string, cmd *command, opts *options) (*processStats, error) {
	chunked := opts.chunk > 0 && cmd.streamable()
	if opts.chunk > 0 && !chunked && opts.verbose {
		log.Printf("%s appends a tail, processing the whole file at once", cmd.name)
	}

	alloc := newAllocator(opts.maxSamples, chunked)
	if chunked && isWAV(inputPath) {
		return processStream(inputPath, outputPath, cmd, opts, alloc)
	}
	return processWhole(inputPath, outputPath, cmd, opts, alloc, chunked)
}

// processWhole decodes the input up front.
func processWhole(
	inputPath, outputPath string,
	cmd *command,
	opts *options,
	alloc biquad.Allocator,
	chunked bool,
) (*processStats, error) {
	input, err := decode.Load(inputPath, alloc)
	if err != nil {
		return nil, err
	}
	defer input.Release()

	if opts.verbose {
		log.Printf("Input format: %d Hz, %d samples (%s)", input.Rate, input.Len(), input.Duration())
	}

	proc, err := cmd.processor(input.Rate, alloc, opts.parallel)
	if err != nil {
		return nil, err
	}

	var output *biquad.SoundBuffer
	if chunked {
		output, err = processChunks(proc, input, opts.chunk, alloc)
	} else {
		output, err = proc.Process(input)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to apply %s: %w", cmd.name, err)
	}
	defer output.Release()

	if err := wavio.Save(outputPath, output); err != nil {
		return nil, err
	}

	return &processStats{
		rate:          input.Rate,
		inputSamples:  int64(input.Len()),
		outputSamples: int64(output.Len()),
	}, nil
}

// processChunks feeds successive chunks of in through proc. proc must
// preserve length.
func processChunks(proc effects.Processor, in *biquad.SoundBuffer, chunk int, alloc biquad.Allocator) (*biquad.SoundBuffer, error) {
	out, err := biquad.NewSoundBuffer(alloc, in.Len(), in.Rate, false)
	if err != nil {
		return nil, err
	}

	for start := 0; start < in.Len(); start += chunk {
		end := min(start+chunk, in.Len())
		res, err := proc.Process(in.Slice(start, end))
		if err != nil {
			out.Release()
			return nil, err
		}
		copy(out.Samples[start:end], res.Samples)
		res.Release()
	}
	return out, nil
}

// processStream reads, filters and writes one chunk at a time, so memory use
// is bounded by the chunk size.
func processStream(
	inputPath, outputPath string,
	cmd *command,
	opts *options,
	alloc biquad.Allocator,
) (stats *processStats, err error) {
	input, err := wavio.OpenStream(inputPath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = input.Close() }()

	if opts.verbose {
		log.Printf("Input format: %d Hz, %d channels, %d samples", input.Rate(), input.Channels(), input.TotalSamples())
	}

	proc, err := cmd.processor(input.Rate(), alloc, opts.parallel)
	if err != nil {
		return nil, err
	}

	output, err := wavio.CreateStream(outputPath, input.Rate())
	if err != nil {
		return nil, err
	}
	// Close output, capturing close errors on success path (the header is patched on close)
	defer func() {
		if closeErr := output.Close(); err == nil {
			err = closeErr
		}
	}()

	stats = &processStats{rate: input.Rate()}
	progress := newProgressTracker(input.TotalSamples(), opts.verbose)
	chunk := make([]biquad.Sample, opts.chunk)

	for {
		n, err := input.Read(chunk)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		res, err := proc.Process(biquad.WrapSamples(chunk[:n], input.Rate()))
		if err != nil {
			return nil, fmt.Errorf("failed to apply %s: %w", cmd.name, err)
		}
		err = output.Write(res.Samples)
		res.Release()
		if err != nil {
			return nil, err
		}

		stats.inputSamples += int64(n)
		stats.outputSamples += int64(n)
		progress.reportIfNeeded(stats.inputSamples)
	}

	return stats, nil
}

// progressTracker handles progress reporting.
type progressTracker struct {
	totalSamples int64
	lastProgress int
	verbose      bool
}

func newProgressTracker(totalSamples int64, verbose bool) *progressTracker {
	return &progressTracker{
		totalSamples: totalSamples,
		verbose:      verbose,
	}
}

// reportIfNeeded reports progress if threshold crossed.
func (p *progressTracker) reportIfNeeded(currentSamples int64) bool {
	if !p.verbose || p.totalSamples == 0 {
		return false
	}

	progress := int(float64(currentSamples) / float64(p.totalSamples) * percentScale)
	if progress >= p.lastProgress+progressInterval {
		log.Printf("Progress: %d%%", progress)
		p.lastProgress = progress
		return true
	}
	return false
}
