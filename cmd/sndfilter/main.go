// Command sndfilter applies a biquad filter, a compressor or a reverb to an
// audio file and writes the result as a stereo 16-bit WAV file.
//
// Usage:
//
//	sndfilter input.wav output.wav lowpass 1000 0.5
//	sndfilter input.mp3 output.wav peaking 3000 1 6
//	sndfilter -chunk 4096 long.wav out.wav highshelf 8000 0.7 -3   # stream in 4096-sample chunks
//	sndfilter input.wav output.wav compressor 5 -24 30 12 0.003 0.25
//	sndfilter input.wav output.wav reverb 2 mediumhall1
//
// Input may be WAV, MP3, Ogg Vorbis or AIFF. Streaming with -chunk reads and
// writes WAV incrementally; other inputs are decoded up front.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime/pprof"
	"time"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		log.Fatal(err)
	}
}

// options holds the parsed command line flags.
type options struct {
	chunk      int
	verbose    bool
	maxSamples int
	cpuprofile string
	parallel   bool
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("sndfilter", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var opts options
	fs.IntVar(&opts.chunk, "chunk", defaultChunkSize, "Process in chunks of N samples (0 = whole file at once)")
	fs.BoolVar(&opts.verbose, "v", false, "Verbose output")
	fs.IntVar(&opts.maxSamples, "max-samples", defaultMaxSample, "Limit sample buffer allocations to N samples (0 = unlimited)")
	fs.StringVar(&opts.cpuprofile, "cpuprofile", "", "Write CPU profile to file (for PGO)")
	fs.BoolVar(&opts.parallel, "parallel", true, "Process the two channels of effects concurrently")
	fs.Usage = func() { printUsage(fs, stderr) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	// Too few arguments prints help and exits cleanly.
	pos := fs.Args()
	if len(pos) < minRequiredArgs {
		printUsage(fs, stderr)
		return nil
	}
	if opts.chunk < 0 {
		return fmt.Errorf("chunk size must not be negative, got %d", opts.chunk)
	}
	if opts.maxSamples < 0 {
		return fmt.Errorf("max-samples must not be negative, got %d", opts.maxSamples)
	}

	cmd, err := parseCommand(pos[filterArg], pos[firstParamArg:])
	if errors.Is(err, errBadFilter) {
		printUsage(fs, stderr)
	}
	if err != nil {
		return err
	}

	// Start CPU profiling if requested (for PGO)
	if opts.cpuprofile != "" {
		f, err := os.Create(opts.cpuprofile)
		if err != nil {
			return fmt.Errorf("could not create CPU profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return fmt.Errorf("could not start CPU profile: %w", err)
		}
		defer func() {
			pprof.StopCPUProfile()
			_ = f.Close()
		}()
	}

	inputPath := pos[inputArg]
	outputPath := pos[outputArg]

	if opts.verbose {
		log.Printf("Input: %s", inputPath)
		log.Printf("Output: %s", outputPath)
		log.Printf("Filter: %s", cmd)
		if opts.chunk > 0 {
			log.Printf("Chunk size: %d samples", opts.chunk)
		} else {
			log.Printf("Chunk size: whole file")
		}
	}

	start := time.Now()
	stats, err := process(inputPath, outputPath, cmd, &opts)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	// Print summary
	fmt.Fprintf(stdout, "Filtered %s -> %s (%s)\n", filepath.Base(inputPath), filepath.Base(outputPath), cmd.name)
	fmt.Fprintf(stdout, "  %d samples -> %d samples at %d Hz\n", stats.inputSamples, stats.outputSamples, stats.rate)
	if seconds := elapsed.Seconds(); seconds > 0 && stats.rate > 0 {
		fmt.Fprintf(stdout, "  Duration: %.2fs, Speed: %.1fx realtime\n",
			seconds, float64(stats.inputSamples)/float64(stats.rate)/seconds)
	}

	return nil
}

func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintf(w, "Usage: sndfilter [options] input output <filter> <params...>\n\n")
	fmt.Fprintf(w, "Filters:\n")
	for _, line := range filterHelp() {
		fmt.Fprintf(w, "  %s\n", line)
	}
	fmt.Fprintf(w, "\nOptions:\n")
	fs.PrintDefaults()
	fmt.Fprintf(w, "\nExamples:\n")
	fmt.Fprintf(w, "  sndfilter in.wav out.wav lowpass 1000 0.5       # Lowpass at 1 kHz\n")
	fmt.Fprintf(w, "  sndfilter in.mp3 out.wav notch 60 10            # Remove mains hum\n")
	fmt.Fprintf(w, "  sndfilter in.wav out.wav reverb 2 largehall1    # Hall with a 2s tail\n")
}
