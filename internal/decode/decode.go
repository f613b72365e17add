// Package decode loads compressed and uncompressed audio files into stereo
// sound buffers. The container is chosen by file extension.
package decode

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"
	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"

	biquad "github.com/tphakala/go-audio-biquad"
	"github.com/tphakala/go-audio-biquad/internal/wavio"
)

const (
	pcm16Bits      = 16
	bytesPerSample = 2
	stereoChannels = 2
	mp3FrameBytes  = stereoChannels * bytesPerSample
	readBlockBytes = 16 * 1024
)

// extensions maps lowercase file extensions to their loaders.
var extensions = map[string]func(f *os.File, alloc biquad.Allocator) (*biquad.SoundBuffer, error){
	".wav":  func(f *os.File, alloc biquad.Allocator) (*biquad.SoundBuffer, error) { return wavio.Decode(f, alloc) },
	".wave": func(f *os.File, alloc biquad.Allocator) (*biquad.SoundBuffer, error) { return wavio.Decode(f, alloc) },
	".mp3":  func(f *os.File, alloc biquad.Allocator) (*biquad.SoundBuffer, error) { return MP3(f, alloc) },
	".ogg":  func(f *os.File, alloc biquad.Allocator) (*biquad.SoundBuffer, error) { return Ogg(f, alloc) },
	".oga":  func(f *os.File, alloc biquad.Allocator) (*biquad.SoundBuffer, error) { return Ogg(f, alloc) },
	".aif":  func(f *os.File, alloc biquad.Allocator) (*biquad.SoundBuffer, error) { return AIFF(f, alloc) },
	".aiff": func(f *os.File, alloc biquad.Allocator) (*biquad.SoundBuffer, error) { return AIFF(f, alloc) },
}

// Extensions returns the supported file extensions in sorted order.
func Extensions() []string {
	exts := make([]string, 0, len(extensions))
	for ext := range extensions {
		exts = append(exts, ext)
	}
	slices.Sort(exts)
	return exts
}

// Supported reports whether path has an extension Load understands.
func Supported(path string) bool {
	_, ok := extensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Load decodes the audio file at path into a buffer allocated through alloc.
func Load(path string, alloc biquad.Allocator) (*biquad.SoundBuffer, error) {
	ext := strings.ToLower(filepath.Ext(path))
	load, ok := extensions[ext]
	if !ok {
		return nil, fmt.Errorf("%w: unknown file extension %q", wavio.ErrUnsupportedFormat, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer func() { _ = f.Close() }()

	buf, err := load(f, alloc)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return buf, nil
}

// mp3Reader is the part of gomp3.Decoder the loader needs.
type mp3Reader interface {
	Read([]byte) (int, error)
	SampleRate() int
	Length() int64
}

// MP3 decodes an MPEG-1/2 Layer III stream. The decoder always produces
// 16-bit stereo, which is scaled like WAVE input.
//
// When r is seekable the decoded length is known up front and samples are
// written straight into the buffer from alloc. Otherwise they are collected
// on the heap first, so peak memory is about twice the output and only the
// final copy counts against alloc.
func MP3(r io.Reader, alloc biquad.Allocator) (*biquad.SoundBuffer, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%w: mp3: %w", wavio.ErrMalformed, err)
	}
	return readMP3(dec, alloc)
}

func readMP3(dec mp3Reader, alloc biquad.Allocator) (*biquad.SoundBuffer, error) {
	if length := dec.Length(); length >= 0 {
		return readMP3Sized(dec, int(length/mp3FrameBytes), alloc)
	}

	var samples []biquad.Sample
	err := pumpMP3(dec, func(pcm []byte) bool {
		start := len(samples)
		samples = append(samples, make([]biquad.Sample, len(pcm)/mp3FrameBytes)...)
		decodeMP3Frames(samples[start:], pcm)
		return true
	})
	if err != nil {
		return nil, err
	}
	return toBuffer(samples, dec.SampleRate(), alloc)
}

func readMP3Sized(dec mp3Reader, frames int, alloc biquad.Allocator) (*biquad.SoundBuffer, error) {
	buf, err := newBuffer(frames, dec.SampleRate(), alloc)
	if err != nil {
		return nil, err
	}

	filled := 0
	err = pumpMP3(dec, func(pcm []byte) bool {
		n := min(len(pcm)/mp3FrameBytes, frames-filled)
		decodeMP3Frames(buf.Samples[filled:filled+n], pcm)
		filled += n
		return filled < frames
	})
	if err == nil && filled < frames {
		err = fmt.Errorf("%w: mp3: decoded %d of %d frames", wavio.ErrMalformed, filled, frames)
	}
	if err != nil {
		buf.Release()
		return nil, err
	}
	return buf, nil
}

// pumpMP3 reads dec to the end and hands each run of whole frames to emit.
// A partial frame is carried into the next read and dropped at the end.
// emit returns false to stop reading.
func pumpMP3(dec mp3Reader, emit func(pcm []byte) bool) error {
	var pending []byte
	block := make([]byte, readBlockBytes)

	for {
		n, err := dec.Read(block)
		pending = append(pending, block[:n]...)

		if whole := len(pending) / mp3FrameBytes * mp3FrameBytes; whole > 0 {
			if !emit(pending[:whole]) {
				return nil
			}
			pending = pending[:copy(pending, pending[whole:])]
		}

		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: mp3: %w", wavio.ErrMalformed, err)
		}
		if n == 0 {
			return nil
		}
	}
}

func decodeMP3Frames(dst []biquad.Sample, pcm []byte) {
	for i := range dst {
		l := int16(binary.LittleEndian.Uint16(pcm[i*mp3FrameBytes:]))
		r := int16(binary.LittleEndian.Uint16(pcm[i*mp3FrameBytes+bytesPerSample:]))
		dst[i] = biquad.Sample{L: wavio.PCM16ToFloat(l), R: wavio.PCM16ToFloat(r)}
	}
}

// Ogg decodes an Ogg Vorbis stream with one or two channels.
func Ogg(r io.Reader, alloc biquad.Allocator) (*biquad.SoundBuffer, error) {
	data, format, err := oggvorbis.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: ogg: %w", wavio.ErrMalformed, err)
	}
	return fromInterleaved(data, format.Channels, format.SampleRate, alloc)
}

// fromInterleaved converts interleaved float samples with one or two
// channels. A trailing partial frame is dropped.
func fromInterleaved(data []float32, channels, rate int, alloc biquad.Allocator) (*biquad.SoundBuffer, error) {
	if channels != 1 && channels != stereoChannels {
		return nil, fmt.Errorf("%w: %d channels", wavio.ErrUnsupportedFormat, channels)
	}

	frames := len(data) / channels
	buf, err := newBuffer(frames, rate, alloc)
	if err != nil {
		return nil, err
	}
	for i := range buf.Samples {
		if channels == 1 {
			buf.Samples[i] = biquad.Sample{L: data[i], R: data[i]}
		} else {
			buf.Samples[i] = biquad.Sample{L: data[2*i], R: data[2*i+1]}
		}
	}
	return buf, nil
}

// aiffReader is the part of aiff.Decoder the loader needs.
type aiffReader interface {
	FullPCMBuffer() (*goaudio.IntBuffer, error)
}

// AIFF decodes a 16-bit PCM AIFF stream with one or two channels.
func AIFF(r io.ReadSeeker, alloc biquad.Allocator) (*biquad.SoundBuffer, error) {
	dec := aiff.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: not an AIFF file", wavio.ErrMalformed)
	}
	dec.ReadInfo()

	if dec.BitDepth != pcm16Bits {
		return nil, fmt.Errorf("%w: %d-bit AIFF", wavio.ErrUnsupportedFormat, dec.BitDepth)
	}
	return readAIFF(dec, alloc)
}

func readAIFF(dec aiffReader, alloc biquad.Allocator) (*biquad.SoundBuffer, error) {
	pcm, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: aiff: %w", wavio.ErrMalformed, err)
	}
	if pcm.Format == nil {
		return nil, fmt.Errorf("%w: aiff: missing format", wavio.ErrMalformed)
	}

	channels := pcm.Format.NumChannels
	if channels != 1 && channels != stereoChannels {
		return nil, fmt.Errorf("%w: %d channels", wavio.ErrUnsupportedFormat, channels)
	}

	frames := len(pcm.Data) / channels
	buf, err := newBuffer(frames, pcm.Format.SampleRate, alloc)
	if err != nil {
		return nil, err
	}
	for i := range buf.Samples {
		l := wavio.PCM16ToFloat(int16(pcm.Data[i*channels]))
		r := l
		if channels == stereoChannels {
			r = wavio.PCM16ToFloat(int16(pcm.Data[i*channels+1]))
		}
		buf.Samples[i] = biquad.Sample{L: l, R: r}
	}
	return buf, nil
}

func toBuffer(samples []biquad.Sample, rate int, alloc biquad.Allocator) (*biquad.SoundBuffer, error) {
	buf, err := newBuffer(len(samples), rate, alloc)
	if err != nil {
		return nil, err
	}
	copy(buf.Samples, samples)
	return buf, nil
}

func newBuffer(frames, rate int, alloc biquad.Allocator) (*biquad.SoundBuffer, error) {
	if rate < 1 {
		return nil, fmt.Errorf("%w: sample rate %d", wavio.ErrMalformed, rate)
	}
	return biquad.NewSoundBuffer(alloc, frames, rate, false)
}
