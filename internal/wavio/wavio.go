// Package wavio reads and writes sound buffers as RIFF/WAVE files.
//
// Input must be 16-bit PCM with one or two channels; mono is expanded to
// stereo by duplication. Output is always interleaved stereo 16-bit PCM.
package wavio

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	biquad "github.com/tphakala/go-audio-biquad"
)

var (
	idRIFF = [chunkIDSize]byte{'R', 'I', 'F', 'F'}
	idWAVE = [chunkIDSize]byte{'W', 'A', 'V', 'E'}
	idFmt  = [chunkIDSize]byte{'f', 'm', 't', ' '}
	idData = [chunkIDSize]byte{'d', 'a', 't', 'a'}
)

// PCM16ToFloat converts a signed 16-bit sample to [-1, 1].
func PCM16ToFloat(v int16) float32 {
	if v < 0 {
		return float32(v) / negativeScale
	}
	return float32(v) / positiveScale
}

// FloatToPCM16 clamps x to [-1, 1] and quantizes it to a signed 16-bit sample,
// truncating toward zero. NaN maps to zero.
func FloatToPCM16(x float32) int16 {
	if math.IsNaN(float64(x)) {
		return 0
	}
	x = min(max(x, -1), 1)
	if x < 0 {
		return int16(x * negativeScale)
	}
	return int16(x * positiveScale)
}

// pcmFormat is the subset of the fmt chunk the decoder cares about.
type pcmFormat struct {
	audioFormat uint16
	channels    uint16
	rate        uint32
	bitDepth    uint16
}

func (f pcmFormat) blockAlign() int {
	return int(f.channels) * int(f.bitDepth) / 8
}

func (f pcmFormat) validate() error {
	if f.audioFormat != formatPCM || f.bitDepth != bitDepth16 ||
		(f.channels != monoChannels && f.channels != stereoChannels) {
		return fmt.Errorf("%w: format %d, %d channels, %d-bit",
			ErrUnsupportedFormat, f.audioFormat, f.channels, f.bitDepth)
	}
	if f.rate == 0 {
		return fmt.Errorf("%w: zero sample rate", ErrMalformed)
	}
	return nil
}

// Decode reads a complete WAVE stream from r into a new buffer allocated
// through alloc (nil means the default allocator).
//
// Chunks other than fmt and data are skipped by their declared length. The
// fmt chunk must appear exactly once, be at least 16 bytes long and precede
// data. Decoding stops at the first data chunk.
//
// When r is seekable, a data chunk that declares more bytes than the stream
// holds is rejected before anything is allocated. Otherwise the sample data
// is staged as it arrives and the buffer is allocated once it is complete.
func Decode(r io.Reader, alloc biquad.Allocator) (*biquad.SoundBuffer, error) {
	remaining, err := remainingBytes(r)
	if err != nil {
		return nil, err
	}

	br := bufio.NewReader(r)
	hdr, err := readHeader(br, remaining)
	if err != nil {
		return nil, err
	}
	if remaining >= 0 {
		return readData(br, hdr, alloc)
	}

	var staged bytes.Buffer
	if _, err := io.CopyN(&staged, br, hdr.dataBytes()); err != nil {
		return nil, fmt.Errorf("%w: truncated data chunk: %w", ErrMalformed, err)
	}
	return readData(&staged, hdr, alloc)
}

// Load decodes the WAVE file at path.
func Load(path string, alloc biquad.Allocator) (*biquad.SoundBuffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer func() { _ = f.Close() }()

	buf, err := Decode(f, alloc)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return buf, nil
}

// remainingBytes returns the number of bytes between the current position of
// r and its end, or -1 when r cannot seek. The position is restored.
func remainingBytes(r io.Reader) (int64, error) {
	s, ok := r.(io.Seeker)
	if !ok {
		return -1, nil
	}

	cur, err := s.Seek(0, io.SeekCurrent)
	if err != nil {
		return -1, nil
	}
	end, err := s.Seek(0, io.SeekEnd)
	if err != nil {
		return -1, nil
	}
	if _, err := s.Seek(cur, io.SeekStart); err != nil {
		return 0, fmt.Errorf("failed to rewind input: %w", err)
	}
	return end - cur, nil
}

// riffHeader describes the data chunk found by readHeader.
type riffHeader struct {
	format pcmFormat
	frames int
}

func (h riffHeader) dataBytes() int64 {
	return int64(h.frames) * int64(h.format.blockAlign())
}

// readHeader walks the chunks of a WAVE stream and leaves r positioned at the
// first byte of sample data. remaining is the stream length in bytes, or -1
// if unknown; a data chunk larger than what is left is malformed.
func readHeader(r io.Reader, remaining int64) (riffHeader, error) {
	var header [3 * chunkIDSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return riffHeader{}, fmt.Errorf("%w: short RIFF header: %w", ErrMalformed, err)
	}
	if [chunkIDSize]byte(header[0:4]) != idRIFF || [chunkIDSize]byte(header[8:12]) != idWAVE {
		return riffHeader{}, fmt.Errorf("%w: not a RIFF/WAVE stream", ErrMalformed)
	}

	var (
		format   pcmFormat
		foundFmt bool
		offset   = int64(len(header))
	)
	for {
		id, size, err := readChunkHeader(r)
		if errors.Is(err, io.EOF) {
			return riffHeader{}, fmt.Errorf("%w: no data chunk", ErrMalformed)
		}
		if err != nil {
			return riffHeader{}, err
		}
		offset += chunkHeaderSize

		switch id {
		case idFmt:
			if foundFmt {
				return riffHeader{}, fmt.Errorf("%w: duplicate fmt chunk", ErrMalformed)
			}
			if size < fmtMinSize {
				return riffHeader{}, fmt.Errorf("%w: fmt chunk is %d bytes", ErrMalformed, size)
			}
			foundFmt = true

			if format, err = readFormat(r, size); err != nil {
				return riffHeader{}, err
			}
			if err := format.validate(); err != nil {
				return riffHeader{}, err
			}

		case idData:
			if !foundFmt {
				return riffHeader{}, fmt.Errorf("%w: data chunk before fmt", ErrMalformed)
			}
			block := int64(format.blockAlign())
			if int64(size)%block != 0 {
				return riffHeader{}, fmt.Errorf("%w: data size %d is not a multiple of %d",
					ErrMalformed, size, block)
			}
			if remaining >= 0 && int64(size) > remaining-offset {
				return riffHeader{}, fmt.Errorf("%w: data chunk declares %d bytes but %d remain",
					ErrMalformed, size, max(remaining-offset, 0))
			}
			return riffHeader{format: format, frames: int(int64(size) / block)}, nil

		default:
			if _, err := io.CopyN(io.Discard, r, int64(size)); err != nil {
				return riffHeader{}, fmt.Errorf("%w: truncated %q chunk: %w", ErrMalformed, id[:], err)
			}
		}
		offset += int64(size)
	}
}

// readChunkHeader returns io.EOF only when the stream ends cleanly between
// chunks.
func readChunkHeader(r io.Reader) (id [chunkIDSize]byte, size uint32, err error) {
	var hdr [chunkHeaderSize]byte
	n, err := io.ReadFull(r, hdr[:])
	if err != nil {
		if n == 0 && errors.Is(err, io.EOF) {
			return id, 0, io.EOF
		}
		return id, 0, fmt.Errorf("%w: short chunk header: %w", ErrMalformed, err)
	}
	copy(id[:], hdr[:chunkIDSize])
	return id, binary.LittleEndian.Uint32(hdr[chunkIDSize:]), nil
}

func readFormat(r io.Reader, size uint32) (pcmFormat, error) {
	var body [fmtMinSize]byte
	if _, err := io.ReadFull(r, body[:]); err != nil {
		return pcmFormat{}, fmt.Errorf("%w: truncated fmt chunk: %w", ErrMalformed, err)
	}

	// byte rate and block align are recomputed, not trusted
	format := pcmFormat{
		audioFormat: binary.LittleEndian.Uint16(body[0:2]),
		channels:    binary.LittleEndian.Uint16(body[2:4]),
		rate:        binary.LittleEndian.Uint32(body[4:8]),
		bitDepth:    binary.LittleEndian.Uint16(body[14:16]),
	}

	if extra := int64(size) - fmtMinSize; extra > 0 {
		if _, err := io.CopyN(io.Discard, r, extra); err != nil {
			return pcmFormat{}, fmt.Errorf("%w: truncated fmt chunk: %w", ErrMalformed, err)
		}
	}
	return format, nil
}

func readData(r io.Reader, hdr riffHeader, alloc biquad.Allocator) (*biquad.SoundBuffer, error) {
	buf, err := biquad.NewSoundBuffer(alloc, hdr.frames, int(hdr.format.rate), false)
	if err != nil {
		return nil, err
	}

	block := hdr.format.blockAlign()
	raw := make([]byte, min(hdr.frames, readBlockFrames)*block)

	for start := 0; start < hdr.frames; {
		n := min(hdr.frames-start, readBlockFrames)
		chunk := raw[:n*block]
		if _, err := io.ReadFull(r, chunk); err != nil {
			buf.Release()
			return nil, fmt.Errorf("%w: truncated data chunk: %w", ErrMalformed, err)
		}
		hdr.format.decodeFrames(buf.Samples[start:start+n], chunk)
		start += n
	}

	return buf, nil
}

// decodeFrames converts len(dst) frames of little-endian PCM from raw.
func (f pcmFormat) decodeFrames(dst []biquad.Sample, raw []byte) {
	block := f.blockAlign()
	for i := range dst {
		left := int16(binary.LittleEndian.Uint16(raw[i*block:]))
		right := left
		if f.channels == stereoChannels {
			right = int16(binary.LittleEndian.Uint16(raw[i*block+bytesPerSample:]))
		}
		dst[i] = biquad.Sample{L: PCM16ToFloat(left), R: PCM16ToFloat(right)}
	}
}

// Encode writes buf to w as a stereo 16-bit WAVE stream.
func Encode(w io.WriteSeeker, buf *biquad.SoundBuffer) error {
	if buf.Released() {
		return biquad.ErrReleased
	}

	sw := NewStreamWriter(w, buf.Rate)
	if err := sw.Write(buf.Samples); err != nil {
		return err
	}
	return sw.Close()
}

// Save writes buf to a WAVE file at path, replacing any existing file.
func Save(path string, buf *biquad.SoundBuffer) (err error) {
	if buf.Released() {
		return biquad.ErrReleased
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()

	if err := Encode(f, buf); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}
