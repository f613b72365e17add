package wavio

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	biquad "github.com/tphakala/go-audio-biquad"
)

// StreamReader decodes a WAVE file incrementally. It walks the chunks with
// the same rules as Decode and applies the same scaling, so a stream read in
// any number of calls yields exactly the samples Decode returns.
type StreamReader struct {
	closer io.Closer
	r      *bufio.Reader
	hdr    riffHeader
	pos    int
	raw    []byte
}

// OpenStream opens the WAVE file at path for incremental reading.
func OpenStream(path string) (*StreamReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}

	s, err := NewStreamReader(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	s.closer = f
	return s, nil
}

// NewStreamReader validates the header of r and positions it at the first
// sample. A seekable r has its declared data size checked against its length.
func NewStreamReader(r io.Reader) (*StreamReader, error) {
	remaining, err := remainingBytes(r)
	if err != nil {
		return nil, err
	}

	br := bufio.NewReader(r)
	hdr, err := readHeader(br, remaining)
	if err != nil {
		return nil, err
	}

	return &StreamReader{
		r:   br,
		hdr: hdr,
		raw: make([]byte, min(hdr.frames, readBlockFrames)*hdr.format.blockAlign()),
	}, nil
}

// Rate returns the sample rate of the stream.
func (s *StreamReader) Rate() int { return int(s.hdr.format.rate) }

// Channels returns the channel count stored in the file (1 or 2).
func (s *StreamReader) Channels() int { return int(s.hdr.format.channels) }

// TotalSamples returns the number of frames the data chunk declares.
func (s *StreamReader) TotalSamples() int64 { return int64(s.hdr.frames) }

// Read decodes up to len(dst) stereo frames into dst and returns how many
// were written. At the end of the data chunk it returns 0 and io.EOF. A
// stream that ends before the declared data size reports ErrMalformed.
func (s *StreamReader) Read(dst []biquad.Sample) (int, error) {
	want := min(len(dst), s.hdr.frames-s.pos)
	if want == 0 && len(dst) > 0 {
		return 0, io.EOF
	}

	block := s.hdr.format.blockAlign()
	read := 0
	for read < want {
		n := min(want-read, readBlockFrames)
		chunk := s.raw[:n*block]
		if _, err := io.ReadFull(s.r, chunk); err != nil {
			return read, fmt.Errorf("%w: truncated data chunk: %w", ErrMalformed, err)
		}
		s.hdr.format.decodeFrames(dst[read:read+n], chunk)
		read += n
		s.pos += n
	}
	return read, nil
}

// Close releases the underlying file when the reader was opened by path.
func (s *StreamReader) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// StreamWriter encodes stereo 16-bit WAVE data incrementally. Sizes in the
// header are patched on Close, so the destination must be seekable.
type StreamWriter struct {
	closer  io.Closer
	encoder *wav.Encoder
	pcm     *audio.IntBuffer
	frames  int64
	started bool
}

// CreateStream creates (or truncates) the file at path for incremental writing.
func CreateStream(path string, rate int) (*StreamWriter, error) {
	if rate < 1 {
		return nil, fmt.Errorf("%w: sample rate must be positive, got %d", biquad.ErrInvalidConfig, rate)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	s := NewStreamWriter(f, rate)
	s.closer = f
	return s, nil
}

// NewStreamWriter prepares w to receive stereo 16-bit frames at rate.
func NewStreamWriter(w io.WriteSeeker, rate int) *StreamWriter {
	return &StreamWriter{
		encoder: wav.NewEncoder(w, rate, bitDepth16, stereoChannels, formatPCM),
		pcm: &audio.IntBuffer{
			Format:         &audio.Format{NumChannels: stereoChannels, SampleRate: rate},
			SourceBitDepth: bitDepth16,
		},
	}
}

// Write appends samples to the stream, clamping and quantizing each channel.
func (s *StreamWriter) Write(samples []biquad.Sample) error {
	if (s.frames+int64(len(samples)))*stereoBlock > maxDataBytes {
		return fmt.Errorf("%w: %d frames", ErrTooLarge, s.frames+int64(len(samples)))
	}

	need := len(samples) * stereoChannels
	if cap(s.pcm.Data) < need {
		s.pcm.Data = make([]int, need)
	}
	s.pcm.Data = s.pcm.Data[:need]
	for i, v := range samples {
		s.pcm.Data[i*stereoChannels] = int(FloatToPCM16(v.L))
		s.pcm.Data[i*stereoChannels+1] = int(FloatToPCM16(v.R))
	}

	if err := s.encoder.Write(s.pcm); err != nil {
		return fmt.Errorf("failed to write audio data: %w", err)
	}
	s.frames += int64(len(samples))
	s.started = true
	return nil
}

// Frames returns the number of frames written so far.
func (s *StreamWriter) Frames() int64 { return s.frames }

// Close finalizes the header and closes the file when the writer was
// created by path. A stream with no frames is still a valid, empty file.
func (s *StreamWriter) Close() error {
	if !s.started {
		// The encoder only emits its header on the first write.
		if err := s.Write(nil); err != nil {
			return err
		}
	}

	err := s.encoder.Close()
	if s.closer != nil {
		if closeErr := s.closer.Close(); err == nil {
			err = closeErr
		}
	}
	if err != nil {
		return fmt.Errorf("failed to finalize wav stream: %w", err)
	}
	return nil
}
