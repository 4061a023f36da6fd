package audiosrc

import (
	"fmt"
	"math"
	"os"

	"github.com/go-audio/wav"
)

// FileSource decodes a PCM WAV file into a mono stream of normalized
// samples, downmixing multichannel frames by averaging channels.
type FileSource struct {
	file       *os.File
	buf        *wavBuffer
	pos        int
	sampleRate uint32
	channels   int
}

// wavBuffer holds the fully decoded PCM frame, mirroring the shape the
// go-audio decoder hands back from FullPCMBuffer.
type wavBuffer struct {
	data     []int
	bitDepth int
}

// NewFileSource opens path, decodes it in full, and downmixes to mono.
// The entire file is decoded up front; offline spectrogram runs are
// bounded by file size, not by streaming latency.
func NewFileSource(path string) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("audiosrc: open %s: %w", path, err)
	}

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		f.Close()
		return nil, fmt.Errorf("audiosrc: %s is not a valid WAV file", path)
	}

	format := decoder.Format()
	decoder.FwdToPCM()
	pcm, err := decoder.FullPCMBuffer()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("audiosrc: decode %s: %w", path, err)
	}

	return &FileSource{
		file:       f,
		buf:        &wavBuffer{data: pcm.Data, bitDepth: int(decoder.BitDepth)},
		sampleRate: uint32(format.SampleRate),
		channels:   format.NumChannels,
	}, nil
}

// Read fills buf with downmixed, normalized samples, returning fewer than
// len(buf) (possibly zero) with a nil error at end of file.
func (s *FileSource) Read(buf []float64) (int, error) {
	maxValue := math.Pow(2, float64(s.buf.bitDepth-1))
	frames := len(s.buf.data) / s.channels

	n := 0
	for n < len(buf) && s.pos < frames {
		var sum float64
		base := s.pos * s.channels
		for ch := 0; ch < s.channels; ch++ {
			sum += float64(s.buf.data[base+ch])
		}
		buf[n] = (sum / float64(s.channels)) / maxValue
		s.pos++
		n++
	}
	return n, nil
}

func (s *FileSource) SampleRate() uint32 {
	return s.sampleRate
}

func (s *FileSource) Close() error {
	return s.file.Close()
}
