package offline

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dougsko/spectrowave/pkg/config"
	"github.com/dougsko/spectrowave/pkg/imagesink"
	"github.com/dougsko/spectrowave/pkg/spectrum"
)

// memorySource is a finite in-memory audiosrc.Source used to drive the
// offline driver deterministically in tests.
type memorySource struct {
	samples    []float64
	pos        int
	sampleRate uint32
}

func (m *memorySource) Read(buf []float64) (int, error) {
	n := copy(buf, m.samples[m.pos:])
	m.pos += n
	return n, nil
}

func (m *memorySource) SampleRate() uint32 { return m.sampleRate }
func (m *memorySource) Close() error       { return nil }

func sineSource(freq, sampleRate float64, duration float64) *memorySource {
	n := int(sampleRate * duration)
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = math.Sin(2 * math.Pi * freq * float64(i) / sampleRate)
	}
	return &memorySource{samples: samples, sampleRate: uint32(sampleRate)}
}

// recordingSink captures every appended row for inspection instead of
// encoding to disk.
type recordingSink struct {
	width int
	rows  [][]spectrum.Pixel
}

func (r *recordingSink) Append(row []spectrum.Pixel) error {
	r.rows = append(r.rows, row)
	return nil
}
func (r *recordingSink) Write() error { return nil }
func (r *recordingSink) Width() int   { return r.width }

func TestOfflineSilenceIsBlack(t *testing.T) {
	src := &memorySource{samples: make([]float64, 4096), sampleRate: 48000}
	sink := &recordingSink{width: 16}

	settings := config.DefaultSettings()
	settings.DftSize = 1024
	settings.DftWindow = config.WindowHann
	settings.MagnitudeLog = true
	settings.MagnitudeMin = 0
	settings.MagnitudeMax = 45
	settings.ColorScheme = config.ColorHeat

	require.NoError(t, Run(src, sink, settings, config.DefaultLimits()))
	require.NotEmpty(t, sink.rows)

	for _, row := range sink.rows {
		for _, p := range row {
			assert.Equal(t, spectrum.Pixel(0), p)
		}
	}
}

func TestOfflineToneProducesConsistentBrightBand(t *testing.T) {
	const sampleRate = 48000.0
	src := sineSource(1000, sampleRate, 1.0)
	sink := &recordingSink{width: 512}

	settings := config.DefaultSettings()
	settings.AudioSampleRate = uint32(sampleRate)
	settings.DftSize = 1024
	settings.SamplesOverlap = 0.5
	settings.DftWindow = config.WindowHann
	settings.MagnitudeLog = true
	settings.MagnitudeMin = -80
	settings.MagnitudeMax = 0
	settings.ColorScheme = config.ColorGrayscale

	require.NoError(t, Run(src, sink, settings, config.DefaultLimits()))
	require.NotEmpty(t, sink.rows)

	expectedIndex := int(math.Round(1000 * 512 * 2 / sampleRate))

	// Check only the second half of the rows: the first rows' overlap
	// buffer is still partly zero-padded until enough hops have
	// accumulated real signal.
	for _, row := range sink.rows[len(sink.rows)/2:] {
		brightest := 0
		for i, p := range row {
			if p > row[brightest] {
				brightest = i
			}
		}
		assert.InDelta(t, expectedIndex, brightest, 2)
	}
}

func TestOfflineWritesPNGFile(t *testing.T) {
	src := sineSource(440, 44100, 0.25)
	path := filepath.Join(t.TempDir(), "out.png")
	sink := imagesink.NewPNGSink(path, 128, config.OrientationVertical)

	settings := config.DefaultSettings()
	settings.AudioSampleRate = 44100
	settings.DftSize = 512
	settings.Width = 128

	require.NoError(t, Run(src, sink, settings, config.DefaultLimits()))
}
