package dft

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dougsko/spectrowave/pkg/config"
)

func TestComputeOutputLength(t *testing.T) {
	limits := config.DefaultLimits()
	for size := 64; size <= 8192; size *= 2 {
		for _, wf := range []config.WindowFunction{config.WindowHann, config.WindowHamming, config.WindowBartlett, config.WindowRectangular} {
			e, err := New(size, wf, limits)
			require.NoError(t, err)

			samples := make([]float64, size)
			spectrum, err := e.Compute(samples)
			require.NoError(t, err)
			assert.Equal(t, size/2+1, len(spectrum))
		}
	}
}

func TestComputeSizeMismatch(t *testing.T) {
	e, err := New(256, config.WindowHann, config.DefaultLimits())
	require.NoError(t, err)

	_, err = e.Compute(make([]float64, 128))
	var mismatch *SizeMismatchError
	assert.ErrorAs(t, err, &mismatch)
}

func TestSetSizeOutsideLimits(t *testing.T) {
	e, err := New(1024, config.WindowHann, config.DefaultLimits())
	require.NoError(t, err)

	err = e.SetSize(16)
	var allocErr *AllocationError
	assert.ErrorAs(t, err, &allocErr)
	assert.Equal(t, 1024, e.Size(), "size should remain unchanged after a rejected resize")
}

func TestSetSizeNotPowerOfTwo(t *testing.T) {
	e, err := New(1024, config.WindowHann, config.DefaultLimits())
	require.NoError(t, err)

	err = e.SetSize(1000)
	assert.Error(t, err)
}

func TestPureToneArgmax(t *testing.T) {
	const n = 2048
	const sampleRate = 2048.0
	const bin = 5
	samples := make([]float64, n)
	for i := 0; i < n; i++ {
		samples[i] = math.Sin(2 * math.Pi * bin * float64(i) / n)
	}

	e, err := New(n, config.WindowRectangular, config.DefaultLimits())
	require.NoError(t, err)

	spectrum, err := e.Compute(samples)
	require.NoError(t, err)

	mags := Magnitude(spectrum)
	argmax := 0
	for i, m := range mags {
		if m > mags[argmax] {
			argmax = i
		}
	}
	assert.Equal(t, bin, argmax)
}

func TestDCComponent(t *testing.T) {
	const n = 2048
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = 1.0
	}

	e, err := New(n, config.WindowRectangular, config.DefaultLimits())
	require.NoError(t, err)

	spectrum, err := e.Compute(samples)
	require.NoError(t, err)

	mags := Magnitude(spectrum)
	assert.InDelta(t, float64(n), mags[0], 1e-6)
	for k := 1; k < len(mags); k++ {
		assert.InDelta(t, 0, mags[k], 1e-6)
	}
}

func TestWindowRoundTrip(t *testing.T) {
	e, err := New(512, config.WindowHamming, config.DefaultLimits())
	require.NoError(t, err)
	assert.Equal(t, config.WindowHamming, e.WindowFunction())

	e.SetWindowFunction(config.WindowBartlett)
	assert.Equal(t, config.WindowBartlett, e.WindowFunction())
}

func TestSilenceProducesZeroMagnitude(t *testing.T) {
	e, err := New(1024, config.WindowHann, config.DefaultLimits())
	require.NoError(t, err)

	spectrum, err := e.Compute(make([]float64, 1024))
	require.NoError(t, err)

	for _, m := range Magnitude(spectrum) {
		assert.Zero(t, m)
	}
}
