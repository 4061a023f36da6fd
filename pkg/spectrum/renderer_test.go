package spectrum

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dougsko/spectrowave/pkg/config"
)

func TestRenderSilenceIsBlack(t *testing.T) {
	s := config.DefaultSettings()
	r := NewRenderer(s, config.DefaultLimits())

	spectrum := make([]complex128, s.DftSize/2+1)
	row := r.Render(spectrum, 16)

	for _, p := range row {
		assert.Equal(t, Pixel(0), p, "silent spectrum should render to black for any color scheme")
	}
}

func TestRenderDCIsWhite(t *testing.T) {
	s := config.DefaultSettings()
	s.MagnitudeLog = false
	s.MagnitudeMin = 0
	s.MagnitudeMax = 2048
	s.ColorScheme = config.ColorGrayscale
	r := NewRenderer(s, config.DefaultLimits())

	spectrum := make([]complex128, 1)
	spectrum[0] = complex(2048, 0)
	row := r.Render(spectrum, 1)

	assert.Equal(t, packRGB(255, 255, 255), row[0])
}

func TestRenderRowWidth(t *testing.T) {
	s := config.DefaultSettings()
	r := NewRenderer(s, config.DefaultLimits())
	spectrum := make([]complex128, 513)
	row := r.Render(spectrum, 640)
	assert.Len(t, row, 640)
}

func TestSetMagnitudeBoundsRejectsInvalid(t *testing.T) {
	s := config.DefaultSettings()
	r := NewRenderer(s, config.DefaultLimits())

	before := [2]float32{}
	before[0], before[1] = r.MagnitudeBounds()

	r.SetMagnitudeBounds(10, 5) // invalid: min > max
	after0, after1 := r.MagnitudeBounds()
	assert.Equal(t, before[0], after0)
	assert.Equal(t, before[1], after1)

	r.SetMagnitudeBounds(-10, 10)
	after0, after1 = r.MagnitudeBounds()
	assert.Equal(t, float32(-10), after0)
	assert.Equal(t, float32(10), after1)
}

func TestSetMagnitudeBoundsClampsToScaleLimits(t *testing.T) {
	limits := config.DefaultLimits()

	s := config.DefaultSettings()
	s.MagnitudeLog = true
	r := NewRenderer(s, limits)
	r.SetMagnitudeBounds(-200, 200)
	min, max := r.MagnitudeBounds()
	assert.Equal(t, limits.MagnitudeLogMin, min)
	assert.Equal(t, limits.MagnitudeLogMax, max)

	s.MagnitudeLog = false
	r = NewRenderer(s, limits)
	r.SetMagnitudeBounds(-200, 5000)
	min, max = r.MagnitudeBounds()
	assert.Equal(t, limits.MagnitudeLinMin, min)
	assert.Equal(t, limits.MagnitudeLinMax, max)
}

func TestNewRendererClampsInitialBounds(t *testing.T) {
	limits := config.DefaultLimits()
	s := config.DefaultSettings()
	s.MagnitudeLog = false
	s.MagnitudeMin = 0
	s.MagnitudeMax = 2048 // above the linear limit

	r := NewRenderer(s, limits)
	_, max := r.MagnitudeBounds()
	assert.Equal(t, limits.MagnitudeLinMax, max)
}

func TestColorSchemeRoundTrip(t *testing.T) {
	r := NewRenderer(config.DefaultSettings(), config.DefaultLimits())
	r.SetColorScheme(config.ColorBlue)
	assert.Equal(t, config.ColorBlue, r.ColorScheme())
}

func TestRepeatedRenderIsDeterministic(t *testing.T) {
	s := config.DefaultSettings()
	r := NewRenderer(s, config.DefaultLimits())
	spectrum := make([]complex128, 513)
	for i := range spectrum {
		spectrum[i] = complex(float64(i), float64(-i))
	}

	row1 := r.Render(spectrum, 100)
	row2 := r.Render(spectrum, 100)
	assert.Equal(t, row1, row2)
}

func TestHeatRampEndpoints(t *testing.T) {
	assert.Equal(t, packRGB(0, 0, 0), colorHeat(0))
	assert.Equal(t, packRGB(255, 255, 255), colorHeat(1))
}

func TestGrayscaleIsNeutral(t *testing.T) {
	p := colorGrayscale(0.5)
	r := uint8(p >> 16)
	g := uint8(p >> 8)
	b := uint8(p)
	assert.Equal(t, r, g)
	assert.Equal(t, g, b)
}
