// Package spectrum maps a DFT spectrum to a row of colored pixels under a
// configurable magnitude scale and color scheme.
package spectrum

import (
	"math"
	"sync"

	"github.com/dougsko/spectrowave/pkg/config"
)

// Pixel is a packed 0x00RRGGBB color value.
type Pixel uint32

func packRGB(r, g, b uint8) Pixel {
	return Pixel(uint32(r)<<16 | uint32(g)<<8 | uint32(b))
}

// Renderer converts spectra into PixelRows. Its mutable settings (scale,
// bounds, color scheme) are guarded by an internal lock so the pipeline's
// Controller can reconfigure it while the Analyzer renders concurrently.
type Renderer struct {
	mu           sync.Mutex
	magnitudeLog bool
	magnitudeMin float32
	magnitudeMax float32
	colorScheme  config.ColorScheme

	logMin, logMax float32
	linMin, linMax float32
}

// NewRenderer constructs a renderer from initial settings, clamping the
// starting bounds to the active scale's hard limits.
func NewRenderer(s config.Settings, limits config.Limits) *Renderer {
	r := &Renderer{
		magnitudeLog: s.MagnitudeLog,
		colorScheme:  s.ColorScheme,
		logMin:       limits.MagnitudeLogMin,
		logMax:       limits.MagnitudeLogMax,
		linMin:       limits.MagnitudeLinMin,
		linMax:       limits.MagnitudeLinMax,
	}
	r.magnitudeMin, r.magnitudeMax = r.clampToScale(s.MagnitudeMin, s.MagnitudeMax)
	return r
}

// clampToScale constrains min/max to the hard limits of whichever scale is
// currently active. Callers must hold r.mu.
func (r *Renderer) clampToScale(min, max float32) (float32, float32) {
	lo, hi := r.linMin, r.linMax
	if r.magnitudeLog {
		lo, hi = r.logMin, r.logMax
	}
	if min < lo {
		min = lo
	}
	if max > hi {
		max = hi
	}
	return min, max
}

// SetMagnitudeBounds updates the min/max used to normalize magnitudes,
// clamped to the active scale's hard limits. If min >= max after clamping,
// the previous bounds are kept.
func (r *Renderer) SetMagnitudeBounds(min, max float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	min, max = r.clampToScale(min, max)
	if min < max {
		r.magnitudeMin, r.magnitudeMax = min, max
	}
}

func (r *Renderer) MagnitudeBounds() (float32, float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.magnitudeMin, r.magnitudeMax
}

func (r *Renderer) SetMagnitudeLog(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.magnitudeLog = enabled
}

func (r *Renderer) MagnitudeLog() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.magnitudeLog
}

func (r *Renderer) SetColorScheme(scheme config.ColorScheme) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.colorScheme = scheme
}

func (r *Renderer) ColorScheme() config.ColorScheme {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.colorScheme
}

// Render maps spectrum (length N/2+1) onto a pixel row of width w.
func (r *Renderer) Render(spectrum []complex128, w int) []Pixel {
	r.mu.Lock()
	isLog := r.magnitudeLog
	min, max := r.magnitudeMin, r.magnitudeMax
	scheme := r.colorScheme
	r.mu.Unlock()

	row := make([]Pixel, w)
	n := len(spectrum)
	if n == 0 || w == 0 {
		return row
	}

	for i := 0; i < w; i++ {
		k := i * n / w
		m := cmplxAbs(spectrum[k])
		if isLog {
			if m <= 0 {
				m = math.SmallestNonzeroFloat64
			}
			m = 20 * math.Log10(m)
		}
		v := normalize(m, float64(min), float64(max))
		row[i] = colorize(scheme, v)
	}
	return row
}

func cmplxAbs(c complex128) float64 {
	re, im := real(c), imag(c)
	return math.Sqrt(re*re + im*im)
}

func normalize(v, min, max float64) float64 {
	if v < min {
		v = min
	}
	if v > max {
		v = max
	}
	if max == min {
		return 0
	}
	return (v - min) / (max - min)
}

func colorize(scheme config.ColorScheme, v float64) Pixel {
	switch scheme {
	case config.ColorBlue:
		return colorBlue(v)
	case config.ColorGrayscale:
		return colorGrayscale(v)
	default:
		return colorHeat(v)
	}
}

// colorHeat is a 5-segment piecewise-linear black -> blue -> green ->
// yellow -> red -> white ramp.
func colorHeat(v float64) Pixel {
	switch {
	case v < 0.2:
		t := v / 0.2
		return packRGB(0, 0, lerp8(0, 255, t))
	case v < 0.4:
		t := (v - 0.2) / 0.2
		return packRGB(0, lerp8(0, 255, t), lerp8(255, 0, t))
	case v < 0.6:
		t := (v - 0.4) / 0.2
		return packRGB(lerp8(0, 255, t), 255, 0)
	case v < 0.8:
		t := (v - 0.6) / 0.2
		return packRGB(255, lerp8(255, 0, t), 0)
	default:
		t := (v - 0.8) / 0.2
		return packRGB(255, lerp8(0, 255, t), lerp8(0, 255, t))
	}
}

// colorBlue is a 2-segment black -> blue -> white ramp.
func colorBlue(v float64) Pixel {
	if v < 0.5 {
		t := v / 0.5
		return packRGB(0, 0, lerp8(0, 255, t))
	}
	t := (v - 0.5) / 0.5
	return packRGB(lerp8(0, 255, t), lerp8(0, 255, t), 255)
}

func colorGrayscale(v float64) Pixel {
	c := lerp8(0, 255, v)
	return packRGB(c, c, c)
}

func lerp8(a, b uint8, t float64) uint8 {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return uint8(math.Round(float64(a) + t*(float64(b)-float64(a))))
}
