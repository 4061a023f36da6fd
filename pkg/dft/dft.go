// Package dft computes the real-input discrete Fourier transform of a
// windowed sample buffer, with a reconfigurable size and window function.
package dft

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"

	"github.com/dougsko/spectrowave/pkg/config"
)

// SizeMismatchError is returned by Compute when the input sample count
// does not equal the engine's configured size.
type SizeMismatchError struct {
	Expected int
	Got      int
}

func (e *SizeMismatchError) Error() string {
	return fmt.Sprintf("dft: expected %d samples, got %d", e.Expected, e.Got)
}

// AllocationError is returned by SetSize when the requested size is
// outside the engine's configured limits.
type AllocationError struct {
	Size int
	Min  int
	Max  int
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("dft: size %d outside allowed range [%d, %d]", e.Size, e.Min, e.Max)
}

// Engine computes windowed real-to-complex transforms. It is not
// goroutine-safe on its own; callers serialize access (the pipeline does
// this via pkg/shared).
type Engine struct {
	size    int
	window  config.WindowFunction
	coeffs  []float64
	limits  config.Limits
	scratch []float64
}

// New constructs an engine for the given size and window function. It
// fails with AllocationError if size is outside limits or not a power of
// two.
func New(size int, window config.WindowFunction, limits config.Limits) (*Engine, error) {
	e := &Engine{limits: limits}
	if err := e.SetSize(size); err != nil {
		return nil, err
	}
	e.SetWindowFunction(window)
	return e, nil
}

// SetSize replaces the engine's plan and recomputes window coefficients
// over the new size. On error the engine retains its previous size.
func (e *Engine) SetSize(size int) error {
	if size <= 0 || size&(size-1) != 0 {
		return &AllocationError{Size: size, Min: int(e.limits.DftSizeMin), Max: int(e.limits.DftSizeMax)}
	}
	if uint32(size) < e.limits.DftSizeMin || uint32(size) > e.limits.DftSizeMax {
		return &AllocationError{Size: size, Min: int(e.limits.DftSizeMin), Max: int(e.limits.DftSizeMax)}
	}
	e.size = size
	e.scratch = make([]float64, size)
	if e.window != "" {
		e.coeffs = windowCoefficients(e.window, size)
	}
	return nil
}

// SetWindowFunction recomputes window coefficients over the current size.
func (e *Engine) SetWindowFunction(wf config.WindowFunction) {
	e.window = wf
	e.coeffs = windowCoefficients(wf, e.size)
}

// Size returns the engine's current transform size.
func (e *Engine) Size() int {
	return e.size
}

// WindowFunction returns the engine's current window function.
func (e *Engine) WindowFunction() config.WindowFunction {
	return e.window
}

// Compute windows samples and runs the real-to-complex transform,
// returning the first N/2+1 bins. samples must have exactly Size()
// elements.
func (e *Engine) Compute(samples []float64) ([]complex128, error) {
	if len(samples) != e.size {
		return nil, &SizeMismatchError{Expected: e.size, Got: len(samples)}
	}

	for i, s := range samples {
		e.scratch[i] = s * e.coeffs[i]
	}

	full := fft.FFTReal(e.scratch)
	return full[:e.size/2+1], nil
}

// windowCoefficients computes the closed-form window of the given length.
// Hand-computed rather than delegated to a library window package so the
// exact per-sample formula (and its N vs N-1 denominator convention) is
// pinned down and auditable.
func windowCoefficients(wf config.WindowFunction, n int) []float64 {
	coeffs := make([]float64, n)
	if n == 0 {
		return coeffs
	}
	switch wf {
	case config.WindowHann:
		for i := 0; i < n; i++ {
			coeffs[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
		}
	case config.WindowHamming:
		for i := 0; i < n; i++ {
			coeffs[i] = 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/float64(n-1))
		}
	case config.WindowBartlett:
		half := float64(n-1) / 2
		for i := 0; i < n; i++ {
			coeffs[i] = 1 - math.Abs((float64(i)-half)/half)
		}
	case config.WindowRectangular:
		for i := range coeffs {
			coeffs[i] = 1
		}
	default:
		for i := range coeffs {
			coeffs[i] = 1
		}
	}
	return coeffs
}

// Magnitude is a small helper most callers reach for immediately after
// Compute.
func Magnitude(spectrum []complex128) []float64 {
	mags := make([]float64, len(spectrum))
	for i, c := range spectrum {
		mags[i] = cmplx.Abs(c)
	}
	return mags
}
