package pipeline

import (
	"github.com/dougsko/spectrowave/pkg/config"
	"github.com/dougsko/spectrowave/pkg/display"
)

// Controller is the contract the Presenter invokes to reconfigure the
// running Analyzer and renderer. Every setter acquires the single lock
// relevant to the change it makes.
type Controller struct {
	p *Pipeline
}

// NewController binds a controller to a running pipeline.
func NewController(p *Pipeline) *Controller {
	return &Controller{p: p}
}

// SetDftSize resizes the DFT engine, preserving the current overlap
// percentage. On failure the previous size is retained and the error is
// returned to the caller.
func (c *Controller) SetDftSize(size uint32) error {
	c.p.dftResource.Lock()
	defer c.p.dftResource.Unlock()

	if err := c.p.dftResource.Get().SetSize(int(size)); err != nil {
		return err
	}

	c.p.settings.Lock()
	c.p.current.DftSize = size
	c.p.settings.Unlock()
	return nil
}

// SetWindowFunction recomputes window coefficients over the existing size.
func (c *Controller) SetWindowFunction(wf config.WindowFunction) {
	c.p.dftResource.Lock()
	c.p.dftResource.Get().SetWindowFunction(wf)
	c.p.dftResource.Unlock()

	c.p.settings.Lock()
	c.p.current.DftWindow = wf
	c.p.settings.Unlock()
}

// SetOverlap updates the overlap fraction, clamped to the configured
// limits.
func (c *Controller) SetOverlap(overlap float32) {
	c.p.settings.Lock()
	defer c.p.settings.Unlock()
	if overlap < c.p.limits.OverlapMin {
		overlap = c.p.limits.OverlapMin
	}
	if overlap > c.p.limits.OverlapMax {
		overlap = c.p.limits.OverlapMax
	}
	c.p.current.SamplesOverlap = overlap
}

// SetMagnitudeLog toggles log/linear scale and resets bounds to that
// scale's defaults, matching the `l` key's documented behavior.
func (c *Controller) SetMagnitudeLog(enabled bool) {
	c.p.settings.Lock()
	c.p.current.MagnitudeLog = enabled
	if enabled {
		c.p.current.MagnitudeMin = 0
		c.p.current.MagnitudeMax = 45
	} else {
		c.p.current.MagnitudeMin = 0
		c.p.current.MagnitudeMax = 50
	}
	min, max := c.p.current.MagnitudeMin, c.p.current.MagnitudeMax
	c.p.settings.Unlock()

	c.p.renderer.SetMagnitudeLog(enabled)
	c.p.renderer.SetMagnitudeBounds(min, max)
}

// SetMagnitudeBounds updates the renderer's clamp range, rejecting a bound
// that would violate min < max and clamping to the active scale's hard
// limits (renderer.clampToScale).
func (c *Controller) SetMagnitudeBounds(min, max float32) {
	c.p.renderer.SetMagnitudeBounds(min, max)
	c.p.settings.Lock()
	actualMin, actualMax := c.p.renderer.MagnitudeBounds()
	c.p.current.MagnitudeMin, c.p.current.MagnitudeMax = actualMin, actualMax
	c.p.settings.Unlock()
}

// magnitudeStep returns the step size for the `-`/`=`/`[`/`]` keys, which
// differs between the log and linear magnitude scales.
func (c *Controller) magnitudeStep(settings config.Settings) float32 {
	if settings.MagnitudeLog {
		return c.p.limits.MagnitudeLogStep
	}
	return c.p.limits.MagnitudeLinStep
}

// SetColorScheme selects a new magnitude-to-color mapping.
func (c *Controller) SetColorScheme(scheme config.ColorScheme) {
	c.p.renderer.SetColorScheme(scheme)
	c.p.settings.Lock()
	c.p.current.ColorScheme = scheme
	c.p.settings.Unlock()
}

var colorCycle = []config.ColorScheme{config.ColorHeat, config.ColorBlue, config.ColorGrayscale}
var windowCycle = []config.WindowFunction{config.WindowHann, config.WindowHamming, config.WindowBartlett, config.WindowRectangular}

// HandleInput maps one interactive key event to a Controller operation,
// per the documented key bindings.
func (c *Controller) HandleInput(evt display.InputEvent) {
	if evt.HasMove {
		freq := c.p.CursorFrequency(evt.MouseX)
		c.p.hud.Lock()
		c.p.hudState.CursorFrequency = freq
		c.p.hud.Unlock()
		return
	}

	settings := c.p.Settings()
	switch evt.Key {
	case "q":
		c.p.running.Store(false)
	case "h":
		c.p.hud.Lock()
		c.p.hudState.ShowHelp = !c.p.hudState.ShowHelp
		c.p.hud.Unlock()
	case "s":
		c.p.hud.Lock()
		c.p.hudState.ShowSettings = !c.p.hudState.ShowSettings
		c.p.hud.Unlock()
	case "d":
		c.p.hud.Lock()
		c.p.hudState.ShowStats = !c.p.hudState.ShowStats
		c.p.hud.Unlock()
	case "c":
		c.SetColorScheme(nextInCycle(colorCycle, settings.ColorScheme))
	case "w":
		c.SetWindowFunction(nextWindowInCycle(windowCycle, settings.DftWindow))
	case "l":
		c.SetMagnitudeLog(!settings.MagnitudeLog)
	case "left":
		if newSize := settings.DftSize / 2; newSize >= c.p.limits.DftSizeMin {
			if err := c.SetDftSize(newSize); err == nil {
				c.SetOverlap(0.5)
			}
		}
	case "right":
		if newSize := settings.DftSize * 2; newSize <= c.p.limits.DftSizeMax {
			if err := c.SetDftSize(newSize); err == nil {
				c.SetOverlap(0.5)
			}
		}
	case "up":
		c.SetOverlap(settings.SamplesOverlap + c.p.limits.OverlapStep)
	case "down":
		c.SetOverlap(settings.SamplesOverlap - c.p.limits.OverlapStep)
	case "-":
		step := c.magnitudeStep(settings)
		c.SetMagnitudeBounds(settings.MagnitudeMin-step, settings.MagnitudeMax)
	case "=":
		step := c.magnitudeStep(settings)
		c.SetMagnitudeBounds(settings.MagnitudeMin+step, settings.MagnitudeMax)
	case "[":
		step := c.magnitudeStep(settings)
		c.SetMagnitudeBounds(settings.MagnitudeMin, settings.MagnitudeMax-step)
	case "]":
		step := c.magnitudeStep(settings)
		c.SetMagnitudeBounds(settings.MagnitudeMin, settings.MagnitudeMax+step)
	case "f":
		c.p.disp.ToggleFullscreen()
	}
}

func nextInCycle(cycle []config.ColorScheme, current config.ColorScheme) config.ColorScheme {
	for i, v := range cycle {
		if v == current {
			return cycle[(i+1)%len(cycle)]
		}
	}
	return cycle[0]
}

func nextWindowInCycle(cycle []config.WindowFunction, current config.WindowFunction) config.WindowFunction {
	for i, v := range cycle {
		if v == current {
			return cycle[(i+1)%len(cycle)]
		}
	}
	return cycle[0]
}
