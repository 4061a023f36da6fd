package display

import "github.com/dougsko/spectrowave/pkg/spectrum"

// Headless discards rows and HUD state. Used for tests and for running
// the realtime pipeline unattended.
type Headless struct {
	events chan InputEvent
}

// NewHeadless returns a Display with no observable output.
func NewHeadless() *Headless {
	return &Headless{events: make(chan InputEvent)}
}

func (h *Headless) PushRow(row []spectrum.Pixel) {}

func (h *Headless) PushHUD(state HUDState) {}

func (h *Headless) Events() <-chan InputEvent {
	return h.events
}

func (h *Headless) ToggleFullscreen() {}

func (h *Headless) Close() error {
	close(h.events)
	return nil
}
