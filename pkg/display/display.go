// Package display provides the windowing/input collaborator: something
// that can present scrolling pixel rows and HUD state, and forward input
// events back to the pipeline.
package display

import "github.com/dougsko/spectrowave/pkg/spectrum"

// HUDState is the overlay state the Presenter publishes on every frame.
type HUDState struct {
	ShowHelp        bool    `json:"show_help"`
	ShowSettings    bool    `json:"show_settings"`
	ShowStats       bool    `json:"show_stats"`
	CursorFrequency float64 `json:"cursor_frequency_hz"`
	FramesProcessed uint64  `json:"frames_processed"`
	Overruns        uint64  `json:"overruns"`
}

// InputEvent is a key press or mouse move forwarded from the display
// layer to the Presenter.
type InputEvent struct {
	Key     string `json:"key,omitempty"`
	MouseX  int    `json:"mouse_x,omitempty"`
	HasMove bool   `json:"has_move,omitempty"`
}

// Display is the realtime presentation collaborator.
type Display interface {
	// PushRow delivers one freshly rendered pixel row for display.
	PushRow(row []spectrum.Pixel)
	// PushHUD publishes the latest overlay state.
	PushHUD(state HUDState)
	// Events returns the channel of input events the display layer
	// forwards; closed when the display shuts down.
	Events() <-chan InputEvent
	// ToggleFullscreen is a UI hint; concrete displays may no-op.
	ToggleFullscreen()
	// Close releases any resources (listeners, windows) held by the display.
	Close() error
}
