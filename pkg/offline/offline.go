// Package offline drives the DFT and renderer synchronously over a
// finite audio source and writes a single static image of the whole
// signal, per the file-to-image run mode.
package offline

import (
	"fmt"

	"github.com/dougsko/spectrowave/pkg/audiosrc"
	"github.com/dougsko/spectrowave/pkg/config"
	"github.com/dougsko/spectrowave/pkg/dft"
	"github.com/dougsko/spectrowave/pkg/logging"
	"github.com/dougsko/spectrowave/pkg/spectrum"
)

// Sink is the append/write collaborator the offline driver writes to.
type Sink interface {
	Append(row []spectrum.Pixel) error
	Write() error
	Width() int
}

// Run decodes source in full, computing a DFT and rendering a pixel row
// for each hop, and finalizes sink once the source is exhausted.
func Run(source audiosrc.Source, sink Sink, settings config.Settings, limits config.Limits) error {
	log := logging.GetGlobalLogger().WithFields(map[string]interface{}{"worker": "offline"})

	engine, err := dft.New(int(settings.DftSize), settings.DftWindow, limits)
	if err != nil {
		return fmt.Errorf("offline: %w", err)
	}
	renderer := spectrum.NewRenderer(settings, limits)

	hop := settings.Hop()
	n := int(settings.DftSize)
	width := sink.Width()

	overlapBuf := make([]float64, n)
	fresh := make([]float64, hop)
	rowsWritten := 0

	for {
		read, readErr := source.Read(fresh)
		if readErr != nil {
			return fmt.Errorf("offline: read source: %w", readErr)
		}
		if read < hop {
			for i := read; i < hop; i++ {
				fresh[i] = 0
			}
		}

		overlapBuf = append(overlapBuf[hop:], fresh...)

		spec, computeErr := engine.Compute(overlapBuf)
		if computeErr != nil {
			return fmt.Errorf("offline: dft compute: %w", computeErr)
		}

		row := renderer.Render(spec, width)
		if err := sink.Append(row); err != nil {
			return fmt.Errorf("offline: append row: %w", err)
		}
		rowsWritten++

		if read < hop {
			break
		}
	}

	log.Infof("offline", "wrote %d rows", rowsWritten)
	return sink.Write()
}
