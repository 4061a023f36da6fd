// Package imagesink writes a finished spectrogram image to disk. The
// offline driver appends pixel rows as they're rendered and calls Write
// once at end of stream.
package imagesink

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/dougsko/spectrowave/pkg/config"
	"github.com/dougsko/spectrowave/pkg/spectrum"
)

// PNGSink buffers appended rows in the internal vertical (row-per-time-
// step, width-per-frequency-bin) layout and rotates only at encode time
// if the orientation calls for it.
type PNGSink struct {
	path        string
	width       int
	orientation config.Orientation
	rows        [][]spectrum.Pixel
}

// NewPNGSink prepares a sink that will write width-wide rows to path.
func NewPNGSink(path string, width int, orientation config.Orientation) *PNGSink {
	return &PNGSink{path: path, width: width, orientation: orientation}
}

// Append adds one rendered pixel row. row must have exactly Width()
// elements.
func (s *PNGSink) Append(row []spectrum.Pixel) error {
	if len(row) != s.width {
		return fmt.Errorf("imagesink: row has %d pixels, want %d", len(row), s.width)
	}
	cp := make([]spectrum.Pixel, len(row))
	copy(cp, row)
	s.rows = append(s.rows, cp)
	return nil
}

func (s *PNGSink) Width() int {
	return s.width
}

// Write finalizes the image, applying orientation, and encodes it as PNG.
func (s *PNGSink) Write() error {
	height := len(s.rows)
	if height == 0 {
		return fmt.Errorf("imagesink: no rows appended")
	}

	var img *image.RGBA
	if s.orientation == config.OrientationHorizontal {
		img = image.NewRGBA(image.Rect(0, 0, height, s.width))
		for y, row := range s.rows {
			for x, p := range row {
				img.Set(y, s.width-1-x, pixelToColor(p))
			}
		}
	} else {
		img = image.NewRGBA(image.Rect(0, 0, s.width, height))
		for y, row := range s.rows {
			for x, p := range row {
				img.Set(x, y, pixelToColor(p))
			}
		}
	}

	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("imagesink: create %s: %w", s.path, err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("imagesink: encode %s: %w", s.path, err)
	}
	return nil
}

func pixelToColor(p spectrum.Pixel) color.RGBA {
	return color.RGBA{
		R: uint8(p >> 16),
		G: uint8(p >> 8),
		B: uint8(p),
		A: 255,
	}
}
