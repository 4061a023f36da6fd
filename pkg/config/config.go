package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v2"
)

// WindowFunction names the closed-form DFT window applied before transform.
type WindowFunction string

const (
	WindowHann        WindowFunction = "hann"
	WindowHamming     WindowFunction = "hamming"
	WindowBartlett    WindowFunction = "bartlett"
	WindowRectangular WindowFunction = "rectangular"
)

// ColorScheme names the magnitude-to-RGB mapping used by the renderer.
type ColorScheme string

const (
	ColorHeat      ColorScheme = "heat"
	ColorBlue      ColorScheme = "blue"
	ColorGrayscale ColorScheme = "grayscale"
)

// Orientation is the display-time layout of the scrolling image.
type Orientation string

const (
	OrientationVertical   Orientation = "vertical"
	OrientationHorizontal Orientation = "horizontal"
)

// Limits bounds every tunable in Settings. Values outside these ranges are
// rejected or clamped by the Controller, never by Settings itself.
type Limits struct {
	DftSizeMin      uint32
	DftSizeMax      uint32
	OverlapMin      float32
	OverlapMax      float32
	OverlapStep     float32
	MagnitudeLogMin  float32
	MagnitudeLogMax  float32
	MagnitudeLogStep float32
	MagnitudeLinMin  float32
	MagnitudeLinMax  float32
	MagnitudeLinStep float32
}

// DefaultLimits mirrors the bounds table carried by the spectrogram engine
// since its earliest configuration generation.
func DefaultLimits() Limits {
	return Limits{
		DftSizeMin:       64,
		DftSizeMax:       8192,
		OverlapMin:       0.05,
		OverlapMax:       0.95,
		OverlapStep:      0.01,
		MagnitudeLogMin:  -80,
		MagnitudeLogMax:  80,
		MagnitudeLogStep: 5,
		MagnitudeLinMin:  0,
		MagnitudeLinMax:  1000,
		MagnitudeLinStep: 25,
	}
}

// Settings is the mutable tunable bundle a running pipeline is reconfigured
// through. Each field is settable by one CLI flag (e.g. ColorScheme by
// --colors, MagnitudeLog by --magnitude-scale).
type Settings struct {
	AudioSampleRate uint32         `yaml:"audio_sample_rate"`
	SamplesOverlap  float32        `yaml:"samples_overlap"`
	DftSize         uint32         `yaml:"dft_size"`
	DftWindow       WindowFunction `yaml:"dft_window"`
	MagnitudeLog    bool           `yaml:"magnitude_log"`
	MagnitudeMin    float32        `yaml:"magnitude_min"`
	MagnitudeMax    float32        `yaml:"magnitude_max"`
	ColorScheme     ColorScheme    `yaml:"color_scheme"`
	Width           uint32         `yaml:"width"`
	Height          uint32         `yaml:"height"`
	Orientation     Orientation    `yaml:"orientation"`
}

// DefaultSettings matches the defaults column of the tunables table.
func DefaultSettings() Settings {
	return Settings{
		AudioSampleRate: 24000,
		SamplesOverlap:  0.50,
		DftSize:         1024,
		DftWindow:       WindowHann,
		MagnitudeLog:    true,
		MagnitudeMin:    0.0,
		MagnitudeMax:    45.0,
		ColorScheme:     ColorHeat,
		Width:           640,
		Height:          480,
		Orientation:     OrientationVertical,
	}
}

// Hop returns the number of fresh samples consumed per DFT under the
// current size and overlap: round((1 - overlap) * size), kept in [1, size].
func (s Settings) Hop() int {
	hop := int(math.Round(float64((1 - s.SamplesOverlap) * float32(s.DftSize))))
	if hop < 1 {
		hop = 1
	}
	if hop > int(s.DftSize) {
		hop = int(s.DftSize)
	}
	return hop
}

// Config is the top-level spectrowave configuration: compiled-in defaults
// overlaid by an optional YAML file, itself overlaid by CLI flags.
type Config struct {
	Settings Settings `yaml:"settings"`
	Limits   Limits   `yaml:"-"`

	Source struct {
		Mode string `yaml:"mode"` // "realtime" or "file"
		Path string `yaml:"path"` // input file path, file mode only
	} `yaml:"source"`

	Output struct {
		Path string `yaml:"path"` // output image path, file mode only
	} `yaml:"output"`

	Display struct {
		Mode        string `yaml:"mode"` // "websocket" or "headless"
		BindAddress string `yaml:"bind_address"`
		Port        int    `yaml:"port"`
	} `yaml:"display"`

	Storage struct {
		DatabasePath string `yaml:"database_path"`
	} `yaml:"storage"`

	Logging struct {
		Level      string `yaml:"level"`
		File       string `yaml:"file"`
		MaxSize    int    `yaml:"max_size"`
		MaxBackups int    `yaml:"max_backups"`
		MaxAge     int    `yaml:"max_age"`
		Compress   bool   `yaml:"compress"`
		Console    bool   `yaml:"console"`
		Structured bool   `yaml:"structured"`
	} `yaml:"logging"`
}

// LoadConfig loads configuration from a YAML file and applies defaults for
// anything left unset. A file that cannot be read (including a missing one)
// is returned as an error; callers without a config path use
// NewDefaultConfig instead.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := NewDefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.applyDefaults()
	return config, nil
}

// NewDefaultConfig returns a Config populated entirely from compiled-in
// defaults, suitable as a base for CLI flag overlay without a YAML file.
func NewDefaultConfig() *Config {
	c := &Config{
		Settings: DefaultSettings(),
		Limits:   DefaultLimits(),
	}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	c.Limits = DefaultLimits()

	if c.Source.Mode == "" {
		c.Source.Mode = "realtime"
	}
	if c.Display.Mode == "" {
		c.Display.Mode = "websocket"
	}
	if c.Display.BindAddress == "" {
		c.Display.BindAddress = "0.0.0.0"
	}
	if c.Display.Port == 0 {
		c.Display.Port = 8080
	}
	if c.Storage.DatabasePath == "" {
		c.Storage.DatabasePath = "spectrowave.db"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.MaxSize == 0 {
		c.Logging.MaxSize = 100
	}
	if c.Logging.MaxBackups == 0 {
		c.Logging.MaxBackups = 5
	}
	if c.Logging.MaxAge == 0 {
		c.Logging.MaxAge = 30
	}
	if c.Settings.AudioSampleRate == 0 {
		c.Settings.AudioSampleRate = DefaultSettings().AudioSampleRate
	}
	if c.Settings.DftSize == 0 {
		c.Settings.DftSize = DefaultSettings().DftSize
	}
	if c.Settings.DftWindow == "" {
		c.Settings.DftWindow = DefaultSettings().DftWindow
	}
	if c.Settings.ColorScheme == "" {
		c.Settings.ColorScheme = DefaultSettings().ColorScheme
	}
	if c.Settings.Orientation == "" {
		c.Settings.Orientation = DefaultSettings().Orientation
	}
	if c.Settings.Width == 0 {
		c.Settings.Width = DefaultSettings().Width
	}
	if c.Settings.Height == 0 {
		c.Settings.Height = DefaultSettings().Height
	}
	if c.Settings.MagnitudeMax == 0 && c.Settings.MagnitudeMin == 0 {
		d := DefaultSettings()
		c.Settings.MagnitudeMin, c.Settings.MagnitudeMax = d.MagnitudeMin, d.MagnitudeMax
	}
}

// Validate enforces the tunables limit table and the source/output
// invariants. It never mutates the receiver: a reconfiguration either
// passes whole or is rejected whole.
func (c *Config) Validate() error {
	s, l := c.Settings, c.Limits

	if !isPowerOfTwo(s.DftSize) || s.DftSize < l.DftSizeMin || s.DftSize > l.DftSizeMax {
		return fmt.Errorf("dft size %d out of range [%d, %d] or not a power of two", s.DftSize, l.DftSizeMin, l.DftSizeMax)
	}
	if s.SamplesOverlap < l.OverlapMin || s.SamplesOverlap > l.OverlapMax {
		return fmt.Errorf("samples overlap %.2f out of range [%.2f, %.2f]", s.SamplesOverlap, l.OverlapMin, l.OverlapMax)
	}
	if s.MagnitudeMin >= s.MagnitudeMax {
		return fmt.Errorf("magnitude min %.2f must be less than magnitude max %.2f", s.MagnitudeMin, s.MagnitudeMax)
	}
	switch s.DftWindow {
	case WindowHann, WindowHamming, WindowBartlett, WindowRectangular:
	default:
		return fmt.Errorf("unknown dft window %q", s.DftWindow)
	}
	switch s.ColorScheme {
	case ColorHeat, ColorBlue, ColorGrayscale:
	default:
		return fmt.Errorf("unknown color scheme %q", s.ColorScheme)
	}
	switch s.Orientation {
	case OrientationVertical, OrientationHorizontal:
	default:
		return fmt.Errorf("unknown orientation %q", s.Orientation)
	}
	if s.Width == 0 || s.Height == 0 {
		return fmt.Errorf("width and height must be non-zero")
	}

	switch c.Source.Mode {
	case "realtime":
	case "file":
		if c.Source.Path == "" {
			return fmt.Errorf("source path is required in file mode")
		}
		if c.Output.Path == "" {
			return fmt.Errorf("output path is required in file mode")
		}
	default:
		return fmt.Errorf("unknown source mode %q", c.Source.Mode)
	}

	return nil
}

func isPowerOfTwo(n uint32) bool {
	return n != 0 && n&(n-1) == 0
}
