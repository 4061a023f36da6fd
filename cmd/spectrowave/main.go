package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dougsko/spectrowave/pkg/audiosrc"
	"github.com/dougsko/spectrowave/pkg/config"
	"github.com/dougsko/spectrowave/pkg/display"
	"github.com/dougsko/spectrowave/pkg/imagesink"
	"github.com/dougsko/spectrowave/pkg/logging"
	"github.com/dougsko/spectrowave/pkg/offline"
	"github.com/dougsko/spectrowave/pkg/pipeline"
	"github.com/dougsko/spectrowave/pkg/store"
)

const Version = "0.1.0-dev"

var (
	configPath = flag.String("config", "", "Configuration file path (optional)")
	version    = flag.Bool("version", false, "Show version information")

	width          = flag.Int("width", 0, "Image/window width")
	height         = flag.Int("height", 0, "Image/window height")
	orientation    = flag.String("orientation", "", "vertical or horizontal")
	sampleRate     int
	overlapPercent = flag.Int("overlap", 0, "Samples overlap, percent [5,95]")
	dftSize        = flag.Int("dft-size", 0, "DFT size, power of two in [64,8192]")
	windowFlag     = flag.String("window", "", "hann, hamming, bartlett, or rectangular")
	magScale       = flag.String("magnitude-scale", "", "linear or logarithmic")
	magMin         = flag.Float64("magnitude-min", 0, "Magnitude lower bound")
	magMax         = flag.Float64("magnitude-max", 0, "Magnitude upper bound")
	colors         = flag.String("colors", "", "heat, blue, or grayscale")
	dbPath         = flag.String("db", "", "Settings/run database path")
)

func init() {
	const sampleRateUsage = "Live-capture sample rate in Hz"
	flag.IntVar(&sampleRate, "sample-rate", 0, sampleRateUsage)
	flag.IntVar(&sampleRate, "r", 0, sampleRateUsage+" (shorthand)")
}

func main() {
	// ContinueOnError so that -h/--help (and any flag error) exits non-zero.
	flag.CommandLine.Init(os.Args[0], flag.ContinueOnError)
	if err := flag.CommandLine.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}

	if *version {
		fmt.Printf("spectrowave version %s\n", Version)
		os.Exit(0)
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "spectrowave: %v\n", err)
		os.Exit(1)
	}
	applyFlags(cfg)

	args := flag.Args()
	switch len(args) {
	case 0:
		cfg.Source.Mode = "realtime"
	case 2:
		cfg.Source.Mode = "file"
		cfg.Source.Path = args[0]
		cfg.Output.Path = args[1]
	default:
		fmt.Fprintln(os.Stderr, "usage: spectrowave [flags] [<audio-in> <image-out>]")
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "spectrowave: invalid configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logging.InitGlobalLogger(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "spectrowave: failed to initialize logging: %v\n", err)
		os.Exit(1)
	}
	defer logging.CloseGlobalLogger()

	if cfg.Source.Mode == "file" {
		if err := runOffline(cfg); err != nil {
			logging.Errorf("main", "offline run failed: %v", err)
			os.Exit(1)
		}
		return
	}

	if err := runRealtime(cfg); err != nil {
		logging.Errorf("main", "realtime run failed: %v", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if *configPath == "" {
		return config.NewDefaultConfig(), nil
	}
	return config.LoadConfig(*configPath)
}

func applyFlags(cfg *config.Config) {
	if *width > 0 {
		cfg.Settings.Width = uint32(*width)
	}
	if *height > 0 {
		cfg.Settings.Height = uint32(*height)
	}
	if *orientation != "" {
		cfg.Settings.Orientation = config.Orientation(*orientation)
	}
	if sampleRate > 0 {
		cfg.Settings.AudioSampleRate = uint32(sampleRate)
	}
	if *overlapPercent > 0 {
		cfg.Settings.SamplesOverlap = float32(*overlapPercent) / 100.0
	}
	if *dftSize > 0 {
		cfg.Settings.DftSize = uint32(*dftSize)
	}
	if *windowFlag != "" {
		cfg.Settings.DftWindow = config.WindowFunction(*windowFlag)
	}
	if *magScale != "" {
		cfg.Settings.MagnitudeLog = *magScale == "logarithmic"
	}
	if *magMin != 0 {
		cfg.Settings.MagnitudeMin = float32(*magMin)
	}
	if *magMax != 0 {
		cfg.Settings.MagnitudeMax = float32(*magMax)
	}
	if *colors != "" {
		cfg.Settings.ColorScheme = config.ColorScheme(*colors)
	}
	if *dbPath != "" {
		cfg.Storage.DatabasePath = *dbPath
	}
}

func runOffline(cfg *config.Config) error {
	source, err := audiosrc.NewFileSource(cfg.Source.Path)
	if err != nil {
		return err
	}
	defer source.Close()

	sink := imagesink.NewPNGSink(cfg.Output.Path, int(cfg.Settings.Width), cfg.Settings.Orientation)
	return offline.Run(source, sink, cfg.Settings, cfg.Limits)
}

func runRealtime(cfg *config.Config) error {
	settingsStore, err := store.New(cfg.Storage.DatabasePath)
	if err != nil {
		return err
	}
	defer settingsStore.Close()

	source := audiosrc.NewSyntheticSource(cfg.Settings.AudioSampleRate, 0, 256)
	defer source.Close()

	var disp display.Display
	if cfg.Display.Mode == "headless" {
		disp = display.NewHeadless()
	} else {
		ws, err := display.NewWebSocket(cfg.Display.BindAddress, cfg.Display.Port)
		if err != nil {
			return err
		}
		disp = ws
	}
	defer disp.Close()

	p, err := pipeline.New(source, disp, cfg.Settings, cfg.Limits)
	if err != nil {
		return err
	}

	runID, err := settingsStore.BeginRun(time.Now())
	if err != nil {
		logging.Warnf("main", "failed to record run start: %v", err)
	}

	p.Start()
	logging.Infof("main", "spectrowave listening on %s:%d", cfg.Display.BindAddress, cfg.Display.Port)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logging.Info("main", "shutting down")
		p.Stop()
	}()

	p.RunPresenter()
	p.Stop()

	if runID != 0 {
		frames, overruns := p.Stats()
		if err := settingsStore.EndRun(runID, time.Now(), frames, overruns); err != nil {
			logging.Warnf("main", "failed to record run end: %v", err)
		}
	}

	return nil
}
