// Package pipeline implements the concurrent Capture -> Analyzer ->
// Presenter pipeline: a producer that reads audio, a worker that windows
// and transforms it into colored pixel rows, and a consumer that scrolls
// them into a displayed image while handling interactive reconfiguration.
package pipeline

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/dougsko/spectrowave/pkg/audiosrc"
	"github.com/dougsko/spectrowave/pkg/config"
	"github.com/dougsko/spectrowave/pkg/dft"
	"github.com/dougsko/spectrowave/pkg/display"
	"github.com/dougsko/spectrowave/pkg/logging"
	"github.com/dougsko/spectrowave/pkg/queue"
	"github.com/dougsko/spectrowave/pkg/shared"
	"github.com/dougsko/spectrowave/pkg/spectrum"
)

// readSize is the fixed frame size Capture reads per iteration. Chosen
// small relative to any dftSize so reconfiguration latency stays low.
const readSize = 128

// waitTimeout bounds how long Analyzer blocks on an empty samples queue
// before re-checking the running flag, enabling cooperative shutdown
// without cancelling a blocking read.
const waitTimeout = 200 * time.Millisecond

// Pipeline owns the three workers and the queues between them.
type Pipeline struct {
	source audiosrc.Source
	disp   display.Display
	log    *logging.FieldLogger

	samplesQueue *queue.Queue[*audiosrc.SampleBuffer]
	pixelsQueue  *queue.Queue[[]spectrum.Pixel]

	audioSourceLock *shared.Resource[audiosrc.Source]
	dftResource     *shared.Resource[*dft.Engine]
	renderer        *spectrum.Renderer

	settings sync.Mutex
	current  config.Settings
	limits   config.Limits

	running atomic.Bool
	wg      sync.WaitGroup

	framesProcessed atomic.Uint64
	overruns        atomic.Uint64

	hud      sync.Mutex
	hudState display.HUDState
}

// New constructs a pipeline wired to source and disp, with the given
// initial settings.
func New(source audiosrc.Source, disp display.Display, settings config.Settings, limits config.Limits) (*Pipeline, error) {
	engine, err := dft.New(int(settings.DftSize), settings.DftWindow, limits)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		source:          source,
		disp:            disp,
		log:             logging.GetGlobalLogger().WithFields(map[string]interface{}{"worker": "pipeline"}),
		samplesQueue:    queue.New[*audiosrc.SampleBuffer](),
		pixelsQueue:     queue.New[[]spectrum.Pixel](),
		audioSourceLock: shared.NewResource[audiosrc.Source](source),
		dftResource:     shared.NewResource(engine),
		renderer:        spectrum.NewRenderer(settings, limits),
		current:         settings,
		limits:          limits,
	}
	return p, nil
}

// Start launches Capture and Analyzer on dedicated goroutines.
func (p *Pipeline) Start() {
	p.running.Store(true)
	p.wg.Add(2)
	go p.captureLoop()
	go p.analyzerLoop()
}

// Stop signals all workers to exit and waits for Capture/Analyzer to
// return. The Presenter loop (run by the caller via RunPresenter) observes
// the same running flag and returns on its own.
func (p *Pipeline) Stop() {
	p.running.Store(false)
	p.wg.Wait()
}

func (p *Pipeline) isRunning() bool {
	return p.running.Load()
}

// Settings returns a snapshot of the currently active settings.
func (p *Pipeline) Settings() config.Settings {
	p.settings.Lock()
	defer p.settings.Unlock()
	return p.current
}

// captureLoop implements the §4.3 Capture worker: read a frame under the
// audio source lock into a pooled buffer, then hand it to the samples
// queue. The Analyzer releases each buffer back to the pool once it has
// copied the samples out.
func (p *Pipeline) captureLoop() {
	defer p.wg.Done()

	pool := audiosrc.GlobalBufferPool()
	for p.isRunning() {
		buf := pool.Get(readSize)

		var n int
		var err error
		p.audioSourceLock.Use(func(src audiosrc.Source) {
			n, err = src.Read(buf.Data)
		})
		if err != nil {
			p.log.Errorf("capture", "audio read failed: %v", err)
			p.running.Store(false)
			buf.Release()
			return
		}
		if n == 0 {
			buf.Release()
			time.Sleep(5 * time.Millisecond)
			continue
		}

		buf.Data = buf.Data[:n]
		buf.Size = n
		p.samplesQueue.Push(buf)
	}
}

// analyzerLoop implements the §4.4 Analyzer worker.
func (p *Pipeline) analyzerLoop() {
	defer p.wg.Done()

	var audioBuf []float64
	var overlapBuf []float64

	for p.isRunning() {
		if !p.samplesQueue.WaitNonEmpty(waitTimeout) {
			continue
		}
		frames := p.samplesQueue.DrainAll()
		for _, f := range frames {
			audioBuf = append(audioBuf, f.Data...)
			f.Release()
		}

		for {
			var spectrumOut []complex128
			var computeErr error
			var width int
			var hop int

			p.dftResource.Lock()
			engine := p.dftResource.Get()
			if len(overlapBuf) != engine.Size() {
				overlapBuf = resizeOverlap(overlapBuf, engine.Size())
			}

			p.settings.Lock()
			hop = p.current.Hop()
			width = int(p.current.Width)
			p.settings.Unlock()

			if len(audioBuf) < hop {
				p.dftResource.Unlock()
				break
			}

			overlapBuf = append(overlapBuf[hop:], audioBuf[:hop]...)
			audioBuf = audioBuf[hop:]

			spectrumOut, computeErr = engine.Compute(overlapBuf)
			p.dftResource.Unlock()

			if computeErr != nil {
				p.log.Errorf("analyzer", "dft compute failed: %v", computeErr)
				continue
			}

			row := p.renderer.Render(spectrumOut, width)
			p.framesProcessed.Add(1)
			p.pixelsQueue.Push(row)
		}
	}
}

func resizeOverlap(buf []float64, size int) []float64 {
	fresh := make([]float64, size)
	copy(fresh, buf)
	return fresh
}

// RunPresenter implements the §4.5 Presenter on the calling goroutine. It
// drains pixel rows, forwards at most Height of them per frame (the newest;
// older surplus rows are dropped and counted as overruns) and HUD state to
// disp, and applies input events via the Controller until the running flag
// is cleared or the display's event channel closes. It keeps no image
// buffer of its own; scrolling is left to the display.
func (p *Pipeline) RunPresenter() {
	ctrl := NewController(p)
	frameTick := time.NewTicker(33 * time.Millisecond)
	defer frameTick.Stop()

	for p.isRunning() {
		select {
		case evt, ok := <-p.disp.Events():
			if !ok {
				p.running.Store(false)
				return
			}
			ctrl.HandleInput(evt)
		case <-frameTick.C:
			p.drainAndPresent()
		}
	}
}

func (p *Pipeline) drainAndPresent() {
	rows := p.pixelsQueue.DrainAll()
	if len(rows) == 0 {
		return
	}

	settings := p.Settings()
	capacity := int(settings.Height)
	if len(rows) > capacity {
		p.overruns.Add(uint64(len(rows) - capacity))
		rows = rows[len(rows)-capacity:]
	}

	for _, row := range rows {
		p.disp.PushRow(row)
	}

	p.hud.Lock()
	p.hudState.FramesProcessed = p.framesProcessed.Load()
	p.hudState.Overruns = p.overruns.Load()
	state := p.hudState
	p.hud.Unlock()
	p.disp.PushHUD(state)
}

// CursorFrequency implements the §4.5 cursor-overlay formula for mouse
// position x along the spectrum axis.
func (p *Pipeline) CursorFrequency(x int) float64 {
	settings := p.Settings()
	n := int(settings.DftSize)/2 + 1
	width := int(settings.Width)
	if width == 0 {
		return 0
	}
	binsPerPixel := float64(n) / float64(width)
	hzPerBin := (float64(settings.AudioSampleRate) / 2) / float64(n)
	bin := float64(x) * binsPerPixel
	return float64(int(bin)) * hzPerBin
}

// Stats returns the pipeline's lifetime frame and overrun counters.
func (p *Pipeline) Stats() (framesProcessed, overruns uint64) {
	return p.framesProcessed.Load(), p.overruns.Load()
}
