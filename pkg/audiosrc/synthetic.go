package audiosrc

import (
	"math"
	"sync"
	"time"
)

// SyntheticSource generates live-like audio on a ticker paced to its
// configured sample rate. It stands in for real capture hardware, which
// is OS- and device-specific and outside this package's scope.
type SyntheticSource struct {
	sampleRate uint32
	toneHz     float64
	mu         sync.Mutex
	pending    []float64
	closed     bool
	stop       chan struct{}
	wg         sync.WaitGroup
	phase      float64
	seed       uint64
}

// NewSyntheticSource starts a background generator producing a quiet tone
// (toneHz == 0 selects band-limited noise) at sampleRate. chunk controls
// how many samples are generated per tick.
func NewSyntheticSource(sampleRate uint32, toneHz float64, chunk int) *SyntheticSource {
	s := &SyntheticSource{
		sampleRate: sampleRate,
		toneHz:     toneHz,
		stop:       make(chan struct{}),
		seed:       0x2545F4914F6CDD1D,
	}
	s.wg.Add(1)
	go s.generate(chunk)
	return s
}

func (s *SyntheticSource) generate(chunk int) {
	defer s.wg.Done()

	interval := time.Duration(float64(chunk) / float64(s.sampleRate) * float64(time.Second))
	if interval <= 0 {
		interval = time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			samples := make([]float64, chunk)
			for i := range samples {
				if s.toneHz > 0 {
					s.phase += 2 * math.Pi * s.toneHz / float64(s.sampleRate)
					samples[i] = 0.2 * math.Sin(s.phase)
				} else {
					samples[i] = 0.02 * (s.nextRand()*2 - 1)
				}
			}

			s.mu.Lock()
			if !s.closed {
				s.pending = append(s.pending, samples...)
			}
			s.mu.Unlock()
		}
	}
}

// nextRand is a small xorshift64 generator, sufficient for synthetic
// noise and avoiding a dependency on math/rand's global lock from a
// tight ticker loop.
func (s *SyntheticSource) nextRand() float64 {
	x := s.seed
	x ^= x << 13
	x ^= x >> 7
	x ^= x << 17
	s.seed = x
	return float64(x%1000) / 1000.0
}

// Read drains whatever has accumulated since the last Read, never
// blocking on the generator; a short read is normal for a live source
// under this non-blocking contract.
func (s *SyntheticSource) Read(buf []float64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := copy(buf, s.pending)
	s.pending = s.pending[n:]
	return n, nil
}

func (s *SyntheticSource) SampleRate() uint32 {
	return s.sampleRate
}

func (s *SyntheticSource) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	close(s.stop)
	s.wg.Wait()
	return nil
}
