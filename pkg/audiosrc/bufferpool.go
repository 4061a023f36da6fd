package audiosrc

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/dougsko/spectrowave/pkg/logging"
)

// SampleBuffer is a reusable sample buffer with pool-return metadata.
type SampleBuffer struct {
	Data []float64
	Size int
	pool *BufferPool
}

// Reset clears the buffer for reuse, preventing stale samples from
// leaking into a new capture read.
func (b *SampleBuffer) Reset() {
	for i := range b.Data {
		b.Data[i] = 0
	}
	b.Size = 0
}

// Release returns the buffer to its pool.
func (b *SampleBuffer) Release() {
	if b.pool != nil {
		b.pool.Put(b)
	}
}

// BufferPool manages size-tiered pools of sample buffers so the Capture
// worker's hot read loop does not allocate on every frame.
type BufferPool struct {
	smallPool  *sync.Pool // <= 1024 samples
	mediumPool *sync.Pool // <= 4096 samples
	largePool  *sync.Pool // <= 16384 samples

	smallHits  int64
	mediumHits int64
	largeHits  int64
	smallMiss  int64
	mediumMiss int64
	largeMiss  int64

	maxBufferSize    int
	enableStatistics bool
}

var globalPool *BufferPool
var poolOnce sync.Once

// GlobalBufferPool returns the process-wide sample buffer pool, starting
// its periodic statistics reporter on first use.
func GlobalBufferPool() *BufferPool {
	poolOnce.Do(func() {
		globalPool = NewBufferPool(16384, true)
		go globalPool.statisticsReporter()
	})
	return globalPool
}

// NewBufferPool constructs a pool with the given ceiling size.
func NewBufferPool(maxBufferSize int, enableStats bool) *BufferPool {
	p := &BufferPool{
		maxBufferSize:    maxBufferSize,
		enableStatistics: enableStats,
	}

	p.smallPool = &sync.Pool{New: func() interface{} {
		if enableStats {
			atomic.AddInt64(&p.smallMiss, 1)
		}
		return &SampleBuffer{Data: make([]float64, 1024), pool: p}
	}}
	p.mediumPool = &sync.Pool{New: func() interface{} {
		if enableStats {
			atomic.AddInt64(&p.mediumMiss, 1)
		}
		return &SampleBuffer{Data: make([]float64, 4096), pool: p}
	}}
	p.largePool = &sync.Pool{New: func() interface{} {
		if enableStats {
			atomic.AddInt64(&p.largeMiss, 1)
		}
		return &SampleBuffer{Data: make([]float64, 16384), pool: p}
	}}

	return p
}

// Get returns a buffer of at least size samples.
func (p *BufferPool) Get(size int) *SampleBuffer {
	if size <= 0 {
		return &SampleBuffer{Data: make([]float64, 1), Size: size, pool: p}
	}
	if size > p.maxBufferSize {
		return &SampleBuffer{Data: make([]float64, size), Size: size, pool: p}
	}

	var buf *SampleBuffer
	switch {
	case size <= 1024:
		buf = p.smallPool.Get().(*SampleBuffer)
		if p.enableStatistics {
			atomic.AddInt64(&p.smallHits, 1)
		}
	case size <= 4096:
		buf = p.mediumPool.Get().(*SampleBuffer)
		if p.enableStatistics {
			atomic.AddInt64(&p.mediumHits, 1)
		}
	default:
		buf = p.largePool.Get().(*SampleBuffer)
		if p.enableStatistics {
			atomic.AddInt64(&p.largeHits, 1)
		}
	}

	if cap(buf.Data) < size {
		buf.Data = make([]float64, size)
	}
	buf.Data = buf.Data[:size]
	buf.Size = size
	return buf
}

// Put returns a buffer to the appropriate tier.
func (p *BufferPool) Put(buf *SampleBuffer) {
	if buf == nil || buf.Data == nil {
		return
	}
	buf.Reset()

	switch capacity := cap(buf.Data); {
	case capacity <= 1024:
		p.smallPool.Put(buf)
	case capacity <= 4096:
		p.mediumPool.Put(buf)
	case capacity <= 16384:
		p.largePool.Put(buf)
	default:
		// oversized buffers are left for the garbage collector
	}
}

// Statistics returns current hit/miss counters per tier.
func (p *BufferPool) Statistics() map[string]int64 {
	if !p.enableStatistics {
		return map[string]int64{}
	}
	return map[string]int64{
		"small_hits":  atomic.LoadInt64(&p.smallHits),
		"medium_hits": atomic.LoadInt64(&p.mediumHits),
		"large_hits":  atomic.LoadInt64(&p.largeHits),
		"small_miss":  atomic.LoadInt64(&p.smallMiss),
		"medium_miss": atomic.LoadInt64(&p.mediumMiss),
		"large_miss":  atomic.LoadInt64(&p.largeMiss),
	}
}

func (p *BufferPool) statisticsReporter() {
	if !p.enableStatistics {
		return
	}
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	log := logging.GetGlobalLogger().WithFields(map[string]interface{}{"worker": "bufferpool"})
	for range ticker.C {
		stats := p.Statistics()
		totalHits := stats["small_hits"] + stats["medium_hits"] + stats["large_hits"]
		totalMiss := stats["small_miss"] + stats["medium_miss"] + stats["large_miss"]
		total := totalHits + totalMiss
		if total == 0 {
			continue
		}
		hitRate := float64(totalHits) / float64(total) * 100
		log.Infof("audiosrc", "buffer pool: %d requests, %.1f%% hit rate", total, hitRate)
	}
}
