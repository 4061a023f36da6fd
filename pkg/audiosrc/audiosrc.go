// Package audiosrc provides the audio source collaborator: something that
// yields fixed-size frames of real samples in [-1, 1] at a known sample
// rate.
package audiosrc

import "fmt"

// AudioReadError wraps a failure to read from a live audio source.
type AudioReadError struct {
	Cause error
}

func (e *AudioReadError) Error() string {
	return fmt.Sprintf("audio read failed: %v", e.Cause)
}

func (e *AudioReadError) Unwrap() error {
	return e.Cause
}

// Source is the audio capture collaborator. Read fills buf with up to
// len(buf) samples, returning the count actually written. For a file
// source a short read with a nil error signals end of stream; a live
// source (SyntheticSource) returns a short or empty read with a nil error
// whenever fewer samples are pending than buf can hold.
type Source interface {
	Read(buf []float64) (n int, err error)
	SampleRate() uint32
	Close() error
}
