// Package metrics provides a minimal instrumentation interface with a no-op
// default and a Prometheus-backed implementation.
package metrics

import (
	"sync"
	"time"
)

// Recorder defines the metrics surface used by the API client.
type Recorder interface {
	IncRequestTotal(op string, success bool)
	ObserveRequestSeconds(op string, success bool, seconds float64)
}

type noopRecorder struct{}

func (noopRecorder) IncRequestTotal(string, bool)                {}
func (noopRecorder) ObserveRequestSeconds(string, bool, float64) {}

var (
	recMu    sync.RWMutex
	recorder Recorder = noopRecorder{}
)

// Default returns the current recorder.
func Default() Recorder {
	recMu.RLock()
	defer recMu.RUnlock()
	return recorder
}

// SetRecorder swaps the global recorder. A nil recorder restores the no-op.
func SetRecorder(r Recorder) {
	recMu.Lock()
	defer recMu.Unlock()
	if r == nil {
		r = noopRecorder{}
	}
	recorder = r
}

// TimeRequest starts timing an API request. Call the returned func once the
// request has finished.
func TimeRequest(op string) func(success bool) {
	start := time.Now()
	return func(success bool) {
		dur := time.Since(start).Seconds()
		r := Default()
		r.IncRequestTotal(op, success)
		r.ObserveRequestSeconds(op, success, dur)
	}
}
