package core

import "sync"

type MetricsState struct {
	Allocations   uint64
	Releases      uint64
	Uploads       uint64
	UploadedBytes uint64
	Binds         uint64
	Unbinds       uint64
}

var onceMetrics sync.Once
var metricsState *MetricsState = nil

func MetricsInitialize() error {
	onceMetrics.Do(func() {
		metricsState = &MetricsState{}
	})
	return nil
}

func MetricsAllocation() {
	if metricsState == nil {
		return
	}
	metricsState.Allocations++
}

func MetricsRelease() {
	if metricsState == nil {
		return
	}
	metricsState.Releases++
}

func MetricsUpload(sizeBytes uint64) {
	if metricsState == nil {
		return
	}
	metricsState.Uploads++
	metricsState.UploadedBytes += sizeBytes
}

func MetricsBind() {
	if metricsState == nil {
		return
	}
	metricsState.Binds++
}

func MetricsUnbind() {
	if metricsState == nil {
		return
	}
	metricsState.Unbinds++
}

// MetricsSnapshot returns a copy of the current counters.
func MetricsSnapshot() MetricsState {
	if metricsState == nil {
		return MetricsState{}
	}
	return *metricsState
}
