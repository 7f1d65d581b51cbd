// Package metrics provides in-memory timing statistics for pipeline stages.
package metrics

import (
	"math"
	"sync"
	"time"
)

// Stage operation names recorded by the pipeline.
const (
	OpRecognize = "recognize"
	OpExtract   = "extract"
	OpRetrieve  = "retrieve"
	OpRerank    = "rerank"
	OpJudge     = "judge"
	OpPersist   = "persist"
)

// StageMetrics holds aggregated timings for a single pipeline stage.
type StageMetrics struct {
	Count     int64
	TotalTime time.Duration
	MinTime   time.Duration
	MaxTime   time.Duration
}

// StageSnapshot provides computed stats from raw stage metrics.
type StageSnapshot struct {
	Count       int64   `json:"count"`
	TotalTimeMs int64   `json:"total_time_ms"`
	AvgTimeMs   float64 `json:"avg_time_ms"`
	MinTimeMs   int64   `json:"min_time_ms"`
	MaxTimeMs   int64   `json:"max_time_ms"`
}

// Snapshot is a point-in-time view over all recorded stages.
type Snapshot struct {
	UptimeSeconds float64                   `json:"uptime_seconds"`
	Stages        map[string]*StageSnapshot `json:"stages"`
}

// Collector aggregates in-memory stage timings.
// All methods are thread-safe; a nil Collector records nothing.
type Collector struct {
	mu        sync.RWMutex
	startTime time.Time
	stages    map[string]*StageMetrics
}

// NewCollector creates a new metrics collector.
func NewCollector() *Collector {
	return &Collector{
		startTime: time.Now(),
		stages:    make(map[string]*StageMetrics),
	}
}

// RecordTiming records one stage duration.
func (c *Collector) RecordTiming(stage string, duration time.Duration) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	m, ok := c.stages[stage]
	if !ok {
		m = &StageMetrics{MinTime: time.Duration(math.MaxInt64)}
		c.stages[stage] = m
	}
	m.Count++
	m.TotalTime += duration

	if duration < m.MinTime {
		m.MinTime = duration
	}
	if duration > m.MaxTime {
		m.MaxTime = duration
	}
}

// Snapshot returns a point-in-time snapshot of all recorded stages.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{Stages: map[string]*StageSnapshot{}}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap := Snapshot{
		UptimeSeconds: time.Since(c.startTime).Seconds(),
		Stages:        make(map[string]*StageSnapshot, len(c.stages)),
	}
	for stage, m := range c.stages {
		if m.Count == 0 {
			continue
		}
		snap.Stages[stage] = &StageSnapshot{
			Count:       m.Count,
			TotalTimeMs: m.TotalTime.Milliseconds(),
			AvgTimeMs:   float64(m.TotalTime.Milliseconds()) / float64(m.Count),
			MinTimeMs:   m.MinTime.Milliseconds(),
			MaxTimeMs:   m.MaxTime.Milliseconds(),
		}
	}
	return snap
}
