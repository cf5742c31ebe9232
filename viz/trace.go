// Package viz records foot motion and renders it as plots for offline inspection.
package viz

import (
	"sync"
	"time"

	"github.com/golang/geo/r3"

	"go.viam.com/quadruped/gait"
	"go.viam.com/quadruped/leg"
	"go.viam.com/quadruped/quadruped"
)

// A Sample is one world frame foot position at one instant.
type Sample struct {
	Time     time.Time
	Position r3.Vector
	State    gait.LegState
}

// A Trace keeps the most recent samples of every foot, up to a fixed count per leg.
// It is safe for concurrent use.
type Trace struct {
	mu      sync.Mutex
	samples [leg.Count][]Sample
	next    [leg.Count]int
	full    [leg.Count]bool
}

// NewTrace returns a trace holding at most capacity samples per leg.
func NewTrace(capacity int) *Trace {
	if capacity < 1 {
		capacity = 1
	}
	var t Trace
	for _, id := range leg.All {
		t.samples[id] = make([]Sample, capacity)
	}
	return &t
}

// Add records a sample for one leg, dropping the oldest once the trace is full.
func (t *Trace) Add(id leg.ID, s Sample) {
	if !id.Valid() {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.samples[id][t.next[id]] = s
	t.next[id]++
	if t.next[id] == len(t.samples[id]) {
		t.next[id] = 0
		t.full[id] = true
	}
}

// Record adds every foot of a command.
func (t *Trace) Record(cmd quadruped.Command) {
	for _, id := range leg.All {
		t.Add(id, Sample{Time: cmd.Time, Position: cmd.Feet[id].Position, State: cmd.Gait[id].State})
	}
}

// Samples returns the samples of one leg, oldest first.
func (t *Trace) Samples(id leg.ID) []Sample {
	if !id.Valid() {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.full[id] {
		return append([]Sample(nil), t.samples[id][:t.next[id]]...)
	}
	out := make([]Sample, 0, len(t.samples[id]))
	out = append(out, t.samples[id][t.next[id]:]...)
	return append(out, t.samples[id][:t.next[id]]...)
}

// Len returns the number of samples held for one leg.
func (t *Trace) Len(id leg.ID) int {
	if !id.Valid() {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.full[id] {
		return len(t.samples[id])
	}
	return t.next[id]
}
