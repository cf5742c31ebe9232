package control

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
)

const defaultStatsWindow = 4096

// Stats describes cycle execution times over the most recent window of cycles.
type Stats struct {
	Cycles   int
	Errors   int
	Overruns int
	Mean     time.Duration
	P99      time.Duration
	Max      time.Duration
}

func (s Stats) String() string {
	return fmt.Sprintf("cycles=%d errors=%d overruns=%d mean=%v p99=%v max=%v",
		s.Cycles, s.Errors, s.Overruns, s.Mean, s.P99, s.Max)
}

// cycleStats keeps a ring of the last durations in seconds plus running counters.
type cycleStats struct {
	mu        sync.Mutex
	durations []float64
	next      int
	full      bool
	cycles    int
	errors    int
	overruns  int
}

func newCycleStats(window int) *cycleStats {
	return &cycleStats{durations: make([]float64, window)}
}

func (cs *cycleStats) record(took time.Duration, overrun, failed bool) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.durations[cs.next] = took.Seconds()
	cs.next++
	if cs.next == len(cs.durations) {
		cs.next = 0
		cs.full = true
	}
	cs.cycles++
	if overrun {
		cs.overruns++
	}
	if failed {
		cs.errors++
	}
}

func (cs *cycleStats) window() []float64 {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if cs.full {
		return append([]float64(nil), cs.durations...)
	}
	return append([]float64(nil), cs.durations[:cs.next]...)
}

func (cs *cycleStats) summary() Stats {
	data := cs.window()
	cs.mu.Lock()
	out := Stats{Cycles: cs.cycles, Errors: cs.errors, Overruns: cs.overruns}
	cs.mu.Unlock()
	if len(data) == 0 {
		return out
	}
	//nolint:errcheck
	mean, _ := stats.Mean(data)
	//nolint:errcheck
	p99, _ := stats.Percentile(data, 99)
	//nolint:errcheck
	longest, _ := stats.Max(data)
	out.Mean = seconds(mean)
	out.P99 = seconds(p99)
	out.Max = seconds(longest)
	return out
}

// WriteHistogram prints a text histogram of the recorded cycle times, in microseconds.
func (l *Loop) WriteHistogram(w io.Writer, bins int) error {
	data := l.stats.window()
	if len(data) == 0 {
		return errors.New("no cycles recorded")
	}
	for i := range data {
		data[i] *= 1e6
	}
	hist := histogram.Hist(bins, data)
	if _, err := fmt.Fprintf(w, "cycle time (us) over %d cycles\n", len(data)); err != nil {
		return err
	}
	return histogram.Fprint(w, hist, histogram.Linear(40))
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
