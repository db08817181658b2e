package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

type Counter struct {
	value uint64
}

func (c *Counter) Inc() {
	atomic.AddUint64(&c.value, 1)
}

func (c *Counter) Load() uint64 {
	return atomic.LoadUint64(&c.value)
}

type Timer struct {
	start time.Time
}

func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// Outcome classifies a handled callback.
type Outcome string

const (
	OutcomeChanged  Outcome = "changed"
	OutcomeIgnored  Outcome = "ignored"
	OutcomeRejected Outcome = "rejected"
	OutcomeError    Outcome = "error"
)

// UnknownAlias buckets callbacks whose alias did not resolve, keeping the
// alias set bounded by the configured ones.
const UnknownAlias = "_unknown"

// Callbacks counts callbacks per alias and outcome and keeps their total latency.
type Callbacks struct {
	mu     sync.RWMutex
	counts map[string]map[Outcome]*Counter
	nanos  Counter
	total  Counter
}

func NewCallbacks() *Callbacks {
	return &Callbacks{counts: make(map[string]map[Outcome]*Counter)}
}

func (c *Callbacks) Observe(alias string, outcome Outcome, d time.Duration) {
	c.counter(alias, outcome).Inc()
	c.total.Inc()
	atomic.AddUint64(&c.nanos.value, uint64(d.Nanoseconds()))
}

func (c *Callbacks) counter(alias string, outcome Outcome) *Counter {
	c.mu.RLock()
	ctr, ok := c.counts[alias][outcome]
	c.mu.RUnlock()
	if ok {
		return ctr
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	byOutcome, ok := c.counts[alias]
	if !ok {
		byOutcome = make(map[Outcome]*Counter)
		c.counts[alias] = byOutcome
	}
	if ctr, ok = byOutcome[outcome]; !ok {
		ctr = &Counter{}
		byOutcome[outcome] = ctr
	}
	return ctr
}

type Snapshot struct {
	Total        uint64                        `json:"total"`
	AvgLatencyMS float64                       `json:"avg_latency_ms"`
	ByAlias      map[string]map[Outcome]uint64 `json:"by_alias"`
}

func (c *Callbacks) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Snapshot{Total: c.total.Load(), ByAlias: make(map[string]map[Outcome]uint64, len(c.counts))}
	for alias, byOutcome := range c.counts {
		m := make(map[Outcome]uint64, len(byOutcome))
		for o, ctr := range byOutcome {
			m[o] = ctr.Load()
		}
		s.ByAlias[alias] = m
	}
	if s.Total > 0 {
		s.AvgLatencyMS = float64(c.nanos.Load()) / float64(s.Total) / float64(time.Millisecond)
	}
	return s
}
