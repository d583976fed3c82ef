// Package antigaming suppresses reward farming between the same pair of
// users while staying fair to organic interaction.
package antigaming

import (
	"sync"
	"time"
)

// Window is the rolling window pair interactions are tracked over.
const Window = 24 * time.Hour

type pairKey struct {
	actor  string
	target string
}

// Tracker keeps per-pair interaction timestamps in memory for the lifetime
// of the process. A single coarse mutex guards the map; the critical
// section is small relative to the database I/O elsewhere in the pipeline.
type Tracker struct {
	mu    sync.Mutex
	pairs map[pairKey][]time.Time
	now   func() time.Time
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		pairs: make(map[pairKey][]time.Time),
		now:   time.Now,
	}
}

// prune drops entries older than the window. Called with the lock held on
// every access, so no entry survives indefinitely.
func (t *Tracker) prune(key pairKey, now time.Time) []time.Time {
	cutoff := now.Add(-Window)
	entries := t.pairs[key]
	kept := entries[:0]
	for _, ts := range entries {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) == 0 {
		delete(t.pairs, key)
		return nil
	}
	t.pairs[key] = kept
	return kept
}

// IsPairCapped records the current interaction and reports whether the pair
// has now reached maxPerDay interactions within the trailing window. The
// caller zeroes out stars for a capped pair's event.
func (t *Tracker) IsPairCapped(actor, target string, maxPerDay int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	key := pairKey{actor: actor, target: target}
	entries := t.prune(key, now)
	entries = append(entries, now)
	t.pairs[key] = entries

	return len(entries) >= maxPerDay
}

// DiminishingFactor records an interaction and returns 1/(1+n) where n is
// the number of prior interactions for the pair within the trailing window.
// Repeated give/receive cycles decay instead of being hard-blocked.
func (t *Tracker) DiminishingFactor(actor, target string) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	key := pairKey{actor: actor, target: target}
	entries := t.prune(key, now)
	prior := len(entries)
	t.pairs[key] = append(entries, now)

	return 1.0 / float64(1+prior)
}

// PairCount returns the live interaction count for a pair without
// recording a new interaction.
func (t *Tracker) PairCount(actor, target string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.prune(pairKey{actor: actor, target: target}, t.now()))
}
