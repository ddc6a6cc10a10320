// Package quota tracks per-client riddle generation against a daily ceiling.
package quota

import (
	"context"
	"errors"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// ErrExceeded indicates a client has reached its daily generation ceiling.
var ErrExceeded = errors.New("quota: daily generation limit reached")

const (
	// defaultSweepInterval is how often stale client records are purged.
	defaultSweepInterval = 6 * time.Hour
	// staleAfterDays is how many whole days a record may sit untouched
	// before the sweeper drops it. Any swept record would be reset to zero
	// on its next access anyway, so sweeping never changes quota results.
	staleAfterDays = 2
)

// record tracks one client's consumption since its last daily reset.
type record struct {
	count     int
	lastReset time.Time
}

// Tracker counts generation actions per client key with a lazy reset at
// each local calendar-day boundary. State is process-local; this is a
// single-process limiter by design.
type Tracker struct {
	mu        sync.Mutex
	limits    map[string]*record
	maxPerDay int
	now       func() time.Time
}

// NewTracker constructs a Tracker with the given daily ceiling.
func NewTracker(maxPerDay int) *Tracker {
	if maxPerDay <= 0 {
		maxPerDay = 1
	}
	return &Tracker{
		limits:    make(map[string]*record),
		maxPerDay: maxPerDay,
		now:       time.Now,
	}
}

// MaxPerDay returns the configured daily ceiling.
func (t *Tracker) MaxPerDay() int {
	return t.maxPerDay
}

// CanGenerate reports whether the client may generate another riddle today.
func (t *Tracker) CanGenerate(clientKey string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec := t.getOrCreateLocked(clientKey)
	return rec.count < t.maxPerDay
}

// Increment records one generation action and returns the remaining quota.
func (t *Tracker) Increment(clientKey string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec := t.getOrCreateLocked(clientKey)
	rec.count++
	return t.remainingLocked(rec)
}

// Remaining returns the client's remaining quota for the current day
// without consuming any. It commits a pending daily reset.
func (t *Tracker) Remaining(clientKey string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec := t.getOrCreateLocked(clientKey)
	return t.remainingLocked(rec)
}

// getOrCreateLocked returns the record for a key, creating it for unseen
// keys and applying the lazy daily reset. Callers must hold t.mu.
func (t *Tracker) getOrCreateLocked(clientKey string) *record {
	now := t.now()
	rec, ok := t.limits[clientKey]
	if !ok {
		rec = &record{lastReset: now}
		t.limits[clientKey] = rec
		return rec
	}
	if isNewDay(rec.lastReset, now) {
		rec.count = 0
		rec.lastReset = now
	}
	return rec
}

func (t *Tracker) remainingLocked(rec *record) int {
	remaining := t.maxPerDay - rec.count
	if remaining < 0 {
		return 0
	}
	return remaining
}

// isNewDay reports whether now falls on a different local calendar date
// than lastReset. The comparison deliberately uses the server's local
// time, matching the client-visible "remaining today" semantics.
func isNewDay(lastReset, now time.Time) bool {
	return lastReset.Year() != now.Year() ||
		lastReset.Month() != now.Month() ||
		lastReset.Day() != now.Day()
}

// Sweep drops records that have not been touched for staleAfterDays whole
// days and returns how many were removed.
func (t *Tracker) Sweep() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	cutoff := t.now().AddDate(0, 0, -staleAfterDays)
	removed := 0
	for key, rec := range t.limits {
		if rec.lastReset.Before(cutoff) {
			delete(t.limits, key)
			removed++
		}
	}
	return removed
}

// Start launches a background loop that periodically sweeps stale records.
func (t *Tracker) Start(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	go t.run(ctx)
}

func (t *Tracker) run(ctx context.Context) {
	ticker := time.NewTicker(defaultSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := t.Sweep(); removed > 0 {
				log.Debugf("quota: swept %d stale client records", removed)
			}
		}
	}
}
