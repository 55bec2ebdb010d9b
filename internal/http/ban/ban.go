// Package ban escalates repeated rate-limit violations into temporary bans
// and keeps a log of the bans it issued.
package ban

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type LogEntry struct {
	Target  string    `json:"target"`
	Route   string    `json:"route"`
	Strikes int       `json:"strikes"`
	Time    time.Time `json:"time"`
}

type record struct {
	strikes     int
	firstStrike time.Time
	bannedUntil time.Time
}

// Tracker counts strikes per target. maxStrikes strikes inside window ban
// the target for banFor.
type Tracker struct {
	mu         sync.Mutex
	records    map[string]*record
	log        []LogEntry
	maxStrikes int
	window     time.Duration
	banFor     time.Duration
	logger     *slog.Logger
	now        func() time.Time
}

func NewTracker(maxStrikes int, window, banFor time.Duration, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		records:    map[string]*record{},
		maxStrikes: maxStrikes,
		window:     window,
		banFor:     banFor,
		logger:     logger,
		now:        time.Now,
	}
}

// Strike records one violation and reports whether target is now banned.
func (t *Tracker) Strike(target, route string) (bool, time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	rec, ok := t.records[target]
	if !ok || now.Sub(rec.firstStrike) > t.window {
		rec = &record{firstStrike: now}
		t.records[target] = rec
	}
	if now.Before(rec.bannedUntil) {
		return true, rec.bannedUntil.Sub(now)
	}

	rec.strikes++
	if rec.strikes < t.maxStrikes {
		return false, 0
	}

	rec.bannedUntil = now.Add(t.banFor)
	entry := LogEntry{Target: target, Route: route, Strikes: rec.strikes, Time: now}
	t.log = append(t.log, entry)
	rec.strikes = 0
	rec.firstStrike = now
	t.logger.Warn("client banned", "target", target, "route", route, "strikes", entry.Strikes, "until", rec.bannedUntil)
	return true, t.banFor
}

func (t *Tracker) Banned(target string) (bool, time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec, ok := t.records[target]
	if !ok {
		return false, 0
	}
	now := t.now()
	if now.Before(rec.bannedUntil) {
		return true, rec.bannedUntil.Sub(now)
	}
	return false, 0
}

// Log returns the bans issued since the last Drain.
func (t *Tracker) Log() []LogEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]LogEntry, len(t.log))
	copy(out, t.log)
	return out
}

// Drain returns and clears the ban log.
func (t *Tracker) Drain() []LogEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := t.log
	t.log = nil
	return out
}

// Summary aggregates bans by route and by target.
type Summary struct {
	Total    int            `json:"total"`
	ByRoute  map[string]int `json:"by_route"`
	ByTarget map[string]int `json:"by_target"`
}

func Summarize(entries []LogEntry) Summary {
	s := Summary{Total: len(entries), ByRoute: map[string]int{}, ByTarget: map[string]int{}}
	for _, e := range entries {
		s.ByRoute[e.Route]++
		s.ByTarget[e.Target]++
	}
	return s
}

// SummaryLoop logs and clears the ban log every interval until ctx is done.
func (t *Tracker) SummaryLoop(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			entries := t.Drain()
			if len(entries) == 0 {
				continue
			}
			s := Summarize(entries)
			t.logger.Info("ban summary", "total", s.Total, "by_route", s.ByRoute, "by_target", s.ByTarget)
		}
	}
}
