// Package rate_limiter throttles clients by IP with one token bucket each.
package rate_limiter

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	cleanupInterval = time.Minute
	idleTimeout     = 5 * time.Minute
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// StrikeRecorder is told about every rejected request.
type StrikeRecorder interface {
	Strike(target, route string) (banned bool, retryAfter time.Duration)
	Banned(target string) (bool, time.Duration)
}

type Limiter struct {
	mu       sync.Mutex
	visitors map[string]*clientLimiter
	rps      rate.Limit
	burst    int
	strikes  StrikeRecorder
	now      func() time.Time
}

// New allows rps requests per second per client with the given burst.
func New(rps float64, burst int) *Limiter {
	return &Limiter{
		visitors: make(map[string]*clientLimiter),
		rps:      rate.Limit(rps),
		burst:    burst,
		now:      time.Now,
	}
}

// WithStrikes makes repeated offenders subject to bans.
func (l *Limiter) WithStrikes(s StrikeRecorder) *Limiter {
	l.strikes = s
	return l
}

func (l *Limiter) Visitor(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, exists := l.visitors[ip]
	if !exists {
		limiter := rate.NewLimiter(l.rps, l.burst)
		l.visitors[ip] = &clientLimiter{limiter, l.now()}
		return limiter
	}

	v.lastSeen = l.now()
	return v.limiter
}

// Cleanup drops visitors idle for longer than idleTimeout.
func (l *Limiter) Cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for ip, v := range l.visitors {
		if l.now().Sub(v.lastSeen) > idleTimeout {
			delete(l.visitors, ip)
		}
	}
}

// CleanupLoop runs Cleanup every minute until ctx is done.
func (l *Limiter) CleanupLoop(ctx context.Context) error {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			l.Cleanup()
		}
	}
}

// Reset forgets every visitor.
func (l *Limiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.visitors = make(map[string]*clientLimiter)
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func tooMany(w http.ResponseWriter, retryAfter time.Duration) {
	if retryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Round(time.Second).Seconds())))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_, _ = w.Write([]byte(`{"error":"too many requests"}`))
}

// Middleware rejects requests over the limit with 429. It keys on
// RemoteAddr, so chi's RealIP should run first behind a proxy.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if l.strikes != nil {
			if banned, retry := l.strikes.Banned(ip); banned {
				tooMany(w, retry)
				return
			}
		}
		if !l.Visitor(ip).Allow() {
			var retry time.Duration
			if l.strikes != nil {
				_, retry = l.strikes.Strike(ip, r.URL.Path)
			}
			tooMany(w, retry)
			return
		}
		next.ServeHTTP(w, r)
	})
}
