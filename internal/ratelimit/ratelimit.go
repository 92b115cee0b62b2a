// Package ratelimit implements the rate-limiting collaborator the core
// codec treats as external: "given (caller, callee) observe one inbound
// call" (spec §6, §9). It holds a bounded admission cache keyed by the
// (callerName, service) pair scanned off a CallRequest's fast-path
// headers, with a per-key token count and a periodic reset window.
package ratelimit

import (
	"sync"
	"time"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/coreframe/callwire/pkg/logger"
	"github.com/coreframe/callwire/pkg/metrics"
)

// Config controls the limiter's admission cache sizing and token window.
type Config struct {
	// MaxTokensPerWindow is the number of calls a (caller, callee) pair
	// may make within ResetInterval before Observe reports denied.
	MaxTokensPerWindow int64
	// ResetInterval is how often a pair's token count resets to zero.
	ResetInterval time.Duration
	// NumCounters sizes ristretto's internal admission-count structures.
	NumCounters int64
	// MaxCost bounds the cache's tracked-entry budget.
	MaxCost int64
}

// bucket is the per-(caller,callee) counter state held in the cache.
type bucket struct {
	mu          sync.Mutex
	count       int64
	windowStart time.Time
}

// Limiter is the concrete rate-limiting collaborator. The zero value is
// not usable; construct with New.
type Limiter struct {
	cache   *ristretto.Cache[string, *bucket]
	cfg     Config
	metrics metrics.CodecMetrics
}

// New builds a Limiter backed by a bounded ristretto admission cache.
func New(cfg Config, m metrics.CodecMetrics) (*Limiter, error) {
	if cfg.NumCounters <= 0 {
		cfg.NumCounters = 1e6
	}
	if cfg.MaxCost <= 0 {
		cfg.MaxCost = 1 << 24
	}
	if cfg.MaxTokensPerWindow <= 0 {
		cfg.MaxTokensPerWindow = 1000
	}
	if cfg.ResetInterval <= 0 {
		cfg.ResetInterval = time.Second
	}

	cache, err := ristretto.NewCache(&ristretto.Config[string, *bucket]{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}

	return &Limiter{cache: cache, cfg: cfg, metrics: m}, nil
}

// Close releases the limiter's cache resources.
func (l *Limiter) Close() {
	l.cache.Close()
}

func key(caller, callee string) string {
	return caller + "\x00" + callee
}

// Observe records one inbound call for (caller, callee) and reports
// whether it is admitted. A caller or callee of "" (the header was
// absent, §4.6) is tracked under its own bucket like any other value —
// the limiter does not special-case absence, since a missing "cn"
// header is itself a distinguishable caller identity.
func (l *Limiter) Observe(caller, callee string) (allowed bool) {
	k := key(caller, callee)

	b, found := l.cache.Get(k)
	if !found {
		b = &bucket{windowStart: nowFunc()}
		l.cache.Set(k, b, 1)
		l.cache.Wait()
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if nowFunc().Sub(b.windowStart) >= l.cfg.ResetInterval {
		b.windowStart = nowFunc()
		b.count = 0
	}

	b.count++
	allowed = b.count <= l.cfg.MaxTokensPerWindow

	remaining := l.cfg.MaxTokensPerWindow - b.count
	if remaining < 0 {
		remaining = 0
	}
	logger.Debug("rate limiter observed call",
		logger.CallerName(caller), logger.Service(callee),
		logger.TokensRemaining(remaining))

	if !allowed {
		metrics.RecordThrottle(l.metrics, caller, callee)
	}
	return allowed
}

// nowFunc is indirected so tests can fake the clock without sleeping.
var nowFunc = time.Now
