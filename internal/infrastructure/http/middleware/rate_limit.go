package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	apperrors "github.com/nutridash/dashboard/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RateLimiter keeps one token bucket per client key
type RateLimiter struct {
	name     string
	limit    rate.Limit
	burst    int
	idleTTL  time.Duration
	keyFunc  func(*http.Request) string
	logger   *zap.Logger
	now      func() time.Time
	mu       sync.Mutex
	visitors map[string]*visitor

	stopOnce sync.Once
	stop     chan struct{}
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows requestsPerMin per client with the given burst.
// Buckets idle for longer than idleTTL are dropped by Cleanup.
func NewRateLimiter(name string, requestsPerMin, burst int, idleTTL time.Duration, logger *zap.Logger) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	if idleTTL <= 0 {
		idleTTL = 10 * time.Minute
	}
	return &RateLimiter{
		name:     name,
		limit:    rate.Limit(float64(requestsPerMin) / 60),
		burst:    burst,
		idleTTL:  idleTTL,
		keyFunc:  ClientKey,
		logger:   logger.Named("rate-limit").With(zap.String("limiter", name)),
		now:      time.Now,
		visitors: make(map[string]*visitor),
		stop:     make(chan struct{}),
	}
}

// Allow reports whether key may proceed now
func (l *RateLimiter) Allow(key string) bool {
	now := l.now()

	l.mu.Lock()
	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	l.mu.Unlock()

	return v.limiter.AllowN(now, 1)
}

// Handler rejects requests over the limit with 429
func (l *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := l.keyFunc(r)
		if !l.Allow(key) {
			l.logger.Warn("Rate limit exceeded", zap.String("client", key), zap.String("path", r.URL.Path))
			retryAfter := 1
			if l.limit > 0 {
				retryAfter = int(time.Duration(float64(time.Second)/float64(l.limit)).Seconds()) + 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			writeError(w, r, apperrors.NewAppError(apperrors.CodeTooManyRequests, "Rate limit exceeded", "Too many requests, slow down"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Cleanup drops idle buckets and returns how many were removed
func (l *RateLimiter) Cleanup() int {
	cutoff := l.now().Add(-l.idleTTL)

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, v := range l.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(l.visitors, key)
			removed++
		}
	}
	return removed
}

// StartCleanup runs Cleanup every interval until Stop
func (l *RateLimiter) StartCleanup(interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n := l.Cleanup(); n > 0 {
					l.logger.Debug("Idle rate limit buckets removed", zap.Int("count", n))
				}
			case <-l.stop:
				return
			}
		}
	}()
}

// Stop ends the cleanup loop
func (l *RateLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

// ClientKey identifies the caller: the authenticated user when known,
// otherwise the remote IP (RealIP has already rewritten RemoteAddr)
func ClientKey(r *http.Request) string {
	if claims, ok := ClaimsFromContext(r.Context()); ok {
		return "user:" + claims.UserID.String()
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
