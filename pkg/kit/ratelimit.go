package kit

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// WindowStore counts hits per key inside one fixed window. Incr returns the
// count after this hit.
type WindowStore interface {
	Incr(ctx context.Context, key string, windowStart time.Time, window time.Duration) (int64, error)
}

type RateLimitConfig struct {
	Limit      int
	Window     time.Duration
	Message    string
	TrustProxy bool
}

// FixedWindowLimiter counts requests per client in clock-aligned windows.
// A window resets at the boundary regardless of when the first hit came.
type FixedWindowLimiter struct {
	store WindowStore
	cfg   RateLimitConfig
	log   *zap.Logger
	now   func() time.Time

	rejected prometheus.Counter
}

func NewFixedWindowLimiter(store WindowStore, cfg RateLimitConfig, log *zap.Logger) *FixedWindowLimiter {
	if log == nil {
		log = zap.NewNop()
	}
	return &FixedWindowLimiter{
		store: store,
		cfg:   cfg,
		log:   log,
		now:   time.Now,
	}
}

// CountRejections makes the limiter increment c on every 429 it sends.
func (l *FixedWindowLimiter) CountRejections(c prometheus.Counter) {
	l.rejected = c
}

type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	Reset     time.Time
}

func (l *FixedWindowLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	now := l.now()
	start := now.Truncate(l.cfg.Window)

	count, err := l.store.Incr(ctx, key, start, l.cfg.Window)
	if err != nil {
		return Decision{}, err
	}

	remaining := l.cfg.Limit - int(count)
	if remaining < 0 {
		remaining = 0
	}

	return Decision{
		Allowed:   count <= int64(l.cfg.Limit),
		Limit:     l.cfg.Limit,
		Remaining: remaining,
		Reset:     start.Add(l.cfg.Window),
	}, nil
}

func (l *FixedWindowLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r, l.cfg.TrustProxy)

		d, err := l.Allow(r.Context(), ip)
		if err != nil {
			// fail open
			l.log.Warn("rate limiter unavailable", zap.Error(err), zap.String("client", ip))
			next.ServeHTTP(w, r)
			return
		}

		resetIn := int(d.Reset.Sub(l.now()).Round(time.Second).Seconds())
		if resetIn < 0 {
			resetIn = 0
		}

		h := w.Header()
		h.Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
		h.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		h.Set("X-RateLimit-Reset", strconv.Itoa(resetIn))

		if !d.Allowed {
			if l.rejected != nil {
				l.rejected.Inc()
			}
			h.Set("Retry-After", strconv.Itoa(resetIn))
			WriteError(w, r, http.StatusTooManyRequests, l.cfg.Message, nil)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// MemoryWindowStore keeps counters for the current window only. Windows are
// clock aligned, so once a new window begins every older counter is stale
// and the whole table is dropped.
type MemoryWindowStore struct {
	mu      sync.Mutex
	current time.Time
	hits    map[string]int64
}

func NewMemoryWindowStore() *MemoryWindowStore {
	return &MemoryWindowStore{hits: make(map[string]int64)}
}

func (s *MemoryWindowStore) Incr(_ context.Context, key string, windowStart time.Time, _ time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if windowStart.After(s.current) {
		s.current = windowStart
		clear(s.hits)
	}

	s.hits[key]++
	return s.hits[key], nil
}

func clientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if ip := firstForwardedFor(r.Header.Get("X-Forwarded-For")); ip != "" {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}

	return r.RemoteAddr
}

func firstForwardedFor(xff string) string {
	if xff == "" {
		return ""
	}
	first, _, _ := strings.Cut(xff, ",")
	return strings.TrimSpace(first)
}
