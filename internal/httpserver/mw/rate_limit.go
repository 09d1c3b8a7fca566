package mw

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/MrSnakeDoc/yodda/internal/logger"
	"github.com/MrSnakeDoc/yodda/internal/utils"
)

// RateLimitConfig configures one token bucket per client IP.
type RateLimitConfig struct {
	Burst             int
	RefillPerIPPerMin int
	MaxEntries        int           // visitors kept before idle ones are evicted early (0 = unbounded)
	IdleTTL           time.Duration // a visitor unseen this long is forgotten
	TrustProxy        bool          // resolve IP from proxy headers when true
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type visitors struct {
	cfg       RateLimitConfig
	limit     rate.Limit
	mu        sync.Mutex
	byIP      map[string]*visitor
	lastSweep time.Time
}

func newVisitors(cfg RateLimitConfig) *visitors {
	cfg.Burst = max(cfg.Burst, 1)
	cfg.RefillPerIPPerMin = max(cfg.RefillPerIPPerMin, 1)
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 15 * time.Minute
	}
	return &visitors{
		cfg:       cfg,
		limit:     rate.Limit(float64(cfg.RefillPerIPPerMin) / 60),
		byIP:      make(map[string]*visitor),
		lastSweep: time.Now(),
	}
}

// get returns the bucket of ip, evicting idle visitors at most once per
// IdleTTL or whenever the table is full.
func (v *visitors) get(ip string, now time.Time) *rate.Limiter {
	v.mu.Lock()
	defer v.mu.Unlock()

	full := v.cfg.MaxEntries > 0 && len(v.byIP) >= v.cfg.MaxEntries
	if full || now.Sub(v.lastSweep) >= v.cfg.IdleTTL {
		for k, vis := range v.byIP {
			if now.Sub(vis.lastSeen) > v.cfg.IdleTTL {
				delete(v.byIP, k)
			}
		}
		v.lastSweep = now
	}

	vis, ok := v.byIP[ip]
	if !ok {
		vis = &visitor{limiter: rate.NewLimiter(v.limit, v.cfg.Burst)}
		v.byIP[ip] = vis
	}
	vis.lastSeen = now
	return vis.limiter
}

// take spends one token of ip. When none is left it reports how long the
// client should wait, without consuming anything.
func (v *visitors) take(ip string, now time.Time) (ok bool, remaining int, retryAfter time.Duration) {
	lim := v.get(ip, now)

	res := lim.ReserveN(now, 1)
	if delay := res.DelayFrom(now); delay > 0 {
		res.CancelAt(now)
		return false, 0, delay
	}
	return true, int(math.Floor(lim.TokensAt(now))), 0
}

// RateLimit rejects requests with 429 once a client IP has used its burst,
// refilling RefillPerIPPerMin tokens per minute.
func RateLimit(cfg RateLimitConfig, log logger.Logger) func(http.Handler) http.Handler {
	v := newVisitors(cfg)
	limitStr := strconv.Itoa(v.cfg.Burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := utils.ClientIP(r, v.cfg.TrustProxy)

			ok, remaining, wait := v.take(ip, time.Now())
			w.Header().Set("X-RateLimit-Limit", limitStr)
			if !ok {
				retry := max(int(math.Ceil(wait.Seconds())), 1)
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				w.Header().Set("X-RateLimit-Remaining", "0")
				log.Debug("rate limit exceeded",
					logger.String("client_ip", ip),
					logger.String("path", r.URL.Path),
					logger.Int("retry_after", retry))
				reject(w, http.StatusTooManyRequests)
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(max(remaining, 0)))
			next.ServeHTTP(w, r)
		})
	}
}
