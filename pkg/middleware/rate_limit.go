package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"gymdesk/internal/auth"
	apperrors "gymdesk/pkg/errors"
	httputil "gymdesk/pkg/http"
	"gymdesk/pkg/logger"

	"golang.org/x/time/rate"
)

// ClientExtractor names the bucket a request is charged to.
type ClientExtractor func(r *http.Request) string

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ClientRateLimiter gives every client a token bucket refilled at
// limit requests per window.
type ClientRateLimiter struct {
	mu        sync.Mutex
	clients   map[string]*clientLimiter
	limit     int
	window    time.Duration
	extractor ClientExtractor
	log       *logger.Logger
	stopCh    chan struct{}
	once      sync.Once
	now       func() time.Time
}

func NewClientRateLimiter(limit int, window time.Duration, extractor ClientExtractor, log *logger.Logger) *ClientRateLimiter {
	if extractor == nil {
		extractor = DefaultClientExtractor
	}
	limiter := &ClientRateLimiter{
		clients:   make(map[string]*clientLimiter),
		limit:     limit,
		window:    window,
		extractor: extractor,
		log:       log,
		stopCh:    make(chan struct{}),
		now:       time.Now,
	}

	go limiter.cleanup()

	return limiter
}

// DefaultClientExtractor charges authenticated requests to the account and
// anonymous ones to the remote address.
func DefaultClientExtractor(r *http.Request) string {
	if actor, ok := auth.ActorFrom(r.Context()); ok && actor.ID != "" {
		return "actor:" + actor.ID
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}

func (rl *ClientRateLimiter) Allow(client string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	entry, ok := rl.clients[client]
	if !ok {
		every := rate.Every(rl.window / time.Duration(rl.limit))
		entry = &clientLimiter{limiter: rate.NewLimiter(every, rl.limit)}
		rl.clients[client] = entry
	}
	now := rl.now()
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

func (rl *ClientRateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.mu.Lock()
			for client, entry := range rl.clients {
				if rl.now().Sub(entry.lastSeen) > rl.window {
					delete(rl.clients, client)
				}
			}
			rl.mu.Unlock()
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *ClientRateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stopCh) })
}

func RateLimit(limiter *ClientRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			client := limiter.extractor(r)
			if !limiter.Allow(client) {
				rejectRateLimited(w, limiter, r, client)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func rejectRateLimited(w http.ResponseWriter, limiter *ClientRateLimiter, r *http.Request, client string) {
	rateLimitedTotal.Inc()
	limiter.log.Warn("Rate limit exceeded",
		"request_id", RequestID(r.Context()),
		"client", client,
		"path", r.URL.Path,
		"limit", limiter.limit,
		"window", limiter.window,
	)

	w.Header().Set("Retry-After", retryAfterSeconds(limiter.window, limiter.limit))
	_ = httputil.WriteJSON(w, http.StatusTooManyRequests, httputil.ErrorResponse{
		Error: "Too many requests",
		Code:  apperrors.CodeRateLimited,
	})
}

func retryAfterSeconds(window time.Duration, limit int) string {
	secs := int((window / time.Duration(limit)).Seconds())
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}
