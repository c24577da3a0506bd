package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"farmlink-be/internal/utils"

	"golang.org/x/time/rate"
)

type rateTier struct {
	name  string
	limit rate.Limit
	burst int
}

var (
	// signup, login and checkout
	tierStrict = rateTier{name: "strict", limit: 2, burst: 5}
	// AI endpoints and matching call a paid upstream
	tierAI      = rateTier{name: "ai", limit: 1, burst: 3}
	tierGeneral = rateTier{name: "general", limit: 10, burst: 20}
)

const visitorIdle = 3 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

var (
	visitors   = make(map[string]*visitor)
	visitorsMu sync.Mutex
)

func init() {
	go sweepVisitors()
}

func limiterFor(key string, t rateTier) *rate.Limiter {
	visitorsMu.Lock()
	defer visitorsMu.Unlock()

	if v, ok := visitors[key]; ok {
		v.lastSeen = time.Now()
		return v.limiter
	}
	l := rate.NewLimiter(t.limit, t.burst)
	visitors[key] = &visitor{limiter: l, lastSeen: time.Now()}
	return l
}

func sweepVisitors() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		visitorsMu.Lock()
		for key, v := range visitors {
			if time.Since(v.lastSeen) > visitorIdle {
				delete(visitors, key)
			}
		}
		visitorsMu.Unlock()
	}
}

// RateLimitMiddleware keeps one token bucket per identity and tier. Signed-in
// callers are keyed by user id, everyone else by client IP.
func RateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tier := tierFor(r)

		l := limiterFor(clientIdentity(r)+"|"+tier.name, tier)
		if !l.Allow() {
			wait := math.Ceil(1 / float64(tier.limit))
			w.Header().Set("Retry-After", strconv.Itoa(int(wait)))
			utils.WriteJSONError(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func clientIdentity(r *http.Request) string {
	if userID, ok := utils.GetUserIDFromContext(r.Context()); ok {
		return "user:" + userID
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}

func tierFor(r *http.Request) rateTier {
	p := r.URL.Path
	switch {
	case strings.HasPrefix(p, "/auth/"), p == "/checkout":
		return tierStrict
	case strings.HasPrefix(p, "/ai/"), p == "/matches" && r.Method == http.MethodPost:
		return tierAI
	default:
		return tierGeneral
	}
}
