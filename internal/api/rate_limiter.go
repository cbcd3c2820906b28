package api

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/tahcohcat/steamwrapped-web/config"
	"github.com/tahcohcat/steamwrapped-web/internal/logger"
)

const bucketIdleTTL = 10 * time.Minute

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// clientRateLimiter gives every client of the public share routes its own
// token bucket. Clients are keyed by peer address; forwarding headers only
// count when the peer is a trusted proxy.
type clientRateLimiter struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	buckets   map[string]*bucket
	proxies   []netip.Prefix
	lastSweep time.Time
	now       func() time.Time
}

// newClientRateLimiter returns nil, meaning unlimited, for non-positive settings.
func newClientRateLimiter(cfg config.ShareConfig) *clientRateLimiter {
	if cfg.RateLimit <= 0 || cfg.RateBurst <= 0 {
		return nil
	}

	return &clientRateLimiter{
		limit:   rate.Limit(cfg.RateLimit),
		burst:   cfg.RateBurst,
		buckets: make(map[string]*bucket),
		proxies: parseProxies(cfg.TrustedProxies),
		now:     time.Now,
	}
}

func parseProxies(entries []string) []netip.Prefix {
	var prefixes []netip.Prefix
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if p, err := netip.ParsePrefix(entry); err == nil {
			prefixes = append(prefixes, p.Masked())
			continue
		}
		if addr, err := netip.ParseAddr(entry); err == nil {
			addr = addr.Unmap()
			prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
			continue
		}
		logger.New().With("entry", entry).Warn("ignoring invalid trusted proxy")
	}
	return prefixes
}

func (l *clientRateLimiter) Middleware(next http.Handler) http.Handler {
	if l == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.allow(l.clientAddress(r)) {
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (l *clientRateLimiter) allow(client string) bool {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= bucketIdleTTL {
		for key, b := range l.buckets {
			if now.Sub(b.lastSeen) > bucketIdleTTL {
				delete(l.buckets, key)
			}
		}
		l.lastSweep = now
	}

	b, ok := l.buckets[client]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[client] = b
	}
	b.lastSeen = now
	return b.limiter.AllowN(now, 1)
}

func (l *clientRateLimiter) trusted(addr netip.Addr) bool {
	for _, p := range l.proxies {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// clientAddress walks X-Forwarded-For from the right, skipping trusted hops,
// and stops at the first address it cannot vouch for.
func (l *clientRateLimiter) clientAddress(r *http.Request) string {
	peer := remoteAddr(r)
	if !peer.IsValid() {
		return strings.TrimSpace(r.RemoteAddr)
	}
	if !l.trusted(peer) {
		return peer.String()
	}

	hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		addr, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
		if err != nil {
			break
		}
		addr = addr.Unmap()
		if !l.trusted(addr) {
			return addr.String()
		}
	}

	if addr, err := netip.ParseAddr(strings.TrimSpace(r.Header.Get("X-Real-IP"))); err == nil {
		return addr.Unmap().String()
	}
	return peer.String()
}

func remoteAddr(r *http.Request) netip.Addr {
	host := strings.TrimSpace(r.RemoteAddr)
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return netip.Addr{}
	}
	return addr.Unmap()
}
