// Package middleware provides the HTTP middleware stack for the storefront.
package middleware

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
	"sync"
	"time"

	"github.com/shashiranjanraj/storefront/pkg/response"
)

// bucket tracks a fixed-window request count for one client.
type bucket struct {
	mu      sync.Mutex
	count   int
	resetAt time.Time
}

func (b *bucket) allow(max int, window time.Duration, now time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if now.After(b.resetAt) {
		b.count = 0
		b.resetAt = now.Add(window)
	}

	b.count++
	return b.count <= max
}

// Limiter holds the per-client buckets for one RateLimit middleware.
type Limiter struct {
	max     int
	window  time.Duration
	trusted []netip.Prefix

	mu      sync.Mutex
	buckets map[string]*bucket
}

func NewLimiter(max int, window time.Duration) *Limiter {
	return &Limiter{max: max, window: window, buckets: map[string]*bucket{}}
}

// TrustProxies lists the proxy addresses (IPs or CIDRs) whose
// X-Forwarded-For header is believed. Unparseable entries are ignored.
// With no trusted proxies the limiter keys by RemoteAddr only.
func (l *Limiter) TrustProxies(proxies ...string) *Limiter {
	for _, p := range proxies {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if prefix, err := netip.ParsePrefix(p); err == nil {
			l.trusted = append(l.trusted, prefix.Masked())
			continue
		}
		if addr, err := netip.ParseAddr(p); err == nil {
			addr = addr.Unmap()
			l.trusted = append(l.trusted, netip.PrefixFrom(addr, addr.BitLen()))
		}
	}
	return l
}

func (l *Limiter) Allow(client string) bool {
	now := time.Now()

	l.mu.Lock()
	b, ok := l.buckets[client]
	if !ok {
		b = &bucket{resetAt: now.Add(l.window)}
		l.buckets[client] = b
	}
	l.mu.Unlock()

	return b.allow(l.max, l.window, now)
}

// Sweep evicts buckets whose window has passed.
func (l *Limiter) Sweep() {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()
	for client, b := range l.buckets {
		b.mu.Lock()
		expired := now.After(b.resetAt)
		b.mu.Unlock()
		if expired {
			delete(l.buckets, client)
		}
	}
}

// Middleware rejects clients over the limit with 429.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow(l.clientIP(r)) {
			response.Fail(w, http.StatusTooManyRequests, "Too Many Requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RateLimit limits each client IP to max requests per window. Expired
// buckets are swept once per window for the life of the process.
// X-Forwarded-For is only honoured for requests from trustedProxies.
func RateLimit(max int, window time.Duration, trustedProxies ...string) func(http.Handler) http.Handler {
	l := NewLimiter(max, window).TrustProxies(trustedProxies...)
	go func() {
		ticker := time.NewTicker(window)
		defer ticker.Stop()
		for range ticker.C {
			l.Sweep()
		}
	}()
	return l.Middleware
}

// clientIP is the peer address, unless the peer is a trusted proxy. Then
// X-Forwarded-For is walked right to left and the first hop that is not
// itself a trusted proxy is the client.
func (l *Limiter) clientIP(r *http.Request) string {
	remote := r.RemoteAddr
	if host, _, err := net.SplitHostPort(remote); err == nil {
		remote = host
	}
	if !l.isTrusted(remote) {
		return remote
	}

	hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		if !l.isTrusted(hop) {
			return hop
		}
		remote = hop
	}
	return remote
}

func (l *Limiter) isTrusted(ip string) bool {
	if len(l.trusted) == 0 {
		return false
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range l.trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
