package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type clientRecord struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ClientLimiter keeps one token bucket per client address.
type ClientLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientRecord
	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once
}

func NewClientLimiter(perSecond float64, burst int, idleTTL time.Duration) *ClientLimiter {
	if burst <= 0 {
		burst = 1
	}
	l := &ClientLimiter{
		clients: make(map[string]*clientRecord),
		limit:   rate.Limit(perSecond),
		burst:   burst,
		idleTTL: idleTTL,
		now:     time.Now,
		stop:    make(chan struct{}),
	}

	go l.cleanup()

	return l
}

// Allow reports whether clientID may make a request now. When it may not,
// the returned duration is how long until a token is available.
func (l *ClientLimiter) Allow(clientID string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	record, exists := l.clients[clientID]
	if !exists {
		record = &clientRecord{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[clientID] = record
	}
	record.lastSeen = now

	res := record.limiter.ReserveN(now, 1)
	if !res.OK() {
		return false, 0
	}
	if delay := res.DelayFrom(now); delay > 0 {
		res.CancelAt(now)
		return false, delay
	}
	return true, 0
}

func (l *ClientLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// Close stops the idle sweeper.
func (l *ClientLimiter) Close() {
	l.once.Do(func() { close(l.stop) })
}

func (l *ClientLimiter) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.evictIdle()
		}
	}
}

func (l *ClientLimiter) evictIdle() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for clientID, record := range l.clients {
		if now.Sub(record.lastSeen) > l.idleTTL {
			delete(l.clients, clientID)
		}
	}
}

// ClientIP returns the caller address. Forwarded headers are honoured
// only when behindProxy is set.
func ClientIP(r *http.Request, behindProxy bool) string {
	if behindProxy {
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			first, _, _ := strings.Cut(fwd, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
		if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
