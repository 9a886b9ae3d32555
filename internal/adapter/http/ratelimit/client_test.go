package ratelimit

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestLimiter(perSecond float64, burst int) (*ClientLimiter, *time.Time) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l := NewClientLimiter(perSecond, burst, 10*time.Minute)
	l.now = func() time.Time { return now }
	return l, &now
}

func TestClientLimiter_AllowsBurst(t *testing.T) {
	l, _ := newTestLimiter(1, 3)
	defer l.Close()

	for i := 0; i < 3; i++ {
		allowed, wait := l.Allow("10.0.0.1")
		assert.True(t, allowed)
		assert.Zero(t, wait)
	}
}

func TestClientLimiter_BlocksAfterBurst(t *testing.T) {
	l, _ := newTestLimiter(1, 2)
	defer l.Close()

	l.Allow("10.0.0.1")
	l.Allow("10.0.0.1")

	allowed, wait := l.Allow("10.0.0.1")
	assert.False(t, allowed)
	assert.Greater(t, wait, time.Duration(0))
	assert.LessOrEqual(t, wait, time.Second)
}

func TestClientLimiter_RefillsOverTime(t *testing.T) {
	l, now := newTestLimiter(1, 1)
	defer l.Close()

	allowed, _ := l.Allow("10.0.0.1")
	assert.True(t, allowed)
	allowed, _ = l.Allow("10.0.0.1")
	assert.False(t, allowed)

	*now = now.Add(time.Second)
	allowed, _ = l.Allow("10.0.0.1")
	assert.True(t, allowed)
}

func TestClientLimiter_DeniedRequestsDoNotConsumeTokens(t *testing.T) {
	l, now := newTestLimiter(1, 1)
	defer l.Close()

	l.Allow("10.0.0.1")
	for i := 0; i < 5; i++ {
		l.Allow("10.0.0.1")
	}

	*now = now.Add(time.Second)
	allowed, _ := l.Allow("10.0.0.1")
	assert.True(t, allowed)
}

func TestClientLimiter_ClientsAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(1, 1)
	defer l.Close()

	allowed, _ := l.Allow("10.0.0.1")
	assert.True(t, allowed)
	allowed, _ = l.Allow("10.0.0.2")
	assert.True(t, allowed)
	assert.Equal(t, 2, l.Len())
}

func TestClientLimiter_EvictsIdleClients(t *testing.T) {
	l, now := newTestLimiter(1, 1)
	defer l.Close()

	l.Allow("10.0.0.1")
	*now = now.Add(5 * time.Minute)
	l.Allow("10.0.0.2")

	*now = now.Add(6 * time.Minute)
	l.evictIdle()

	assert.Equal(t, 1, l.Len())
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name        string
		remoteAddr  string
		headers     map[string]string
		behindProxy bool
		want        string
	}{
		{name: "remote addr", remoteAddr: "192.0.2.1:4321", want: "192.0.2.1"},
		{name: "forwarded ignored without proxy", remoteAddr: "192.0.2.1:4321",
			headers: map[string]string{"X-Forwarded-For": "203.0.113.9"}, want: "192.0.2.1"},
		{name: "forwarded first hop", remoteAddr: "10.0.0.1:80", behindProxy: true,
			headers: map[string]string{"X-Forwarded-For": "203.0.113.9, 10.0.0.1"}, want: "203.0.113.9"},
		{name: "real ip", remoteAddr: "10.0.0.1:80", behindProxy: true,
			headers: map[string]string{"X-Real-IP": "203.0.113.7"}, want: "203.0.113.7"},
		{name: "no port", remoteAddr: "192.0.2.1", want: "192.0.2.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/", nil)
			r.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, ClientIP(r, tt.behindProxy))
		})
	}
}
