package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bnema/scribe/internal/domain"
	"github.com/bnema/scribe/internal/infrastructure/logger"
	"github.com/bnema/scribe/internal/port"
)

var _ port.Notifier = (*EventBus)(nil)

// EventBus fans notifications out to in-process subscribers keyed by
// recipient. Publishing never blocks: slow subscribers lose events.
type EventBus struct {
	topic       string
	subscribers map[string][]chan domain.Notification
	mu          sync.RWMutex
	now         func() time.Time
}

func NewEventBus(topic string) *EventBus {
	return &EventBus{
		topic:       topic,
		subscribers: make(map[string][]chan domain.Notification),
		now:         time.Now,
	}
}

func (eb *EventBus) Topic() string {
	return eb.topic
}

func (eb *EventBus) Subscribe(recipientID string) chan domain.Notification {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	ch := make(chan domain.Notification, 16)
	eb.subscribers[recipientID] = append(eb.subscribers[recipientID], ch)
	return ch
}

func (eb *EventBus) Unsubscribe(recipientID string, ch chan domain.Notification) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	subs := eb.subscribers[recipientID]
	for i, sub := range subs {
		if sub == ch {
			eb.subscribers[recipientID] = append(subs[:i], subs[i+1:]...)
			close(ch)
			break
		}
	}

	if len(eb.subscribers[recipientID]) == 0 {
		delete(eb.subscribers, recipientID)
	}
}

// Notify stamps n with an id and creation time and delivers it to every
// subscriber of n.RecipientID.
func (eb *EventBus) Notify(_ context.Context, n domain.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = eb.now().UTC()
	}

	eb.mu.RLock()
	defer eb.mu.RUnlock()

	delivered := 0
	for _, ch := range eb.subscribers[n.RecipientID] {
		select {
		case ch <- n:
			delivered++
		default:
			// Drop event if subscriber is slow
		}
	}

	logger.Debug.Printf("%s: %s notification for %s delivered to %d subscriber(s)",
		eb.topic, n.Severity, logger.SanitizeForLog(n.RecipientID), delivered)
	return nil
}
