package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bnema/scribe/internal/adapter/http/validation"
	"github.com/bnema/scribe/internal/domain"
	"github.com/bnema/scribe/internal/infrastructure/logger"
)

const keepAliveInterval = 15 * time.Second

type Subscriber interface {
	Subscribe(recipientID string) chan domain.Notification
	Unsubscribe(recipientID string, ch chan domain.Notification)
}

type SSEHandler struct {
	bus       Subscriber
	keepAlive time.Duration
}

func NewSSEHandler(bus Subscriber) *SSEHandler {
	return &SSEHandler{bus: bus, keepAlive: keepAliveInterval}
}

// sseWrite writes an SSE event, handling multi-line data correctly.
func sseWrite(w http.ResponseWriter, eventName, id, data string) {
	_, _ = fmt.Fprintf(w, "event: %s\n", eventName)
	if id != "" {
		_, _ = fmt.Fprintf(w, "id: %s\n", id)
	}
	for _, line := range strings.Split(data, "\n") {
		_, _ = fmt.Fprintf(w, "data: %s\n", line)
	}
	_, _ = fmt.Fprint(w, "\n")
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

// sendKeepAlive writes an SSE comment to keep the connection active.
func sendKeepAlive(w http.ResponseWriter) {
	_, _ = fmt.Fprint(w, ": keep-alive\n\n")
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

// Notifications streams every notification addressed to the recipient in
// the path until the client disconnects.
func (h *SSEHandler) Notifications() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recipientID := r.PathValue("recipientId")
		if err := validation.ValidateIdentifier("recipientId", recipientID); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		w.WriteHeader(http.StatusOK)

		ch := h.bus.Subscribe(recipientID)
		defer h.bus.Unsubscribe(recipientID, ch)

		sendKeepAlive(w)

		ctx := r.Context()
		keepAlive := time.NewTicker(h.keepAlive)
		defer keepAlive.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-keepAlive.C:
				sendKeepAlive(w)
			case n, ok := <-ch:
				if !ok {
					return
				}
				data, err := json.Marshal(n)
				if err != nil {
					logger.Error.Printf("encode notification %s: %v", n.ID, err)
					continue
				}
				sseWrite(w, "notification", n.ID, string(data))
			}
		}
	}
}
