package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/tunecircle/backend/internal/broker"
)

// EventsHandler serves Server-Sent Events streams for live feed updates.
type EventsHandler struct {
	broker *broker.Broker
}

// NewEventsHandler creates an EventsHandler backed by the given broker.
func NewEventsHandler(b *broker.Broker) *EventsHandler {
	return &EventsHandler{broker: b}
}

// Feed opens an SSE connection. It sends an initial "connected" event, then
// pushes "feed_changed" each time a review is created, edited, or deleted.
// A heartbeat comment is sent every 30 seconds to keep the connection alive
// through proxies.
func (h *EventsHandler) Feed(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	ch := h.broker.Subscribe()
	defer h.broker.Unsubscribe(ch)

	fmt.Fprintf(w, "event: connected\ndata: ok\n\n")
	flusher.Flush()

	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ch:
			fmt.Fprintf(w, "event: feed_changed\ndata: refresh\n\n")
			flusher.Flush()
		case <-heartbeat.C:
			fmt.Fprintf(w, ": heartbeat\n\n")
			flusher.Flush()
		}
	}
}
