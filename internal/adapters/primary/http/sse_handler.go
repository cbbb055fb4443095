package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jobtrail/jobtrail-backend/internal/core/domain"
	"github.com/jobtrail/jobtrail-backend/internal/events"
)

// SSEHandler streams live-feed events to browsers over Server-Sent Events.
// Each connection holds its own bus subscription; a connection only ever sees
// events published while it is attached.
type SSEHandler struct {
	bus       *events.Bus
	keepAlive time.Duration
	logger    *slog.Logger
}

// NewSSEHandler creates a new SSE handler. keepAlive is the interval between
// comment pings on idle streams.
func NewSSEHandler(bus *events.Bus, keepAlive time.Duration, logger *slog.Logger) *SSEHandler {
	if keepAlive <= 0 {
		keepAlive = 15 * time.Second
	}
	return &SSEHandler{
		bus:       bus,
		keepAlive: keepAlive,
		logger:    logger.With("handler", "sse"),
	}
}

// HandleStream handles GET /api/events. The response stays open until the
// client disconnects or the server shuts down.
func (h *SSEHandler) HandleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		WriteJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error: "Streaming unsupported",
			Code:  "STREAMING_UNSUPPORTED",
		})
		return
	}

	// The stream outlives the server's write timeout, so lift the deadline
	// for this connection only.
	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		h.logger.Debug("could not clear write deadline", "error", err)
	}

	sub := h.bus.Subscribe()
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	// An immediate comment line forces the proxy and browser to commit to
	// the stream before the first real event.
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	h.logger.Debug("sse client connected", "subscribers", h.bus.SubscriberCount())
	defer func() {
		h.logger.Debug("sse client disconnected", "dropped_events", sub.Dropped())
	}()

	keepAlive := time.NewTicker(h.keepAlive)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return

		case event, open := <-sub.Events():
			if !open {
				// Bus shut down.
				return
			}
			payload, err := domain.EncodeEvent(event)
			if err != nil {
				h.logger.Error("failed to encode event", "error", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
				return
			}
			flusher.Flush()

		case <-keepAlive.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
