package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aristath/wealthfolio-core/internal/events"
)

// sseHeartbeatInterval keeps idle SSE connections from being closed by
// intermediate proxies.
const sseHeartbeatInterval = 30 * time.Second

// handleEventsStream implements DomainEventBus.subscribe over SSE. Clients
// may pass ?types=ActivitiesChanged,QuotesImported to narrow the feed;
// omitting it subscribes to every event type.
func (s *Server) handleEventsStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("streaming not supported"))
		return
	}

	var types []events.Type
	if raw := r.URL.Query().Get("types"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			types = append(types, events.Type(strings.TrimSpace(t)))
		}
	}

	sub := s.container.Bus.Subscribe(types...)
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	fmt.Fprintf(w, "event: connected\ndata: {}\n\n")
	flusher.Flush()

	heartbeat := time.NewTicker(sseHeartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return

		case evt, ok := <-sub.Events:
			if !ok {
				return
			}
			payload, err := json.Marshal(struct {
				Type      events.Type `json:"type"`
				Emitter   string      `json:"emitter"`
				Timestamp time.Time   `json:"timestamp"`
				Data      events.Data `json:"data"`
			}{evt.Type, evt.Emitter, evt.Timestamp, evt.Data})
			if err != nil {
				s.log.Warn().Err(err).Msg("marshal event for SSE stream")
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", evt.Type, payload)
			flusher.Flush()

		case <-heartbeat.C:
			fmt.Fprintf(w, "event: heartbeat\ndata: {}\n\n")
			flusher.Flush()
		}
	}
}
