package httpserver

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// handleStream serves the live event feed as server-sent events. Each frame
// carries the envelope's event id, the fixed event name "domainEvent", and
// the JSON envelope as data. Disconnect is a normal termination: the
// subscription is released and nothing is buffered for a comeback.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeActivityError(w, http.StatusInternalServerError, "streaming_unsupported", "response writer does not support streaming")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	sub := s.activity.Hub.Subscribe()
	defer sub.Close()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case event, open := <-sub.Events():
			if !open {
				return
			}
			data, err := json.Marshal(event)
			if err != nil {
				s.logger.WarnContext(ctx, "stream_encode_failed",
					"module", "internal/platform/httpserver",
					"layer", "platform",
					"event_id", event.EventID,
					"error", err,
				)
				continue
			}
			fmt.Fprintf(w, "id: %s\nevent: domainEvent\ndata: %s\n\n", event.EventID, data)
			flusher.Flush()
		}
	}
}
