package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/jpalmerr/linkmonitor/internal/store"
)

// SSE event names.
const (
	eventTargets = "targets"
	eventSummary = "summary"
)

// sseStream writes named events with a per-write deadline so a stalled
// client cannot pin the handler goroutine.
type sseStream struct {
	w         http.ResponseWriter
	rc        *http.ResponseController
	deadlines bool
	srv       *Server
}

func (s *sseStream) send(event string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		s.srv.logger.Error("failed to encode sse event", "event", event, "error", err)
		return nil
	}

	if s.deadlines {
		if err := s.rc.SetWriteDeadline(time.Now().Add(sseWriteTimeout)); err != nil {
			s.srv.logger.Warn("sse write deadlines not supported", "error", err)
			s.deadlines = false
		}
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	return s.rc.Flush()
}

// publish sends the list followed by its summary.
func (s *sseStream) publish(targets []store.Target) error {
	if err := s.send(eventTargets, targets); err != nil {
		return err
	}
	return s.send(eventSummary, store.Summarize(targets))
}

// handleSSE streams saved target lists via Server-Sent Events.
//
// Every save produces a "targets" event carrying the whole list and a
// "summary" event with its counts. The first pair describes the list at
// connect time; a running cycle then shows up target by target.
func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	if _, ok := w.(http.Flusher); !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	stream := &sseStream{
		w:         w,
		rc:        http.NewResponseController(w),
		deadlines: true,
		srv:       s,
	}

	// subscribe before reading the current list so no save is missed
	ch := s.store.Subscribe()
	defer s.store.Unsubscribe(ch)

	if err := stream.publish(s.store.Load()); err != nil {
		return
	}

	for {
		select {
		case targets, ok := <-ch:
			if !ok {
				return
			}
			if err := stream.publish(targets); err != nil {
				return
			}

		case <-r.Context().Done():
			// BaseContext ties this to server shutdown as well as disconnects
			return
		}
	}
}
