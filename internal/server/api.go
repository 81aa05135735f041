package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/jpalmerr/linkmonitor/internal/liveness"
	"github.com/jpalmerr/linkmonitor/internal/poller"
	"github.com/jpalmerr/linkmonitor/internal/store"
)

// maxEditBody caps the admin edit payload.
const maxEditBody = 1 << 20

// editRequest is the JSON body accepted by PUT /api/targets.
type editRequest struct {
	URLs []string `json:"urls"`
}

// SystemResponse is the body of GET /api/system and each /api/ws message.
type SystemResponse struct {
	liveness.View
	Message string `json:"message"`
	Title   string `json:"title"`
}

// TriggerResponse is the body of a successful /api/trigger call.
type TriggerResponse struct {
	CycleID    string        `json:"cycle_id"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	NextRun    time.Time     `json:"next_run"`
	Checked    int           `json:"checked"`
	Summary    store.Summary `json:"summary"`
	Error      string        `json:"error,omitempty"`
}

func (s *Server) handleTargets(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.writeJSON(w, http.StatusOK, s.store.Load())
	case http.MethodPut, http.MethodPost:
		s.handleEdit(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleEdit replaces the URL set. The mode=admin query flag only hides the
// editor from casual viewers; it is not access control.
func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("mode") != "admin" {
		s.writeError(w, http.StatusForbidden, "editing requires mode=admin")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxEditBody))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}

	var rawURLs []string
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var req editRequest
		if err := json.Unmarshal(body, &req); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		rawURLs = req.URLs
	} else {
		rawURLs = store.SplitURLList(string(body))
	}

	saved, err := store.Edit(s.store, rawURLs)
	if err != nil {
		s.logger.Error("failed to save edited targets", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to save targets")
		return
	}

	s.logger.Info("targets edited", "count", len(saved))
	s.writeJSON(w, http.StatusOK, saved)
}

func (s *Server) systemView() SystemResponse {
	view := liveness.Observe(s.liveness.Read(), s.now())
	return SystemResponse{
		View:    view,
		Message: view.Message(),
		Title:   s.title,
	}
}

func (s *Server) handleSystem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.writeJSON(w, http.StatusOK, s.systemView())
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.writeJSON(w, http.StatusOK, store.Summarize(s.store.Load()))
}

// handleTrigger runs one cycle before responding. The cycle runs on a
// context detached from the request so a client hanging up (typical for
// cron pingers with short timeouts) does not abort it.
func (s *Server) handleTrigger(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.trigger == nil {
		s.writeError(w, http.StatusServiceUnavailable, "trigger disabled")
		return
	}

	report, err := s.trigger(context.WithoutCancel(r.Context()))
	if errors.Is(err, poller.ErrCycleRunning) {
		s.writeError(w, http.StatusConflict, err.Error())
		return
	}

	resp := TriggerResponse{
		CycleID:    report.CycleID,
		StartedAt:  report.StartedAt,
		FinishedAt: report.FinishedAt,
		NextRun:    report.NextRun,
		Checked:    report.Checked,
		Summary:    store.Summarize(report.Targets),
	}
	status := http.StatusOK
	if err != nil {
		s.logger.Error("triggered cycle failed", "cycle_id", report.CycleID, "error", err)
		resp.Error = err.Error()
		status = http.StatusInternalServerError
	}
	s.writeJSON(w, status, resp)
}
