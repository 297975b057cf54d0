package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ppiankov/factcheck/internal/archive"
	"github.com/ppiankov/factcheck/internal/pipeline"
)

const missingTextMessage = "Missing required 'text' field in request body"

// factCheckRequest is the POST /api/fact-check body. html is accepted from
// clients that send a page instead of selected text.
type factCheckRequest struct {
	Text *string `json:"text"`
	HTML *string `json:"html"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "online",
		"message": "Fact-checking API is running",
		"version": s.opts.Version,
		"endpoints": []string{
			"POST /api/fact-check",
			"GET /api/fact-check/{id}",
			"GET /healthz",
			"GET /readyz",
			"GET /metrics",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]bool, len(s.opts.Probes))
	ready := true
	for name, probe := range s.opts.Probes {
		ok := probe(r.Context())
		checks[name] = ok
		ready = ready && ok
	}

	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]any{"ready": ready, "checks": checks})
}

func (s *Server) handleFactCheck(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes)

	var req factCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, missingTextMessage)
		return
	}

	text, err := s.requestText(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	if s.opts.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.RunTimeout)
		defer cancel()
	}

	run, err := s.checker.Run(ctx, text)
	if run != nil {
		w.Header().Set("X-Run-Id", run.ID)
	}
	if err != nil {
		if errors.Is(err, pipeline.ErrEmptyInput) {
			writeError(w, http.StatusBadRequest, missingTextMessage)
			return
		}
		s.logger.Error("fact-check failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, run.Results)
}

// requestText picks the text to check: text wins over html
func (s *Server) requestText(req factCheckRequest) (string, error) {
	if req.Text != nil && strings.TrimSpace(*req.Text) != "" {
		return *req.Text, nil
	}
	if req.HTML != nil && strings.TrimSpace(*req.HTML) != "" {
		text, err := s.opts.Extractor.Extract(*req.HTML)
		if err != nil {
			return "", err
		}
		if text != "" {
			return text, nil
		}
	}
	return "", errors.New(missingTextMessage)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.opts.Store == nil {
		writeError(w, http.StatusNotFound, "Run archive is disabled")
		return
	}

	id := chi.URLParam(r, "id")
	entry, err := s.opts.Store.Get(id)
	if err != nil {
		if errors.Is(err, archive.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Run not found: "+id)
			return
		}
		s.logger.Error("archive lookup failed", zap.String("run_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, entry)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
