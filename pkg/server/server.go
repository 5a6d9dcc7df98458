package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"mediajudge/pkg/fetch"
	"mediajudge/pkg/frames"
	"mediajudge/pkg/judge"
	"mediajudge/pkg/pipeline"
)

// Evaluator is the pipeline surface the HTTP layer depends on.
type Evaluator interface {
	Evaluate(ctx context.Context, req pipeline.Request) (string, error)
}

type evaluateRequest struct {
	URL          string `json:"url"`
	Kind         string `json:"kind"`
	SystemPrompt string `json:"system_prompt,omitempty"`
	UserPrompt   string `json:"user_prompt,omitempty"`
}

type evaluateResponse struct {
	Verdict string `json:"verdict"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewRouter builds the HTTP surface: POST /api/evaluate runs the pipeline,
// GET /health is liveness.
func NewRouter(ev Evaluator, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/api/evaluate", evaluateHandler(ev, logger))

	return r
}

func evaluateHandler(ev Evaluator, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req evaluateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
			return
		}
		if req.URL == "" {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "url is required"})
			return
		}
		kind := pipeline.MediaKind(req.Kind)
		if kind != pipeline.KindImage && kind != pipeline.KindVideo {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "kind must be image or video"})
			return
		}

		verdict, err := ev.Evaluate(r.Context(), pipeline.Request{
			URL:          req.URL,
			Kind:         kind,
			SystemPrompt: req.SystemPrompt,
			UserPrompt:   req.UserPrompt,
		})
		if err != nil {
			status := statusForError(err)
			logger.Error("evaluation failed",
				zap.String("url", req.URL),
				zap.String("kind", req.Kind),
				zap.Int("status", status),
				zap.Error(err),
			)
			writeJSON(w, status, errorResponse{Error: err.Error()})
			return
		}

		// An empty verdict is a valid outcome: the model declined
		writeJSON(w, http.StatusOK, evaluateResponse{Verdict: verdict})
	}
}

// statusForError maps pipeline error kinds to HTTP statuses: unusable
// caller-supplied media is 422, upstream failures are 502, everything
// else is 500.
func statusForError(err error) int {
	switch {
	case errors.Is(err, fetch.ErrContentType),
		errors.Is(err, frames.ErrOpen),
		errors.Is(err, judge.ErrNoFrames):
		return http.StatusUnprocessableEntity
	case errors.Is(err, fetch.ErrExhausted),
		errors.Is(err, judge.ErrInvocation):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
