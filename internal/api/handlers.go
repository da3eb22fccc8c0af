package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"github.com/evolabz/wob-crawler/internal/jobs"
)

// BookCounter reports how many books have been ingested so far.
type BookCounter interface {
	Count(ctx context.Context) (int64, error)
}

type Handlers struct {
	jobs   *jobs.Manager
	books  BookCounter
	logger *slog.Logger
}

func NewHandlers(jobs *jobs.Manager, books BookCounter, logger *slog.Logger) *Handlers {
	return &Handlers{
		jobs:   jobs,
		books:  books,
		logger: logger.With("component", "api"),
	}
}

// Router assembles the HTTP control surface for the crawler.
func (h *Handlers) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/healthz", h.Health)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/runs", h.StartRun)
		r.Get("/runs/{id}", h.GetRun)
		r.Get("/books/count", h.CountBooks)
	})

	return r
}

// StartRunRequest is the body for POST /api/v1/runs.
type StartRunRequest struct {
	MaxBooks int `json:"max_books"`
}

func (h *Handlers) StartRun(w http.ResponseWriter, r *http.Request) {
	var req StartRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.MaxBooks < 1 {
		h.respondError(w, http.StatusBadRequest, "max_books must be a positive integer")
		return
	}

	// The run outlives the request; detach it from the request context.
	run, err := h.jobs.Start(context.Background(), req.MaxBooks)
	if err != nil {
		if errors.Is(err, jobs.ErrRunInProgress) {
			h.respondError(w, http.StatusConflict, err.Error())
			return
		}
		h.logger.Error("failed to start run", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to start run")
		return
	}

	h.respondJSON(w, http.StatusAccepted, run)
}

func (h *Handlers) GetRun(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid run id")
		return
	}

	run, ok := h.jobs.Get(id)
	if !ok {
		h.respondError(w, http.StatusNotFound, "run not found")
		return
	}

	h.respondJSON(w, http.StatusOK, run)
}

func (h *Handlers) CountBooks(w http.ResponseWriter, r *http.Request) {
	count, err := h.books.Count(r.Context())
	if err != nil {
		h.logger.Error("failed to count books", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to count books")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]int64{"count": count})
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
