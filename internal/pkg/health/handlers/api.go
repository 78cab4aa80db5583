package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Antoine-pa/paris-sportifs/internal/assembler"
	"github.com/Antoine-pa/paris-sportifs/internal/orchestrator"
	"github.com/Antoine-pa/paris-sportifs/internal/pkg/models"
)

// Service is what the API needs from the fetch orchestrator.
type Service interface {
	Fetch(ctx context.Context, source string) (assembler.Payload, error)
	FetchAll(ctx context.Context, sources ...string) map[string]orchestrator.Result
	Status() map[string]orchestrator.SourceStatus
	Invalidate()
}

type API struct {
	svc           Service
	scrapeTimeout time.Duration
}

// NewAPI returns the scrape handlers. scrapeTimeout bounds a fetch started by
// a request; the fetch is detached from the request so a client hanging up
// does not fail it for the other callers waiting on the same source.
func NewAPI(svc Service, scrapeTimeout time.Duration) *API {
	if scrapeTimeout <= 0 {
		scrapeTimeout = 5 * time.Minute
	}
	return &API{svc: svc, scrapeTimeout: scrapeTimeout}
}

func (a *API) fetchContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(r.Context()), a.scrapeTimeout)
}

// HandleScrape handles GET /api/scrape/{source}
func (a *API) HandleScrape(w http.ResponseWriter, r *http.Request) {
	source := chi.URLParam(r, "source")

	ctx, cancel := a.fetchContext(r)
	defer cancel()

	payload, err := a.svc.Fetch(ctx, source)
	if err != nil {
		if errors.Is(err, orchestrator.ErrUnknownSource) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	status := http.StatusOK
	if payload.Status == models.StatusError {
		status = http.StatusInternalServerError
	}
	respondJSON(w, status, payload)
}

// HandleScrapeAll handles GET /api/scrape-all
func (a *API) HandleScrapeAll(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := a.fetchContext(r)
	defer cancel()

	respondJSON(w, http.StatusOK, a.svc.FetchAll(ctx))
}

// HandleStatus handles GET /api/status
func (a *API) HandleStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, a.svc.Status())
}

// HandleClearCache handles GET|POST /api/clear-cache
func (a *API) HandleClearCache(w http.ResponseWriter, r *http.Request) {
	a.svc.Invalidate()
	slog.Info("Cache cleared", "remote", r.RemoteAddr)
	respondJSON(w, http.StatusOK, map[string]string{"status": "success", "message": "cache cleared"})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
