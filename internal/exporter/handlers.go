package exporter

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/turbolytics/scribe/internal"
)

type exportRequest struct {
	Collections []string `json:"collections"`
	Prefix      string   `json:"prefix"`
}

func (e *Exporter) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// HandleExport runs an export and responds with the run's catalog. An
// optional JSON body narrows the run to the named collections and prefixes
// the artifact names, so callers can fan runs out into dated folders.
func (e *Exporter) HandleExport(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	collections := req.Collections
	if len(collections) == 0 {
		collections = e.collections
	}

	runID := uuid.Must(uuid.NewUUID())

	cat, err := e.export(r.Context(), runID, collections, req.Prefix)
	if err != nil {
		e.logger.Error("export failed",
			zap.String("run_id", runID.String()),
			zap.Error(err),
		)
		status := http.StatusInternalServerError
		if errors.Is(err, internal.ErrSourceUnavailable) {
			status = http.StatusBadGateway
		}
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(cat)
}

func (e *Exporter) RegisterRoutes(r *chi.Mux) {
	r.Get("/health", e.Health)
	r.Post("/export", e.HandleExport)
}
