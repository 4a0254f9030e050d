package ui

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/robertofernandezmartinez/ai-corporate-suite/domain/inference"
	apperrors "github.com/robertofernandezmartinez/ai-corporate-suite/internal/errors"
	"github.com/robertofernandezmartinez/ai-corporate-suite/ports"
)

// OpsApp is the operations sidecar: liveness plus per-table row counts,
// served on a separate port so monitoring never competes with uploads.
type OpsApp struct {
	router   *chi.Mux
	registry *inference.Registry
	store    ports.PredictionStore
}

// NewOpsApp creates the operations router.
func NewOpsApp(registry *inference.Registry, store ports.PredictionStore) *OpsApp {
	a := &OpsApp{
		router:   chi.NewRouter(),
		registry: registry,
		store:    store,
	}

	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)

	a.router.Get("/healthz", a.handleHealthz)
	a.router.Get("/tables", a.handleTables)

	return a
}

// Start starts the operations server.
func (a *OpsApp) Start(addr string) error {
	log.Printf("Starting ops endpoint on http://%s", addr)
	return http.ListenAndServe(addr, a.router)
}

func (a *OpsApp) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// handleTables reports the stored row count per domain table.
func (a *OpsApp) handleTables(w http.ResponseWriter, r *http.Request) {
	counts := make(map[string]int64)
	for _, name := range a.registry.Names() {
		d, ok := a.registry.Lookup(name)
		if !ok {
			continue
		}
		count, err := a.store.Count(r.Context(), d.Table)
		if err != nil {
			appErr := apperrors.PersistenceError("store unavailable", err)
			log.Printf("[Ops] Count failed for %s: %v", d.Table, appErr)
			writeJSON(w, http.StatusInternalServerError, map[string]any{
				"error": appErr.Error(),
				"code":  apperrors.GetCode(appErr),
			})
			return
		}
		counts[d.Table] = count
	}
	writeJSON(w, http.StatusOK, map[string]any{"tables": counts})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("[Ops] Encode error: %v", err)
	}
}
