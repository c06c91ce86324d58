package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"octoboard/internal/database"
	"octoboard/models"
	"octoboard/services/stats"
)

// statsService is the subset of the stats service the public handlers use.
type statsService interface {
	View(ctx context.Context, id int64) (*models.PublicView, error)
	Configs() ([]models.ConfigSummary, error)
}

var _ statsService = (*stats.Service)(nil)

// StatsHandler serves the public, unauthenticated widget endpoints.
type StatsHandler struct {
	service statsService
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(service statsService) *StatsHandler {
	return &StatsHandler{service: service}
}

// GetStats returns the display-filtered stats view for one profile.
// GET /stats/{profileID}
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["profileID"], 10, 64)
	if err != nil {
		jsonError(w, "Invalid profile ID", http.StatusBadRequest)
		return
	}

	view, err := h.service.View(r.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrProfileNotFound) {
			jsonError(w, "Configuration not found", http.StatusNotFound)
			return
		}
		jsonError(w, "Failed to load stats", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(view)
}

// ListConfigs returns the id/name pairs of every active profile as a bare
// array; the widget selector consumes it directly.
// GET /configs
func (h *StatsHandler) ListConfigs(w http.ResponseWriter, r *http.Request) {
	configs, err := h.service.Configs()
	if err != nil {
		jsonError(w, "Failed to list configurations", http.StatusInternalServerError)
		return
	}
	if configs == nil {
		configs = []models.ConfigSummary{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(configs)
}

func jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
