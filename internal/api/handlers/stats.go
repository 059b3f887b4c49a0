package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/seenlogapp/seenlog/internal/controllers"
)

// StatsHandler serves the cached stats report and the manual refresh
type StatsHandler struct {
	statsCtrl *controllers.StatsController
	logger    *logrus.Logger
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(statsCtrl *controllers.StatsController, logger *logrus.Logger) *StatsHandler {
	return &StatsHandler{
		statsCtrl: statsCtrl,
		logger:    logger,
	}
}

// ServeHTTP handles GET /api/stats
func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	owner := ownerID(r)
	w.Header().Set("Content-Type", "application/json")
	if owner == "" {
		// Read paths stay UI-friendly without an identity
		w.Write([]byte("null"))
		return
	}

	report, err := h.statsCtrl.Get(owner)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get stats report")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(report)
}

// Refresh handles POST /api/stats/refresh
func (h *StatsHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	owner := ownerID(r)
	if owner == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	report, err := h.statsCtrl.Refresh(owner)
	if err != nil {
		h.logger.WithError(err).Error("Failed to refresh stats report")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}
