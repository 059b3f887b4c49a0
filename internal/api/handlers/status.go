package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/seenlogapp/seenlog/internal/models"
)

// StatusHandler handles status requests
type StatusHandler struct {
	db     *models.Database
	logger *logrus.Logger
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(db *models.Database, logger *logrus.Logger) *StatusHandler {
	return &StatusHandler{
		db:     db,
		logger: logger,
	}
}

// StatusResponse represents the status response
type StatusResponse struct {
	MovieRecords   int `json:"movie_records"`
	SeriesRecords  int `json:"series_records"`
	EpisodeRecords int `json:"episode_records"`
	StatsCaches    int `json:"stats_caches"`
}

// ServeHTTP handles the status endpoint
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	movies, series, episodes, caches, err := h.db.RecordCounts()
	if err != nil {
		h.logger.WithError(err).Error("Failed to count records")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	response := StatusResponse{
		MovieRecords:   movies,
		SeriesRecords:  series,
		EpisodeRecords: episodes,
		StatsCaches:    caches,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}
