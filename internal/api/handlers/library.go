package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/seenlogapp/seenlog/internal/controllers"
	"github.com/seenlogapp/seenlog/internal/models"
)

// LibraryHandler accepts movie and series status mutations
type LibraryHandler struct {
	db        *models.Database
	datesCtrl *controllers.DatesController
	logger    *logrus.Logger
}

// NewLibraryHandler creates a new library handler
func NewLibraryHandler(db *models.Database, datesCtrl *controllers.DatesController, logger *logrus.Logger) *LibraryHandler {
	return &LibraryHandler{
		db:        db,
		datesCtrl: datesCtrl,
		logger:    logger,
	}
}

// SeriesStatusRequest sets a user-chosen status on a series
type SeriesStatusRequest struct {
	SeriesID int64               `json:"seriesId"`
	Status   models.SeriesStatus `json:"status"`
}

// MovieStatusRequest sets a user-chosen status on a movie
type MovieStatusRequest struct {
	MovieID        int64              `json:"movieId"`
	Status         models.MovieStatus `json:"status"`
	RuntimeMinutes int                `json:"runtimeMinutes,omitempty"`
}

// SeriesStatus handles PUT /api/series/status
func (h *LibraryHandler) SeriesStatus(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.requireOwner(w, r)
	if !ok {
		return
	}

	var req SeriesStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.SeriesID == 0 || !models.ValidSeriesStatus(req.Status) {
		http.Error(w, "seriesId and a valid status are required", http.StatusBadRequest)
		return
	}

	rec, err := h.datesCtrl.SetSeriesStatus(owner, req.SeriesID, req.Status)
	if err != nil {
		h.logger.WithError(err).Error("Failed to set series status")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rec)
}

// MovieStatus handles PUT /api/movies/status
func (h *LibraryHandler) MovieStatus(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.requireOwner(w, r)
	if !ok {
		return
	}

	var req MovieStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.MovieID == 0 || !models.ValidMovieStatus(req.Status) {
		http.Error(w, "movieId and a valid status are required", http.StatusBadRequest)
		return
	}

	rec, err := h.db.GetMovieRecord(owner, req.MovieID)
	if err == models.ErrNotFound {
		rec = &models.MovieRecord{
			OwnerID: owner,
			MovieID: req.MovieID,
		}
	} else if err != nil {
		h.logger.WithError(err).Error("Failed to load movie record")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	// watchedAt only ever gets set on the transition into watched
	if req.Status == models.MovieStatusWatched && rec.Status != models.MovieStatusWatched {
		now := time.Now()
		rec.WatchedAt = &now
	}
	rec.Status = req.Status
	if req.RuntimeMinutes > 0 {
		rec.RuntimeMinutes = req.RuntimeMinutes
	}

	if err := h.db.UpsertMovieRecord(rec); err != nil {
		h.logger.WithError(err).Error("Failed to update movie record")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rec)
}

func (h *LibraryHandler) requireOwner(w http.ResponseWriter, r *http.Request) (string, bool) {
	if r.Method != http.MethodPut && r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return "", false
	}
	owner := ownerID(r)
	if owner == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return "", false
	}
	return owner, true
}
