package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/seenlogapp/seenlog/internal/controllers"
)

// EpisodesHandler accepts episode watch state mutations and keeps the
// series date bookkeeping synchronous with them
type EpisodesHandler struct {
	datesCtrl *controllers.DatesController
	logger    *logrus.Logger
}

// NewEpisodesHandler creates a new episodes handler
func NewEpisodesHandler(datesCtrl *controllers.DatesController, logger *logrus.Logger) *EpisodesHandler {
	return &EpisodesHandler{
		datesCtrl: datesCtrl,
		logger:    logger,
	}
}

// WatchRequest marks one episode watched
type WatchRequest struct {
	SeriesID       int64      `json:"seriesId"`
	SeasonID       int64      `json:"seasonId"`
	EpisodeID      int64      `json:"episodeId"`
	WatchedAt      *time.Time `json:"watchedAt,omitempty"`
	RuntimeMinutes int        `json:"runtimeMinutes,omitempty"`
}

// UnwatchRequest removes one episode's watch event
type UnwatchRequest struct {
	EpisodeID int64 `json:"episodeId"`
}

// SeasonBatchRequest applies watches and unwatches for one season at once
type SeasonBatchRequest struct {
	SeriesID  int64      `json:"seriesId"`
	SeasonID  int64      `json:"seasonId"`
	Watch     []int64    `json:"watch"`
	Unwatch   []int64    `json:"unwatch"`
	WatchedAt *time.Time `json:"watchedAt,omitempty"`
}

// Watch handles POST /api/episodes/watch
func (h *EpisodesHandler) Watch(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.requireOwner(w, r)
	if !ok {
		return
	}

	var req WatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.SeriesID == 0 || req.EpisodeID == 0 {
		http.Error(w, "seriesId and episodeId are required", http.StatusBadRequest)
		return
	}

	watchedAt := time.Now()
	if req.WatchedAt != nil {
		watchedAt = *req.WatchedAt
	}

	if err := h.datesCtrl.WatchEpisode(owner, req.SeriesID, req.SeasonID, req.EpisodeID, watchedAt, req.RuntimeMinutes); err != nil {
		h.logger.WithError(err).Error("Failed to record episode watch")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Unwatch handles POST /api/episodes/unwatch
func (h *EpisodesHandler) Unwatch(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.requireOwner(w, r)
	if !ok {
		return
	}

	var req UnwatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.EpisodeID == 0 {
		http.Error(w, "episodeId is required", http.StatusBadRequest)
		return
	}

	if err := h.datesCtrl.UnwatchEpisode(owner, req.EpisodeID); err != nil {
		h.logger.WithError(err).Error("Failed to remove episode watch")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Season handles POST /api/episodes/season
func (h *EpisodesHandler) Season(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.requireOwner(w, r)
	if !ok {
		return
	}

	var req SeasonBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.SeriesID == 0 {
		http.Error(w, "seriesId is required", http.StatusBadRequest)
		return
	}

	watchedAt := time.Now()
	if req.WatchedAt != nil {
		watchedAt = *req.WatchedAt
	}

	ops := make([]controllers.EpisodeOp, 0, len(req.Watch)+len(req.Unwatch))
	for _, id := range req.Watch {
		ops = append(ops, controllers.EpisodeOp{EpisodeID: id, Watch: true})
	}
	for _, id := range req.Unwatch {
		ops = append(ops, controllers.EpisodeOp{EpisodeID: id})
	}

	if err := h.datesCtrl.ApplySeasonBatch(owner, req.SeriesID, req.SeasonID, ops, watchedAt); err != nil {
		h.logger.WithError(err).Error("Failed to apply season batch")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *EpisodesHandler) requireOwner(w http.ResponseWriter, r *http.Request) (string, bool) {
	if r.Method != http.MethodPost {
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
