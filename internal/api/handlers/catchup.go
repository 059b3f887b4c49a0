package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/seenlogapp/seenlog/internal/controllers"
	"github.com/seenlogapp/seenlog/internal/models"
)

// CatchUpHandler serves the catch-up reconciliation results
type CatchUpHandler struct {
	catchUpCtrl *controllers.CatchUpController
	logger      *logrus.Logger
}

// NewCatchUpHandler creates a new catch-up handler
func NewCatchUpHandler(catchUpCtrl *controllers.CatchUpController, logger *logrus.Logger) *CatchUpHandler {
	return &CatchUpHandler{
		catchUpCtrl: catchUpCtrl,
		logger:      logger,
	}
}

// ServeHTTP handles GET /api/catchup
func (h *CatchUpHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	owner := ownerID(r)
	if owner == "" {
		json.NewEncoder(w).Encode([]*models.CatchUpItem{})
		return
	}

	items, err := h.catchUpCtrl.Reconcile(r.Context(), owner)
	if err != nil {
		h.logger.WithError(err).Error("Failed to reconcile catch-up list")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(items)
}

// Summary handles GET /api/catchup/summary
func (h *CatchUpHandler) Summary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	owner := ownerID(r)
	if owner == "" {
		json.NewEncoder(w).Encode(&models.CatchUpSummary{})
		return
	}

	summary, err := h.catchUpCtrl.Summary(r.Context(), owner)
	if err != nil {
		h.logger.WithError(err).Error("Failed to build catch-up summary")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(summary)
}
