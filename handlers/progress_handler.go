package handlers

import (
	"context"
	"net/http"
	"time"

	"waterBuddyAPI/services"
)

type ProgressHandler struct {
	progressService *services.ProgressService
}

func NewProgressHandler(progressService *services.ProgressService) *ProgressHandler {
	return &ProgressHandler{progressService: progressService}
}

// GET /progress
func (h *ProgressHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	progress, err := h.progressService.GetProgress(ctx)
	if err != nil {
		respondWithServiceError(w, "get progress", err)
		return
	}

	respondWithJSON(w, http.StatusOK, progress)
}

// GET /achievements
func (h *ProgressHandler) GetAchievements(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	achievements, err := h.progressService.Achievements(ctx)
	if err != nil {
		respondWithServiceError(w, "get achievements", err)
		return
	}

	respondWithJSON(w, http.StatusOK, achievements)
}
