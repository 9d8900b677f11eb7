package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"waterBuddyAPI/internal/types/water"
	"waterBuddyAPI/services"
)

type WaterHandler struct {
	dailyService  *services.DailyService
	recordService *services.RecordService
}

func NewWaterHandler(dailyService *services.DailyService, recordService *services.RecordService) *WaterHandler {
	return &WaterHandler{
		dailyService:  dailyService,
		recordService: recordService,
	}
}

// GET /today
func (h *WaterHandler) GetToday(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	today, err := h.dailyService.LoadToday(ctx)
	if err != nil {
		respondWithServiceError(w, "load today", err)
		return
	}

	respondWithJSON(w, http.StatusOK, today)
}

// POST /water
func (h *WaterHandler) AddWater(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req water.AddWaterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.dailyService.AddWater(ctx, req.Amount)
	if err != nil {
		respondWithServiceError(w, "add water", err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// DELETE /water/today
func (h *WaterHandler) ResetToday(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	today, err := h.dailyService.Reset(ctx)
	if err != nil {
		respondWithServiceError(w, "reset today", err)
		return
	}

	respondWithJSON(w, http.StatusOK, today)
}

// GET /records?date=YYYY-MM-DD (defaults to today)
func (h *WaterHandler) GetRecords(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	date := r.URL.Query().Get("date")
	if date == "" {
		date = h.dailyService.Today()
	}

	records, err := h.recordService.Day(ctx, date)
	if err != nil {
		respondWithServiceError(w, "get records", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"date":    date,
		"records": records,
		"total":   water.Sum(records),
	})
}

// GET /goal
func (h *WaterHandler) GetGoal(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	goal, err := h.dailyService.Goal(ctx)
	if err != nil {
		respondWithServiceError(w, "get goal", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]int{"goal": goal})
}

// PUT /goal
func (h *WaterHandler) UpdateGoal(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req water.UpdateGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.dailyService.SetGoal(ctx, req.Goal); err != nil {
		respondWithServiceError(w, "update goal", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]int{"goal": req.Goal})
}
