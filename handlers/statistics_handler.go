package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"waterBuddyAPI/internal/stats"
	"waterBuddyAPI/services"
)

type StatisticsHandler struct {
	statisticsService *services.StatisticsService
}

func NewStatisticsHandler(statisticsService *services.StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{statisticsService: statisticsService}
}

// GET /statistics?period=daily|weekly|monthly (defaults to daily)
func (h *StatisticsHandler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	period := stats.PeriodDaily
	if raw := r.URL.Query().Get("period"); raw != "" {
		parsed, err := services.ParsePeriod(raw)
		if err != nil {
			respondWithServiceError(w, "get statistics", err)
			return
		}
		period = parsed
	}

	respondWithJSON(w, http.StatusOK, h.statisticsService.GetStatistics(ctx, period))
}

// GET /calendar?year=2024&month=5 (defaults to the current month)
func (h *StatisticsHandler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	now := time.Now()
	year, month := now.Year(), int(now.Month())

	if raw := r.URL.Query().Get("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid year")
			return
		}
		year = parsed
	}
	if raw := r.URL.Query().Get("month"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid month")
			return
		}
		month = parsed
	}

	calendar, err := h.statisticsService.Calendar(ctx, year, month)
	if err != nil {
		respondWithServiceError(w, "get calendar", err)
		return
	}

	respondWithJSON(w, http.StatusOK, calendar)
}
