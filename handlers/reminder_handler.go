package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"waterBuddyAPI/internal/types/reminder"
	"waterBuddyAPI/services"
)

type ReminderHandler struct {
	reminderService *services.ReminderService
}

func NewReminderHandler(reminderService *services.ReminderService) *ReminderHandler {
	return &ReminderHandler{reminderService: reminderService}
}

// GET /reminders
func (h *ReminderHandler) GetReminders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	reminders, err := h.reminderService.List(ctx)
	if err != nil {
		respondWithServiceError(w, "list reminders", err)
		return
	}

	respondWithJSON(w, http.StatusOK, reminders)
}

// POST /reminders
func (h *ReminderHandler) AddReminder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req reminder.AddReminderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := h.reminderService.Add(ctx, req.Time)
	if err != nil {
		respondWithServiceError(w, "add reminder", err)
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

// PUT /reminders/{id}/toggle
func (h *ReminderHandler) ToggleReminder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id := mux.Vars(r)["id"]

	toggled, err := h.reminderService.Toggle(ctx, id)
	if err != nil {
		respondWithServiceError(w, "toggle reminder", err)
		return
	}

	respondWithJSON(w, http.StatusOK, toggled)
}

// DELETE /reminders/{id}
func (h *ReminderHandler) DeleteReminder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id := mux.Vars(r)["id"]

	if err := h.reminderService.Delete(ctx, id); err != nil {
		respondWithServiceError(w, "delete reminder", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Reminder deleted"})
}

// GET /reminders/settings
func (h *ReminderHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	settings, err := h.reminderService.Settings(ctx)
	if err != nil {
		respondWithServiceError(w, "get reminder settings", err)
		return
	}

	respondWithJSON(w, http.StatusOK, settings)
}

// PUT /reminders/settings
func (h *ReminderHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req reminder.UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.NotificationsEnabled == nil {
		respondWithError(w, http.StatusBadRequest, "notificationsEnabled is required")
		return
	}

	settings, err := h.reminderService.SetNotificationsEnabled(ctx, *req.NotificationsEnabled)
	if err != nil {
		respondWithServiceError(w, "update reminder settings", err)
		return
	}

	respondWithJSON(w, http.StatusOK, settings)
}

// POST /devices
func (h *ReminderHandler) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req reminder.RegisterDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if _, err := h.reminderService.RegisterDevice(ctx, req.Token, req.Platform); err != nil {
		respondWithServiceError(w, "register device", err)
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]string{"message": "Device registered"})
}
