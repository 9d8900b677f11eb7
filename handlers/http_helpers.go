package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"waterBuddyAPI/services"
)

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithServiceError maps service errors onto HTTP status codes.
// Storage failures are logged and hidden behind a generic message.
func respondWithServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidAmount),
		errors.Is(err, services.ErrInvalidGoal),
		errors.Is(err, services.ErrInvalidPeriod),
		errors.Is(err, services.ErrInvalidDate),
		errors.Is(err, services.ErrInvalidReminderTime),
		errors.Is(err, services.ErrInvalidDevice):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrReminderNotFound):
		respondWithError(w, http.StatusNotFound, err.Error())
	default:
		log.Printf("%s: %v", op, err)
		respondWithError(w, http.StatusInternalServerError, "Failed to "+op+", please try again")
	}
}
