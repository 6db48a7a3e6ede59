package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"habithold/internal/repository"
	"habithold/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErr maps service and repository errors onto HTTP statuses.
func writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrEmptyDisplayName),
		errors.Is(err, service.ErrEmptyHabitName),
		errors.Is(err, service.ErrEmptyKingdomName),
		errors.Is(err, service.ErrInvalidHabitType),
		errors.Is(err, service.ErrInvalidDifficulty),
		errors.Is(err, service.ErrInvalidFrequency),
		errors.Is(err, service.ErrInvalidDay):
		writeJSON(w, http.StatusBadRequest, errBody(err))
	case errors.Is(err, repository.ErrUserNotFound),
		errors.Is(err, repository.ErrKingdomNotFound),
		errors.Is(err, service.ErrHabitNotFound),
		errors.Is(err, service.ErrWeekNotRecorded):
		writeJSON(w, http.StatusNotFound, errBody(err))
	case errors.Is(err, service.ErrHabitExists),
		errors.Is(err, service.ErrAlreadyInKingdom),
		errors.Is(err, service.ErrNotInKingdom),
		errors.Is(err, repository.ErrAlreadyRecorded):
		writeJSON(w, http.StatusConflict, errBody(err))
	case errors.Is(err, service.ErrNotAllies):
		writeJSON(w, http.StatusForbidden, errBody(err))
	default:
		log.Error().Err(err).Msg("Request failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "server error"})
	}
}

func errBody(err error) map[string]string {
	return map[string]string{"error": err.Error()}
}
