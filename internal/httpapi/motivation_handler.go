package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"habithold/internal/service"
)

// MotivationHandler serves the ally encouragement endpoints.
type MotivationHandler struct {
	Motivations *service.MotivationService
}

func (h *MotivationHandler) Send(w http.ResponseWriter, r *http.Request) {
	uid, _ := UserIDFromContext(r.Context())

	m, err := h.Motivations.Send(r.Context(), uid, chi.URLParam(r, "uid"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (h *MotivationHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	uid, _ := UserIDFromContext(r.Context())
	if err := h.Motivations.Dismiss(r.Context(), uid); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
