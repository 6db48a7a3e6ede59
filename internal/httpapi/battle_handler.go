package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"habithold/internal/service"
)

// BattleHandler serves the weekly battle, rankings, and chronicles.
type BattleHandler struct {
	Rollups  *service.RollupService
	Rankings *service.RankingService
}

func (h *BattleHandler) Progress(w http.ResponseWriter, r *http.Request) {
	uid, _ := UserIDFromContext(r.Context())
	percent, err := h.Rollups.Progress(r.Context(), uid)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"percent": percent})
}

func (h *BattleHandler) Due(w http.ResponseWriter, r *http.Request) {
	uid, _ := UserIDFromContext(r.Context())
	weekKey, due, err := h.Rollups.Due(r.Context(), uid)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"weekKey": weekKey, "due": due})
}

func (h *BattleHandler) Close(w http.ResponseWriter, r *http.Request) {
	uid, _ := UserIDFromContext(r.Context())
	result, err := h.Rollups.CloseWeek(r.Context(), uid)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *BattleHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	uid, _ := UserIDFromContext(r.Context())
	entries, err := h.Rankings.Leaderboard(r.Context(), uid)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *BattleHandler) KingdomTitle(w http.ResponseWriter, r *http.Request) {
	uid, _ := UserIDFromContext(r.Context())
	title, err := h.Rankings.KingdomTitle(r.Context(), uid)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"title": title})
}

func (h *BattleHandler) Weeks(w http.ResponseWriter, r *http.Request) {
	uid, _ := UserIDFromContext(r.Context())
	weeks, err := h.Rankings.RecordedWeeks(r.Context(), uid)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, weeks)
}

func (h *BattleHandler) WeekChronicle(w http.ResponseWriter, r *http.Request) {
	uid, _ := UserIDFromContext(r.Context())
	text, err := h.Rankings.WeekChronicle(r.Context(), uid, chi.URLParam(r, "week"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"chronicle": text})
}

func (h *BattleHandler) OverallChronicle(w http.ResponseWriter, r *http.Request) {
	uid, _ := UserIDFromContext(r.Context())
	text, err := h.Rankings.OverallChronicle(r.Context(), uid)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"chronicle": text})
}
