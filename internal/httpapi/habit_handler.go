package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"habithold/internal/model"
	"habithold/internal/service"
)

// HabitHandler serves habit CRUD and completion endpoints.
type HabitHandler struct {
	Habits *service.HabitService
	Users  *service.UserService
}

type habitReq struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Frequency  int    `json:"frequency"`
	Difficulty int    `json:"difficulty"`
}

func (r habitReq) model() model.Habit {
	return model.Habit{
		Name:       r.Name,
		Type:       model.HabitType(r.Type),
		Frequency:  r.Frequency,
		Difficulty: r.Difficulty,
	}
}

func (h *HabitHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, _ := UserIDFromContext(r.Context())
	user, err := h.Users.Get(r.Context(), uid)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user.Habits)
}

func (h *HabitHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, _ := UserIDFromContext(r.Context())

	var req habitReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	habit, err := h.Habits.Add(r.Context(), uid, req.model())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, habit)
}

func (h *HabitHandler) Update(w http.ResponseWriter, r *http.Request) {
	uid, _ := UserIDFromContext(r.Context())
	name := chi.URLParam(r, "name")

	var req habitReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	habit, err := h.Habits.Edit(r.Context(), uid, name, req.model())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, habit)
}

func (h *HabitHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, _ := UserIDFromContext(r.Context())
	if err := h.Habits.Delete(r.Context(), uid, chi.URLParam(r, "name")); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type markReq struct {
	Delta int `json:"delta"`
}

func (h *HabitHandler) Mark(w http.ResponseWriter, r *http.Request) {
	uid, _ := UserIDFromContext(r.Context())

	var req markReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.Delta != 1 && req.Delta != -1 {
		http.Error(w, "delta must be 1 or -1", http.StatusBadRequest)
		return
	}

	habit, err := h.Habits.Mark(r.Context(), uid, chi.URLParam(r, "name"), req.Delta)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, habit)
}

type dayReq struct {
	Done bool `json:"done"`
}

func (h *HabitHandler) SetDay(w http.ResponseWriter, r *http.Request) {
	uid, _ := UserIDFromContext(r.Context())

	day, err := strconv.Atoi(chi.URLParam(r, "day"))
	if err != nil {
		http.Error(w, "invalid day", http.StatusBadRequest)
		return
	}

	var req dayReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	habit, err := h.Habits.ToggleDay(r.Context(), uid, chi.URLParam(r, "name"), day, req.Done)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, habit)
}
