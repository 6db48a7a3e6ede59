package httpapi

import (
	"encoding/json"
	"net/http"

	"habithold/internal/service"
)

// KingdomHandler serves kingdom lifecycle and membership endpoints.
type KingdomHandler struct {
	Kingdoms *service.KingdomService
}

type createKingdomReq struct {
	Name string `json:"name"`
	Pfp  string `json:"pfp"`
}

func (h *KingdomHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, _ := UserIDFromContext(r.Context())

	var req createKingdomReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	kingdom, err := h.Kingdoms.Create(r.Context(), uid, req.Name, req.Pfp)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, kingdom)
}

type joinReq struct {
	Code string `json:"code"`
}

func (h *KingdomHandler) Join(w http.ResponseWriter, r *http.Request) {
	uid, _ := UserIDFromContext(r.Context())

	var req joinReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	kingdom, err := h.Kingdoms.Join(r.Context(), uid, req.Code)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, kingdom)
}

func (h *KingdomHandler) Leave(w http.ResponseWriter, r *http.Request) {
	uid, _ := UserIDFromContext(r.Context())
	if err := h.Kingdoms.Leave(r.Context(), uid); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *KingdomHandler) Get(w http.ResponseWriter, r *http.Request) {
	uid, _ := UserIDFromContext(r.Context())
	kingdom, err := h.Kingdoms.Get(r.Context(), uid)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, kingdom)
}

func (h *KingdomHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	uid, _ := UserIDFromContext(r.Context())

	var req createKingdomReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if err := h.Kingdoms.UpdateProfile(r.Context(), uid, req.Name, req.Pfp); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
