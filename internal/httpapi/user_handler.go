package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"habithold/internal/service"
)

// UserHandler serves profile and personal stats endpoints.
type UserHandler struct {
	Users *service.UserService
	Stats *service.StatsService
}

type registerReq struct {
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	AvatarURL   string `json:"avatarUrl"`
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	uid, _ := UserIDFromContext(r.Context())

	var req registerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	user, created, err := h.Users.Register(r.Context(), uid, req.DisplayName, req.Email, req.AvatarURL)
	if err != nil {
		writeErr(w, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, user)
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	uid, _ := UserIDFromContext(r.Context())
	user, err := h.Users.Get(r.Context(), uid)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type profileReq struct {
	DisplayName string `json:"displayName"`
	AvatarURL   string `json:"avatarUrl"`
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	uid, _ := UserIDFromContext(r.Context())

	var req profileReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if err := h.Users.UpdateProfile(r.Context(), uid, req.DisplayName, req.AvatarURL); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) PersonalStats(w http.ResponseWriter, r *http.Request) {
	uid, _ := UserIDFromContext(r.Context())
	stats, err := h.Stats.Personal(r.Context(), uid)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *UserHandler) Grid(w http.ResponseWriter, r *http.Request) {
	uid, _ := UserIDFromContext(r.Context())

	weeks := 12
	if v := r.URL.Query().Get("weeks"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 53 {
			http.Error(w, "invalid weeks", http.StatusBadRequest)
			return
		}
		weeks = n
	}

	cells, err := h.Stats.Grid(r.Context(), uid, weeks)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"weeks": weeks, "cells": cells})
}

func (h *UserHandler) Totals(w http.ResponseWriter, r *http.Request) {
	uid, _ := UserIDFromContext(r.Context())

	days := 30
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 366 {
			http.Error(w, "invalid days", http.StatusBadRequest)
			return
		}
		days = n
	}

	good, bad, err := h.Stats.Totals(r.Context(), uid, days)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"days": days, "good": good, "bad": bad})
}
