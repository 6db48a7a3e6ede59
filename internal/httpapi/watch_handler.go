package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"habithold/internal/model"
	"habithold/internal/service"
)

// WatchHandler streams live document updates over SSE. Clients get a
// "user" event on every change to their own document and a "kingdom"
// event for their current kingdom, following joins and leaves.
type WatchHandler struct {
	Watchers *service.WatcherService
}

type watchEvent struct {
	name string
	data []byte
}

func (h *WatchHandler) Stream(w http.ResponseWriter, r *http.Request) {
	uid, _ := UserIDFromContext(r.Context())

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	events := make(chan watchEvent, 16)
	push := func(name string, v any) {
		data, err := json.Marshal(v)
		if err != nil {
			return
		}
		select {
		case events <- watchEvent{name: name, data: data}:
		default:
			// Slow client; drop the event rather than block the store.
		}
	}

	stop, err := h.Watchers.Watch(r.Context(), uid,
		func(u *model.User) { push("user", u) },
		func(k *model.Kingdom) { push("kingdom", k) },
	)
	if err != nil {
		writeErr(w, err)
		return
	}
	defer stop()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	log.Debug().Str("user", uid).Msg("Watch stream opened")
	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-events:
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.name, ev.data)
			flusher.Flush()
		}
	}
}
