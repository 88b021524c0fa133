package handler

import (
	"net/http"
	"strconv"
	"strings"

	"vizify/internal/history"
)

// History returns recent interpretation records, newest first. An empty
// session returns the shared bucket; the store applies its own default
// limit when none is given.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	session := strings.TrimSpace(r.URL.Query().Get("session"))
	if session == "" {
		session = sessionFrom(r)
	}
	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}

	recs := []history.Record{}
	if h.store != nil {
		got, err := h.store.Recent(r.Context(), session, limit)
		if err != nil {
			http.Error(w, "failed to load history", http.StatusInternalServerError)
			return
		}
		if got != nil {
			recs = got
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": recs})
}
