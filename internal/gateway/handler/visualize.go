package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"vizify/internal/history"
	"vizify/internal/spec"
)

// Visualize interprets one typed command. The X-Interpreter-Source
// header names the winning source even when the body is an error, so
// clients can always see how far the chain got.
func (h *Handler) Visualize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var cmd spec.Command
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	if cmd.Tier == "" {
		cmd.Tier = strings.TrimSpace(r.Header.Get("X-User-Tier"))
	}
	if err := cmd.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	res := h.interp.InterpretWithSource(r.Context(), cmd)
	w.Header().Set("X-Interpreter-Source", string(res.Source))
	if msg, bad := aiUnavailable(res); bad {
		http.Error(w, msg, http.StatusServiceUnavailable)
		return
	}
	history.Log(r.Context(), h.store, sessionFrom(r), cmd, res)
	writeJSON(w, http.StatusOK, res)
}
