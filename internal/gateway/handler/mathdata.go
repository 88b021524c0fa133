package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"vizify/internal/mathdata"
)

// MathInteractive evaluates an expression into plot-ready samples,
// derivative and integral curves, and annotations. Bad expressions are
// the caller's fault; anything else is ours.
func (h *Handler) MathInteractive(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req mathdata.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	resp, err := mathdata.Generate(req)
	if err != nil {
		if errors.Is(err, mathdata.ErrInvalidExpression) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, "failed to generate plot data", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
