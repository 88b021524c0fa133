package handler

import "net/http"

// Health reports readiness and the effective configuration so a glance
// at one endpoint explains why a deployment behaves the way it does.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":          true,
		"llm_ready":   h.health.LLMReady,
		"image_ready": h.health.ImageReady,
		"model":       h.health.Model,
		"image_model": h.health.ImageModel,
		"flags": map[string]bool{
			"image_first":   h.flags.ImageFirst,
			"disable_rules": h.flags.DisableRules,
			"require_ai":    h.flags.RequireAI,
		},
		"tier_models": h.catalog.Tiers(),
	})
}
