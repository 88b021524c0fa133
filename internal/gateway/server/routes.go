package server

import (
	"net/http"

	"vizify/internal/gateway/handler"
	"vizify/internal/gateway/middleware"
)

// NewMux builds the route table. CORS sits outermost so preflight
// requests are answered before anything else runs.
func NewMux(h *handler.Handler, corsOrigins []string) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/visualize", h.Visualize)
	mux.HandleFunc("/api/visualize/stream", h.VisualizeStream)
	mux.HandleFunc("/api/visualize/voice", h.VisualizeVoice)
	mux.HandleFunc("/api/visualize/math/interactive", h.MathInteractive)
	mux.HandleFunc("/api/image/proxy", h.ImageProxy)
	mux.HandleFunc("/api/history", h.History)
	mux.HandleFunc("/api/health", h.Health)

	return middleware.CORS(middleware.SecurityHeaders(mux), corsOrigins)
}
