package handler

import (
	"bytes"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"vizify/internal/history"
	"vizify/internal/spec"
)

const maxAudioBytes = 25 << 20

// Formats the transcription backend accepts, by file extension.
var audioFormats = map[string]bool{
	"flac": true, "m4a": true, "mp3": true, "mp4": true, "mpeg": true,
	"mpga": true, "oga": true, "ogg": true, "wav": true, "webm": true,
}

// VisualizeVoice transcribes an uploaded audio command and runs it
// through the same chain as typed input. Gated on the tier's voice
// entitlement.
func (h *Handler) VisualizeVoice(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, "invalid multipart body", http.StatusBadRequest)
		return
	}
	tier := strings.TrimSpace(r.Header.Get("X-User-Tier"))
	if tier == "" {
		tier = strings.TrimSpace(r.FormValue("tier"))
	}
	if !h.catalog.Resolve(tier).VoiceEnabled {
		http.Error(w, "Voice input requires PRO tier or higher. Upgrade to unlock voice commands!", http.StatusForbidden)
		return
	}
	if h.transcriber == nil {
		http.Error(w, "AI unavailable: transcription is not configured", http.StatusServiceUnavailable)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "audio file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(header.Filename), "."))
	if ext == "" {
		ext = "webm"
	}
	if !audioFormats[ext] {
		http.Error(w, "Invalid audio format. Supported: flac, m4a, mp3, mp4, mpeg, mpga, oga, ogg, wav, webm", http.StatusBadRequest)
		return
	}
	data, err := io.ReadAll(io.LimitReader(file, maxAudioBytes+1))
	if err != nil {
		http.Error(w, "failed to read audio file", http.StatusBadRequest)
		return
	}
	if len(data) > maxAudioBytes {
		http.Error(w, "Audio file too large. Maximum size is 25MB.", http.StatusBadRequest)
		return
	}
	filename := header.Filename
	if filename == "" {
		filename = "audio." + ext
	}

	transcript, err := h.transcriber.Transcribe(r.Context(), filename, bytes.NewReader(data))
	if err != nil {
		http.Error(w, "AI unavailable: "+err.Error(), http.StatusServiceUnavailable)
		return
	}
	transcript = strings.TrimSpace(transcript)
	if utf8.RuneCountInString(transcript) < 3 {
		http.Error(w, "Could not transcribe audio. Please speak clearly and try again.", http.StatusBadRequest)
		return
	}

	cmd := spec.Command{Text: transcript, Tier: tier}
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
	history.LogVoice(r.Context(), h.store, sessionFrom(r), transcript, tier, res)
	writeJSON(w, http.StatusOK, map[string]any{
		"transcription": transcript,
		"visualization": res.Spec,
		"source":        res.Source,
	})
}
