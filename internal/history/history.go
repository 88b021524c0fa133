// Package history persists the interpretation log: the command a user
// sent and the visualization the pipeline answered with.
//
// Three backends cover the deployment range: Postgres when DATABASE_URL
// is set, a JSON file under HISTORY_DIR for single-node setups, and an
// in-memory ring for tests and ephemeral runs.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"vizify/internal/llm"
	"vizify/internal/spec"
)

// Roles stored per record. A user row carries the raw command, an
// assistant row the produced spec and its source.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Record is one row of the interpretation log.
type Record struct {
	ID        int64           `json:"id"`
	SessionID string          `json:"session_id"`
	Role      string          `json:"role"`
	Content   string          `json:"content"`
	Spec      json.RawMessage `json:"spec,omitempty"`
	Source    string          `json:"source,omitempty"`
	Tier      string          `json:"tier,omitempty"`
	Err       string          `json:"error,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// Store is the persistence surface the gateway writes through. Recent
// returns newest records first.
type Store interface {
	Append(ctx context.Context, rec *Record) error
	Recent(ctx context.Context, sessionID string, limit int) ([]Record, error)
	Close() error
}

// NewFromEnv picks a backend: DATABASE_URL wins, then HISTORY_DIR,
// then memory. A Postgres that cannot be reached degrades to memory so
// the service still answers.
func NewFromEnv() Store {
	if dsn := strings.TrimSpace(os.Getenv("DATABASE_URL")); dsn != "" {
		st, err := NewPostgres(dsn)
		if err == nil {
			return st
		}
		log.Printf("[history] postgres unavailable, using memory: %v", err)
		return NewMemory(0)
	}
	if dir := strings.TrimSpace(os.Getenv("HISTORY_DIR")); dir != "" {
		return NewFile(filepath.Join(dir, "history.json"))
	}
	return NewMemory(0)
}

// Log appends the two rows one interpretation produces: the command as
// a user message and the outcome as an assistant message. Store errors
// are logged, never returned; a failed write must not fail the request.
func Log(ctx context.Context, st Store, sessionID string, cmd spec.Command, res spec.Result) {
	logPair(ctx, st, sessionID, cmd.Text,
		fmt.Sprintf("Created visualization using %s", res.Source), cmd.Tier, res)
}

// LogVoice is Log for transcribed audio commands. The user row keeps a
// microphone marker in front of the transcript so readers can tell typed
// and spoken commands apart.
func LogVoice(ctx context.Context, st Store, sessionID, transcript, tier string, res spec.Result) {
	logPair(ctx, st, sessionID, "\U0001F3A4 "+transcript,
		fmt.Sprintf("Created visualization from voice input using %s", res.Source), tier, res)
}

func logPair(ctx context.Context, st Store, sessionID, userContent, assistantContent, tier string, res spec.Result) {
	if st == nil {
		return
	}
	user := &Record{
		SessionID: sessionID,
		Role:      RoleUser,
		Content:   userContent,
		Tier:      tier,
	}
	if err := st.Append(ctx, user); err != nil {
		log.Printf("[history] append user row: %v", err)
		return
	}
	assistant := &Record{
		SessionID: sessionID,
		Role:      RoleAssistant,
		Content:   assistantContent,
		Source:    string(res.Source),
		Tier:      tier,
		Err:       res.Err,
	}
	if res.Spec != nil {
		if b, err := json.Marshal(res.Spec); err == nil {
			assistant.Spec = b
		}
	}
	if err := st.Append(ctx, assistant); err != nil {
		log.Printf("[history] append assistant row: %v", err)
	}
}

// prepare fills server-side fields and strips embedded media so one
// generated image does not balloon every row that references it.
func prepare(rec *Record) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	rec.SessionID = strings.TrimSpace(rec.SessionID)
	rec.Spec = redactSpec(rec.Spec)
}

func redactSpec(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return raw
	}
	out, err := json.Marshal(llm.RedactMedia(v))
	if err != nil {
		return raw
	}
	return out
}
