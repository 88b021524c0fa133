package history

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// File keeps the full log in one JSON document, rewritten on every
// append. Suits single-node deployments where Postgres is overkill.
type File struct {
	path string

	loadOnce sync.Once
	mu       sync.Mutex
	nextID   int64
	recs     []Record
}

func NewFile(path string) *File {
	return &File{path: path}
}

func (f *File) ensureLoaded() {
	f.loadOnce.Do(func() {
		b, err := os.ReadFile(f.path)
		if err != nil {
			return
		}
		var rows []Record
		if err := json.Unmarshal(b, &rows); err != nil {
			log.Printf("[history] %s unreadable, starting fresh: %v", f.path, err)
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		f.recs = rows
		for _, r := range rows {
			if r.ID > f.nextID {
				f.nextID = r.ID
			}
		}
	})
}

func (f *File) Append(_ context.Context, rec *Record) error {
	f.ensureLoaded()
	prepare(rec)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	rec.ID = f.nextID
	f.recs = append(f.recs, *rec)
	return f.saveLocked()
}

func (f *File) saveLocked() error {
	b, err := json.MarshalIndent(f.recs, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(f.path, b, 0o644)
}

func (f *File) Recent(_ context.Context, sessionID string, limit int) ([]Record, error) {
	f.ensureLoaded()
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	sid := strings.TrimSpace(sessionID)
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Record, 0, limit)
	for i := len(f.recs) - 1; i >= 0 && len(out) < limit; i-- {
		if sid != "" && f.recs[i].SessionID != sid {
			continue
		}
		out = append(out, f.recs[i])
	}
	return out, nil
}

func (f *File) Close() error { return nil }
