package history

import (
	"context"
	"strings"
	"sync"
)

const (
	defaultMemoryCap   = 1000
	defaultRecentLimit = 20
)

// Memory keeps the newest records in a bounded buffer.
type Memory struct {
	mu     sync.RWMutex
	cap    int
	nextID int64
	recs   []Record
}

func NewMemory(capacity int) *Memory {
	if capacity <= 0 {
		capacity = defaultMemoryCap
	}
	return &Memory{cap: capacity}
}

func (m *Memory) Append(_ context.Context, rec *Record) error {
	prepare(rec)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	rec.ID = m.nextID
	m.recs = append(m.recs, *rec)
	if len(m.recs) > m.cap {
		m.recs = m.recs[len(m.recs)-m.cap:]
	}
	return nil
}

func (m *Memory) Recent(_ context.Context, sessionID string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	sid := strings.TrimSpace(sessionID)
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Record, 0, limit)
	for i := len(m.recs) - 1; i >= 0 && len(out) < limit; i-- {
		if sid != "" && m.recs[i].SessionID != sid {
			continue
		}
		out = append(out, m.recs[i])
	}
	return out, nil
}

func (m *Memory) Close() error { return nil }
