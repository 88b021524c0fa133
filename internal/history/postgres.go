package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const recentCacheSize = 1024

// Postgres stores records in a chat_messages table. Recent reads are
// cached per session and invalidated on append.
type Postgres struct {
	db *sql.DB

	schemaOnce sync.Once
	schemaErr  error

	recentCache *lru.Cache[string, []Record]
}

func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", strings.TrimSpace(dsn))
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	cache, err := lru.New[string, []Record](recentCacheSize)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Postgres{db: db, recentCache: cache}, nil
}

func (p *Postgres) ensureSchema() error {
	p.schemaOnce.Do(func() {
		_, p.schemaErr = p.db.Exec(`
CREATE TABLE IF NOT EXISTS chat_messages (
  id BIGSERIAL PRIMARY KEY,
  session_id TEXT NOT NULL DEFAULT '',
  role TEXT NOT NULL,
  content TEXT NOT NULL DEFAULT '',
  spec JSONB,
  source TEXT NOT NULL DEFAULT '',
  tier TEXT NOT NULL DEFAULT '',
  err TEXT NOT NULL DEFAULT '',
  created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_chat_messages_session_created ON chat_messages (session_id, created_at);
`)
	})
	return p.schemaErr
}

func (p *Postgres) Append(ctx context.Context, rec *Record) error {
	if err := p.ensureSchema(); err != nil {
		return err
	}
	prepare(rec)
	var specArg any
	if len(rec.Spec) > 0 {
		specArg = string(rec.Spec)
	}
	err := p.db.QueryRowContext(ctx, `
INSERT INTO chat_messages (session_id, role, content, spec, source, tier, err, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
RETURNING id`,
		rec.SessionID, rec.Role, rec.Content, specArg, rec.Source, rec.Tier, rec.Err, rec.CreatedAt,
	).Scan(&rec.ID)
	if err == nil {
		p.invalidate(rec.SessionID)
	}
	return err
}

func (p *Postgres) Recent(ctx context.Context, sessionID string, limit int) ([]Record, error) {
	if err := p.ensureSchema(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	sid := strings.TrimSpace(sessionID)
	key := fmt.Sprintf("%s|%d", sid, limit)
	if p.recentCache != nil {
		if cached, ok := p.recentCache.Get(key); ok {
			return cached, nil
		}
	}

	var (
		rows *sql.Rows
		err  error
	)
	if sid == "" {
		rows, err = p.db.QueryContext(ctx, `
SELECT id, session_id, role, content, COALESCE(spec::text, ''), source, tier, err, created_at
FROM chat_messages ORDER BY created_at DESC, id DESC LIMIT $1`, limit)
	} else {
		rows, err = p.db.QueryContext(ctx, `
SELECT id, session_id, role, content, COALESCE(spec::text, ''), source, tier, err, created_at
FROM chat_messages WHERE session_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2`, sid, limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Record, 0, limit)
	for rows.Next() {
		var (
			rec      Record
			specText string
		)
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.Role, &rec.Content, &specText,
			&rec.Source, &rec.Tier, &rec.Err, &rec.CreatedAt); err != nil {
			continue
		}
		if specText != "" {
			rec.Spec = json.RawMessage(specText)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if p.recentCache != nil {
		p.recentCache.Add(key, out)
	}
	return out, nil
}

// invalidate drops cached lists for the session plus the all-session
// lists, which are keyed with an empty session prefix.
func (p *Postgres) invalidate(sessionID string) {
	if p.recentCache == nil {
		return
	}
	for _, k := range p.recentCache.Keys() {
		if strings.HasPrefix(k, sessionID+"|") || strings.HasPrefix(k, "|") {
			p.recentCache.Remove(k)
		}
	}
}

func (p *Postgres) Close() error {
	if p == nil || p.db == nil {
		return nil
	}
	return p.db.Close()
}
