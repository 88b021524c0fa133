package llm

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"strconv"
	"time"
)

// -------- Rate limiting --------

// RateLimit throttles both generation methods with a shared token bucket.
// If rps <= 0 the middleware is a pass-through.
func RateLimit(rps float64, burst int) Middleware {
	return func(next Client) Client {
		return &rateLimited{next: next, rl: newRPSLimiter(rps, burst)}
	}
}

// RateLimitFromEnv reads LLM_RPS and LLM_BURST.
func RateLimitFromEnv() Middleware {
	rps, _ := strconv.ParseFloat(os.Getenv("LLM_RPS"), 64)
	burst, _ := strconv.Atoi(os.Getenv("LLM_BURST"))
	return RateLimit(rps, burst)
}

type rateLimited struct {
	next Client
	rl   *rpsLimiter
}

func (c *rateLimited) Name() string { return c.next.Name() }
func (c *rateLimited) Close() error { return c.next.Close() }

func (c *rateLimited) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	if err := c.rl.Acquire(ctx); err != nil {
		return nil, err
	}
	return c.next.GenerateJSON(ctx, prompt, input)
}

func (c *rateLimited) GenerateText(ctx context.Context, treq TextRequest) (string, error) {
	if err := c.rl.Acquire(ctx); err != nil {
		return "", err
	}
	return c.next.GenerateText(ctx, treq)
}

// -------- Per-call timeout --------

// Timeout caps every call with a context deadline. If d <= 0 the
// middleware is a pass-through. Each generation method stays a single
// upstream call; a call that misses the deadline fails, it is not
// reissued.
func Timeout(d time.Duration) Middleware {
	return func(next Client) Client {
		if d <= 0 {
			return next
		}
		return &timed{next: next, d: d}
	}
}

type timed struct {
	next Client
	d    time.Duration
}

func (t *timed) Name() string { return t.next.Name() }
func (t *timed) Close() error { return t.next.Close() }

func (t *timed) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	return t.next.GenerateJSON(ctx, prompt, input)
}

func (t *timed) GenerateText(ctx context.Context, treq TextRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	return t.next.GenerateText(ctx, treq)
}

// -------- Logging --------

// WithLogging logs request size and errors. Pass nil to use log.Default().
func WithLogging(logger *log.Logger) Middleware {
	if logger == nil {
		logger = log.Default()
	}
	return func(next Client) Client {
		return &logging{next: next, log: logger}
	}
}

type logging struct {
	next Client
	log  *log.Logger
}

func (l *logging) Name() string { return l.next.Name() }
func (l *logging) Close() error { return l.next.Close() }

func (l *logging) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	in, _ := json.Marshal(input)
	l.log.Printf("[llm] request %s: %d bytes", l.next.Name(), len(prompt)+len(in))
	raw, err := l.next.GenerateJSON(ctx, prompt, input)
	if err != nil {
		l.log.Printf("[llm] error %s: %v", l.next.Name(), err)
	}
	return raw, err
}

func (l *logging) GenerateText(ctx context.Context, treq TextRequest) (string, error) {
	l.log.Printf("[llm] text request %s: %d bytes", l.next.Name(), len(treq.System)+len(treq.Prompt))
	out, err := l.next.GenerateText(ctx, treq)
	if err != nil {
		l.log.Printf("[llm] error %s: %v", l.next.Name(), err)
	}
	return out, err
}
