// Package config loads the gateway's settings from flags and the
// environment. Provider credentials stay with the packages that use
// them: the llm, imagegen, history, and imagestore packages each read
// their own variables. What lives here is the surface the HTTP layer
// itself owns.
package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	CORSOrigins []string

	// Interpretation chain toggles.
	ImageFirst   bool
	DisableRules bool
	RequireAI    bool

	// Per-stage client timeouts.
	LLMTimeout   time.Duration
	ImageTimeout time.Duration
	WikiTimeout  time.Duration

	// WikiMediaScan also walks a page's media list when its lead image
	// is missing. Costs extra API calls per entity miss.
	WikiMediaScan bool

	// Local inference. ForceLocal routes every tier to the local
	// OpenAI-compatible runtime regardless of the tier table.
	ForceLocalLLM bool
	LocalLLMModel string
}

func FromEnv() (*Config, error) {
	addr := flag.String("addr", ":8080", "listen address")
	envFile := flag.String("env-file", "", "path to a .env file")
	flag.Parse()

	if *envFile != "" {
		if err := godotenv.Load(*envFile); err != nil {
			return nil, fmt.Errorf("load env file: %w", err)
		}
	} else {
		_ = godotenv.Load()
	}

	listen := *addr
	if envAddr := firstNonEmpty(os.Getenv("ADDR"), os.Getenv("PORT")); envAddr != "" {
		if strings.HasPrefix(envAddr, ":") {
			listen = envAddr
		} else {
			listen = ":" + envAddr
		}
	}

	return &Config{
		Port:          listen,
		CORSOrigins:   splitOrigins(firstNonEmpty(os.Getenv("CORS_ORIGINS"), "http://localhost:3000")),
		ImageFirst:    envBool("AI_IMAGE_FIRST", true),
		DisableRules:  envBool("AI_DISABLE_RULES", false),
		RequireAI:     envBool("AI_REQUIRE", false),
		LLMTimeout:    envDuration("LLM_TIMEOUT", 45*time.Second),
		ImageTimeout:  envDuration("IMAGE_TIMEOUT", 60*time.Second),
		WikiTimeout:   envDuration("WIKI_TIMEOUT", 10*time.Second),
		WikiMediaScan: envBool("WIKI_MEDIA_SCAN", false),
		ForceLocalLLM: envBool("USE_LOCAL_LLM", false),
		LocalLLMModel: strings.TrimSpace(os.Getenv("LOCAL_LLM_MODEL")),
	}, nil
}

// envBool treats 1/true/yes/on as true and anything else as false. An
// unset variable keeps the default; a set-but-garbage one does not.
func envBool(name string, def bool) bool {
	raw, ok := os.LookupEnv(name)
	if !ok {
		return def
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// envDuration accepts either a Go duration ("45s") or a bare number of
// seconds ("45"), which is what older deployments export.
func envDuration(name string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return def
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.ParseFloat(raw, 64); err == nil && secs > 0 {
		return time.Duration(secs * float64(time.Second))
	}
	return def
}

func splitOrigins(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
