package entity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// fakeWiki serves the three MediaWiki query shapes the resolver issues.
func fakeWiki(t *testing.T, searchHits bool, leadImage string, media map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		switch {
		case q.Get("list") == "search":
			if !searchHits {
				w.Write([]byte(`{"query":{"search":[]}}`))
				return
			}
			w.Write([]byte(`{"query":{"search":[{"title":"Lionel Messi"}]}}`))
		case q.Get("prop") == "pageimages":
			if leadImage == "" {
				w.Write([]byte(`{"query":{"pages":{"42":{"title":"Lionel Messi"}}}}`))
				return
			}
			w.Write([]byte(`{"query":{"pages":{"42":{"original":{"source":"` + leadImage + `"}}}}}`))
		case q.Get("prop") == "images":
			body := `{"query":{"pages":{"42":{"images":[`
			first := true
			for title := range media {
				if !first {
					body += ","
				}
				body += `{"title":"` + title + `"}`
				first = false
			}
			body += `]}}}}`
			w.Write([]byte(body))
		case q.Get("prop") == "imageinfo":
			url, ok := media[q.Get("titles")]
			if !ok || url == "" {
				w.Write([]byte(`{"query":{"pages":{}}}`))
				return
			}
			w.Write([]byte(`{"query":{"pages":{"7":{"imageinfo":[{"url":"` + url + `"}]}}}}`))
		default:
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
			w.Write([]byte(`{}`))
		}
	}))
}

func TestWikipediaResolve(t *testing.T) {
	srv := fakeWiki(t, true, "https://upload.wikimedia.org/messi.jpg", nil)
	defer srv.Close()

	w := NewWikipedia(Options{BaseURL: srv.URL})
	url, ok := w.Resolve(context.Background(), "Messi")
	if !ok {
		t.Fatal("expected a hit")
	}
	if url != "https://upload.wikimedia.org/messi.jpg" {
		t.Fatalf("url = %q", url)
	}
}

func TestWikipediaResolveMisses(t *testing.T) {
	t.Run("no search result", func(t *testing.T) {
		srv := fakeWiki(t, false, "", nil)
		defer srv.Close()
		if _, ok := NewWikipedia(Options{BaseURL: srv.URL}).Resolve(context.Background(), "zxqv"); ok {
			t.Fatal("want miss")
		}
	})

	t.Run("page without image", func(t *testing.T) {
		srv := fakeWiki(t, true, "", nil)
		defer srv.Close()
		if _, ok := NewWikipedia(Options{BaseURL: srv.URL}).Resolve(context.Background(), "Messi"); ok {
			t.Fatal("want miss")
		}
	})

	t.Run("server failure is a miss not an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "down", http.StatusInternalServerError)
		}))
		defer srv.Close()
		if _, ok := NewWikipedia(Options{BaseURL: srv.URL}).Resolve(context.Background(), "Messi"); ok {
			t.Fatal("want miss")
		}
	})

	t.Run("blank term", func(t *testing.T) {
		if _, ok := NewWikipedia(Options{}).Resolve(context.Background(), "   "); ok {
			t.Fatal("want miss")
		}
	})
}

func TestWikipediaMediaScan(t *testing.T) {
	media := map[string]string{
		"File:Site logo.svg":    "https://upload.wikimedia.org/logo.svg",
		"File:Portrait 1.jpg":   "https://upload.wikimedia.org/portrait.jpg",
		"File:Favicon icon.png": "",
	}
	srv := fakeWiki(t, true, "", media)
	defer srv.Close()

	// Scan disabled: the missing lead image stays a miss.
	if _, ok := NewWikipedia(Options{BaseURL: srv.URL}).Resolve(context.Background(), "Messi"); ok {
		t.Fatal("scan disabled should miss")
	}

	w := NewWikipedia(Options{BaseURL: srv.URL, MediaScan: true})
	url, ok := w.Resolve(context.Background(), "Messi")
	if !ok {
		t.Fatal("media scan should find the portrait")
	}
	if url != "https://upload.wikimedia.org/portrait.jpg" {
		t.Fatalf("url = %q, logos and icons must be skipped", url)
	}
}

type countingResolver struct {
	calls int
	url   string
	ok    bool
}

func (c *countingResolver) Resolve(ctx context.Context, term string) (string, bool) {
	c.calls++
	return c.url, c.ok
}

func TestCachedResolver(t *testing.T) {
	inner := &countingResolver{url: "https://img.example/1.jpg", ok: true}
	cached := NewCached(inner, 8, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		url, ok := cached.Resolve(ctx, "Messi")
		if !ok || url != "https://img.example/1.jpg" {
			t.Fatalf("resolve %d: %q %v", i, url, ok)
		}
	}
	if inner.calls != 1 {
		t.Fatalf("upstream calls = %d, want 1", inner.calls)
	}

	// Keys are case and whitespace insensitive.
	cached.Resolve(ctx, "  MESSI ")
	if inner.calls != 1 {
		t.Fatalf("normalized key should hit cache, calls = %d", inner.calls)
	}
}

func TestCachedResolverCachesMisses(t *testing.T) {
	inner := &countingResolver{ok: false}
	cached := NewCached(inner, 8, time.Minute)
	ctx := context.Background()

	cached.Resolve(ctx, "nobody")
	cached.Resolve(ctx, "nobody")
	if inner.calls != 1 {
		t.Fatalf("misses should be cached, calls = %d", inner.calls)
	}
}
