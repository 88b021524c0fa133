// Package entity resolves named entities (people, anatomy, landmarks) to
// representative image URLs. Resolution is best effort: a failed lookup is a
// miss, never an error, so interpretation keeps going without the image.
package entity

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Resolver finds an image URL for a named entity.
type Resolver interface {
	Resolve(ctx context.Context, term string) (string, bool)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, term string) (string, bool)

func (f ResolverFunc) Resolve(ctx context.Context, term string) (string, bool) {
	return f(ctx, term)
}

const defaultBaseURL = "https://en.wikipedia.org/w/api.php"

// Wikipedia resolves entities through the MediaWiki API: search for the
// page, then ask for its lead image.
type Wikipedia struct {
	http      *http.Client
	baseURL   string
	mediaScan bool
}

// Options tune the resolver; zero values pick the usual defaults.
type Options struct {
	BaseURL string
	Timeout time.Duration
	// MediaScan also walks the page's media list when the lead image is
	// missing. Costs up to two extra API calls per miss.
	MediaScan bool
}

func NewWikipedia(opts Options) *Wikipedia {
	base := opts.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Wikipedia{
		http:      &http.Client{Timeout: timeout},
		baseURL:   base,
		mediaScan: opts.MediaScan,
	}
}

// Resolve returns the page image URL for term, or ("", false) on any miss.
func (w *Wikipedia) Resolve(ctx context.Context, term string) (string, bool) {
	term = strings.TrimSpace(term)
	if term == "" {
		return "", false
	}
	title, ok := w.search(ctx, term)
	if !ok {
		log.Printf("[entity] no page found for %q", term)
		return "", false
	}
	if src, ok := w.pageImage(ctx, title); ok {
		return src, true
	}
	if w.mediaScan {
		if src, ok := w.pageMedia(ctx, title); ok {
			return src, true
		}
	}
	log.Printf("[entity] no image on page %q", title)
	return "", false
}

func (w *Wikipedia) search(ctx context.Context, term string) (string, bool) {
	var out struct {
		Query struct {
			Search []struct {
				Title string `json:"title"`
			} `json:"search"`
		} `json:"query"`
	}
	params := url.Values{
		"action":   {"query"},
		"format":   {"json"},
		"list":     {"search"},
		"srsearch": {term},
		"srlimit":  {"1"},
	}
	if !w.get(ctx, params, &out) || len(out.Query.Search) == 0 {
		return "", false
	}
	return out.Query.Search[0].Title, true
}

func (w *Wikipedia) pageImage(ctx context.Context, title string) (string, bool) {
	var out struct {
		Query struct {
			Pages map[string]struct {
				Original struct {
					Source string `json:"source"`
				} `json:"original"`
			} `json:"pages"`
		} `json:"query"`
	}
	params := url.Values{
		"action":    {"query"},
		"format":    {"json"},
		"titles":    {title},
		"prop":      {"pageimages"},
		"piprop":    {"original"},
		"pilicense": {"any"},
	}
	if !w.get(ctx, params, &out) {
		return "", false
	}
	for _, page := range out.Query.Pages {
		if page.Original.Source != "" {
			return page.Original.Source, true
		}
	}
	return "", false
}

// pageMedia lists the page's files and resolves the first photographic one.
// Icons, logos and vector art are skipped.
func (w *Wikipedia) pageMedia(ctx context.Context, title string) (string, bool) {
	var list struct {
		Query struct {
			Pages map[string]struct {
				Images []struct {
					Title string `json:"title"`
				} `json:"images"`
			} `json:"pages"`
		} `json:"query"`
	}
	params := url.Values{
		"action":  {"query"},
		"format":  {"json"},
		"titles":  {title},
		"prop":    {"images"},
		"imlimit": {"20"},
	}
	if !w.get(ctx, params, &list) {
		return "", false
	}
	for _, page := range list.Query.Pages {
		for _, img := range page.Images {
			name := strings.ToLower(img.Title)
			if strings.Contains(name, "icon") || strings.Contains(name, "logo") || strings.HasSuffix(name, ".svg") {
				continue
			}
			if src, ok := w.fileURL(ctx, img.Title); ok {
				return src, true
			}
		}
	}
	return "", false
}

func (w *Wikipedia) fileURL(ctx context.Context, fileTitle string) (string, bool) {
	var out struct {
		Query struct {
			Pages map[string]struct {
				ImageInfo []struct {
					URL string `json:"url"`
				} `json:"imageinfo"`
			} `json:"pages"`
		} `json:"query"`
	}
	params := url.Values{
		"action": {"query"},
		"format": {"json"},
		"titles": {fileTitle},
		"prop":   {"imageinfo"},
		"iiprop": {"url"},
	}
	if !w.get(ctx, params, &out) {
		return "", false
	}
	for _, page := range out.Query.Pages {
		if len(page.ImageInfo) > 0 && page.ImageInfo[0].URL != "" {
			return page.ImageInfo[0].URL, true
		}
	}
	return "", false
}

// get performs one API call and decodes the body. Any failure is a miss.
func (w *Wikipedia) get(ctx context.Context, params url.Values, out any) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return false
	}
	resp, err := w.http.Do(req)
	if err != nil {
		log.Printf("[entity] wikipedia request failed: %v", err)
		return false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Printf("[entity] wikipedia status %d", resp.StatusCode)
		return false
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		log.Printf("[entity] wikipedia decode failed: %v", err)
		return false
	}
	return true
}
