// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scrape fetches web pages as markdown through a reader service
// and chunks them into retrievable source records.
package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/storm-writer/internal/httputil"
	"github.com/pdiddy/storm-writer/pkg/types"
)

const defaultReaderPrefix = "https://r.jina.ai/"

// blockedRe matches phrases a blocking page serves instead of content.
var blockedRe = regexp.MustCompile(`(?i)you are blocked|access denied|unauthorized`)

// Reader fetches a URL through a page-to-markdown reader service.
type Reader struct {
	cfg   types.ScrapeConfig
	http  *http.Client
	cache *Cache
	log   *zap.Logger
}

// NewReader creates a Reader. cache may be nil to disable caching.
func NewReader(cfg types.ScrapeConfig, cache *Cache, log *zap.Logger) *Reader {
	if cfg.ReaderPrefix == "" {
		cfg.ReaderPrefix = defaultReaderPrefix
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Reader{
		cfg:   cfg,
		http:  &http.Client{Timeout: timeout},
		cache: cache,
		log:   log,
	}
}

// Fetch returns the page's markdown content and the HTTP status code.
// Any non-200 status yields empty content, not an error; errors are
// reserved for transport failures and invalid URLs.
func (r *Reader) Fetch(ctx context.Context, pageURL string) (int, string, error) {
	if _, err := url.ParseRequestURI(pageURL); err != nil {
		return 0, "", fmt.Errorf("invalid url %q: %w", pageURL, err)
	}

	if r.cache != nil {
		if content, ok := r.cache.Get(pageURL); ok {
			r.log.Debug("scrape cache hit", zap.String("url", pageURL))
			return http.StatusOK, content, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.cfg.ReaderPrefix+pageURL, nil)
	if err != nil {
		return 0, "", fmt.Errorf("building scrape request: %w", err)
	}
	if r.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", r.cfg.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, r.http, req, 0, r.log)
	if err != nil {
		return 0, "", fmt.Errorf("fetching %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, "", nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, "", fmt.Errorf("reading %s: %w", pageURL, err)
	}

	text := string(body)
	if blockedRe.MatchString(text) {
		r.log.Warn("scraper blocked by site", zap.String("url", pageURL))
		return resp.StatusCode, "", nil
	}

	content := stripReaderPreamble(text)
	if r.cache != nil {
		if err := r.cache.Put(pageURL, content); err != nil {
			r.log.Warn("scrape cache write failed", zap.String("url", pageURL), zap.Error(err))
		}
	}
	return resp.StatusCode, content, nil
}

// stripReaderPreamble drops the reader service's header block, keeping
// everything after the "Markdown Content:" delimiter when present.
func stripReaderPreamble(text string) string {
	if _, after, found := strings.Cut(text, "Markdown Content:"); found {
		return strings.TrimSpace(after)
	}
	return strings.TrimSpace(text)
}

// Expand scrapes every search record's page and returns the chunked page
// records. A page that cannot be scraped contributes the original search
// record instead, so its snippets still back the writing corpus. The
// configured delay spaces consecutive fetches.
func Expand(ctx context.Context, r *Reader, records []types.SourceRecord, w io.Writer) ([]types.SourceRecord, error) {
	var out []types.SourceRecord
	for i, rec := range records {
		if i > 0 && r.cfg.Delay > 0 {
			select {
			case <-ctx.Done():
				return out, ctx.Err()
			case <-time.After(r.cfg.Delay):
			}
		}

		status, content, err := r.Fetch(ctx, rec.URL)
		if err != nil || content == "" {
			if err != nil {
				r.log.Warn("scrape failed, keeping search snippets",
					zap.String("url", rec.URL), zap.Error(err))
			} else {
				r.log.Warn("scrape returned no content, keeping search snippets",
					zap.String("url", rec.URL), zap.Int("status", status))
			}
			fmt.Fprintf(w, "snippets %s\n", rec.URL)
			out = append(out, rec)
			continue
		}

		chunks := ChunkPage(rec.Title, rec.URL, content)
		fmt.Fprintf(w, "scraped  %s (%d chunks)\n", rec.URL, len(chunks))
		out = append(out, chunks...)
	}
	return out, nil
}
