// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/storm-writer/internal/httputil"
	"github.com/pdiddy/storm-writer/pkg/types"
)

const defaultEndpoint = "https://google.serper.dev/search"

// Serper implements Service against the Serper Google-results JSON API.
type Serper struct {
	cfg      types.SearchConfig
	endpoint string
	http     *http.Client
	log      *zap.Logger
}

// NewSerper creates a Serper client. An empty endpoint uses the public
// API; tests point it at an httptest server.
func NewSerper(cfg types.SearchConfig, endpoint string, log *zap.Logger) *Serper {
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Serper{
		cfg:      cfg,
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
		log:      log,
	}
}

type serperRequest struct {
	Q   string `json:"q"`
	Num int    `json:"num"`
}

type serperOrganic struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

type serperResponse struct {
	Organic []serperOrganic `json:"organic"`
}

// Search posts the query and maps the organic results to SourceRecords
// in rank order.
func (s *Serper) Search(ctx context.Context, query string, count int) ([]types.SourceRecord, error) {
	if count <= 0 {
		count = s.cfg.TopK
	}
	if count <= 0 {
		count = 5
	}

	payload, err := json.Marshal(serperRequest{Q: query, Num: count})
	if err != nil {
		return nil, fmt.Errorf("encoding search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("building search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", s.cfg.APIKey)
	if s.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", s.cfg.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, s.http, req, 0, s.log)
	if err != nil {
		return nil, fmt.Errorf("searching %q: %w", query, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("search API returned %d: %s", resp.StatusCode, body)
	}

	var out serperResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding search response: %w", err)
	}

	records := make([]types.SourceRecord, 0, len(out.Organic))
	for _, r := range out.Organic {
		if len(records) >= count {
			break
		}
		records = append(records, types.NewSearchRecord(r.Title, r.Link, []string{r.Snippet}))
	}

	s.log.Debug("search complete",
		zap.String("query", query),
		zap.Int("results", len(records)))

	return records, nil
}
