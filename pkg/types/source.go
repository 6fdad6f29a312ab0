// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the storm-writer pipeline:
// retrieved source records, conversation transcripts, and per-stage
// configuration.
package types

import (
	"strings"

	"github.com/google/uuid"
)

// SourceRecord is one piece of retrieved evidence: a search snippet or a
// chunk of scraped page content. Records are immutable after creation
// except for CitationID, which is assigned once the record is promoted
// into the citation table.
type SourceRecord struct {
	// Identity is the deduplication key: the URL for search results, or a
	// content-derived UUID for page chunks.
	Identity string `json:"identity" yaml:"identity"`

	// Title is the source page title.
	Title string `json:"title" yaml:"title"`

	// URL is the source page address.
	URL string `json:"url" yaml:"url"`

	// Snippets are the ranked snippet strings from the search engine.
	// Empty for page-chunk records.
	Snippets []string `json:"snippets,omitempty" yaml:"snippets,omitempty"`

	// Body is the chunk of scraped page content. Empty for search records.
	Body string `json:"body,omitempty" yaml:"body,omitempty"`

	// CitationID is the 1-based article-global citation number. Zero until
	// the record is promoted into the citation table.
	CitationID int `json:"citation_id,omitempty" yaml:"citation_id,omitempty"`
}

// NewSearchRecord builds a SourceRecord from a search engine result.
// The URL is the identity, so the same page found by different queries
// deduplicates to one record.
func NewSearchRecord(title, url string, snippets []string) SourceRecord {
	return SourceRecord{
		Identity: url,
		Title:    title,
		URL:      url,
		Snippets: snippets,
	}
}

// NewPageRecord builds a SourceRecord from one chunk of scraped page
// content. The identity is a name-based UUID of the chunk text, so
// distinct chunks of the same page remain distinct records.
func NewPageRecord(title, url, body string) SourceRecord {
	return SourceRecord{
		Identity: uuid.NewSHA1(uuid.NameSpaceURL, []byte(body)).String(),
		Title:    title,
		URL:      url,
		Body:     body,
	}
}

// Text returns the record's textual form for embedding and prompting:
// the body for page chunks, the joined snippets for search results.
func (r SourceRecord) Text() string {
	if r.Body != "" {
		return r.Body
	}
	return strings.Join(r.Snippets, "\n")
}

// DedupRecords removes records whose identity has already been seen,
// preserving first-seen order.
func DedupRecords(records []SourceRecord) []SourceRecord {
	seen := make(map[string]bool, len(records))
	var out []SourceRecord
	for _, r := range records {
		if seen[r.Identity] {
			continue
		}
		seen[r.Identity] = true
		out = append(out, r)
	}
	return out
}
