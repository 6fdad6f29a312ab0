// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package citation maintains the article-global reference table and
// rewrites section-local citation markers to global ones.
package citation

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/storm-writer/pkg/types"
)

// markerRe matches inline citation markers like [1], [2], [12].
var markerRe = regexp.MustCompile(`\[(\d+)\]`)

// Table is the ordered sequence of promoted source records. Each record
// holds a dense 1-based citation id equal to its position; a record
// already present by identity is never promoted twice.
type Table struct {
	records []types.SourceRecord
	index   map[string]int // identity → 1-based citation id
	log     *zap.Logger
}

// NewTable creates an empty citation table. One table serves one
// article-writing run.
func NewTable(log *zap.Logger) *Table {
	if log == nil {
		log = zap.NewNop()
	}
	return &Table{
		index: make(map[string]int),
		log:   log,
	}
}

// Len returns the number of promoted records.
func (t *Table) Len() int { return len(t.records) }

// Records returns the promoted records in citation-id order.
func (t *Table) Records() []types.SourceRecord { return t.records }

// Promote adds rec to the table and returns its citation id. Re-promoting
// an identity already in the table returns the existing id.
func (t *Table) Promote(rec types.SourceRecord) int {
	if id, ok := t.index[rec.Identity]; ok {
		return id
	}
	id := len(t.records) + 1
	rec.CitationID = id
	t.records = append(t.records, rec)
	t.index[rec.Identity] = id
	return id
}

// Markers returns the distinct bracketed integers found in text, in
// ascending order.
func Markers(text string) []int {
	seen := make(map[int]bool)
	for _, m := range markerRe.FindAllStringSubmatch(text, -1) {
		var k int
		if _, err := fmt.Sscanf(m[1], "%d", &k); err != nil {
			continue
		}
		seen[k] = true
	}
	markers := make([]int, 0, len(seen))
	for k := range seen {
		markers = append(markers, k)
	}
	sort.Ints(markers)
	return markers
}

// Remap rewrites every in-range section-local marker [k] in sectionText
// to the article-global marker of candidates[k-1], promoting candidates
// into the table as needed. Markers outside 1..len(candidates) are left
// untouched with a warning, since a generation model may hallucinate one.
//
// The rewrite runs in two passes over placeholder tokens: global ids can
// numerically coincide with not-yet-processed local markers, so a direct
// replacement could rewrite a marker twice.
func (t *Table) Remap(sectionText string, candidates []types.SourceRecord) string {
	markers := Markers(sectionText)
	if len(markers) == 0 {
		return sectionText
	}

	out := sectionText
	globals := make(map[int]int, len(markers))
	for _, k := range markers {
		if k < 1 || k > len(candidates) {
			t.log.Warn("citation marker out of range, leaving untouched",
				zap.Int("marker", k),
				zap.Int("candidates", len(candidates)))
			continue
		}
		g := t.Promote(candidates[k-1])
		globals[k] = g
		out = strings.ReplaceAll(out, fmt.Sprintf("[%d]", k), placeholder(k))
	}
	for k, g := range globals {
		out = strings.ReplaceAll(out, placeholder(k), fmt.Sprintf("[%d]", g))
	}
	return out
}

// placeholder returns the intermediate token for local marker k. NUL
// bytes cannot occur in generated text, so the token never collides.
func placeholder(k int) string {
	return fmt.Sprintf("\x00cite%d\x00", k)
}

// References renders the reference list as an outline section: a
// "References" heading followed by one "[id] title" and url line pair
// per table entry, in promotion order.
func (t *Table) References() string {
	var b strings.Builder
	b.WriteString("# References\n")
	for _, rec := range t.records {
		fmt.Fprintf(&b, "[%d] %s\n%s\n", rec.CitationID, rec.Title, rec.URL)
	}
	return b.String()
}

// ReferenceEntry is one promoted record in the references.yaml export.
type ReferenceEntry struct {
	CitationID int    `json:"citation_id" yaml:"citation_id"`
	Title      string `json:"title" yaml:"title"`
	URL        string `json:"url" yaml:"url"`
}

// Export returns the table as serializable reference entries.
func (t *Table) Export() []ReferenceEntry {
	entries := make([]ReferenceEntry, 0, len(t.records))
	for _, rec := range t.records {
		entries = append(entries, ReferenceEntry{
			CitationID: rec.CitationID,
			Title:      rec.Title,
			URL:        rec.URL,
		})
	}
	return entries
}
