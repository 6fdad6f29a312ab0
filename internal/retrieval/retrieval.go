// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package retrieval ranks source records against queries by embedding
// similarity.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/pdiddy/storm-writer/pkg/types"
)

// ErrNotEncoded is returned when Query runs before Encode. Encoding is a
// precondition, not a recoverable runtime condition.
var ErrNotEncoded = errors.New("retrieval: query before Encode")

// ErrAlreadyEncoded is returned when Encode runs twice on one adapter.
var ErrAlreadyEncoded = errors.New("retrieval: corpus already encoded")

// Embedder computes vectors for a batch of texts. The embedding service
// is external; tests supply an in-process implementation.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// Adapter holds the encoded corpus and answers similarity queries.
type Adapter struct {
	embedder   Embedder
	topK       int
	records    []types.SourceRecord
	embeddings [][]float64
	log        *zap.Logger
}

// NewAdapter creates an Adapter. topKPerQuery defaults to 5.
func NewAdapter(embedder Embedder, topKPerQuery int, log *zap.Logger) *Adapter {
	if topKPerQuery <= 0 {
		topKPerQuery = 5
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Adapter{
		embedder: embedder,
		topK:     topKPerQuery,
		log:      log,
	}
}

// Encode embeds every record's textual form and caches the vectors.
// It must run exactly once before Query.
func (a *Adapter) Encode(ctx context.Context, records []types.SourceRecord) error {
	if a.embeddings != nil {
		return ErrAlreadyEncoded
	}
	if len(records) == 0 {
		return fmt.Errorf("retrieval: empty corpus")
	}

	texts := make([]string, len(records))
	for i, r := range records {
		texts[i] = r.Text()
	}
	vectors, err := a.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("encoding corpus: %w", err)
	}

	a.records = records
	a.embeddings = vectors
	a.log.Info("encoded retrieval corpus", zap.Int("records", len(records)))
	return nil
}

// Query returns the top records for each query, concatenated in query
// order and deduplicated by identity across queries in first-seen order.
// Per-query ranking is by cosine similarity with ties broken by original
// corpus order. topKPerQuery <= 0 uses the adapter default.
func (a *Adapter) Query(ctx context.Context, queries []string, topKPerQuery int) ([]types.SourceRecord, error) {
	if a.embeddings == nil {
		return nil, ErrNotEncoded
	}
	if len(queries) == 0 {
		return nil, nil
	}
	if topKPerQuery <= 0 {
		topKPerQuery = a.topK
	}

	queryVectors, err := a.embedder.Embed(ctx, queries)
	if err != nil {
		return nil, fmt.Errorf("embedding queries: %w", err)
	}

	var results []types.SourceRecord
	seen := make(map[string]bool)

	for _, qv := range queryVectors {
		for _, idx := range a.rank(qv, topKPerQuery) {
			rec := a.records[idx]
			if seen[rec.Identity] {
				continue
			}
			seen[rec.Identity] = true
			results = append(results, rec)
		}
	}
	return results, nil
}

// rank returns the corpus indices of the topK most similar records,
// highest similarity first, ties in corpus order.
func (a *Adapter) rank(queryVector []float64, topK int) []int {
	type scored struct {
		idx int
		sim float64
	}
	scores := make([]scored, len(a.embeddings))
	for i, emb := range a.embeddings {
		scores[i] = scored{idx: i, sim: cosine(queryVector, emb)}
	}
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].sim > scores[j].sim
	})

	if topK > len(scores) {
		topK = len(scores)
	}
	indices := make([]int, topK)
	for i := 0; i < topK; i++ {
		indices[i] = scores[i].idx
	}
	return indices
}

// cosine computes cosine similarity, zero for mismatched or zero-norm
// vectors.
func cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
