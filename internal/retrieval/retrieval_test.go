package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/pdiddy/storm-writer/pkg/types"
)

// vectorEmbedder maps each text to a fixed vector.
type vectorEmbedder struct {
	vectors map[string][]float64
}

func (e *vectorEmbedder) Embed(_ context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i, txt := range texts {
		v, ok := e.vectors[txt]
		if !ok {
			v = []float64{0, 0, 1}
		}
		out[i] = v
	}
	return out, nil
}

type failingEmbedder struct{}

func (failingEmbedder) Embed(context.Context, []string) ([][]float64, error) {
	return nil, errors.New("embedding service down")
}

func corpus() []types.SourceRecord {
	return []types.SourceRecord{
		types.NewSearchRecord("Alpha", "https://alpha.example", []string{"alpha"}),
		types.NewSearchRecord("Beta", "https://beta.example", []string{"beta"}),
		types.NewSearchRecord("Gamma", "https://gamma.example", []string{"gamma"}),
	}
}

func embedderFor(records []types.SourceRecord) *vectorEmbedder {
	return &vectorEmbedder{vectors: map[string][]float64{
		records[0].Text(): {1, 0, 0},
		records[1].Text(): {0, 1, 0},
		records[2].Text(): {0.9, 0.1, 0},
		"want alpha":      {1, 0, 0},
		"want beta":       {0, 1, 0},
	}}
}

func TestQueryBeforeEncodeFails(t *testing.T) {
	a := NewAdapter(&vectorEmbedder{}, 5, nil)
	_, err := a.Query(context.Background(), []string{"q"}, 0)
	if !errors.Is(err, ErrNotEncoded) {
		t.Errorf("err = %v, want ErrNotEncoded", err)
	}
}

func TestEncodeTwiceFails(t *testing.T) {
	records := corpus()
	a := NewAdapter(embedderFor(records), 5, nil)
	if err := a.Encode(context.Background(), records); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if err := a.Encode(context.Background(), records); !errors.Is(err, ErrAlreadyEncoded) {
		t.Errorf("second Encode err = %v, want ErrAlreadyEncoded", err)
	}
}

func TestEncodeEmptyCorpus(t *testing.T) {
	a := NewAdapter(&vectorEmbedder{}, 5, nil)
	if err := a.Encode(context.Background(), nil); err == nil {
		t.Error("Encode(nil) did not error")
	}
}

func TestEncodePropagatesEmbedderError(t *testing.T) {
	a := NewAdapter(failingEmbedder{}, 5, nil)
	if err := a.Encode(context.Background(), corpus()); err == nil {
		t.Error("Encode did not propagate embedder error")
	}
}

func TestQueryRanksBySimilarity(t *testing.T) {
	records := corpus()
	a := NewAdapter(embedderFor(records), 5, nil)
	if err := a.Encode(context.Background(), records); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	got, err := a.Query(context.Background(), []string{"want alpha"}, 2)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	// Alpha is the exact match, Gamma the near match.
	if got[0].Title != "Alpha" || got[1].Title != "Gamma" {
		t.Errorf("order = %q, %q", got[0].Title, got[1].Title)
	}
}

func TestQueryDedupAcrossQueries(t *testing.T) {
	records := corpus()
	a := NewAdapter(embedderFor(records), 5, nil)
	if err := a.Encode(context.Background(), records); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	// Both queries rank Alpha and Gamma in their top-k; each identity may
	// appear only once, in first-seen order.
	got, err := a.Query(context.Background(), []string{"want alpha", "want beta"}, 2)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}

	seen := make(map[string]int)
	for _, r := range got {
		seen[r.Identity]++
	}
	for id, n := range seen {
		if n > 1 {
			t.Errorf("identity %s appears %d times", id, n)
		}
	}
	if got[0].Title != "Alpha" {
		t.Errorf("first result = %q, want first query's best match", got[0].Title)
	}
}

func TestRankTieBreaksByCorpusOrder(t *testing.T) {
	records := corpus()
	// All records embed identically: every similarity ties, so ranking
	// must fall back to corpus order.
	same := &vectorEmbedder{vectors: map[string][]float64{}}
	a := NewAdapter(same, 5, nil)
	if err := a.Encode(context.Background(), records); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	got, err := a.Query(context.Background(), []string{"anything"}, 3)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	want := []string{"Alpha", "Beta", "Gamma"}
	for i := range want {
		if got[i].Title != want[i] {
			t.Errorf("tie order[%d] = %q, want %q", i, got[i].Title, want[i])
		}
	}
}
