// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/storm-writer/internal/dialogue"
	"github.com/pdiddy/storm-writer/internal/llm"
	"github.com/pdiddy/storm-writer/pkg/types"
)

// fakeChat answers by recognizing which stage is prompting it, so one
// instance can serve the whole pipeline.
type fakeChat struct {
	asks    int
	outline string
	section string
}

func (f *fakeChat) Chat(_ context.Context, msgs []llm.Message) (string, error) {
	if len(msgs) == 0 {
		return "", errors.New("empty prompt")
	}
	first := msgs[0].Content
	last := msgs[len(msgs)-1].Content
	switch {
	case strings.Contains(last, "type in the search box"):
		return `- "rust ownership"`, nil
	case strings.Contains(first, "use information effectively"):
		return "Ownership moves values unless they are borrowed.", nil
	case strings.Contains(last, "Write an outline"):
		return f.outline, nil
	case strings.Contains(last, "Improve an outline"):
		return f.outline, nil
	case strings.Contains(last, "Write an article section"):
		return f.section, nil
	case strings.Contains(first, "Ask good questions"):
		f.asks++
		if f.asks == 1 {
			return "How does ownership work?", nil
		}
		return dialogue.EndPhrase, nil
	}
	return "", fmt.Errorf("unrecognized prompt: %.60s", last)
}

type errChat struct{}

func (errChat) Chat(_ context.Context, _ []llm.Message) (string, error) {
	return "", errors.New("chat service must not be called")
}

type fixedSearch struct{ calls int }

func (s *fixedSearch) Search(_ context.Context, _ string, _ int) ([]types.SourceRecord, error) {
	s.calls++
	return []types.SourceRecord{
		types.NewSearchRecord(
			"The Rust Programming Language",
			"https://doc.rust-lang.org/book/",
			[]string{"Ownership is Rust's most unique feature."},
		),
	}, nil
}

type fixedEmbedder struct{}

func (fixedEmbedder) Embed(_ context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i := range texts {
		out[i] = []float64{1, 0}
	}
	return out, nil
}

func testConfig(workDir string) types.PipelineConfig {
	return types.PipelineConfig{
		WorkDir: workDir,
		Search:  types.SearchConfig{TopK: 2},
		Retrieval: types.RetrievalConfig{
			TopKPerQuery: 2,
		},
		Dialogue: types.DialogueConfig{
			MaxTurns:   3,
			Predefined: []string{"compiler engineer focusing on the borrow checker"},
		},
	}
}

func TestRunProducesCitedArticle(t *testing.T) {
	workDir := t.TempDir()
	chat := &fakeChat{
		outline: "# Rust ownership\n# Ownership",
		section: "# Ownership\nRust enforces ownership at compile time[1].",
	}
	var progress bytes.Buffer
	p := New(testConfig(workDir), chat, &fixedSearch{}, fixedEmbedder{}, nil, &progress, nil)
	assert.Equal(t, StatusReady, p.Status())

	require.NoError(t, p.Run(context.Background(), "Rust ownership"))
	assert.Equal(t, StatusStopped, p.Status())

	dir := filepath.Join(workDir, "rust_ownership")
	for _, name := range []string{
		"conversation_history.json", "search_results.json",
		"outline.txt", "rust_ownership.txt", "references.yaml",
	} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}

	data, err := os.ReadFile(filepath.Join(dir, "rust_ownership.txt"))
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "# Ownership\nRust enforces ownership at compile time[1].")
	assert.Contains(t, text, "# References\n[1] The Rust Programming Language\nhttps://doc.rust-lang.org/book/")
	assert.Equal(t, 1, strings.Count(text, "[1] The Rust Programming Language"))

	refs, err := os.ReadFile(filepath.Join(dir, "references.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(refs), "citation_id: 1")
}

func TestRunResumesFromCheckpoints(t *testing.T) {
	workDir := t.TempDir()
	chat := &fakeChat{
		outline: "# Rust ownership\n# Ownership",
		section: "# Ownership\nOwnership body[1].",
	}
	p := New(testConfig(workDir), chat, &fixedSearch{}, fixedEmbedder{}, nil, nil, nil)
	require.NoError(t, p.Run(context.Background(), "Rust ownership"))

	// A completed run resumes without touching any external service.
	resumed := New(testConfig(workDir), errChat{}, &fixedSearch{}, fixedEmbedder{}, nil, nil, nil)
	require.NoError(t, resumed.Run(context.Background(), "Rust ownership"))
	assert.Equal(t, StatusStopped, resumed.Status())
}

func TestRunFailedStageKeepsEarlierCheckpoints(t *testing.T) {
	workDir := t.TempDir()
	chat := &fakeChat{outline: "no headings at all"}
	p := New(testConfig(workDir), chat, &fixedSearch{}, fixedEmbedder{}, nil, nil, nil)

	err := p.Run(context.Background(), "Rust ownership")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outline stage")
	assert.NotEqual(t, StatusStopped, p.Status())

	_, statErr := os.Stat(filepath.Join(workDir, "rust_ownership", "conversation_history.json"))
	assert.NoError(t, statErr)
	_, statErr = os.Stat(filepath.Join(workDir, "rust_ownership", "outline.txt"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunOutlineStopsAfterOutlineStage(t *testing.T) {
	workDir := t.TempDir()
	chat := &fakeChat{outline: "# Rust ownership\n# Ownership\n## Borrowing"}
	p := New(testConfig(workDir), chat, &fixedSearch{}, fixedEmbedder{}, nil, nil, nil)

	require.NoError(t, p.RunOutline(context.Background(), "Rust ownership"))
	assert.Equal(t, StatusStopped, p.Status())

	outlineText, err := os.ReadFile(filepath.Join(workDir, "rust_ownership", "outline.txt"))
	require.NoError(t, err)
	assert.Equal(t, "# Ownership\n## Borrowing\n", string(outlineText))

	_, statErr := os.Stat(filepath.Join(workDir, "rust_ownership", "rust_ownership.txt"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestSlug(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Rust ownership", "rust_ownership"},
		{"  Trimmed Topic  ", "trimmed_topic"},
		{"single", "single"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slug(tt.in))
	}
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "READY", StatusReady.String())
	assert.Equal(t, "RUNNING", StatusRunning.String())
	assert.Equal(t, "STOPPED", StatusStopped.String())
}
