// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/storm-writer/internal/citation"
	"github.com/pdiddy/storm-writer/pkg/types"
)

const (
	conversationsFile = "conversation_history.json"
	sourcesFile       = "search_results.json"
	outlineFile       = "outline.txt"
	referencesFile    = "references.yaml"
)

// Slug maps a topic to a filesystem-safe directory and file name.
func Slug(topic string) string {
	s := strings.ToLower(strings.TrimSpace(topic))
	return strings.ReplaceAll(s, " ", "_")
}

// checkpointStore persists per-stage artifacts under <workdir>/<slug>/ so
// an interrupted run resumes from the last completed stage.
type checkpointStore struct {
	dir  string
	slug string
}

func newCheckpointStore(workDir, topic string) (*checkpointStore, error) {
	slug := Slug(topic)
	dir := filepath.Join(workDir, slug)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating checkpoint directory: %w", err)
	}
	return &checkpointStore{dir: dir, slug: slug}, nil
}

func (s *checkpointStore) has(name string) bool {
	_, err := os.Stat(filepath.Join(s.dir, name))
	return err == nil
}

func (s *checkpointStore) articleFile() string { return s.slug + ".txt" }

func (s *checkpointStore) saveJSON(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

func (s *checkpointStore) loadJSON(name string, v any) error {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return fmt.Errorf("reading %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", name, err)
	}
	return nil
}

func (s *checkpointStore) saveText(name, text string) error {
	if err := os.WriteFile(filepath.Join(s.dir, name), []byte(text), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

func (s *checkpointStore) loadText(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", name, err)
	}
	return string(data), nil
}

func (s *checkpointStore) saveConversations(transcripts []types.Transcript) error {
	return s.saveJSON(conversationsFile, transcripts)
}

func (s *checkpointStore) loadConversations() ([]types.Transcript, error) {
	var transcripts []types.Transcript
	if err := s.loadJSON(conversationsFile, &transcripts); err != nil {
		return nil, err
	}
	return transcripts, nil
}

func (s *checkpointStore) saveSources(records []types.SourceRecord) error {
	return s.saveJSON(sourcesFile, records)
}

func (s *checkpointStore) loadSources() ([]types.SourceRecord, error) {
	var records []types.SourceRecord
	if err := s.loadJSON(sourcesFile, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *checkpointStore) saveReferences(entries []citation.ReferenceEntry) error {
	data, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", referencesFile, err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, referencesFile), data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", referencesFile, err)
	}
	return nil
}
