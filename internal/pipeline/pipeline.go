// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline sequences the article-generation stages: explore the
// topic through simulated conversations, build an outline, encode the
// gathered sources, write the sections, and finalize with references.
// Each stage checkpoints its artifact so an interrupted run resumes from
// the last completed stage.
package pipeline

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/pdiddy/storm-writer/internal/article"
	"github.com/pdiddy/storm-writer/internal/citation"
	"github.com/pdiddy/storm-writer/internal/dialogue"
	"github.com/pdiddy/storm-writer/internal/llm"
	"github.com/pdiddy/storm-writer/internal/outline"
	"github.com/pdiddy/storm-writer/internal/retrieval"
	"github.com/pdiddy/storm-writer/internal/scrape"
	"github.com/pdiddy/storm-writer/internal/search"
	"github.com/pdiddy/storm-writer/pkg/types"
)

// Status is the externally observable pipeline state. It moves forward
// only: READY to RUNNING to STOPPED.
type Status int

const (
	StatusReady Status = iota
	StatusRunning
	StatusStopped
)

func (s Status) String() string {
	switch s {
	case StatusReady:
		return "READY"
	case StatusRunning:
		return "RUNNING"
	case StatusStopped:
		return "STOPPED"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Pipeline runs one article generation end to end. A Pipeline is used by
// a single goroutine; stages run strictly in sequence.
type Pipeline struct {
	cfg      types.PipelineConfig
	chat     llm.ChatService
	searcher search.Service
	embedder retrieval.Embedder
	scraper  *scrape.Reader
	out      io.Writer
	log      *zap.Logger
	status   Status
}

// New assembles a pipeline from its external services. scraper may be
// nil, in which case sources are encoded from search snippets alone.
func New(cfg types.PipelineConfig, chat llm.ChatService, searcher search.Service, embedder retrieval.Embedder, scraper *scrape.Reader, out io.Writer, log *zap.Logger) *Pipeline {
	if out == nil {
		out = io.Discard
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{
		cfg:      cfg,
		chat:     chat,
		searcher: searcher,
		embedder: embedder,
		scraper:  scraper,
		out:      out,
		log:      log,
		status:   StatusReady,
	}
}

// Status reports the pipeline state so a caller can poll completion.
func (p *Pipeline) Status() Status { return p.status }

// Run executes every stage for the topic. A stage whose checkpoint file
// already exists is loaded instead of recomputed. Stage failures abort
// the run and keep completed checkpoints for the next attempt.
func (p *Pipeline) Run(ctx context.Context, topic string) error {
	p.status = StatusRunning
	store, err := newCheckpointStore(p.cfg.WorkDir, topic)
	if err != nil {
		return err
	}

	transcripts, sources, err := p.explore(ctx, topic, store)
	if err != nil {
		return fmt.Errorf("explore stage: %w", err)
	}

	art, err := p.buildOutline(ctx, topic, transcripts, store)
	if err != nil {
		return fmt.Errorf("outline stage: %w", err)
	}

	if store.has(store.articleFile()) {
		fmt.Fprintf(p.out, "skipped %s\n", store.articleFile())
		p.status = StatusStopped
		return nil
	}

	adapter, err := p.encode(ctx, sources)
	if err != nil {
		return fmt.Errorf("encode stage: %w", err)
	}

	table := citation.NewTable(p.log)
	writer := newSectionWriter(p.chat, adapter, table,
		p.cfg.Writer.Recursive, p.cfg.Writer.SectionDelay, p.cfg.Writer.MaxContextWords,
		p.out, p.log)
	final, err := writer.writeAll(ctx, art)
	if err != nil {
		return fmt.Errorf("write stage: %w", err)
	}

	if err := p.finalize(final, table, store); err != nil {
		return fmt.Errorf("finalize stage: %w", err)
	}
	p.status = StatusStopped
	return nil
}

// RunOutline executes only the explore and outline stages, leaving their
// checkpoints for a later full run.
func (p *Pipeline) RunOutline(ctx context.Context, topic string) error {
	p.status = StatusRunning
	store, err := newCheckpointStore(p.cfg.WorkDir, topic)
	if err != nil {
		return err
	}
	transcripts, _, err := p.explore(ctx, topic, store)
	if err != nil {
		return fmt.Errorf("explore stage: %w", err)
	}
	if _, err := p.buildOutline(ctx, topic, transcripts, store); err != nil {
		return fmt.Errorf("outline stage: %w", err)
	}
	p.status = StatusStopped
	return nil
}

func (p *Pipeline) explore(ctx context.Context, topic string, store *checkpointStore) ([]types.Transcript, []types.SourceRecord, error) {
	if store.has(conversationsFile) && store.has(sourcesFile) {
		fmt.Fprintf(p.out, "skipped %s\n", conversationsFile)
		transcripts, err := store.loadConversations()
		if err != nil {
			return nil, nil, err
		}
		sources, err := store.loadSources()
		if err != nil {
			return nil, nil, err
		}
		return transcripts, sources, nil
	}

	perspectives := p.cfg.Dialogue.Predefined
	if len(perspectives) == 0 {
		perspectives = dialogue.GeneratePerspectives(ctx, p.chat, topic, p.cfg.Dialogue.MaxPerspectives, p.log)
	}

	mode := dialogue.QueryFromTopic
	if p.cfg.Dialogue.QueryFromQuestion {
		mode = dialogue.QueryFromQuestion
	}
	expert := dialogue.NewExpert(p.chat, p.searcher, topic, mode, p.cfg.Search.TopK, p.log)
	conv := dialogue.NewConversation(p.cfg.Dialogue.MaxTurns, p.log)

	var transcripts []types.Transcript
	for i, perspective := range perspectives {
		if i > 0 {
			if err := wait(ctx, p.cfg.Dialogue.Delay); err != nil {
				return nil, nil, err
			}
		}
		fmt.Fprintf(p.out, "exploring perspective %d/%d\n", i+1, len(perspectives))
		transcript, err := conv.Run(ctx, dialogue.NewPerspectivist(p.chat, topic, perspective), expert)
		if err != nil {
			return nil, nil, err
		}
		transcripts = append(transcripts, transcript)
	}

	sources := expert.Collected()
	if err := store.saveConversations(transcripts); err != nil {
		return nil, nil, err
	}
	if err := store.saveSources(sources); err != nil {
		return nil, nil, err
	}
	return transcripts, sources, nil
}

func (p *Pipeline) buildOutline(ctx context.Context, topic string, transcripts []types.Transcript, store *checkpointStore) (*article.Article, error) {
	if store.has(outlineFile) {
		fmt.Fprintf(p.out, "skipped %s\n", outlineFile)
		text, err := store.loadText(outlineFile)
		if err != nil {
			return nil, err
		}
		return article.ParseOutline(topic, text)
	}
	art, err := outline.NewWriter(p.chat, p.log).Build(ctx, topic, transcripts)
	if err != nil {
		return nil, err
	}
	if err := store.saveText(outlineFile, art.String()); err != nil {
		return nil, err
	}
	return art, nil
}

func (p *Pipeline) encode(ctx context.Context, sources []types.SourceRecord) (*retrieval.Adapter, error) {
	records := sources
	if p.scraper != nil {
		expanded, err := scrape.Expand(ctx, p.scraper, sources, p.out)
		if err != nil {
			return nil, err
		}
		records = expanded
	}
	adapter := retrieval.NewAdapter(p.embedder, p.cfg.Retrieval.TopKPerQuery, p.log)
	if err := adapter.Encode(ctx, records); err != nil {
		return nil, err
	}
	return adapter, nil
}

func (p *Pipeline) finalize(final *article.Article, table *citation.Table, store *checkpointStore) error {
	if table.Len() > 0 {
		parsed, err := article.ParseOutline("References", table.References())
		if err != nil {
			return err
		}
		refs := article.NewNode("References", 1)
		refs.Content = parsed.Root().Content
		if err := final.Graft(final.Topic(), refs); err != nil {
			return err
		}
	}
	if err := store.saveText(store.articleFile(), final.String()); err != nil {
		return err
	}
	if err := store.saveReferences(table.Export()); err != nil {
		return err
	}
	fmt.Fprintf(p.out, "wrote %s\n", store.articleFile())
	return nil
}
