// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/storm-writer/internal/article"
	"github.com/pdiddy/storm-writer/internal/citation"
	"github.com/pdiddy/storm-writer/internal/llm"
	"github.com/pdiddy/storm-writer/internal/outline"
	"github.com/pdiddy/storm-writer/internal/retrieval"
	"github.com/pdiddy/storm-writer/pkg/types"
)

const writeSectionPrompt = `Write an article section based on the collected information.

Here is the format of your writing:
1. Use "#" Title" to indicate section title, "##" Title" to indicate subsection title, "###" Title" to indicate subsubsection title, and so on.
2. Use [1], [2], ..., [n] in line (for example, "The capital of the United States is Washington, D.C.[1][3]."). You DO NOT need to include a References or Sources section to list the sources in the end.

The collected information:
%s

The topic of the page: %s

The section you need to write: %s

Write the section with proper inline citations (start your writing with # section title, don't include the page title or try to write other sections):`

const writeSubsectionPrompt = `Write an article section based on the collected information. The preceding section of the article has already been written; keep your writing coherent with it and do not repeat it.

Here is the format of your writing:
1. Use "#" Title" to indicate section title, "##" Title" to indicate subsection title, "###" Title" to indicate subsubsection title, and so on.
2. Use [1], [2], ..., [n] in line (for example, "The capital of the United States is Washington, D.C.[1][3]."). You DO NOT need to include a References or Sources section to list the sources in the end.

The collected information:
%s

The topic of the page: %s

The preceding section:
%s

The section you need to write: %s

Write the section with proper inline citations (start your writing with # section title, don't include the page title or try to write other sections):`

const defaultMaxContextWords = 3500

// sectionWriter fills an outline with generated, cited section bodies.
// It owns the per-run citation table; sections are written strictly in
// outline order so citation ids follow reading order.
type sectionWriter struct {
	chat      llm.ChatService
	adapter   *retrieval.Adapter
	table     *citation.Table
	recursive bool
	delay     time.Duration
	maxWords  int
	out       io.Writer
	log       *zap.Logger
}

func newSectionWriter(chat llm.ChatService, adapter *retrieval.Adapter, table *citation.Table, recursive bool, delay time.Duration, maxWords int, out io.Writer, log *zap.Logger) *sectionWriter {
	if maxWords <= 0 {
		maxWords = defaultMaxContextWords
	}
	if out == nil {
		out = io.Discard
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &sectionWriter{
		chat:      chat,
		adapter:   adapter,
		table:     table,
		recursive: recursive,
		delay:     delay,
		maxWords:  maxWords,
		out:       out,
		log:       log,
	}
}

// writeAll fills a freshly emptied copy of the outline tree: sections
// mirror the outline's top-level sections, each grafted back with
// generated content.
func (w *sectionWriter) writeAll(ctx context.Context, src *article.Article) (*article.Article, error) {
	final := src.Clone()
	final.Root().Children = nil
	sections := src.Root().Children
	for i, sec := range sections {
		if i > 0 {
			if err := wait(ctx, w.delay); err != nil {
				return nil, err
			}
		}
		fmt.Fprintf(w.out, "writing %s (%d/%d)\n", sec.Name, i+1, len(sections))
		var (
			node *article.Node
			err  error
		)
		if w.recursive {
			node, err = w.writeRecursive(ctx, src.Topic(), sec, "")
		} else {
			node, err = w.writeCombined(ctx, src, sec)
		}
		if err != nil {
			return nil, fmt.Errorf("writing section %q: %w", sec.Name, err)
		}
		if err := final.Graft(final.Topic(), node); err != nil {
			return nil, fmt.Errorf("grafting section %q: %w", sec.Name, err)
		}
	}
	return final, nil
}

// writeCombined writes the whole section in one call, retrieving with
// every descendant name as a single combined query.
func (w *sectionWriter) writeCombined(ctx context.Context, src *article.Article, sec *article.Node) (*article.Node, error) {
	query := strings.Join(src.SubtreeNames(sec.Name, false), " ")
	records, err := w.adapter.Query(ctx, []string{query}, 0)
	if err != nil {
		return nil, err
	}
	raw, err := w.chat.Chat(ctx, []llm.Message{
		llm.User(fmt.Sprintf(writeSectionPrompt, w.evidence(records), src.Topic(), sec.Name)),
	})
	if err != nil {
		return nil, err
	}
	parsed, err := article.ParseOutline(sec.Name, raw)
	if err != nil {
		return nil, err
	}
	root := parsed.Root()
	node := article.NewNode(sec.Name, sec.Level)
	node.Content = w.table.Remap(root.Content, records)
	for _, child := range root.Children {
		w.remapSubtree(child, records)
		node.AddChild(child)
	}
	return node, nil
}

// writeRecursive writes the node's own body, then its children
// depth-first, threading each sibling's text into the next sibling's
// prompt for continuity.
func (w *sectionWriter) writeRecursive(ctx context.Context, topic string, sec *article.Node, preceding string) (*article.Node, error) {
	content, err := w.writeBody(ctx, topic, sec.Name, preceding)
	if err != nil {
		return nil, err
	}
	node := article.NewNode(sec.Name, sec.Level)
	node.Content = content
	prev := content
	for _, child := range sec.Children {
		if err := wait(ctx, w.delay); err != nil {
			return nil, err
		}
		written, err := w.writeRecursive(ctx, topic, child, prev)
		if err != nil {
			return nil, err
		}
		node.AddChild(written)
		prev = written.Content
	}
	return node, nil
}

// writeBody generates just the named heading's own content, discarding
// any extra headings the model may produce.
func (w *sectionWriter) writeBody(ctx context.Context, topic, name, preceding string) (string, error) {
	records, err := w.adapter.Query(ctx, []string{name}, 0)
	if err != nil {
		return "", err
	}
	prompt := fmt.Sprintf(writeSectionPrompt, w.evidence(records), topic, name)
	if preceding != "" {
		prompt = fmt.Sprintf(writeSubsectionPrompt, w.evidence(records), topic,
			outline.LimitWords(preceding, w.maxWords), name)
	}
	raw, err := w.chat.Chat(ctx, []llm.Message{llm.User(prompt)})
	if err != nil {
		return "", err
	}
	parsed, err := article.ParseOutline(name, raw)
	if err != nil {
		return "", err
	}
	return w.table.Remap(parsed.Root().Content, records), nil
}

func (w *sectionWriter) remapSubtree(n *article.Node, candidates []types.SourceRecord) {
	n.Content = w.table.Remap(n.Content, candidates)
	for _, child := range n.Children {
		w.remapSubtree(child, candidates)
	}
}

// evidence renders retrieved records as a numbered candidate list; the
// numbering is what the model's section-local markers refer to.
func (w *sectionWriter) evidence(records []types.SourceRecord) string {
	var b strings.Builder
	for i, rec := range records {
		fmt.Fprintf(&b, "[%d] %s\n%s\n\n", i+1, rec.Title, rec.Text())
	}
	return outline.LimitWords(b.String(), w.maxWords)
}

// wait sleeps for d unless the context ends first.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
