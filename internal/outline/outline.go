// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package outline turns research conversations into a cleaned article
// outline.
package outline

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/storm-writer/internal/article"
	"github.com/pdiddy/storm-writer/internal/llm"
	"github.com/pdiddy/storm-writer/pkg/types"
)

const draftOutlinePrompt = `Write an outline for an article about a given topic.
Here is the format of your writing:
1. Use "#" Title" to indicate section title, "##" Title" to indicate subsection title, "###" Title" to indicate subsubsection title, and so on.
2. Do not include other information.

The topic you want to write: %s`

const refineOutlinePrompt = `Improve an outline for an article about a given topic. You already have a draft outline that covers the general information. Now you want to improve it based on the information learned from an information-seeking conversation to make it more informative.
Here is the format of your writing:
1. Use "#" Title" to indicate section title, "##" Title" to indicate subsection title, "###" Title" to indicate subsubsection title, and so on.
2. Do not include other information.

The topic you want to write: %s

Draft outline:
%s

Learned information:
%s`

// maxConversationWords bounds how much transcript text reaches the
// refinement prompt.
const maxConversationWords = 3500

// Writer drafts an outline from the topic alone, then refines it with
// what the conversations uncovered.
type Writer struct {
	chat llm.ChatService
	log  *zap.Logger
}

func NewWriter(chat llm.ChatService, log *zap.Logger) *Writer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Writer{chat: chat, log: log}
}

func (w *Writer) Draft(ctx context.Context, topic string) (string, error) {
	out, err := w.chat.Chat(ctx, []llm.Message{
		llm.User(fmt.Sprintf(draftOutlinePrompt, topic)),
	})
	if err != nil {
		return "", fmt.Errorf("drafting outline: %w", err)
	}
	return Clean(out, topic), nil
}

func (w *Writer) Refine(ctx context.Context, topic, draft string, transcripts []types.Transcript) (string, error) {
	out, err := w.chat.Chat(ctx, []llm.Message{
		llm.User(fmt.Sprintf(refineOutlinePrompt, topic, draft,
			LimitWords(flattenTranscripts(transcripts), maxConversationWords))),
	})
	if err != nil {
		return "", fmt.Errorf("refining outline: %w", err)
	}
	return Clean(out, topic), nil
}

// Build runs draft then refine and parses the result into an article
// skeleton. A refine failure falls back to the draft outline rather than
// aborting the run.
func (w *Writer) Build(ctx context.Context, topic string, transcripts []types.Transcript) (*article.Article, error) {
	draft, err := w.Draft(ctx, topic)
	if err != nil {
		return nil, err
	}
	text, err := w.Refine(ctx, topic, draft, transcripts)
	if err != nil {
		w.log.Warn("outline refinement failed, keeping draft", zap.Error(err))
		text = draft
	}
	a, err := article.ParseOutline(topic, text)
	if err != nil {
		return nil, fmt.Errorf("parsing outline: %w", err)
	}
	return a, nil
}

func flattenTranscripts(transcripts []types.Transcript) string {
	var b strings.Builder
	for _, tr := range transcripts {
		for _, turn := range tr.Turns {
			b.WriteString(string(turn.Role))
			b.WriteString(": ")
			b.WriteString(turn.Content)
			b.WriteString("\n")
		}
	}
	return b.String()
}
