// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dialogue simulates research conversations between perspective
// writers and a topic expert backed by web search.
package dialogue

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/storm-writer/internal/llm"
)

// Perspectivist plays the writer side of a conversation. It keeps no
// state of its own; the conversation threads the chat history through.
type Perspectivist struct {
	chat        llm.ChatService
	topic       string
	perspective string
}

func NewPerspectivist(chat llm.ChatService, topic, perspective string) *Perspectivist {
	return &Perspectivist{chat: chat, topic: topic, perspective: perspective}
}

// Seed returns the system-style opening message that frames the persona.
// It is part of the chat history but never part of the transcript.
func (p *Perspectivist) Seed() llm.Message {
	return llm.User(fmt.Sprintf(askQuestionPrompt, p.topic, p.perspective))
}

// Ask produces the next question given the history so far.
func (p *Perspectivist) Ask(ctx context.Context, history []llm.Message) (string, error) {
	out, err := p.chat.Chat(ctx, history)
	if err != nil {
		return "", fmt.Errorf("asking question: %w", err)
	}
	return strings.TrimSpace(out), nil
}

var numberedLineRe = regexp.MustCompile(`(?m)^\s*\d+\.\s*(.+)$`)

// GeneratePerspectives asks the chat service for a roster of editors for
// the topic. The default perspective always comes first. On any failure
// the predefined roster is used instead, so perspective generation never
// aborts a run.
func GeneratePerspectives(ctx context.Context, chat llm.ChatService, topic string, max int, log *zap.Logger) []string {
	if log == nil {
		log = zap.NewNop()
	}
	if max <= 0 {
		max = 5
	}
	out, err := chat.Chat(ctx, []llm.Message{
		llm.User(fmt.Sprintf(generatePerspectivesPrompt, topic)),
	})
	perspectives := []string{DefaultPerspective}
	if err != nil {
		log.Warn("perspective generation failed, using predefined roster", zap.Error(err))
		perspectives = append(perspectives, PredefinedPerspectives...)
	} else {
		for _, m := range numberedLineRe.FindAllStringSubmatch(out, -1) {
			if s := strings.TrimSpace(m[1]); s != "" {
				perspectives = append(perspectives, s)
			}
		}
		if len(perspectives) == 1 {
			log.Warn("perspective generation returned no usable lines, using predefined roster")
			perspectives = append(perspectives, PredefinedPerspectives...)
		}
	}
	if len(perspectives) > max {
		perspectives = perspectives[:max]
	}
	return perspectives
}
