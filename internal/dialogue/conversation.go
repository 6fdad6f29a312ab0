// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dialogue

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/storm-writer/internal/llm"
	"github.com/pdiddy/storm-writer/pkg/types"
)

// Conversation runs a bounded question/answer exchange between one
// perspectivist and the shared expert.
type Conversation struct {
	maxTurns int
	log      *zap.Logger
}

func NewConversation(maxTurns int, log *zap.Logger) *Conversation {
	if maxTurns <= 0 {
		maxTurns = 5
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Conversation{maxTurns: maxTurns, log: log}
}

// Run drives up to maxTurns exchanges. A turn reaches the transcript only
// when the expert produced a non-empty answer; any error during a turn is
// logged and counts as no contribution. The seed framing message stays in
// the chat history but out of the transcript. Saying the end phrase ends
// the conversation without counting the turn.
func (c *Conversation) Run(ctx context.Context, p *Perspectivist, e *Expert) (types.Transcript, error) {
	transcript := types.Transcript{Perspective: p.perspective}
	history := []llm.Message{p.Seed()}
	for turn := 0; turn < c.maxTurns; turn++ {
		if err := ctx.Err(); err != nil {
			return transcript, err
		}
		question, err := p.Ask(ctx, history)
		if err != nil {
			c.log.Warn("turn skipped", zap.Int("turn", turn), zap.Error(err))
			continue
		}
		if question == "" || strings.Contains(question, EndPhrase) {
			break
		}
		answer, err := e.Answer(ctx, question)
		if err != nil {
			c.log.Warn("turn skipped", zap.Int("turn", turn), zap.Error(err))
			continue
		}
		if answer == "" {
			continue
		}
		history = append(history, llm.Assistant(question), llm.User(answer))
		transcript.Turns = append(transcript.Turns,
			types.Turn{Role: types.RolePersona, Content: question},
			types.Turn{Role: types.RoleExpert, Content: answer},
		)
	}
	return transcript, nil
}
