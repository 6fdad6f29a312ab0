// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dialogue

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/storm-writer/internal/llm"
	"github.com/pdiddy/storm-writer/internal/search"
	"github.com/pdiddy/storm-writer/pkg/types"
)

// QueryMode selects how the expert derives search queries.
type QueryMode int

const (
	// QueryFromTopic derives queries from the article topic once, so all
	// perspectives share the same evidence pool.
	QueryFromTopic QueryMode = iota
	// QueryFromQuestion derives queries from the first question asked.
	QueryFromQuestion
)

var quotedQueryRe = regexp.MustCompile(`-\s*"([^"]+)"`)

// Expert answers writer questions from web evidence. It is shared across
// conversations; evidence is gathered once and cached for the session.
type Expert struct {
	chat      llm.ChatService
	searcher  search.Service
	mode      QueryMode
	topK      int
	topic     string
	collected []types.SourceRecord
	encoded   bool
	log       *zap.Logger
}

func NewExpert(chat llm.ChatService, searcher search.Service, topic string, mode QueryMode, topK int, log *zap.Logger) *Expert {
	if log == nil {
		log = zap.NewNop()
	}
	return &Expert{chat: chat, searcher: searcher, mode: mode, topK: topK, topic: topic, log: log}
}

// Collected returns every source record the expert has gathered so far,
// deduplicated by identity in first-seen order.
func (e *Expert) Collected() []types.SourceRecord {
	return types.DedupRecords(e.collected)
}

// Answer responds to a question using cached evidence, gathering it on
// first use. A search failure for an individual query is logged and
// skipped; the answer is formed from whatever evidence remains.
func (e *Expert) Answer(ctx context.Context, question string) (string, error) {
	if err := e.ensureEvidence(ctx, question); err != nil {
		return "", err
	}
	var info strings.Builder
	for _, rec := range types.DedupRecords(e.collected) {
		info.WriteString(rec.Title)
		info.WriteString("\n")
		info.WriteString(rec.Text())
		info.WriteString("\n\n")
	}
	out, err := e.chat.Chat(ctx, []llm.Message{
		llm.System(fmt.Sprintf(answerQuestionPrompt, e.topic, info.String())),
		llm.User(question),
	})
	if err != nil {
		return "", fmt.Errorf("answering question: %w", err)
	}
	return strings.TrimSpace(out), nil
}

func (e *Expert) ensureEvidence(ctx context.Context, question string) error {
	if e.encoded {
		return nil
	}
	prompt := fmt.Sprintf(queryFromTopicPrompt, e.topic)
	if e.mode == QueryFromQuestion {
		prompt = fmt.Sprintf(queryFromQuestionPrompt, question)
	}
	out, err := e.chat.Chat(ctx, []llm.Message{llm.User(prompt)})
	if err != nil {
		return fmt.Errorf("deriving search queries: %w", err)
	}
	queries := parseQueries(out)
	if len(queries) == 0 {
		queries = []string{e.topic}
	}
	for _, q := range queries {
		records, err := e.searcher.Search(ctx, q, e.topK)
		if err != nil {
			e.log.Warn("search query failed", zap.String("query", q), zap.Error(err))
			continue
		}
		e.collected = append(e.collected, records...)
	}
	e.encoded = true
	return nil
}

func parseQueries(out string) []string {
	var queries []string
	for _, m := range quotedQueryRe.FindAllStringSubmatch(out, -1) {
		if q := strings.TrimSpace(m[1]); q != "" {
			queries = append(queries, q)
		}
	}
	return queries
}
