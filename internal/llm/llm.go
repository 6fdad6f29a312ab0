// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm abstracts the chat completion service behind a small
// interface so pipeline stages and tests are provider-independent.
package llm

import "context"

// Message is one role-tagged entry in a chat request.
type Message struct {
	Role    string `json:"role" yaml:"role"`
	Content string `json:"content" yaml:"content"`
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// System builds a system message.
func System(content string) Message { return Message{Role: RoleSystem, Content: content} }

// User builds a user message.
func User(content string) Message { return Message{Role: RoleUser, Content: content} }

// Assistant builds an assistant message.
func Assistant(content string) Message { return Message{Role: RoleAssistant, Content: content} }

// ChatService is the synchronous chat completion interface. It may fail
// on timeout, quota, or malformed responses; callers decide whether to
// retry or treat the turn as an empty contribution.
type ChatService interface {
	Chat(ctx context.Context, messages []Message) (string, error)
}
