// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/storm-writer/pkg/types"
)

func TestMain(m *testing.M) {
	backoffBase = time.Millisecond
	os.Exit(m.Run())
}

func TestNewOpenAIValidation(t *testing.T) {
	_, err := NewOpenAI(types.LLMConfig{Model: "gpt-4o-mini"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api key")

	_, err = NewOpenAI(types.LLMConfig{APIKey: "sk-test"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model")
}

func completionJSON(content string) string {
	return fmt.Sprintf(`{"id":"cmpl-1","object":"chat.completion","created":1,"model":"test",
		"choices":[{"index":0,"message":{"role":"assistant","content":%q},"finish_reason":"stop"}]}`, content)
}

func TestChatReturnsCompletion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, completionJSON("hello there"))
	}))
	defer server.Close()

	c, err := NewOpenAI(types.LLMConfig{
		Model:   "test-model",
		APIKey:  "sk-test",
		BaseURL: server.URL,
	}, nil)
	require.NoError(t, err)

	out, err := c.Chat(context.Background(), []Message{User("hi")})
	require.NoError(t, err)
	assert.Equal(t, "hello there", out)
}

func TestChatRetriesServerErrors(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			http.Error(w, `{"error":{"message":"overloaded"}}`, http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, completionJSON("recovered"))
	}))
	defer server.Close()

	c, err := NewOpenAI(types.LLMConfig{
		Model:      "test-model",
		APIKey:     "sk-test",
		BaseURL:    server.URL,
		MaxRetries: 5,
	}, nil)
	require.NoError(t, err)

	out, err := c.Chat(context.Background(), []Message{User("hi")})
	require.NoError(t, err)
	assert.Equal(t, "recovered", out)
	assert.GreaterOrEqual(t, calls, 3)
}

func TestChatExhaustsRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"down"}}`, http.StatusInternalServerError)
	}))
	defer server.Close()

	c, err := NewOpenAI(types.LLMConfig{
		Model:      "test-model",
		APIKey:     "sk-test",
		BaseURL:    server.URL,
		MaxRetries: 2,
	}, nil)
	require.NoError(t, err)

	_, err = c.Chat(context.Background(), []Message{User("hi")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 2 retries")
}
