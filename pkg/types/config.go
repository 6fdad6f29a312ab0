// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "storm-writer/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// LLMConfig holds settings for stages that call a chat completion API.
type LLMConfig struct {
	// Model is the model identifier (e.g. "gpt-4o-mini").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// BaseURL overrides the API endpoint for OpenAI-compatible providers.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// MaxRetries is the number of retry attempts for failed calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// SearchConfig holds settings for the web search service.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// APIKey authenticates against the search API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// TopK is the number of results requested per query (default 5).
	TopK int `json:"top_k" yaml:"top_k"`
}

// ScrapeConfig holds settings for the web-page-to-markdown scraper.
type ScrapeConfig struct {
	HTTPConfig `yaml:",inline"`

	// ReaderPrefix is prepended to target URLs to reach the reader
	// service (default "https://r.jina.ai/").
	ReaderPrefix string `json:"reader_prefix" yaml:"reader_prefix"`

	// CachePath is the SQLite file caching scraped pages by URL. Empty
	// disables the cache.
	CachePath string `json:"cache_path,omitempty" yaml:"cache_path,omitempty"`

	// Delay is the pause between consecutive page fetches (default 2s).
	Delay time.Duration `json:"delay" yaml:"delay"`
}

// RetrievalConfig holds settings for the similarity retrieval adapter.
type RetrievalConfig struct {
	// EmbedURL is the embedding service endpoint.
	EmbedURL string `json:"embed_url" yaml:"embed_url"`

	// EmbedModel is the embedding model identifier.
	EmbedModel string `json:"embed_model" yaml:"embed_model"`

	// TopKPerQuery is the number of records returned per query (default 5).
	TopKPerQuery int `json:"top_k_per_query" yaml:"top_k_per_query"`
}

// DialogueConfig holds settings for the perspective/expert simulation.
type DialogueConfig struct {
	// MaxPerspectives caps the number of perspectives explored (default 4).
	MaxPerspectives int `json:"max_perspectives" yaml:"max_perspectives"`

	// MaxTurns bounds each perspective's conversation (default 4).
	MaxTurns int `json:"max_turns" yaml:"max_turns"`

	// Delay is the pause between perspective conversations (default 10s).
	Delay time.Duration `json:"delay" yaml:"delay"`

	// Predefined perspectives bypass LLM perspective generation when set.
	Predefined []string `json:"predefined,omitempty" yaml:"predefined,omitempty"`

	// QueryFromQuestion makes the expert derive search queries from the
	// first question instead of the topic.
	QueryFromQuestion bool `json:"query_from_question" yaml:"query_from_question"`
}

// WriterConfig holds settings for the section-writing stage.
type WriterConfig struct {
	// Recursive selects per-subsection writing with sibling continuity;
	// false writes each top-level section in one call.
	Recursive bool `json:"recursive" yaml:"recursive"`

	// SectionDelay is the pause between section generation calls to
	// respect provider rate limits (default 10s).
	SectionDelay time.Duration `json:"section_delay" yaml:"section_delay"`

	// MaxContextWords bounds the retrieved context per prompt (default 3500).
	MaxContextWords int `json:"max_context_words" yaml:"max_context_words"`
}

// PipelineConfig groups all stage configurations for one article run.
type PipelineConfig struct {
	// WorkDir is the base directory for per-topic checkpoints (default "output").
	WorkDir string `json:"work_dir" yaml:"work_dir"`

	LLM       LLMConfig       `json:"llm" yaml:"llm"`
	Search    SearchConfig    `json:"search" yaml:"search"`
	Scrape    ScrapeConfig    `json:"scrape" yaml:"scrape"`
	Retrieval RetrievalConfig `json:"retrieval" yaml:"retrieval"`
	Dialogue  DialogueConfig  `json:"dialogue" yaml:"dialogue"`
	Writer    WriterConfig    `json:"writer" yaml:"writer"`
}
