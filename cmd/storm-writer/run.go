// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/storm-writer/internal/embed"
	"github.com/pdiddy/storm-writer/internal/llm"
	"github.com/pdiddy/storm-writer/internal/pipeline"
	"github.com/pdiddy/storm-writer/internal/scrape"
	"github.com/pdiddy/storm-writer/internal/search"
	"github.com/pdiddy/storm-writer/pkg/types"
)

const (
	defaultUserAgent    = "storm-writer/0.1"
	defaultSearchTop    = 5
	defaultMaxTurns     = 4
	defaultPerspectives = 4
	defaultSectionDelay = 10 * time.Second
	defaultScrapeDelay  = 2 * time.Second
)

var runCmd = &cobra.Command{
	Use:   "run [topic]",
	Short: "Run the full article pipeline for a topic",
	Long: `Run executes every stage for the given topic: perspective exploration,
outline construction, source encoding, section writing, and finalization.
The finished article and its references land under the work directory,
named after the topic slug.`,
	Args: cobra.ExactArgs(1),
	RunE: runPipeline,
}

func init() {
	addPipelineFlags(runCmd)
	runCmd.Flags().Bool("recursive", false, "write each subsection separately with sibling continuity")
	runCmd.Flags().Duration("section-delay", 0, "pause between section generation calls (default 10s)")
	runCmd.Flags().Bool("no-scrape", false, "skip page scraping, encode search snippets only")
	runCmd.Flags().String("scrape-cache", "", "SQLite file caching scraped pages (empty disables)")

	rootCmd.AddCommand(runCmd)
}

func addPipelineFlags(cmd *cobra.Command) {
	cmd.Flags().String("workdir", "output", "base directory for per-topic checkpoints")
	cmd.Flags().String("model", "gpt-4o-mini", "chat model identifier")
	cmd.Flags().String("base-url", "", "OpenAI-compatible API base URL override")
	cmd.Flags().String("embed-url", "", "embedding service endpoint")
	cmd.Flags().String("embed-model", "", "embedding model identifier")
	cmd.Flags().Int("max-turns", 0, "conversation turns per perspective (default 4)")
	cmd.Flags().Int("max-perspectives", 0, "perspectives to explore (default 4)")
	cmd.Flags().Bool("verbose", false, "development-style logging")
}

func pipelineConfig(cmd *cobra.Command) types.PipelineConfig {
	workDir, _ := cmd.Flags().GetString("workdir")
	model, _ := cmd.Flags().GetString("model")
	baseURL, _ := cmd.Flags().GetString("base-url")
	embedURL, _ := cmd.Flags().GetString("embed-url")
	embedModel, _ := cmd.Flags().GetString("embed-model")
	maxTurns, _ := cmd.Flags().GetInt("max-turns")
	if maxTurns == 0 {
		maxTurns = defaultMaxTurns
	}
	maxPerspectives, _ := cmd.Flags().GetInt("max-perspectives")
	if maxPerspectives == 0 {
		maxPerspectives = defaultPerspectives
	}
	if embedURL == "" {
		embedURL = viper.GetString("retrieval.embed_url")
	}
	if embedModel == "" {
		embedModel = viper.GetString("retrieval.embed_model")
	}

	return types.PipelineConfig{
		WorkDir: workDir,
		LLM: types.LLMConfig{
			Model:   model,
			APIKey:  secretDefault("openai_api_key", viper.GetString("llm.api_key")),
			BaseURL: baseURL,
		},
		Search: types.SearchConfig{
			HTTPConfig: types.HTTPConfig{UserAgent: defaultUserAgent},
			APIKey:     secretDefault("serper_api_key", viper.GetString("search.api_key")),
			TopK:       defaultSearchTop,
		},
		Scrape: types.ScrapeConfig{
			HTTPConfig: types.HTTPConfig{UserAgent: defaultUserAgent},
			Delay:      defaultScrapeDelay,
		},
		Retrieval: types.RetrievalConfig{
			EmbedURL:   embedURL,
			EmbedModel: embedModel,
		},
		Dialogue: types.DialogueConfig{
			MaxPerspectives: maxPerspectives,
			MaxTurns:        maxTurns,
			Delay:           10 * time.Second,
		},
		Writer: types.WriterConfig{
			SectionDelay: defaultSectionDelay,
		},
	}
}

func buildLogger(cmd *cobra.Command) (*zap.Logger, error) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func runPipeline(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig(cmd)
	recursive, _ := cmd.Flags().GetBool("recursive")
	cfg.Writer.Recursive = recursive
	if delay, _ := cmd.Flags().GetDuration("section-delay"); delay > 0 {
		cfg.Writer.SectionDelay = delay
	}
	if cachePath, _ := cmd.Flags().GetString("scrape-cache"); cachePath != "" {
		cfg.Scrape.CachePath = cachePath
	}

	log, err := buildLogger(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	chat, err := llm.NewOpenAI(cfg.LLM, log)
	if err != nil {
		return err
	}
	if cfg.Search.APIKey == "" {
		return fmt.Errorf("no search API key: set search.api_key or .secrets/serper_api_key")
	}
	if cfg.Retrieval.EmbedURL == "" {
		return fmt.Errorf("no embedding endpoint: set retrieval.embed_url")
	}

	searcher := search.NewSerper(cfg.Search, "", log)
	embedder := embed.NewClient(cfg.Retrieval.EmbedURL, cfg.Retrieval.EmbedModel, 0, log)

	var scraper *scrape.Reader
	if noScrape, _ := cmd.Flags().GetBool("no-scrape"); !noScrape {
		var cache *scrape.Cache
		if cfg.Scrape.CachePath != "" {
			cache, err = scrape.OpenCache(cfg.Scrape.CachePath)
			if err != nil {
				return err
			}
			defer cache.Close()
		}
		scraper = scrape.NewReader(cfg.Scrape, cache, log)
	}

	p := pipeline.New(cfg, chat, searcher, embedder, scraper, os.Stdout, log)
	return p.Run(cmd.Context(), args[0])
}
