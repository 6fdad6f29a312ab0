// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/storm-writer/internal/llm"
	"github.com/pdiddy/storm-writer/internal/pipeline"
	"github.com/pdiddy/storm-writer/internal/search"
)

var outlineCmd = &cobra.Command{
	Use:   "outline [topic]",
	Short: "Explore a topic and build its outline, without writing sections",
	Long: `Outline runs only the exploration and outline stages. The transcripts
and the outline are checkpointed, so a later full run picks up where
outline left off.`,
	Args: cobra.ExactArgs(1),
	RunE: runOutline,
}

func init() {
	addPipelineFlags(outlineCmd)
	rootCmd.AddCommand(outlineCmd)
}

func runOutline(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig(cmd)

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
	searcher := search.NewSerper(cfg.Search, "", log)

	p := pipeline.New(cfg, chat, searcher, nil, nil, os.Stdout, log)
	return p.RunOutline(cmd.Context(), args[0])
}
