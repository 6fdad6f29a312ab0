// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search queries a web search API and returns ranked source
// records.
package search

import (
	"context"

	"github.com/pdiddy/storm-writer/pkg/types"
)

// Service answers a single query with up to count ranked results. The
// search API is external; tests supply a stub implementation.
type Service interface {
	Search(ctx context.Context, query string, count int) ([]types.SourceRecord, error)
}
