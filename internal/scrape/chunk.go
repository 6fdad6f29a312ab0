// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scrape

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/pdiddy/storm-writer/pkg/types"
)

// maxChunkWords bounds one chunk; larger heading sections are split at
// paragraph boundaries.
const maxChunkWords = 400

// ChunkPage splits scraped page content into source records. Markdown
// pages chunk at heading boundaries; plain text chunks by paragraph
// accumulation. Every record carries the page title and URL.
func ChunkPage(title, url, content string) []types.SourceRecord {
	var pieces []string
	if boundaries := headingOffsets(content); len(boundaries) > 0 {
		pieces = sliceAtHeadings(content, boundaries)
	} else {
		pieces = chunkParagraphs(content, maxChunkWords)
	}

	var records []types.SourceRecord
	for _, piece := range pieces {
		piece = strings.TrimSpace(piece)
		if piece == "" {
			continue
		}
		if wordCount(piece) > maxChunkWords {
			for _, sub := range chunkParagraphs(piece, maxChunkWords) {
				records = append(records, types.NewPageRecord(title, url, sub))
			}
			continue
		}
		records = append(records, types.NewPageRecord(title, url, piece))
	}
	return records
}

// headingOffsets parses the content as markdown and returns the byte
// offset of each heading's line start, in document order. An empty
// result means the content has no heading structure.
func headingOffsets(content string) []int {
	src := []byte(content)
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var offsets []int
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		h, ok := n.(*ast.Heading)
		if !ok {
			continue
		}
		lines := h.Lines()
		if lines.Len() == 0 {
			continue
		}
		start := lines.At(0).Start
		// Back up to the start of the heading line so the markers are
		// kept in the chunk.
		lineStart := strings.LastIndexByte(content[:start], '\n') + 1
		offsets = append(offsets, lineStart)
	}
	return offsets
}

// sliceAtHeadings cuts the content at the heading offsets. Text before
// the first heading becomes its own chunk.
func sliceAtHeadings(content string, offsets []int) []string {
	var pieces []string
	if offsets[0] > 0 {
		pieces = append(pieces, content[:offsets[0]])
	}
	for i, start := range offsets {
		end := len(content)
		if i+1 < len(offsets) {
			end = offsets[i+1]
		}
		pieces = append(pieces, content[start:end])
	}
	return pieces
}

// chunkParagraphs accumulates blank-line-separated paragraphs into
// chunks of at most maxWords words. A single oversized paragraph stays
// one chunk rather than being split mid-sentence.
func chunkParagraphs(content string, maxWords int) []string {
	paragraphs := strings.Split(content, "\n\n")

	var chunks []string
	var current []string
	currentWords := 0

	flush := func() {
		if len(current) > 0 {
			chunks = append(chunks, strings.TrimSpace(strings.Join(current, "\n\n")))
			current = nil
			currentWords = 0
		}
	}

	for _, p := range paragraphs {
		if strings.TrimSpace(p) == "" {
			continue
		}
		words := wordCount(p)
		if currentWords > 0 && currentWords+words > maxWords {
			flush()
		}
		current = append(current, p)
		currentWords += words
	}
	flush()
	return chunks
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}
