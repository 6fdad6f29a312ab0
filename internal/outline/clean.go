// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package outline

import (
	"strings"
)

// boilerplateSections never belong in a generated outline; their whole
// subtree is dropped.
var boilerplateSections = []string{
	"references",
	"see also",
	"notes",
	"external links",
	"bibliography",
	"further reading",
	"summary",
	"appendix",
	"appendices",
}

// Clean normalizes raw model output into a heading-only outline. A
// repeated topic heading restarts accumulation so prompt echo before it
// is discarded. Bulleted lines become one-level-deeper headings under
// the current section. Boilerplate sections are removed along with
// everything beneath them.
func Clean(raw, topic string) string {
	var lines []string
	level := 1
	topicLower := strings.ToLower(strings.TrimSpace(topic))
	for _, line := range strings.Split(raw, "\n") {
		s := strings.TrimSpace(line)
		if s == "" {
			continue
		}
		if topicLower != "" && strings.Contains(strings.ToLower(s), "# "+topicLower) {
			lines = lines[:0]
		}
		switch {
		case strings.HasPrefix(s, "#"):
			level = headingLevel(s)
			lines = append(lines, s)
		case strings.HasPrefix(s, "-"):
			name := strings.TrimSpace(strings.TrimPrefix(s, "-"))
			if name != "" {
				lines = append(lines, strings.Repeat("#", level+1)+" "+name)
			}
		}
	}
	return strings.Join(stripBoilerplate(lines), "\n")
}

func stripBoilerplate(lines []string) []string {
	var out []string
	skipLevel := 0
	for _, line := range lines {
		level := headingLevel(line)
		if skipLevel > 0 {
			if level > skipLevel {
				continue
			}
			skipLevel = 0
		}
		name := strings.ToLower(strings.TrimSpace(strings.TrimLeft(line, "#")))
		if isBoilerplate(name) {
			skipLevel = level
			continue
		}
		out = append(out, line)
	}
	return out
}

func isBoilerplate(name string) bool {
	for _, s := range boilerplateSections {
		if name == s {
			return true
		}
	}
	return false
}

func headingLevel(line string) int {
	n := 0
	for n < len(line) && line[n] == '#' {
		n++
	}
	return n
}

// LimitWords truncates text to at most max words while keeping line
// boundaries, so headings survive trimming intact.
func LimitWords(text string, max int) string {
	if max <= 0 {
		return ""
	}
	count := 0
	var b strings.Builder
	for _, line := range strings.Split(text, "\n") {
		words := strings.Fields(line)
		var kept []string
		for _, w := range words {
			if count >= max {
				break
			}
			kept = append(kept, w)
			count++
		}
		if len(kept) > 0 {
			b.WriteString(strings.Join(kept, " "))
			b.WriteString("\n")
		}
		if count >= max {
			break
		}
	}
	return strings.TrimSpace(b.String())
}
