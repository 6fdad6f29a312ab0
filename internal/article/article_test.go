package article

import (
	"errors"
	"strings"
	"testing"
)

const sampleOutline = `# Rust Ownership
## Introduction
## Core Concepts
### Borrowing
### Lifetimes
## History
`

func mustParse(t *testing.T, topic, text string) *Article {
	t.Helper()
	a, err := ParseOutline(topic, text)
	if err != nil {
		t.Fatalf("ParseOutline() error = %v", err)
	}
	return a
}

// --- ParseOutline ---

func TestParseOutlineShape(t *testing.T) {
	// The first heading equals the topic, so it is skipped as a duplicate
	// declaration and the sections attach directly under the root.
	a := mustParse(t, "Rust Ownership", sampleOutline)

	if got := a.Topic(); got != "Rust Ownership" {
		t.Errorf("Topic() = %q", got)
	}
	sections := a.Root().Children
	if len(sections) != 3 {
		t.Fatalf("sections = %d, want 3", len(sections))
	}
	wantOrder := []string{"Introduction", "Core Concepts", "History"}
	for i, name := range wantOrder {
		if sections[i].Name != name {
			t.Errorf("section[%d] = %q, want %q", i, sections[i].Name, name)
		}
		if sections[i].Level != 2 {
			t.Errorf("section[%d] level = %d, want 2", i, sections[i].Level)
		}
	}
	if len(sections[1].Children) != 2 {
		t.Errorf("Core Concepts children = %d, want 2", len(sections[1].Children))
	}
}

func TestParseOutlineTitleNodeKept(t *testing.T) {
	// A first heading that is not the topic stays a child node.
	a := mustParse(t, "Memory safety", sampleOutline)

	title := a.Root().Children
	if len(title) != 1 {
		t.Fatalf("root children = %d, want 1 title node", len(title))
	}
	if title[0].Name != "Rust Ownership" || title[0].Level != 1 {
		t.Errorf("title node = %q level %d", title[0].Name, title[0].Level)
	}
	if len(title[0].Children) != 3 {
		t.Errorf("title children = %d, want 3", len(title[0].Children))
	}
}

func TestParseOutlineDuplicateTopicSkipped(t *testing.T) {
	// First heading equals the topic modulo case and underscores: it is a
	// duplicate declaration, not a child section.
	a := mustParse(t, "rust_ownership", "# Rust Ownership\n## Memory\n")

	if _, ok := a.Find("Rust Ownership"); ok {
		t.Error("duplicate topic heading was inserted as a node")
	}
	if len(a.Root().Children) != 1 || a.Root().Children[0].Name != "Memory" {
		t.Errorf("root children = %v", a.FirstLevelOutline())
	}
}

func TestParseOutlineNoHeadings(t *testing.T) {
	_, err := ParseOutline("Topic", "just prose\nno structure here\n")
	if !errors.Is(err, ErrNoOutline) {
		t.Errorf("err = %v, want ErrNoOutline", err)
	}
}

func TestParseOutlineContentAccumulates(t *testing.T) {
	a := mustParse(t, "Topic", "# Section\nline one\nline two\n## Sub\nbody\n")

	sec, ok := a.Find("Section")
	if !ok {
		t.Fatal("Section not found")
	}
	if sec.Content != "line one\nline two" {
		t.Errorf("content = %q", sec.Content)
	}
	sub, _ := a.Find("Sub")
	if sub.Content != "body" {
		t.Errorf("sub content = %q", sub.Content)
	}
}

func TestParseOutlineLevelSkip(t *testing.T) {
	// A ### directly under a # keeps its marker count as its level.
	a := mustParse(t, "Topic", "# Top\n### Deep\n")
	deep, ok := a.Find("Deep")
	if !ok {
		t.Fatal("Deep not found")
	}
	if deep.Level != 3 {
		t.Errorf("level = %d, want 3", deep.Level)
	}
}

// --- round trip ---

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		outline string
	}{
		{"flat", "# A\n# B\n# C\n"},
		{"nested", sampleOutline},
		{"skipping levels", "# A\n### A1\n## A2\n# B\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first := mustParse(t, "Topic", tt.outline)
			second := mustParse(t, "Topic", first.String())
			if !sameShape(first.Root(), second.Root()) {
				t.Errorf("round trip changed shape:\nfirst:\n%ssecond:\n%s", first, second)
			}
		})
	}
}

func sameShape(a, b *Node) bool {
	if a.Name != b.Name || a.Level != b.Level || len(a.Children) != len(b.Children) {
		return false
	}
	for i := range a.Children {
		if !sameShape(a.Children[i], b.Children[i]) {
			return false
		}
	}
	return true
}

// --- traversal and mutation ---

func TestFindPreOrderFirstMatch(t *testing.T) {
	// Two branches both contain "Overview"; pre-order DFS returns the one
	// in the first branch.
	a := mustParse(t, "Topic", "# A\n## Overview\nfirst\n# B\n## Overview\nsecond\n")
	node, ok := a.Find("Overview")
	if !ok {
		t.Fatal("Overview not found")
	}
	if node.Content != "first" {
		t.Errorf("Find returned %q branch, want first pre-order match", node.Content)
	}
}

func TestFindMissing(t *testing.T) {
	a := mustParse(t, "Topic", "# A\n")
	if _, ok := a.Find("Nope"); ok {
		t.Error("Find reported a match for a missing name")
	}
}

func TestSubtreeNames(t *testing.T) {
	a := mustParse(t, "Rust Ownership", sampleOutline)

	got := a.SubtreeNames("Core Concepts", false)
	want := []string{"Core Concepts", "Borrowing", "Lifetimes"}
	if len(got) != len(want) {
		t.Fatalf("SubtreeNames = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("SubtreeNames[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	tagged := a.SubtreeNames("Core Concepts", true)
	if tagged[1] != "### Borrowing" {
		t.Errorf("hashtag form = %q, want %q", tagged[1], "### Borrowing")
	}
}

func TestUpdateContent(t *testing.T) {
	a := mustParse(t, "Topic", "# A\n")
	if err := a.UpdateContent("A", "body"); err != nil {
		t.Fatalf("UpdateContent() error = %v", err)
	}
	node, _ := a.Find("A")
	if node.Content != "body" {
		t.Errorf("content = %q", node.Content)
	}
	if err := a.UpdateContent("missing", "x"); err == nil {
		t.Error("UpdateContent on missing section did not error")
	}
}

func TestRemoveSubsections(t *testing.T) {
	a := mustParse(t, "Rust Ownership", sampleOutline)
	a.RemoveSubsections()

	if _, ok := a.Find("Borrowing"); ok {
		t.Error("subsection survived RemoveSubsections")
	}
	if _, ok := a.Find("Core Concepts"); !ok {
		t.Error("level-2 section was removed")
	}
}

func TestCloneIsDeep(t *testing.T) {
	a := mustParse(t, "Rust Ownership", sampleOutline)
	clone := a.Clone()
	clone.RemoveSubsections()

	if _, ok := a.Find("Borrowing"); !ok {
		t.Error("mutating the clone changed the original")
	}
}

func TestGraftRelevels(t *testing.T) {
	a := mustParse(t, "Rust Ownership", sampleOutline)

	block := mustParse(t, "Block", "# History\ndetails\n## Early years\nmore\n")
	section := block.Root().Children[0]
	if err := a.Graft("Core Concepts", section); err != nil {
		t.Fatalf("Graft() error = %v", err)
	}

	grafted, _ := a.Find("Early years")
	if grafted.Level != 4 {
		t.Errorf("grafted subsection level = %d, want 4", grafted.Level)
	}
	if !strings.Contains(a.String(), "#### Early years") {
		t.Errorf("serialized form missing releveled heading:\n%s", a)
	}
}
