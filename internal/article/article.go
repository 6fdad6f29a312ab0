// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package article models an evolving article as an ordered tree of titled
// content blocks, with parsing from and serialization to hashtag-outline
// markdown.
package article

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoOutline is returned by ParseOutline when the input contains no
// heading lines at all.
var ErrNoOutline = errors.New("no outline structure found")

// Node is a labeled unit of article structure. Level 0 is the topic root,
// 1 the article title, 2 a section, 3 and deeper subsections. Sibling
// order is insertion order and is meaningful.
type Node struct {
	// Name is the heading text, unique within its subtree if
	// lookup-by-name is to behave deterministically.
	Name string

	// Level is the heading depth; strictly less than every descendant's.
	Level int

	// Content is the written body, empty until the writer fills it.
	Content string

	// Children are the ordered child nodes.
	Children []*Node

	// Preference is an optional writing annotation carried through
	// unmodified by the tree operations.
	Preference string
}

// NewNode creates a leaf node.
func NewNode(name string, level int) *Node {
	return &Node{Name: name, Level: level}
}

// AddChild appends child to n's children.
func (n *Node) AddChild(child *Node) {
	n.Children = append(n.Children, child)
}

// clone deep-copies the subtree rooted at n.
func (n *Node) clone() *Node {
	c := &Node{
		Name:       n.Name,
		Level:      n.Level,
		Content:    n.Content,
		Preference: n.Preference,
	}
	for _, child := range n.Children {
		c.Children = append(c.Children, child.clone())
	}
	return c
}

// relevel sets n's level and shifts every descendant to keep the
// parent-before-child level ordering.
func (n *Node) relevel(level int) {
	delta := level - n.Level
	var walk func(*Node)
	walk = func(node *Node) {
		node.Level += delta
		for _, c := range node.Children {
			walk(c)
		}
	}
	walk(n)
}

// Article owns a single root node (the topic, level 0) and exposes the
// tree-level operations. One pipeline run owns its Article exclusively.
type Article struct {
	root *Node
}

// New creates an Article whose root is the topic.
func New(topic string) *Article {
	return &Article{root: NewNode(topic, 0)}
}

// Root returns the topic root node.
func (a *Article) Root() *Node { return a.root }

// Topic returns the root node's name.
func (a *Article) Topic() string { return a.root.Name }

// Find returns the first node named name in pre-order depth-first
// traversal. The second return value reports whether a match was found;
// callers decide whether a miss is fatal.
func (a *Article) Find(name string) (*Node, bool) {
	return findNode(a.root, name)
}

func findNode(n *Node, name string) (*Node, bool) {
	if n.Name == name {
		return n, true
	}
	for _, child := range n.Children {
		if found, ok := findNode(child, name); ok {
			return found, true
		}
	}
	return nil, false
}

// FirstLevelOutline returns the names of the root's direct children.
func (a *Article) FirstLevelOutline() []string {
	names := make([]string, 0, len(a.root.Children))
	for _, c := range a.root.Children {
		names = append(names, c.Name)
	}
	return names
}

// SubtreeNames returns the pre-order names of the subtree rooted at the
// named section, the section itself included. With hashtags each name is
// prefixed by its level's markers. Returns nil if the section is absent.
func (a *Article) SubtreeNames(section string, withHashtags bool) []string {
	node, ok := a.Find(section)
	if !ok {
		return nil
	}
	var names []string
	var walk func(*Node)
	walk = func(n *Node) {
		if withHashtags {
			names = append(names, strings.TrimSpace(strings.Repeat("#", n.Level)+" "+n.Name))
		} else {
			names = append(names, n.Name)
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(node)
	return names
}

// UpdateContent sets the body of the named section.
func (a *Article) UpdateContent(section, content string) error {
	node, ok := a.Find(section)
	if !ok {
		return fmt.Errorf("section %q not found", section)
	}
	node.Content = content
	return nil
}

// AddSubsection appends a new child under the named parent section, one
// level deeper than the parent.
func (a *Article) AddSubsection(parent, name, content string) error {
	parentNode, ok := a.Find(parent)
	if !ok {
		return fmt.Errorf("parent section %q not found", parent)
	}
	child := NewNode(name, parentNode.Level+1)
	child.Content = content
	parentNode.AddChild(child)
	return nil
}

// Graft attaches child (and its subtree) under the named parent,
// releveling the subtree so the parent-before-child ordering holds.
func (a *Article) Graft(parent string, child *Node) error {
	parentNode, ok := a.Find(parent)
	if !ok {
		return fmt.Errorf("parent section %q not found", parent)
	}
	child.relevel(parentNode.Level + 1)
	parentNode.AddChild(child)
	return nil
}

// Clone deep-copies the article. The orchestrator clones before
// destructive rewrites so the original outline stays available for
// retrieval queries.
func (a *Article) Clone() *Article {
	return &Article{root: a.root.clone()}
}

// RemoveSubsections discards the children of every level-2 node, keeping
// only section headings for regeneration.
func (a *Article) RemoveSubsections() {
	var walk func(*Node)
	walk = func(n *Node) {
		if n.Level == 2 {
			n.Children = nil
			return
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(a.root)
}

// String serializes the tree pre-order: each node emits its repeated
// heading marker, a space, and its name, then its content on the next
// line when present. The level-0 root emits no marker line.
func (a *Article) String() string {
	var b strings.Builder
	var walk func(*Node)
	walk = func(n *Node) {
		if n.Level > 0 {
			b.WriteString(strings.Repeat("#", n.Level))
			b.WriteString(" ")
			b.WriteString(n.Name)
			b.WriteString("\n")
			if n.Content != "" {
				b.WriteString(n.Content)
				b.WriteString("\n")
			}
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(a.root)
	return b.String()
}

// ParseOutline builds an Article from hashtag-outline text. A line whose
// stripped form begins with heading markers opens a node at depth equal
// to the marker count; a maintained ancestor stack decides the parent.
// Non-heading lines accumulate as the preceding heading's content. A
// first heading equal to the topic (case- and underscore-insensitive) is
// treated as a duplicate topic declaration and skipped. Input with no
// heading lines returns ErrNoOutline.
func ParseOutline(topic, text string) (*Article, error) {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}

	a := New(topic)
	stack := []*Node{a.root}
	var current *Node
	sawHeading := false
	sawFirstHeading := false

	for _, line := range lines {
		if !strings.HasPrefix(line, "#") {
			if current == nil {
				continue
			}
			if current.Content == "" {
				current.Content = line
			} else {
				current.Content += "\n" + line
			}
			continue
		}

		level := headingLevel(line)
		name := strings.TrimSpace(strings.TrimLeft(line, "#"))
		sawHeading = true

		if !sawFirstHeading {
			sawFirstHeading = true
			if normalizeTopic(name) == normalizeTopic(topic) {
				// Duplicate topic declaration, not a child section.
				current = a.root
				continue
			}
		}

		node := NewNode(name, level)
		for len(stack) > 1 && level <= stack[len(stack)-1].Level {
			stack = stack[:len(stack)-1]
		}
		stack[len(stack)-1].AddChild(node)
		stack = append(stack, node)
		current = node
	}

	if !sawHeading {
		return nil, ErrNoOutline
	}
	return a, nil
}

// headingLevel counts the leading marker run.
func headingLevel(line string) int {
	n := 0
	for n < len(line) && line[n] == '#' {
		n++
	}
	return n
}

// normalizeTopic lowercases and maps underscores to spaces so "Rust_ownership"
// and "rust ownership" compare equal.
func normalizeTopic(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.ReplaceAll(s, "_", " ")
}
