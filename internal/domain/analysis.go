package domain

import (
	"fmt"
	"strings"
)

// Analysis is what the language model extracts from a piece of text.
type Analysis struct {
	Keywords []string `json:"keywords"`
	Summary  string   `json:"summary"`
	Tags     []string `json:"tags"`
}

// Validate checks that the analysis carries a summary and at least one tag.
func (a Analysis) Validate() error {
	if strings.TrimSpace(a.Summary) == "" {
		return fmt.Errorf("%w: summary is empty", ErrValidation)
	}
	if len(a.Tags) == 0 {
		return fmt.Errorf("%w: no tags", ErrValidation)
	}
	return nil
}

// Rewrite is an AI-improved version of a note.
type Rewrite struct {
	Content     string   `json:"content"`
	Changes     []string `json:"changes"`
	Suggestions []string `json:"suggestions"`
}

// Validate checks that the rewrite produced content.
func (r Rewrite) Validate() error {
	if strings.TrimSpace(r.Content) == "" {
		return fmt.Errorf("%w: rewritten content", ErrEmptyContent)
	}
	return nil
}

// Selection is a span of text picked out of a source note.
type Selection struct {
	Text       string
	SourcePath string
}

// NoteExcerpt is the head of a note handed to a folder summary.
type NoteExcerpt struct {
	// Path is relative to the vault root.
	Path    string
	Name    string
	Excerpt string
}
