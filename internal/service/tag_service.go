package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/smart-extract/internal/batch"
	"github.com/phrazzld/smart-extract/internal/note"
	"github.com/phrazzld/smart-extract/internal/vault"
)

const opTag = "tag"

// TagService writes AI-suggested tags into note frontmatter.
type TagService struct {
	notes        Notes
	analyzer     Analyzer
	skipExisting bool
	logger       *slog.Logger
}

// NewTagService creates a TagService. With skipExisting, notes that already
// have tags are left alone.
func NewTagService(notes Notes, analyzer Analyzer, skipExisting bool, logger *slog.Logger) *TagService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TagService{
		notes:        notes,
		analyzer:     analyzer,
		skipExisting: skipExisting,
		logger:       logger.With("component", "tag_service"),
	}
}

// ProcessFile tags the note at path.
func (s *TagService) ProcessFile(ctx context.Context, path string) error {
	if !vault.IsMarkdown(path) {
		return fmt.Errorf("%w: not a markdown file", batch.ErrSkipped)
	}

	content, err := s.notes.Read(path)
	if err != nil {
		return wrapError(opTag, path, err)
	}
	if s.skipExisting && note.HasTags(content) {
		s.logger.DebugContext(ctx, "note already tagged", "path", path)
		return fmt.Errorf("%w: already tagged", batch.ErrSkipped)
	}

	body := note.StripFrontmatter(content)
	if body == "" {
		return fmt.Errorf("%w: empty note", batch.ErrSkipped)
	}

	tags, err := s.analyzer.SuggestTags(ctx, body)
	if err != nil {
		return wrapError(opTag, path, err)
	}

	err = s.notes.Update(path, func(c string) (string, error) {
		return note.SetTags(c, tags)
	})
	if err != nil {
		return wrapError(opTag, path, err)
	}

	s.logger.DebugContext(ctx, "note tagged", "path", path, "tags", tags)
	return nil
}
