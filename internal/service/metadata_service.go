package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/smart-extract/internal/batch"
	"github.com/phrazzld/smart-extract/internal/domain"
	"github.com/phrazzld/smart-extract/internal/note"
	"github.com/phrazzld/smart-extract/internal/vault"
)

const opMetadata = "metadata"

// MetadataOptions control metadata generation.
type MetadataOptions struct {
	note.MetadataOptions
	// SkipExisting leaves notes alone when every required field is present.
	SkipExisting bool
}

// MetadataService fills note frontmatter from the configured fields.
type MetadataService struct {
	notes    Notes
	analyzer Analyzer
	opts     MetadataOptions
	aiFields []domain.MetadataField
	logger   *slog.Logger
}

// NewMetadataService creates a MetadataService.
func NewMetadataService(notes Notes, analyzer Analyzer, opts MetadataOptions, logger *slog.Logger) *MetadataService {
	if logger == nil {
		logger = slog.Default()
	}
	return &MetadataService{
		notes:    notes,
		analyzer: analyzer,
		opts:     opts,
		aiFields: domain.AIFields(opts.Fields),
		logger:   logger.With("component", "metadata_service"),
	}
}

// ProcessFile generates and merges metadata into the note at path.
func (s *MetadataService) ProcessFile(ctx context.Context, path string) error {
	if !vault.IsMarkdown(path) {
		return fmt.Errorf("%w: not a markdown file", batch.ErrSkipped)
	}

	content, err := s.notes.Read(path)
	if err != nil {
		return wrapError(opMetadata, path, err)
	}

	if s.opts.SkipExisting {
		complete, err := note.HasRequiredMetadata(content, s.opts.Fields)
		if err != nil {
			return wrapError(opMetadata, path, err)
		}
		if complete {
			s.logger.DebugContext(ctx, "note already has required metadata", "path", path)
			return fmt.Errorf("%w: metadata complete", batch.ErrSkipped)
		}
	}

	var values map[string]any
	if len(s.aiFields) > 0 {
		body := note.StripFrontmatter(content)
		if body == "" {
			return fmt.Errorf("%w: empty note", batch.ErrSkipped)
		}
		values, err = s.analyzer.GenerateMetadata(ctx, body, s.aiFields)
		if err != nil {
			return wrapError(opMetadata, path, err)
		}
	}

	info, err := s.notes.Stat(path)
	if err != nil {
		return wrapError(opMetadata, path, err)
	}
	sys := note.SystemInfo{Path: path, Created: info.ModTime, Modified: info.ModTime}

	err = s.notes.Update(path, func(c string) (string, error) {
		return note.MergeMetadata(c, values, sys, s.opts.MetadataOptions)
	})
	if err != nil {
		return wrapError(opMetadata, path, err)
	}

	s.logger.DebugContext(ctx, "metadata updated", "path", path, "fields", len(values))
	return nil
}
