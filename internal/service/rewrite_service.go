package service

import (
	"context"
	"fmt"
	"log/slog"
	"path"

	"github.com/phrazzld/smart-extract/internal/batch"
	"github.com/phrazzld/smart-extract/internal/note"
	"github.com/phrazzld/smart-extract/internal/vault"
)

const opRewrite = "rewrite"

// BackupExt is appended to the path of a note backed up before a rewrite.
const BackupExt = ".backup"

// RewriteOptions control where rewrites are written.
type RewriteOptions struct {
	TargetFolder string
	Suffix       string
	CreateBackup bool
}

// RewriteService writes AI rewrites of notes next to the originals.
type RewriteService struct {
	notes    Notes
	analyzer Analyzer
	opts     RewriteOptions
	logger   *slog.Logger
}

// NewRewriteService creates a RewriteService.
func NewRewriteService(notes Notes, analyzer Analyzer, opts RewriteOptions, logger *slog.Logger) *RewriteService {
	if logger == nil {
		logger = slog.Default()
	}
	return &RewriteService{
		notes:    notes,
		analyzer: analyzer,
		opts:     opts,
		logger:   logger.With("component", "rewrite_service"),
	}
}

// RewritePath returns where the rewrite of the note at source is written.
func (s *RewriteService) RewritePath(source string) string {
	return path.Join(s.opts.TargetFolder, s.rewriteName(source)+vault.MarkdownExt)
}

func (s *RewriteService) rewriteName(source string) string {
	return vault.BaseName(source) + s.opts.Suffix
}

// ProcessFile rewrites the note at source. An existing rewrite is replaced.
// Markdown sources get a link to their rewrite.
func (s *RewriteService) ProcessFile(ctx context.Context, source string) error {
	content, err := s.notes.Read(source)
	if err != nil {
		return wrapError(opRewrite, source, err)
	}

	body := note.StripFrontmatter(content)
	if body == "" {
		return fmt.Errorf("%w: empty note", batch.ErrSkipped)
	}

	if s.opts.CreateBackup {
		if err := s.notes.Write(source+BackupExt, content); err != nil {
			return wrapError(opRewrite, source, err)
		}
	}

	rw, err := s.analyzer.Rewrite(ctx, body)
	if err != nil {
		return wrapError(opRewrite, source, err)
	}

	target := s.RewritePath(source)
	if err := s.notes.Write(target, note.RewriteContent(content, rw, vault.BaseName(source))); err != nil {
		return wrapError(opRewrite, source, err)
	}

	if vault.IsMarkdown(source) {
		name := s.rewriteName(source)
		err := s.notes.Update(source, func(c string) (string, error) {
			return note.AppendRewriteLink(c, name), nil
		})
		if err != nil {
			return wrapError(opRewrite, source, err)
		}
	}

	s.logger.DebugContext(ctx, "note rewritten",
		"path", source,
		"rewrite_path", target,
		"changes", len(rw.Changes))
	return nil
}
