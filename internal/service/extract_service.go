package service

import (
	"context"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/phrazzld/smart-extract/internal/domain"
	"github.com/phrazzld/smart-extract/internal/note"
	"github.com/phrazzld/smart-extract/internal/redact"
	"github.com/phrazzld/smart-extract/internal/vault"
)

const opExtract = "extract"

// ExtractOptions shape the notes created from selections.
type ExtractOptions struct {
	Style        note.Style
	AddBacklinks bool
}

// ExtractService turns a text selection into a new note.
type ExtractService struct {
	notes    Notes
	analyzer Analyzer
	opts     ExtractOptions
	now      Clock
	logger   *slog.Logger
}

// NewExtractService creates an ExtractService. Notes are created in
// opts.Style.TargetFolder.
func NewExtractService(notes Notes, analyzer Analyzer, opts ExtractOptions, logger *slog.Logger) *ExtractService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExtractService{
		notes:    notes,
		analyzer: analyzer,
		opts:     opts,
		now:      time.Now,
		logger:   logger.With("component", "extract_service"),
	}
}

// CreateFromSelection analyzes text, writes a new note quoting it and, when
// enabled, links the new note from the source note. It returns the path of the
// new note. Text selected in a PDF is cleaned up first.
//
// A failed backlink is logged but does not fail the extraction, since the new
// note already exists.
func (s *ExtractService) CreateFromSelection(ctx context.Context, text, sourcePath string) (string, error) {
	if strings.EqualFold(path.Ext(sourcePath), ".pdf") {
		text = note.CleanText(text)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", wrapError(opExtract, sourcePath, domain.ErrEmptyContent)
	}

	analysis, err := s.analyzer.Analyze(ctx, text)
	if err != nil {
		return "", wrapError(opExtract, sourcePath, err)
	}

	now := s.now()
	sel := domain.Selection{Text: text, SourcePath: sourcePath}
	content, err := note.Build(sel, analysis, s.opts.Style, now)
	if err != nil {
		return "", wrapError(opExtract, sourcePath, err)
	}

	folder := s.opts.Style.TargetFolder
	if err := s.notes.MkdirAll(folder); err != nil {
		return "", wrapError(opExtract, sourcePath, err)
	}
	created, err := s.notes.CreateUnique(path.Join(folder, note.FileName(analysis.Summary, now)+vault.MarkdownExt), content)
	if err != nil {
		return "", wrapError(opExtract, sourcePath, err)
	}

	s.logger.InfoContext(ctx, "note created",
		"path", created,
		"source_path", sourcePath,
		"tags", analysis.Tags)

	if s.opts.AddBacklinks && sourcePath != "" && vault.IsMarkdown(sourcePath) && s.notes.Exists(sourcePath) {
		link := note.NoteLink(s.opts.Style.BacklinkStyle, folder, vault.BaseName(created))
		err := s.notes.Update(sourcePath, func(c string) (string, error) {
			return note.AddBacklink(c, link), nil
		})
		if err != nil {
			s.logger.WarnContext(ctx, "failed to add backlink to source note",
				"source_path", sourcePath,
				"error", redact.Error(err))
		}
	}

	return created, nil
}
