package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/phrazzld/smart-extract/internal/domain"
	"github.com/phrazzld/smart-extract/internal/note"
	"github.com/phrazzld/smart-extract/internal/vault"
)

const opSummarize = "summarize"

// SummaryService writes one summary note per folder.
type SummaryService struct {
	notes    Notes
	analyzer Analyzer
	now      Clock
	logger   *slog.Logger
}

// NewSummaryService creates a SummaryService.
func NewSummaryService(notes Notes, analyzer Analyzer, logger *slog.Logger) *SummaryService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SummaryService{
		notes:    notes,
		analyzer: analyzer,
		now:      time.Now,
		logger:   logger.With("component", "summary_service"),
	}
}

// SummarizeFolder analyzes the notes under folder in a single AI call and writes
// the folder's summary note, replacing any previous one. It returns the path of
// the summary note.
func (s *SummaryService) SummarizeFolder(ctx context.Context, folder string) (string, error) {
	target := note.SummaryPath(folder)

	paths, err := s.notes.ListMarkdown(folder)
	if err != nil {
		return "", wrapError(opSummarize, folder, err)
	}

	var (
		excerpts []domain.NoteExcerpt
		included []string
	)
	for _, p := range paths {
		if p == target {
			continue
		}
		content, err := s.notes.Read(p)
		if err != nil {
			return "", wrapError(opSummarize, folder, err)
		}
		body := note.StripFrontmatter(content)
		if body == "" {
			continue
		}
		excerpts = append(excerpts, domain.NoteExcerpt{Path: p, Name: vault.BaseName(p), Excerpt: body})
		included = append(included, p)
	}
	if len(excerpts) == 0 {
		return "", wrapError(opSummarize, folder, ErrNoNotes)
	}

	analysis, err := s.analyzer.SummarizeNotes(ctx, excerpts)
	if err != nil {
		return "", wrapError(opSummarize, folder, err)
	}

	content, err := note.FolderSummary(folder, analysis, included, s.now())
	if err != nil {
		return "", wrapError(opSummarize, folder, err)
	}
	if err := s.notes.Write(target, content); err != nil {
		return "", wrapError(opSummarize, folder, err)
	}

	s.logger.InfoContext(ctx, "folder summarized",
		"folder", folder,
		"path", target,
		"notes", len(included))
	return target, nil
}
