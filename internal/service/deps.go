package service

import (
	"context"
	"time"

	"github.com/phrazzld/smart-extract/internal/domain"
	"github.com/phrazzld/smart-extract/internal/vault"
)

// Notes is the note storage the services read and write.
type Notes interface {
	Read(rel string) (string, error)
	Write(rel, content string) error
	CreateUnique(rel, content string) (string, error)
	Update(rel string, fn func(content string) (string, error)) error
	Exists(rel string) bool
	MkdirAll(rel string) error
	Stat(rel string) (vault.FileInfo, error)
	ListMarkdown(folder string) ([]string, error)
}

// Analyzer produces the AI results the services write into notes.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (domain.Analysis, error)
	SuggestTags(ctx context.Context, text string) ([]string, error)
	GenerateMetadata(ctx context.Context, text string, fields []domain.MetadataField) (map[string]any, error)
	Rewrite(ctx context.Context, text string) (domain.Rewrite, error)
	SummarizeNotes(ctx context.Context, notes []domain.NoteExcerpt) (domain.Analysis, error)
}

// Clock returns the current time. Tests replace it to get stable file names.
type Clock func() time.Time
