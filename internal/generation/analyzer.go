package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/phrazzld/smart-extract/internal/domain"
)

// MaxExcerptRunes bounds how much of each note goes into a folder summary prompt.
const MaxExcerptRunes = 500

// Analyzer turns text into domain values with one model call per operation.
type Analyzer struct {
	gen     Generator
	prompts Prompts
	logger  *slog.Logger
}

// NewAnalyzer creates an Analyzer that sends prompts built from prompts to gen.
func NewAnalyzer(gen Generator, prompts Prompts, logger *slog.Logger) (*Analyzer, error) {
	if gen == nil {
		return nil, fmt.Errorf("%w: generator cannot be nil", ErrInvalidConfig)
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	return &Analyzer{
		gen:     gen,
		prompts: prompts,
		logger:  logger.With("component", "analyzer"),
	}, nil
}

// Analyze extracts keywords, a summary and tags from text.
func (a *Analyzer) Analyze(ctx context.Context, text string) (domain.Analysis, error) {
	reply, err := a.call(ctx, "analysis", a.prompts.Analysis, promptData{Text: text})
	if err != nil {
		return domain.Analysis{}, err
	}
	return ParseAnalysis(reply)
}

// SuggestTags asks for tags describing text.
func (a *Analyzer) SuggestTags(ctx context.Context, text string) ([]string, error) {
	reply, err := a.call(ctx, "tags", a.prompts.Tags, promptData{Text: text})
	if err != nil {
		return nil, err
	}
	return ParseTags(reply)
}

// GenerateMetadata asks for a value for every AI field in fields.
// Fields of other types are ignored; with no AI fields no call is made.
func (a *Analyzer) GenerateMetadata(ctx context.Context, text string, fields []domain.MetadataField) (map[string]any, error) {
	aiFields := domain.AIFields(fields)
	if len(aiFields) == 0 {
		return map[string]any{}, nil
	}

	var desc strings.Builder
	for _, f := range aiFields {
		desc.WriteString("- ")
		desc.WriteString(f.Key)
		if f.Description != "" {
			desc.WriteString(": ")
			desc.WriteString(f.Description)
		}
		desc.WriteString("\n")
	}

	reply, err := a.call(ctx, "metadata", a.prompts.Metadata, promptData{
		Text:   text,
		Fields: strings.TrimRight(desc.String(), "\n"),
	})
	if err != nil {
		return nil, err
	}
	return ParseMetadata(reply, aiFields)
}

// Rewrite asks for an improved version of text.
func (a *Analyzer) Rewrite(ctx context.Context, text string) (domain.Rewrite, error) {
	reply, err := a.call(ctx, "rewrite", a.prompts.Rewrite, promptData{Text: text})
	if err != nil {
		return domain.Rewrite{}, err
	}
	return ParseRewrite(reply)
}

// SummarizeNotes analyzes several notes together. Each note contributes at
// most MaxExcerptRunes runes.
func (a *Analyzer) SummarizeNotes(ctx context.Context, notes []domain.NoteExcerpt) (domain.Analysis, error) {
	if len(notes) == 0 {
		return domain.Analysis{}, ErrEmptyText
	}

	parts := make([]string, 0, len(notes))
	for _, n := range notes {
		parts = append(parts, fmt.Sprintf("### %s\n%s", n.Name, truncateRunes(n.Excerpt, MaxExcerptRunes)))
	}

	reply, err := a.call(ctx, "summary", a.prompts.Summary, promptData{
		Count: len(notes),
		Notes: strings.Join(parts, "\n\n"),
		Text:  strings.Join(parts, "\n\n"),
	})
	if err != nil {
		return domain.Analysis{}, err
	}
	return ParseAnalysis(reply)
}

func (a *Analyzer) call(ctx context.Context, kind, tmpl string, data promptData) (string, error) {
	if strings.TrimSpace(data.Text) == "" {
		return "", ErrEmptyText
	}

	prompt, err := render(tmpl, data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	a.logger.DebugContext(ctx, "sending prompt",
		"kind", kind,
		"prompt_length", len(prompt))

	reply, err := a.gen.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%s generation failed: %w", kind, err)
	}

	a.logger.DebugContext(ctx, "received reply",
		"kind", kind,
		"reply_length", len(reply))
	return reply, nil
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
