package generation_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/phrazzld/smart-extract/internal/domain"
	"github.com/phrazzld/smart-extract/internal/generation"
	"github.com/phrazzld/smart-extract/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func newAnalyzer(t *testing.T, gen generation.Generator) *generation.Analyzer {
	t.Helper()
	a, err := generation.NewAnalyzer(gen, generation.DefaultPrompts(), testLogger())
	require.NoError(t, err)
	return a
}

func TestNewAnalyzer_Validation(t *testing.T) {
	_, err := generation.NewAnalyzer(nil, generation.DefaultPrompts(), testLogger())
	assert.ErrorIs(t, err, generation.ErrInvalidConfig)

	_, err = generation.NewAnalyzer(mocks.NewMockGenerator(""), generation.DefaultPrompts(), nil)
	assert.Error(t, err)
}

func TestAnalyzer_Analyze(t *testing.T) {
	gen := mocks.NewMockGenerator("关键词：队列，并发\n总结：任务调度\n标签：#队列 #并发")
	a := newAnalyzer(t, gen)

	got, err := a.Analyze(context.Background(), "有界并发的任务队列")
	require.NoError(t, err)
	assert.Equal(t, []string{"队列", "并发"}, got.Keywords)
	assert.Equal(t, "任务调度", got.Summary)
	assert.Equal(t, []string{"队列", "并发"}, got.Tags)

	prompt := gen.LastPrompt()
	assert.True(t, strings.HasSuffix(prompt, "原文：\n有界并发的任务队列"))
	assert.NotContains(t, prompt, "{text}")
}

func TestAnalyzer_EmptyTextSkipsCall(t *testing.T) {
	gen := mocks.NewMockGenerator("")
	a := newAnalyzer(t, gen)

	_, err := a.Analyze(context.Background(), "  \n")
	assert.ErrorIs(t, err, generation.ErrEmptyText)
	_, err = a.SummarizeNotes(context.Background(), nil)
	assert.ErrorIs(t, err, generation.ErrEmptyText)
	assert.Zero(t, gen.Calls())
}

func TestAnalyzer_GeneratorError(t *testing.T) {
	gen := &mocks.MockGenerator{Err: generation.ErrContentBlocked}
	a := newAnalyzer(t, gen)

	_, err := a.SuggestTags(context.Background(), "text")
	assert.ErrorIs(t, err, generation.ErrContentBlocked)
	assert.Contains(t, err.Error(), "tags generation failed")
}

func TestAnalyzer_GenerateMetadata(t *testing.T) {
	gen := mocks.NewMockGenerator(`{"title": "Queues", "summary": "About queues"}`)
	a := newAnalyzer(t, gen)

	fields := []domain.MetadataField{
		{Key: "title", Type: domain.FieldTypeAI, Description: "A concise title"},
		{Key: "summary", Type: domain.FieldTypeAI},
		{Key: "created", Type: domain.FieldTypeSystem, SystemField: domain.SystemFieldCreated},
	}
	got, err := a.GenerateMetadata(context.Background(), "note body", fields)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"title": "Queues", "summary": "About queues"}, got)

	prompt := gen.LastPrompt()
	assert.Contains(t, prompt, "- title: A concise title\n- summary\n")
	assert.NotContains(t, prompt, "created")
}

func TestAnalyzer_GenerateMetadata_NoAIFields(t *testing.T) {
	gen := mocks.NewMockGenerator("")
	a := newAnalyzer(t, gen)

	got, err := a.GenerateMetadata(context.Background(), "note", []domain.MetadataField{
		{Key: "created", Type: domain.FieldTypeSystem},
	})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Zero(t, gen.Calls())
}

func TestAnalyzer_Rewrite(t *testing.T) {
	a := newAnalyzer(t, mocks.NewMockGenerator(`{"content": "Better", "changes": ["c"], "suggestions": []}`))

	got, err := a.Rewrite(context.Background(), "worse")
	require.NoError(t, err)
	assert.Equal(t, "Better", got.Content)
	assert.Equal(t, []string{"c"}, got.Changes)
}

func TestAnalyzer_SummarizeNotes(t *testing.T) {
	gen := mocks.NewMockGenerator("关键词：调度\n总结：关于队列的笔记\n标签：#队列")
	a := newAnalyzer(t, gen)

	long := strings.Repeat("长", generation.MaxExcerptRunes+50)
	got, err := a.SummarizeNotes(context.Background(), []domain.NoteExcerpt{
		{Path: "a.md", Name: "a", Excerpt: "first note"},
		{Path: "b.md", Name: "b", Excerpt: long},
	})
	require.NoError(t, err)
	assert.Equal(t, "关于队列的笔记", got.Summary)

	prompt := gen.LastPrompt()
	assert.Contains(t, prompt, "以下2篇笔记")
	assert.Contains(t, prompt, "### a\nfirst note")
	assert.Contains(t, prompt, "### b\n"+strings.Repeat("长", generation.MaxExcerptRunes))
	assert.NotContains(t, prompt, strings.Repeat("长", generation.MaxExcerptRunes+1))
}

func TestGeneratorFunc(t *testing.T) {
	boom := errors.New("boom")
	var g generation.Generator = generation.GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		return "", boom
	})
	_, err := g.Generate(context.Background(), "p")
	assert.ErrorIs(t, err, boom)
}
