package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/smart-extract/internal/domain"
	"github.com/phrazzld/smart-extract/internal/note"
)

var fixedNow = time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC)

func newExtractService(notes Notes, analyzer Analyzer) *ExtractService {
	s := NewExtractService(notes, analyzer, ExtractOptions{
		Style: note.Style{
			BacklinkStyle:    note.BacklinkWiki,
			QuoteCallout:     "cite",
			QuoteCollapsible: true,
			TargetFolder:     "Extractcards",
		},
		AddBacklinks: true,
	}, testLogger())
	s.now = func() time.Time { return fixedNow }
	return s
}

func TestExtractService_CreateFromSelection(t *testing.T) {
	v := newTestVault(t, map[string]string{"notes/src.md": "Source body\n"})
	analyzer := new(MockAnalyzer)
	analyzer.On("Analyze", mock.Anything, "selected text").Return(domain.Analysis{
		Keywords: []string{"queues"},
		Summary:  "Queue design",
		Tags:     []string{"go"},
	}, nil)

	s := newExtractService(v, analyzer)

	created, err := s.CreateFromSelection(context.Background(), "  selected text \n", "notes/src.md")
	require.NoError(t, err)
	assert.Equal(t, "Extractcards/20240102150405-Queue-design.md", created)

	content := readNote(t, v, created)
	assert.Contains(t, content, "# Queue design\n")
	assert.Contains(t, content, "> selected text\n")
	assert.Contains(t, content, "source: [[src]]\n")

	assert.Equal(t,
		"Source body\n\n## Related notes\n[[20240102150405-Queue-design]]\n",
		readNote(t, v, "notes/src.md"))

	t.Run("same name gets a suffix", func(t *testing.T) {
		again, err := s.CreateFromSelection(context.Background(), "selected text", "notes/src.md")
		require.NoError(t, err)
		assert.Equal(t, "Extractcards/20240102150405-Queue-design-1.md", again)

		source := readNote(t, v, "notes/src.md")
		assert.Contains(t, source, "[[20240102150405-Queue-design-1]]\n[[20240102150405-Queue-design]]\n")
	})

	analyzer.AssertExpectations(t)
}

func TestExtractService_EmptySelection(t *testing.T) {
	v := newTestVault(t, nil)
	analyzer := new(MockAnalyzer)
	s := newExtractService(v, analyzer)

	_, err := s.CreateFromSelection(context.Background(), " \n\t", "notes/src.md")
	assert.ErrorIs(t, err, domain.ErrEmptyContent)
	analyzer.AssertNotCalled(t, "Analyze", mock.Anything, mock.Anything)
}

func TestExtractService_AnalyzerFailure(t *testing.T) {
	v := newTestVault(t, nil)
	analyzer := new(MockAnalyzer)
	providerErr := errors.New("provider down")
	analyzer.On("Analyze", mock.Anything, "text").Return(domain.Analysis{}, providerErr)

	s := newExtractService(v, analyzer)
	_, err := s.CreateFromSelection(context.Background(), "text", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, providerErr)

	var svcErr *Error
	require.True(t, errors.As(err, &svcErr))
	assert.Equal(t, "extract", svcErr.Operation)
	assert.False(t, v.Exists("Extractcards"))
}

func TestExtractService_PDFSelection(t *testing.T) {
	v := newTestVault(t, nil)
	analyzer := new(MockAnalyzer)
	analyzer.On("Analyze", mock.Anything, "Hello world - again").Return(domain.Analysis{
		Summary: "Greeting",
		Tags:    []string{"pdf"},
	}, nil)

	s := newExtractService(v, analyzer)
	created, err := s.CreateFromSelection(context.Background(), "Hello\n  world — again", "papers/paper.pdf")
	require.NoError(t, err)

	content := readNote(t, v, created)
	assert.Contains(t, content, "source: [[paper]]\n")
	assert.False(t, strings.Contains(content, "world —"))
	analyzer.AssertExpectations(t)
}
