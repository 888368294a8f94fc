package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/smart-extract/internal/batch"
	"github.com/phrazzld/smart-extract/internal/note"
	"github.com/phrazzld/smart-extract/internal/vault"
)

func TestTagService_ProcessFile(t *testing.T) {
	v := newTestVault(t, map[string]string{"notes/a.md": "---\ntitle: A\n---\nBody about queues\n"})
	analyzer := new(MockAnalyzer)
	analyzer.On("SuggestTags", mock.Anything, "Body about queues").Return([]string{"go", "queue"}, nil)

	s := NewTagService(v, analyzer, false, testLogger())
	require.NoError(t, s.ProcessFile(context.Background(), "notes/a.md"))

	doc, err := note.Parse(readNote(t, v, "notes/a.md"))
	require.NoError(t, err)
	tags, ok := doc.Front.Get("tags")
	require.True(t, ok)
	assert.Equal(t, []any{"go", "queue"}, tags)
	assert.Equal(t, "Body about queues\n", doc.Body)
	analyzer.AssertExpectations(t)
}

func TestTagService_Skips(t *testing.T) {
	files := map[string]string{
		"notes/tagged.md": "---\ntags:\n  - old\n---\nBody",
		"notes/empty.md":  "---\ntitle: nothing\n---\n\n",
		"notes/image.png": "binary",
	}

	tests := []struct {
		name string
		path string
	}{
		{"already tagged", "notes/tagged.md"},
		{"empty note", "notes/empty.md"},
		{"not markdown", "notes/image.png"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v := newTestVault(t, files)
			analyzer := new(MockAnalyzer)
			s := NewTagService(v, analyzer, true, testLogger())

			err := s.ProcessFile(context.Background(), tc.path)
			assert.ErrorIs(t, err, batch.ErrSkipped)
			assert.Equal(t, files[tc.path], readNote(t, v, tc.path))
			analyzer.AssertNotCalled(t, "SuggestTags", mock.Anything, mock.Anything)
		})
	}
}

func TestTagService_Retags(t *testing.T) {
	v := newTestVault(t, map[string]string{"notes/tagged.md": "---\ntags:\n  - old\n---\nBody"})
	analyzer := new(MockAnalyzer)
	analyzer.On("SuggestTags", mock.Anything, "Body").Return([]string{"new"}, nil)

	s := NewTagService(v, analyzer, false, testLogger())
	require.NoError(t, s.ProcessFile(context.Background(), "notes/tagged.md"))

	doc, err := note.Parse(readNote(t, v, "notes/tagged.md"))
	require.NoError(t, err)
	tags, _ := doc.Front.Get("tags")
	assert.Equal(t, []any{"new"}, tags)
}

func TestTagService_Errors(t *testing.T) {
	t.Run("missing note", func(t *testing.T) {
		s := NewTagService(newTestVault(t, nil), new(MockAnalyzer), false, testLogger())
		err := s.ProcessFile(context.Background(), "notes/missing.md")
		assert.ErrorIs(t, err, vault.ErrNotFound)
		assert.False(t, errors.Is(err, batch.ErrSkipped))
	})

	t.Run("analyzer failure leaves note unchanged", func(t *testing.T) {
		v := newTestVault(t, map[string]string{"a.md": "Body"})
		analyzer := new(MockAnalyzer)
		analyzer.On("SuggestTags", mock.Anything, "Body").Return(nil, errors.New("boom"))

		s := NewTagService(v, analyzer, false, testLogger())
		err := s.ProcessFile(context.Background(), "a.md")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "tag a.md failed")
		assert.Equal(t, "Body", readNote(t, v, "a.md"))
	})
}
