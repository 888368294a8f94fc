package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/smart-extract/internal/batch"
	"github.com/phrazzld/smart-extract/internal/domain"
	"github.com/phrazzld/smart-extract/internal/note"
)

func TestRewriteService_ProcessFile(t *testing.T) {
	original := "---\ntitle: T\n---\nOld body"
	v := newTestVault(t, map[string]string{"notes/a.md": original})

	rw := domain.Rewrite{Content: "New body", Changes: []string{"tightened wording"}}
	analyzer := new(MockAnalyzer)
	analyzer.On("Rewrite", mock.Anything, "Old body").Return(rw, nil)

	s := NewRewriteService(v, analyzer, RewriteOptions{
		TargetFolder: "Rewrites",
		Suffix:       "-rewrite",
		CreateBackup: true,
	}, testLogger())

	assert.Equal(t, "Rewrites/a-rewrite.md", s.RewritePath("notes/a.md"))
	require.NoError(t, s.ProcessFile(context.Background(), "notes/a.md"))

	assert.Equal(t, original, readNote(t, v, "notes/a.md"+BackupExt))
	assert.Equal(t, note.RewriteContent(original, rw, "a"), readNote(t, v, "Rewrites/a-rewrite.md"))
	assert.Equal(t,
		original+"\n\n---\n### Related notes\n- [[a-rewrite|View rewrite]]\n",
		readNote(t, v, "notes/a.md"))

	t.Run("rewriting again does not repeat the link", func(t *testing.T) {
		before := readNote(t, v, "notes/a.md")
		analyzer.On("Rewrite", mock.Anything, mock.Anything).Return(rw, nil)

		require.NoError(t, s.ProcessFile(context.Background(), "notes/a.md"))
		assert.Equal(t, before, readNote(t, v, "notes/a.md"))
	})
}

func TestRewriteService_PlainTextSource(t *testing.T) {
	v := newTestVault(t, map[string]string{"draft.txt": "Draft"})
	analyzer := new(MockAnalyzer)
	analyzer.On("Rewrite", mock.Anything, "Draft").Return(domain.Rewrite{Content: "Better draft"}, nil)

	s := NewRewriteService(v, analyzer, RewriteOptions{TargetFolder: "out", Suffix: "-v2"}, testLogger())
	require.NoError(t, s.ProcessFile(context.Background(), "draft.txt"))

	assert.Equal(t, "Draft", readNote(t, v, "draft.txt"))
	assert.Contains(t, readNote(t, v, "out/draft-v2.md"), "Better draft")
	assert.False(t, v.Exists("draft.txt"+BackupExt))
}

func TestRewriteService_Failures(t *testing.T) {
	t.Run("empty note", func(t *testing.T) {
		v := newTestVault(t, map[string]string{"a.md": "  \n"})
		s := NewRewriteService(v, new(MockAnalyzer), RewriteOptions{TargetFolder: "out", Suffix: "-r"}, testLogger())
		assert.ErrorIs(t, s.ProcessFile(context.Background(), "a.md"), batch.ErrSkipped)
	})

	t.Run("analyzer failure", func(t *testing.T) {
		v := newTestVault(t, map[string]string{"a.md": "Body"})
		analyzer := new(MockAnalyzer)
		boom := errors.New("boom")
		analyzer.On("Rewrite", mock.Anything, "Body").Return(domain.Rewrite{}, boom)

		s := NewRewriteService(v, analyzer, RewriteOptions{TargetFolder: "out", Suffix: "-r"}, testLogger())
		err := s.ProcessFile(context.Background(), "a.md")
		assert.ErrorIs(t, err, boom)
		assert.False(t, v.Exists("out/a-r.md"))
		assert.Equal(t, "Body", readNote(t, v, "a.md"))
	})
}
