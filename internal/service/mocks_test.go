package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/smart-extract/internal/domain"
	"github.com/phrazzld/smart-extract/internal/vault"
)

// MockAnalyzer is a mock implementation of Analyzer
type MockAnalyzer struct {
	mock.Mock
}

func (m *MockAnalyzer) Analyze(ctx context.Context, text string) (domain.Analysis, error) {
	args := m.Called(ctx, text)
	a, _ := args.Get(0).(domain.Analysis)
	return a, args.Error(1)
}

func (m *MockAnalyzer) SuggestTags(ctx context.Context, text string) ([]string, error) {
	args := m.Called(ctx, text)
	tags, _ := args.Get(0).([]string)
	return tags, args.Error(1)
}

func (m *MockAnalyzer) GenerateMetadata(
	ctx context.Context,
	text string,
	fields []domain.MetadataField,
) (map[string]any, error) {
	args := m.Called(ctx, text, fields)
	values, _ := args.Get(0).(map[string]any)
	return values, args.Error(1)
}

func (m *MockAnalyzer) Rewrite(ctx context.Context, text string) (domain.Rewrite, error) {
	args := m.Called(ctx, text)
	rw, _ := args.Get(0).(domain.Rewrite)
	return rw, args.Error(1)
}

func (m *MockAnalyzer) SummarizeNotes(ctx context.Context, notes []domain.NoteExcerpt) (domain.Analysis, error) {
	args := m.Called(ctx, notes)
	a, _ := args.Get(0).(domain.Analysis)
	return a, args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestVault returns an in-memory vault holding files.
func newTestVault(t *testing.T, files map[string]string) *vault.Vault {
	t.Helper()

	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/vault", 0o755))
	v, err := vault.New(fs, "/vault")
	require.NoError(t, err)

	for p, content := range files {
		require.NoError(t, v.Write(p, content))
	}
	return v
}

func readNote(t *testing.T, v *vault.Vault, rel string) string {
	t.Helper()
	content, err := v.Read(rel)
	require.NoError(t, err)
	return content
}
