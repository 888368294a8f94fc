package mocks

import (
	"context"
	"errors"
	"testing"

	"github.com/phrazzld/smart-extract/internal/generation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ generation.Generator = (*MockGenerator)(nil)

func TestMockGenerator(t *testing.T) {
	m := NewMockGenerator("标签：#a")
	reply, err := m.Generate(context.Background(), "first")
	require.NoError(t, err)
	assert.Equal(t, "标签：#a", reply)

	boom := errors.New("boom")
	m.GenerateFn = func(ctx context.Context, prompt string) (string, error) {
		return "", boom
	}
	_, err = m.Generate(context.Background(), "second")
	assert.ErrorIs(t, err, boom)

	assert.Equal(t, 2, m.Calls())
	assert.Equal(t, []string{"first", "second"}, m.Prompts())
	assert.Equal(t, "second", m.LastPrompt())
}
