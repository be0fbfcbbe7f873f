package app

import (
	"context"
	"path/filepath"
	"testing"

	"deep-research/config"
	"deep-research/internal/core/chunking"
	"deep-research/internal/core/prompt"
	"deep-research/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Default()
	dir := t.TempDir()
	cfg.Storage.ReportsDir = filepath.Join(dir, "reports")
	cfg.Storage.UploadDir = filepath.Join(dir, "uploads")
	cfg.Prompt.Dir = filepath.Join(dir, "prompts")
	cfg.LLM.Key = "sk-test"
	return cfg
}

func TestNew_LocalBackend(t *testing.T) {
	a, err := New(context.Background(), testConfig(t))
	require.NoError(t, err)

	assert.Equal(t, 2000, a.Budget.MaxChunkChars())
	assert.Equal(t, 200, a.Budget.OverlapChars())
	assert.IsType(t, &store.FileStore{}, a.Store)
	assert.Equal(t, []string{prompt.DefaultVersion}, a.Prompts.Versions())
	assert.NotNil(t, a.Service)
	assert.NotNil(t, a.Health)

	list, err := a.Service.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestNew_ConfigErrors(t *testing.T) {
	cfg := testConfig(t)
	cfg.Chunking.Strategy = "sentences"
	_, err := New(context.Background(), cfg)
	assert.ErrorIs(t, err, chunking.ErrUnknownStrategy)

	cfg = testConfig(t)
	cfg.Prompt.Version = "v9"
	_, err = New(context.Background(), cfg)
	assert.ErrorIs(t, err, prompt.ErrTemplateNotFound)

	cfg = testConfig(t)
	cfg.LLM.ContextLength = 0
	_, err = New(context.Background(), cfg)
	assert.ErrorIs(t, err, chunking.ErrInvalidBudget)

	cfg = testConfig(t)
	cfg.Storage.Backend = "ftp"
	_, err = New(context.Background(), cfg)
	assert.Error(t, err)
}
