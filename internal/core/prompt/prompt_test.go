package prompt

import (
	"os"
	"path/filepath"
	"testing"

	"deep-research/internal/core/chunking"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_EmbeddedDefault(t *testing.T) {
	s, err := NewStore("")
	require.NoError(t, err)
	assert.Equal(t, []string{DefaultVersion}, s.Versions())

	msgs, err := s.Render(DefaultVersion, Params{
		Question:     "What drives adoption?",
		ChunkContent: "Adoption grew 40% in 2023.",
		ChunkNumber:  1,
		TotalChunks:  3,
		MaxTokens:    500,
		IsFirst:      true,
	})
	require.NoError(t, err)
	assert.Contains(t, msgs.System, "What drives adoption?")
	assert.Contains(t, msgs.System, "Adoption grew 40% in 2023.")
	assert.Contains(t, msgs.System, "first excerpt")
	assert.NotContains(t, msgs.System, "last excerpt")
	assert.Contains(t, msgs.System, "500 tokens")
	assert.Contains(t, msgs.User, "chunk 1 of 3")
}

func TestStore_DiscoversVersions(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "system_prompt.md"), []byte("custom default {{.Question}}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "system_prompt_v2.md"), []byte("v2 {{.ChunkContent}}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("ignored"), 0o644))

	s, err := NewStore(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"default", "v2"}, s.Versions())

	msgs, err := s.Render("default", Params{Question: "q"})
	require.NoError(t, err)
	assert.Equal(t, "custom default q", msgs.System)

	msgs, err = s.Render("v2", Params{ChunkContent: "body"})
	require.NoError(t, err)
	assert.Equal(t, "v2 body", msgs.System)
}

func TestStore_ReloadPicksUpNewFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir)
	require.NoError(t, err)
	assert.False(t, s.Has("v3"))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "system_prompt_v3.md"), []byte("v3"), 0o644))
	require.NoError(t, s.Reload())
	assert.True(t, s.Has("v3"))
}

func TestStore_Errors(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "system_prompt_bad.md"), []byte("{{.Missing}}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "system_prompt_broken.md"), []byte("{{.Question"), 0o644))
	s, err := NewStore(dir)
	require.NoError(t, err)

	_, err = s.Render("nope", Params{})
	require.ErrorIs(t, err, ErrTemplateNotFound)

	_, err = s.Render("bad", Params{})
	require.ErrorIs(t, err, ErrTemplateRender)

	_, err = s.Render("broken", Params{})
	require.ErrorIs(t, err, ErrTemplateRender)
}

func TestRenderer_PositionFraming(t *testing.T) {
	s, err := NewStore("")
	require.NoError(t, err)
	r, err := NewRenderer(s, DefaultVersion, 500)
	require.NoError(t, err)

	first, err := r.Render("q", chunking.Chunk{Index: 0, Total: 3, Text: "a"})
	require.NoError(t, err)
	middle, err := r.Render("q", chunking.Chunk{Index: 1, Total: 3, Text: "b"})
	require.NoError(t, err)
	last, err := r.Render("q", chunking.Chunk{Index: 2, Total: 3, Text: "c"})
	require.NoError(t, err)

	assert.Contains(t, first.System, "first excerpt")
	assert.Contains(t, middle.System, "middle excerpt")
	assert.Contains(t, last.System, "last excerpt")
	assert.Contains(t, last.User, "chunk 3 of 3")

	_, err = NewRenderer(s, "missing", 500)
	require.ErrorIs(t, err, ErrTemplateNotFound)
}
