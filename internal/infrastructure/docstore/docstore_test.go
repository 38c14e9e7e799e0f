package docstore

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryRegisterAndResolve(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "registry.json")
	reg := NewRegistry(path)

	names, err := reg.Resolve(ctx, "mortgage")
	require.NoError(t, err)
	assert.Empty(t, names)

	require.NoError(t, reg.Register(ctx, "mortgage", "abc_guide.pdf"))
	require.NoError(t, reg.Register(ctx, "mortgage", "def_rates.txt"))
	require.NoError(t, reg.Register(ctx, "valuation", "ghi_notes.md"))

	names, err = reg.Resolve(ctx, "mortgage")
	require.NoError(t, err)
	assert.Equal(t, []string{"abc_guide.pdf", "def_rates.txt"}, names)

	names, err = reg.Resolve(ctx, "valuation")
	require.NoError(t, err)
	assert.Equal(t, []string{"ghi_notes.md"}, names)
}

func TestRegistryRegisterIdempotent(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(filepath.Join(t.TempDir(), "registry.json"))

	require.NoError(t, reg.Register(ctx, "mortgage", "abc_guide.pdf"))
	require.NoError(t, reg.Register(ctx, "mortgage", "abc_guide.pdf"))

	names, err := reg.Resolve(ctx, "mortgage")
	require.NoError(t, err)
	assert.Equal(t, []string{"abc_guide.pdf"}, names)
}

func TestRegistrySurvivesReload(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "registry.json")

	reg := NewRegistry(path)
	require.NoError(t, reg.Register(ctx, "mortgage", "abc_guide.pdf"))

	reloaded := NewRegistry(path)
	names, err := reloaded.Resolve(ctx, "mortgage")
	require.NoError(t, err)
	assert.Equal(t, []string{"abc_guide.pdf"}, names)
}

func TestRegistryRejectsCorruptFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "registry.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	reg := NewRegistry(path)
	_, err := reg.Resolve(ctx, "mortgage")
	assert.Error(t, err)
}

func TestStoreSaveAndRead(t *testing.T) {
	ctx := context.Background()
	store := NewStore(t.TempDir())

	stored, err := store.Save(ctx, "mortgage", "guide.pdf", strings.NewReader("loan terms"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(stored, "_guide.pdf"))
	assert.True(t, store.Exists(ctx, "mortgage", stored))

	content, err := store.Read(ctx, "mortgage", stored)
	require.NoError(t, err)
	assert.Equal(t, "loan terms", content)
}

func TestStoreExistsMissing(t *testing.T) {
	ctx := context.Background()
	store := NewStore(t.TempDir())

	assert.False(t, store.Exists(ctx, "mortgage", "nothing.pdf"))
}

func TestStoreSanitizesPathComponents(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store := NewStore(root)

	stored, err := store.Save(ctx, "../escape", "../../etc/passwd", strings.NewReader("x"))
	require.NoError(t, err)

	assert.NotContains(t, stored, "..")
	assert.True(t, store.Exists(ctx, "../escape", stored))

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "escape", entries[0].Name())
}

func TestStorePath(t *testing.T) {
	store := NewStore("data/uploads")
	assert.Equal(t, filepath.Join("mortgage", "abc_guide.pdf"), store.Path("mortgage", "abc_guide.pdf"))
}
