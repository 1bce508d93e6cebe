package assets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spaghettifunk/lumen/engine/core"
)

func TestResolverResolve(t *testing.T) {
	root := t.TempDir()
	assert.NoError(t, os.MkdirAll(filepath.Join(root, "textures"), 0o755))
	assert.NoError(t, os.WriteFile(filepath.Join(root, "textures", "stone.ktx"), []byte{0}, 0o644))

	r := NewResolver(root)
	assert.Equal(t, root, r.Root())

	path, err := r.Resolve("textures/stone.ktx")
	assert.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "textures", "stone.ktx"), path)
}

func TestResolverMissingAsset(t *testing.T) {
	r := NewResolver(t.TempDir())

	_, err := r.Resolve("textures/missing.ktx")
	assert.ErrorIs(t, err, core.ErrAssetNotFound)
}
