package loaders

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

func TestShaderLoaderDecodesWords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "builtin.vert.spv")
	// SPIR-V magic followed by one extra word, little endian.
	assert.NoError(t, os.WriteFile(path, []byte{
		0x03, 0x02, 0x23, 0x07,
		0x78, 0x56, 0x34, 0x12,
	}, 0o644))

	sl := &ShaderLoader{}
	resource, err := sl.Load(path, metadata.ResourceTypeShader, nil)
	assert.NoError(t, err)
	assert.Equal(t, "builtin.vert.spv", resource.Name)
	assert.Equal(t, uint64(8), resource.DataSize)

	words, ok := resource.Data.([]uint32)
	assert.True(t, ok)
	assert.Equal(t, []uint32{0x07230203, 0x12345678}, words)
}

func TestShaderLoaderRejectsOddSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.spv")
	assert.NoError(t, os.WriteFile(path, []byte{1, 2, 3}, 0o644))

	sl := &ShaderLoader{}
	_, err := sl.Load(path, metadata.ResourceTypeShader, nil)
	assert.Error(t, err)
}

func TestShaderLoaderMissingFile(t *testing.T) {
	sl := &ShaderLoader{}
	_, err := sl.Load(filepath.Join(t.TempDir(), "missing.spv"), metadata.ResourceTypeShader, nil)
	assert.Error(t, err)
}
