package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lumen.toml")
	content := `
name = "sponza"
start_width = 1920
start_height = 1080
anisotropy = false
`
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	assert.NoError(t, err)
	assert.Equal(t, "sponza", cfg.Name)
	assert.Equal(t, uint32(1920), cfg.StartWidth)
	assert.Equal(t, uint32(1080), cfg.StartHeight)
	assert.False(t, cfg.Anisotropy)

	// Keys the file does not set keep their defaults.
	assert.Equal(t, "assets", cfg.AssetRoot)
	assert.Equal(t, "toktx", cfg.TextureConverter)
	assert.Equal(t, uint32(100), cfg.StartPosX)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	assert.Error(t, err)
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.toml")
	assert.NoError(t, os.WriteFile(path, []byte("name = [unclosed"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
