package assets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

func newTestManager(t *testing.T) (*AssetManager, string) {
	t.Helper()
	root := t.TempDir()
	am, err := NewAssetManager(NewResolver(root))
	assert.NoError(t, err)
	assert.NoError(t, am.Initialize("toktx"))
	t.Cleanup(am.Shutdown)
	return am, root
}

func TestAssetManagerLoadShader(t *testing.T) {
	am, root := newTestManager(t)
	assert.NoError(t, os.MkdirAll(filepath.Join(root, "shaders"), 0o755))
	assert.NoError(t, os.WriteFile(filepath.Join(root, "shaders", "builtin.vert.spv"), []byte{
		0x03, 0x02, 0x23, 0x07,
	}, 0o644))

	resource, err := am.LoadAsset("shaders/builtin.vert.spv", metadata.ResourceTypeShader, nil)
	assert.NoError(t, err)
	assert.NotEmpty(t, resource.LoaderID)
	assert.Equal(t, []uint32{0x07230203}, resource.Data)

	// Every load gets its own identifier.
	again, err := am.LoadAsset("shaders/builtin.vert.spv", metadata.ResourceTypeShader, nil)
	assert.NoError(t, err)
	assert.NotEqual(t, resource.LoaderID, again.LoaderID)
}

func TestAssetManagerMissingAsset(t *testing.T) {
	am, _ := newTestManager(t)
	_, err := am.LoadAsset("textures/missing.ktx", metadata.ResourceTypeImage, nil)
	assert.ErrorIs(t, err, core.ErrAssetNotFound)
}

func TestAssetManagerUnregisteredLoader(t *testing.T) {
	root := t.TempDir()
	am, err := NewAssetManager(NewResolver(root))
	assert.NoError(t, err)
	t.Cleanup(am.Shutdown)
	assert.NoError(t, os.WriteFile(filepath.Join(root, "blob.bin"), []byte{1}, 0o644))

	// No Initialize, so no loaders are registered.
	_, err = am.LoadAsset("blob.bin", metadata.ResourceTypeBinary, nil)
	assert.Error(t, err)
}

func TestAddRecursiveAfterShutdown(t *testing.T) {
	root := t.TempDir()
	am, err := NewAssetManager(NewResolver(root))
	assert.NoError(t, err)

	am.Shutdown()
	assert.Error(t, am.addRecursive(root))
}

func TestShutdownConcurrentWithWatch(t *testing.T) {
	root := t.TempDir()
	am, err := NewAssetManager(NewResolver(root))
	assert.NoError(t, err)

	// The closed flag is read under the lock, so racing a watch against
	// shutdown must be safe.
	done := make(chan struct{})
	go func() {
		am.addRecursive(root)
		close(done)
	}()
	am.Shutdown()
	<-done
}

func TestDetermineAssetType(t *testing.T) {
	assert.Equal(t, metadata.ResourceTypeShader, determineAssetType("a/b.spv"))
	assert.Equal(t, metadata.ResourceTypeImage, determineAssetType("skybox.KTX"))
	assert.Equal(t, metadata.ResourceTypeImage, determineAssetType("albedo.dds"))
	assert.Equal(t, metadata.ResourceTypeMesh, determineAssetType("scene.gltf"))
	assert.Equal(t, metadata.ResourceTypeBitmapFont, determineAssetType("ui.fnt"))
	assert.Equal(t, metadata.ResourceTypeBinary, determineAssetType("unknown.dat"))
}
