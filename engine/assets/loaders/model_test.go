package loaders

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

// A single triangle with positions, texture coordinates and normals.
const triangleOBJ = `
v 0.0 0.0 0.0
v 1.0 0.0 0.0
v 0.0 1.0 0.0
vt 0.0 0.0
vt 1.0 0.0
vt 0.0 1.0
vn 0.0 0.0 1.0
f 1/1/1 2/2/1 3/3/1
`

func writeOBJ(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestMeshLoaderOBJ(t *testing.T) {
	ml := &MeshLoader{}
	path := writeOBJ(t, "triangle.obj", triangleOBJ)

	resource, err := ml.Load(path, metadata.ResourceTypeMesh, nil)
	assert.NoError(t, err)

	source, ok := resource.Data.(*metadata.MeshSource)
	assert.True(t, ok)
	assert.Equal(t, "triangle", source.Name)
	assert.Len(t, source.Vertices, 3)
	assert.Len(t, source.Indices, 3)
	assert.Len(t, source.SubMeshes, 1)
	assert.Equal(t, uint32(3), source.SubMeshes[0].IndexCount)
	assert.Equal(t, uint32(0), source.SubMeshes[0].IndexBase)
}

func TestMeshLoaderAppliesImportTransform(t *testing.T) {
	ml := &MeshLoader{}
	path := writeOBJ(t, "triangle.obj", triangleOBJ)

	transform := metadata.DefaultImportTransform()
	transform.Scale = 2
	resource, err := ml.Load(path, metadata.ResourceTypeMesh, &transform)
	assert.NoError(t, err)

	source := resource.Data.(*metadata.MeshSource)
	// v 0 1 0 with the Y flip and scale 2 lands at (0, -2, 0).
	found := false
	for _, v := range source.Vertices {
		if v.Position.Y == -2 {
			found = true
		}
		assert.LessOrEqual(t, v.Position.Y, float32(0))
	}
	assert.True(t, found)
	assert.Equal(t, float32(-2), source.Extents.Min.Y)
}

func TestMeshLoaderUnknownExtension(t *testing.T) {
	ml := &MeshLoader{}
	_, err := ml.Load("model.fbx", metadata.ResourceTypeMesh, nil)
	assert.ErrorIs(t, err, core.ErrUnsupportedFormat)
}

func TestMeshLoaderEmptyModel(t *testing.T) {
	ml := &MeshLoader{}
	path := writeOBJ(t, "empty.obj", "# nothing here\n")
	_, err := ml.Load(path, metadata.ResourceTypeMesh, nil)
	assert.Error(t, err)
}
