package loaders

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	lmath "github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

// writeTriangleGLTF emits a one-triangle glTF document with positions,
// normals, tangents and uint16 indices in an embedded buffer.
func writeTriangleGLTF(t *testing.T) string {
	t.Helper()

	buf := bytes.NewBuffer(nil)
	write := func(v interface{}) {
		if err := binary.Write(buf, binary.LittleEndian, v); err != nil {
			t.Fatal(err)
		}
	}
	write([][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}) // positions, 36 bytes
	write([][3]float32{{0, 1, 0}, {0, 1, 0}, {0, 1, 0}}) // normals, 36 bytes
	write([][4]float32{ // tangents with +1 handedness, 48 bytes
		{1, 0, 0, 1}, {1, 0, 0, 1}, {1, 0, 0, 1},
	})
	write([]uint16{0, 1, 2}) // indices, 6 bytes

	doc := fmt.Sprintf(`{
  "asset": {"version": "2.0"},
  "buffers": [{"byteLength": %d, "uri": "data:application/octet-stream;base64,%s"}],
  "bufferViews": [
    {"buffer": 0, "byteOffset": 0, "byteLength": 36},
    {"buffer": 0, "byteOffset": 36, "byteLength": 36},
    {"buffer": 0, "byteOffset": 72, "byteLength": 48},
    {"buffer": 0, "byteOffset": 120, "byteLength": 6}
  ],
  "accessors": [
    {"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3", "min": [0, 0, 0], "max": [1, 1, 0]},
    {"bufferView": 1, "componentType": 5126, "count": 3, "type": "VEC3"},
    {"bufferView": 2, "componentType": 5126, "count": 3, "type": "VEC4"},
    {"bufferView": 3, "componentType": 5123, "count": 3, "type": "SCALAR"}
  ],
  "meshes": [{"name": "tri", "primitives": [
    {"attributes": {"POSITION": 0, "NORMAL": 1, "TANGENT": 2}, "indices": 3}
  ]}]
}`, buf.Len(), base64.StdEncoding.EncodeToString(buf.Bytes()))

	path := filepath.Join(t.TempDir(), "triangle.gltf")
	assert.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	return path
}

func TestImportGLTFTriangle(t *testing.T) {
	source, err := importGLTF(writeTriangleGLTF(t), metadata.DefaultImportTransform())
	assert.NoError(t, err)

	assert.Equal(t, "triangle", source.Name)
	assert.Len(t, source.Vertices, 3)
	assert.Equal(t, []uint32{0, 1, 2}, source.Indices)
	assert.Len(t, source.SubMeshes, 1)
	assert.Equal(t, uint32(0), source.SubMeshes[0].VertexBase)
	assert.Equal(t, uint32(3), source.SubMeshes[0].IndexCount)

	// Positions and normals come out Y-flipped.
	assert.Equal(t, lmath.Vec3{X: 0, Y: -1, Z: 0}, source.Vertices[2].Position)
	assert.Equal(t, lmath.Vec3{X: 0, Y: -1, Z: 0}, source.Vertices[0].Normal)
	assert.Equal(t, lmath.Vec3{X: 1, Y: 0, Z: 0}, source.Vertices[0].Tangent)
}

func TestImportGLTFBitangentHandedness(t *testing.T) {
	source, err := importGLTF(writeTriangleGLTF(t), metadata.DefaultImportTransform())
	assert.NoError(t, err)

	// The mirror flip inverts handedness: with the flipped normal (0,-1,0)
	// and tangent (1,0,0), cross(N,T)*w is (0,0,1), not the pre-flip
	// (0,0,-1).
	for _, v := range source.Vertices {
		assert.Equal(t, lmath.Vec3{X: 0, Y: 0, Z: 1}, v.Bitangent)
	}
}
