package loaders

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/spaghettifunk/lumen/engine/core"
	lmath "github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

// importGLTF parses a glTF 2.0 document (JSON or binary). Each triangle
// primitive becomes one submesh; other primitive modes are skipped.
func importGLTF(path string, transform metadata.ImportTransform) (*metadata.MeshSource, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, err
	}

	source := &metadata.MeshSource{
		Name: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
	}

	first := true
	for _, mesh := range doc.Meshes {
		for _, primitive := range mesh.Primitives {
			if primitive.Mode != gltf.PrimitiveTriangles {
				core.LogWarn("gltf: skipping non-triangle primitive in mesh %q", mesh.Name)
				continue
			}
			if err := importPrimitive(doc, primitive, transform, source, &first); err != nil {
				return nil, fmt.Errorf("mesh %q: %w", mesh.Name, err)
			}
		}
	}

	return source, nil
}

func importPrimitive(doc *gltf.Document, primitive *gltf.Primitive, transform metadata.ImportTransform, source *metadata.MeshSource, first *bool) error {
	posIndex, ok := primitive.Attributes[gltf.POSITION]
	if !ok {
		return fmt.Errorf("primitive has no %s attribute", gltf.POSITION)
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIndex], nil)
	if err != nil {
		return err
	}

	var normals [][3]float32
	if index, ok := primitive.Attributes[gltf.NORMAL]; ok {
		if normals, err = modeler.ReadNormal(doc, doc.Accessors[index], nil); err != nil {
			return err
		}
	}
	var uvs [][2]float32
	if index, ok := primitive.Attributes[gltf.TEXCOORD_0]; ok {
		if uvs, err = modeler.ReadTextureCoord(doc, doc.Accessors[index], nil); err != nil {
			return err
		}
	}
	var tangents [][4]float32
	if index, ok := primitive.Attributes[gltf.TANGENT]; ok {
		if tangents, err = modeler.ReadTangent(doc, doc.Accessors[index], nil); err != nil {
			return err
		}
	}
	var colors [][4]uint8
	if index, ok := primitive.Attributes[gltf.COLOR_0]; ok {
		if colors, err = modeler.ReadColor(doc, doc.Accessors[index], nil); err != nil {
			return err
		}
	}

	vertexBase := uint32(len(source.Vertices))
	for i := range positions {
		v := metadata.Vertex{
			Position: lmath.Vec3{X: positions[i][0], Y: positions[i][1], Z: positions[i][2]},
		}
		if i < len(normals) {
			v.Normal = lmath.Vec3{X: normals[i][0], Y: normals[i][1], Z: normals[i][2]}
		}
		if i < len(uvs) {
			v.UV = lmath.Vec2{X: uvs[i][0], Y: uvs[i][1]}
		}
		if i < len(colors) {
			v.Color = lmath.Vec3{
				X: float32(colors[i][0]) / 255.0,
				Y: float32(colors[i][1]) / 255.0,
				Z: float32(colors[i][2]) / 255.0,
			}
		}
		if i < len(tangents) {
			v.Tangent = lmath.Vec3{X: tangents[i][0], Y: tangents[i][1], Z: tangents[i][2]}
		}
		v = metadata.ApplyTransform(v, transform)
		if i < len(tangents) {
			// The Y flip mirrors the mesh and inverts tangent-space
			// handedness, so the bitangent comes from the flipped frame.
			v.Bitangent = v.Normal.Cross(v.Tangent).MulScalar(tangents[i][3])
		}
		source.Vertices = append(source.Vertices, v)
		if *first {
			source.Extents.Min = v.Position
			source.Extents.Max = v.Position
			*first = false
		} else {
			source.Extents.Accumulate(v.Position)
		}
	}

	indexBase := uint32(len(source.Indices))
	indexCount := uint32(0)
	if primitive.Indices != nil {
		indices, err := modeler.ReadIndices(doc, doc.Accessors[*primitive.Indices], nil)
		if err != nil {
			return err
		}
		// Anything that does not form whole triangles is dropped. Indices
		// stay relative to the primitive; the draw rebases through VertexBase.
		count := len(indices) - len(indices)%3
		source.Indices = append(source.Indices, indices[:count]...)
		indexCount = uint32(count)
	} else {
		count := len(positions) - len(positions)%3
		for i := 0; i < count; i++ {
			source.Indices = append(source.Indices, uint32(i))
		}
		indexCount = uint32(count)
	}

	source.SubMeshes = append(source.SubMeshes, metadata.SubMesh{
		VertexBase:  vertexBase,
		VertexCount: uint32(len(positions)),
		IndexBase:   indexBase,
		IndexCount:  indexCount,
	})
	return nil
}
