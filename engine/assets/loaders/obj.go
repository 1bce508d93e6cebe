package loaders

import (
	"path/filepath"
	"strings"

	"github.com/udhos/gwob"

	"github.com/spaghettifunk/lumen/engine/core"
	lmath "github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

// importOBJ parses a Wavefront OBJ file. Each material group becomes one
// submesh over a shared vertex stream.
func importOBJ(path string, transform metadata.ImportTransform) (*metadata.MeshSource, error) {
	options := &gwob.ObjParserOptions{
		LogStats: false,
		Logger:   func(msg string) { core.LogDebug("obj parser: %s", msg) },
	}
	obj, err := gwob.NewObjFromFile(path, options)
	if err != nil {
		return nil, err
	}

	source := &metadata.MeshSource{
		Name: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
	}

	// The parser hands back one interleaved float stream; pull each vertex
	// out through the stride offsets it reports.
	strideFloats := obj.StrideSize / 4
	posOffset := obj.StrideOffsetPosition / 4
	uvOffset := obj.StrideOffsetTexture / 4
	normOffset := obj.StrideOffsetNormal / 4
	vertexCount := len(obj.Coord) / strideFloats

	source.Vertices = make([]metadata.Vertex, vertexCount)
	for i := 0; i < vertexCount; i++ {
		base := i * strideFloats
		v := metadata.Vertex{
			Position: lmath.Vec3{
				X: obj.Coord[base+posOffset],
				Y: obj.Coord[base+posOffset+1],
				Z: obj.Coord[base+posOffset+2],
			},
		}
		if obj.TextCoordFound {
			v.UV = lmath.Vec2{
				X: obj.Coord[base+uvOffset],
				Y: obj.Coord[base+uvOffset+1],
			}
		}
		if obj.NormCoordFound {
			v.Normal = lmath.Vec3{
				X: obj.Coord[base+normOffset],
				Y: obj.Coord[base+normOffset+1],
				Z: obj.Coord[base+normOffset+2],
			}
		}
		source.Vertices[i] = metadata.ApplyTransform(v, transform)
		if i == 0 {
			source.Extents.Min = source.Vertices[i].Position
			source.Extents.Max = source.Vertices[i].Position
		} else {
			source.Extents.Accumulate(source.Vertices[i].Position)
		}
	}

	for _, group := range obj.Groups {
		// The parser triangulates on read; a group whose index count is not
		// a multiple of 3 is silently dropped.
		indexCount := group.IndexCount - group.IndexCount%3
		if indexCount == 0 {
			continue
		}
		indexBase := uint32(len(source.Indices))
		for i := group.IndexBegin; i < group.IndexBegin+indexCount; i++ {
			source.Indices = append(source.Indices, uint32(obj.Indices[i]))
		}
		source.SubMeshes = append(source.SubMeshes, metadata.SubMesh{
			VertexBase:  0,
			VertexCount: uint32(vertexCount),
			IndexBase:   indexBase,
			IndexCount:  uint32(indexCount),
		})
	}

	return source, nil
}
