package metadata

import (
	"github.com/spaghettifunk/lumen/engine/math"
)

/**
 * @brief A fully-attributed vertex as produced by the mesh importers.
 * Interleave picks out of this whatever the caller's layout asks for.
 */
type Vertex struct {
	Position  math.Vec3
	Normal    math.Vec3
	Color     math.Vec3
	UV        math.Vec2
	Tangent   math.Vec3
	Bitangent math.Vec3
}

/**
 * @brief A contiguous range of an imported model's vertex/index streams
 * belonging to one source mesh.
 */
type SubMesh struct {
	VertexBase  uint32
	VertexCount uint32
	IndexBase   uint32
	IndexCount  uint32
}

/**
 * @brief The transform applied to every vertex during import.
 */
type ImportTransform struct {
	/** @brief Uniform scale applied to positions. */
	Scale float32
	/** @brief Scale applied to texture coordinates. */
	UVScale math.Vec2
	/** @brief Offset added to positions after scaling. */
	Center math.Vec3
}

// DefaultImportTransform returns the identity import transform.
func DefaultImportTransform() ImportTransform {
	return ImportTransform{
		Scale:   1.0,
		UVScale: math.Vec2{X: 1, Y: 1},
	}
}

/**
 * @brief An imported model: vertex and index streams plus the per-submesh
 * ranges and the accumulated bounding box. This is what the importers hand
 * to the renderer for upload.
 */
type MeshSource struct {
	Name      string
	Vertices  []Vertex
	Indices   []uint32
	SubMeshes []SubMesh
	Extents   math.Extents3D
}

// ApplyTransform converts a raw importer-space vertex into engine space:
// the Y axis of position, normal, tangent and bitangent is flipped to move
// from the importer's Y-up convention, positions get scale and center, and
// texture coordinates get the UV scale.
func ApplyTransform(v Vertex, t ImportTransform) Vertex {
	v.Position = math.Vec3{
		X: v.Position.X * t.Scale,
		Y: -v.Position.Y * t.Scale,
		Z: v.Position.Z * t.Scale,
	}.Add(t.Center)
	v.Normal = math.Vec3{X: v.Normal.X, Y: -v.Normal.Y, Z: v.Normal.Z}
	v.Tangent = math.Vec3{X: v.Tangent.X, Y: -v.Tangent.Y, Z: v.Tangent.Z}
	v.Bitangent = math.Vec3{X: v.Bitangent.X, Y: -v.Bitangent.Y, Z: v.Bitangent.Z}
	v.UV = v.UV.Mul(t.UVScale)
	return v
}

// Interleave emits the vertex stream as floats in the order the layout
// declares, exactly one group of ComponentSize/4 floats per component.
// Channels the source did not provide are already zero in Vertex.
func Interleave(layout *VertexLayout, vertices []Vertex) []float32 {
	strideFloats := layout.Stride() / 4
	out := make([]float32, 0, uint32(len(vertices))*strideFloats)
	for _, v := range vertices {
		for _, c := range layout.Components() {
			switch c {
			case VertexComponentPosition:
				out = append(out, v.Position.X, v.Position.Y, v.Position.Z)
			case VertexComponentNormal:
				out = append(out, v.Normal.X, v.Normal.Y, v.Normal.Z)
			case VertexComponentColor:
				out = append(out, v.Color.X, v.Color.Y, v.Color.Z)
			case VertexComponentUV:
				out = append(out, v.UV.X, v.UV.Y)
			case VertexComponentTangent:
				out = append(out, v.Tangent.X, v.Tangent.Y, v.Tangent.Z)
			case VertexComponentBitangent:
				out = append(out, v.Bitangent.X, v.Bitangent.Y, v.Bitangent.Z)
			case VertexComponentDummyFloat:
				out = append(out, 0)
			case VertexComponentDummyVec4:
				out = append(out, 0, 0, 0, 0)
			}
		}
	}
	return out
}
