package metadata

/**
 * @brief A semantic vertex component. The order in which components are
 * listed in a VertexLayout is the order they are interleaved in the vertex
 * buffer and the location they are bound to in the shader.
 */
type VertexComponent int

const (
	VertexComponentPosition VertexComponent = iota
	VertexComponentNormal
	VertexComponentColor
	VertexComponentUV
	VertexComponentTangent
	VertexComponentBitangent
	/** @brief A single float of padding. */
	VertexComponentDummyFloat
	/** @brief Four floats of padding. */
	VertexComponentDummyVec4
)

/** @brief The scalar format of a single vertex attribute. */
type AttributeFormat int

const (
	AttributeFormatFloat AttributeFormat = iota
	AttributeFormatVec2
	AttributeFormatVec3
	AttributeFormatVec4
)

/**
 * @brief Describes one attribute of a vertex layout: its shader location,
 * scalar format and byte offset within the stride.
 */
type VertexAttribute struct {
	Location uint32
	Format   AttributeFormat
	Offset   uint32
}

/**
 * @brief An ordered list of vertex components shared between the mesh
 * importer (producer) and the pipeline (consumer). Immutable once built.
 */
type VertexLayout struct {
	components []VertexComponent
}

func NewVertexLayout(components ...VertexComponent) *VertexLayout {
	return &VertexLayout{components: components}
}

// Components returns the component list in declaration order.
func (vl *VertexLayout) Components() []VertexComponent {
	return vl.components
}

// ComponentSize returns the byte size of a single component.
func ComponentSize(component VertexComponent) uint32 {
	switch component {
	case VertexComponentUV:
		return 2 * 4
	case VertexComponentDummyFloat:
		return 1 * 4
	case VertexComponentDummyVec4:
		return 4 * 4
	default:
		// Position, normal, color, tangent, bitangent.
		return 3 * 4
	}
}

// ComponentFormat returns the attribute format of a single component.
func ComponentFormat(component VertexComponent) AttributeFormat {
	switch component {
	case VertexComponentUV:
		return AttributeFormatVec2
	case VertexComponentDummyFloat:
		return AttributeFormatFloat
	case VertexComponentDummyVec4:
		return AttributeFormatVec4
	default:
		return AttributeFormatVec3
	}
}

// Stride returns the byte size of one interleaved vertex.
func (vl *VertexLayout) Stride() uint32 {
	stride := uint32(0)
	for _, c := range vl.components {
		stride += ComponentSize(c)
	}
	return stride
}

// Offset returns the byte offset of component index within the stride.
func (vl *VertexLayout) Offset(index int) uint32 {
	offset := uint32(0)
	for i := 0; i < index; i++ {
		offset += ComponentSize(vl.components[i])
	}
	return offset
}

// Attributes emits one attribute description per component, location equal
// to the component index.
func (vl *VertexLayout) Attributes() []VertexAttribute {
	attributes := make([]VertexAttribute, len(vl.components))
	for i, c := range vl.components {
		attributes[i] = VertexAttribute{
			Location: uint32(i),
			Format:   ComponentFormat(c),
			Offset:   vl.Offset(i),
		}
	}
	return attributes
}
