package metadata

/**
 * @brief Represents various kinds of textures. A single Texture struct
 * tagged with a kind replaces per-kind subtypes.
 */
type TextureKind int

const (
	/** @brief A standard two-dimensional texture. */
	TextureKind2D TextureKind = iota
	/** @brief A two-dimensional array texture. */
	TextureKind2DArray
	/** @brief A cube texture, used for cubemaps. */
	TextureKindCube
)

func (tk TextureKind) String() string {
	switch tk {
	case TextureKind2D:
		return "2d"
	case TextureKind2DArray:
		return "2d_array"
	case TextureKindCube:
		return "cube"
	}
	return "unknown"
}

// KindOf derives the texture kind from a parsed container.
func KindOf(container *ImageContainer) TextureKind {
	switch {
	case container.IsCube:
		return TextureKindCube
	case container.LayerCount > 1:
		return TextureKind2DArray
	default:
		return TextureKind2D
	}
}

/**
 * @brief Represents a texture as seen by the rest of the engine. The
 * renderer-specific handles (image, view, sampler) live in InternalData.
 */
type Texture struct {
	/** @brief The name of the texture. */
	Name string
	/** @brief The texture kind. */
	Kind TextureKind
	/** @brief The texture width. */
	Width uint32
	/** @brief The texture height. */
	Height uint32
	/** @brief The number of mip levels. */
	MipLevels uint32
	/** @brief The number of array layers (cube faces included). */
	LayerCount uint32
	/** @brief The pixel format of the texture. */
	Format PixelFormat
	/** @brief The renderer-specific data, owned by the renderer. */
	InternalData interface{}
}
