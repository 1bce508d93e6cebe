package metadata

/** @brief The types of assets the asset manager knows how to load. */
type ResourceType int

const (
	/** @brief Binary resource type. Raw bytes. */
	ResourceTypeBinary ResourceType = iota
	/** @brief Shader resource type. SPIR-V bytecode. */
	ResourceTypeShader
	/** @brief Image resource type. A parsed texture container. */
	ResourceTypeImage
	/** @brief Mesh resource type. An imported model. */
	ResourceTypeMesh
	/** @brief Bitmap font resource type. */
	ResourceTypeBitmapFont
)

/**
 * @brief A generic resource as returned by a loader. The Data field holds
 * the loader-specific payload (ImageContainer, MeshSource, []uint32, ...).
 */
type Resource struct {
	/** @brief The identifier assigned by the asset manager on load. */
	LoaderID string
	/** @brief The name of the resource. */
	Name string
	/** @brief The full file path of the resource. */
	FullPath string
	/** @brief The size of the resource data in bytes. */
	DataSize uint64
	/** @brief The resource data. */
	Data interface{}
}
