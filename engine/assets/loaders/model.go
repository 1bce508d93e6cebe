package loaders

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

/**
 * @brief Imports 3D models into a MeshSource. Wavefront OBJ and glTF 2.0
 * are supported; the per-format parsers are external libraries treated as
 * black boxes producing in-memory vertex streams.
 */
type MeshLoader struct{}

func (ml *MeshLoader) Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	transform := metadata.DefaultImportTransform()
	if t, ok := params.(*metadata.ImportTransform); ok && t != nil {
		transform = *t
	}

	var (
		source *metadata.MeshSource
		err    error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj":
		source, err = importOBJ(path, transform)
	case ".gltf", ".glb":
		source, err = importGLTF(path, transform)
	default:
		return nil, fmt.Errorf("%w: unrecognized model extension %s", core.ErrUnsupportedFormat, filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to import model %s: %w (did you download the asset pack?)", path, err)
	}
	if len(source.SubMeshes) == 0 || len(source.Vertices) == 0 {
		return nil, fmt.Errorf("model %s contains no meshes", path)
	}

	info, statErr := os.Stat(path)
	size := uint64(0)
	if statErr == nil {
		size = uint64(info.Size())
	}

	return &metadata.Resource{
		Name:     source.Name,
		FullPath: path,
		DataSize: size,
		Data:     source,
	}, nil
}

func (ml *MeshLoader) Unload(*metadata.Resource) error {
	return nil
}
