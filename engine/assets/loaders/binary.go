package loaders

import (
	"os"
	"path/filepath"

	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

// BinaryLoader reads a file into an opaque byte buffer.
type BinaryLoader struct{}

func (bl *BinaryLoader) Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return &metadata.Resource{
		Name:     filepath.Base(path),
		FullPath: path,
		DataSize: uint64(len(buf)),
		Data:     buf,
	}, nil
}

func (bl *BinaryLoader) Unload(*metadata.Resource) error {
	return nil
}
