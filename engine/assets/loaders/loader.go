package loaders

import "github.com/spaghettifunk/lumen/engine/renderer/metadata"

// Loader parses one asset family from disk into a Resource. `interface{}`
// params allow loaders to accept format-specific options.
type Loader interface {
	Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error)
	Unload(*metadata.Resource) error
}
