package assets

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spaghettifunk/lumen/engine/core"
)

/**
 * @brief Resolves relative asset names against a configured root. An
 * explicit value initialized once by the application and passed into every
 * loader call; nothing here is global.
 */
type Resolver struct {
	root string
}

func NewResolver(root string) *Resolver {
	return &Resolver{root: root}
}

// Root returns the asset root directory.
func (r *Resolver) Root() string {
	return r.root
}

// Resolve maps a relative asset name to an absolute path, failing if the
// file does not exist.
func (r *Resolver) Resolve(name string) (string, error) {
	path := filepath.Join(r.root, name)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s (did you download the asset pack?)", core.ErrAssetNotFound, path)
		}
		return "", err
	}
	return path, nil
}
