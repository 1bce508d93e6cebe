package core

import (
	"errors"
)

var (
	// ErrAssetNotFound is returned when a requested asset path does not
	// resolve to a file under the configured asset root.
	ErrAssetNotFound = errors.New("asset not found")
	// ErrUnsupportedFormat is returned when a loader is handed a file whose
	// container or pixel format it cannot parse. There is no fallback
	// negotiation; callers abort the load.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrUnknown covers conditions the layer cannot classify.
	ErrUnknown = errors.New("unknown")
)
