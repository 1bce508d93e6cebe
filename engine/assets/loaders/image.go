package loaders

import (
	"fmt"
	"image"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	// Register the decoders used to validate images handed to the offline
	// converter.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

/**
 * @brief Loads texture containers. KTX and DDS parse directly; plain image
 * formats (PNG, JPEG, BMP, TIFF) are not uploaded as-is but converted to
 * KTX by an external offline tool first.
 */
type ImageLoader struct {
	// The converter executable, e.g. "toktx".
	Converter string
}

func NewImageLoader(converter string) *ImageLoader {
	return &ImageLoader{Converter: converter}
}

func (il *ImageLoader) Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	var (
		container *metadata.ImageContainer
		err       error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".ktx":
		container, err = il.parseKTXFile(path)
	case ".dds":
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil, readErr
		}
		container, err = ParseDDS(data)
	case ".png", ".jpg", ".jpeg", ".bmp", ".tiff":
		container, err = il.convertAndLoad(path)
	default:
		return nil, fmt.Errorf("%w: unrecognized texture extension %s", core.ErrUnsupportedFormat, filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load texture %s: %w", path, err)
	}

	return &metadata.Resource{
		Name:     strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		FullPath: path,
		DataSize: uint64(len(container.Data)),
		Data:     container,
	}, nil
}

func (il *ImageLoader) Unload(*metadata.Resource) error {
	return nil
}

func (il *ImageLoader) parseKTXFile(path string) (*metadata.ImageContainer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseKTX(data)
}

// convertAndLoad shells out to the offline texture converter to produce a
// KTX in a temp dir, then parses that. Direct GPU upload of plain image
// formats is out of scope.
func (il *ImageLoader) convertAndLoad(path string) (*metadata.ImageContainer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	cfg, format, err := image.DecodeConfig(f)
	f.Close()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrUnsupportedFormat, err)
	}
	core.LogDebug("converting %s image %s (%dx%d) to KTX via %s", format, path, cfg.Width, cfg.Height, il.Converter)

	tmpDir, err := os.MkdirTemp("", "lumen-toktx-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tmpDir)

	out := filepath.Join(tmpDir, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))+".ktx")
	cmd := exec.Command(il.Converter, "--genmipmap", out, path)
	if output, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("texture converter %s failed: %v: %s", il.Converter, err, output)
	}

	return il.parseKTXFile(out)
}
