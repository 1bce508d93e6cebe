package loaders

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fzipp/bmfont"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

/**
 * @brief Loads AngelCode .fnt bitmap font descriptors. The atlas page
 * images referenced by the descriptor are loaded separately through the
 * image loader.
 */
type BitmapFontLoader struct{}

func (fl *BitmapFontLoader) Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	if strings.ToLower(filepath.Ext(path)) != ".fnt" {
		return nil, fmt.Errorf("%w: unrecognized font extension %s", core.ErrUnsupportedFormat, filepath.Ext(path))
	}

	descriptor, err := bmfont.LoadDescriptor(path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bitmap font %s: %w", path, err)
	}

	data := &metadata.FontData{
		Face:       descriptor.Info.Face,
		Size:       uint32(descriptor.Info.Size),
		LineHeight: int32(descriptor.Common.LineHeight),
		Baseline:   int32(descriptor.Common.Base),
		AtlasSizeX: int32(descriptor.Common.ScaleW),
		AtlasSizeY: int32(descriptor.Common.ScaleH),
		Glyphs:     make([]metadata.FontGlyph, 0, len(descriptor.Chars)),
		Kernings:   make([]metadata.FontKerning, 0, len(descriptor.Kerning)),
		Pages:      make([]metadata.BitmapFontPage, 0, len(descriptor.Pages)),
	}

	for _, p := range descriptor.Pages {
		data.Pages = append(data.Pages, metadata.BitmapFontPage{
			ID:   int8(p.ID),
			File: p.File,
		})
	}
	for _, g := range descriptor.Chars {
		data.Glyphs = append(data.Glyphs, metadata.FontGlyph{
			Codepoint: g.ID,
			X:         uint16(g.X),
			Y:         uint16(g.Y),
			Width:     uint16(g.Width),
			Height:    uint16(g.Height),
			XOffset:   int16(g.XOffset),
			YOffset:   int16(g.YOffset),
			XAdvance:  int16(g.XAdvance),
			PageID:    uint8(g.Page),
		})
	}
	for pair, k := range descriptor.Kerning {
		data.Kernings = append(data.Kernings, metadata.FontKerning{
			Codepoint0: pair.First,
			Codepoint1: pair.Second,
			Amount:     int16(k.Amount),
		})
	}

	return &metadata.Resource{
		Name:     strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		FullPath: path,
		DataSize: uint64(len(data.Glyphs)),
		Data:     data,
	}, nil
}

func (fl *BitmapFontLoader) Unload(resource *metadata.Resource) error {
	if resource != nil {
		resource.Data = nil
		resource.DataSize = 0
	}
	return nil
}
