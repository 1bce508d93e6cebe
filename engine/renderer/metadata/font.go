package metadata

/**
 * @brief A single glyph of a bitmap font atlas.
 */
type FontGlyph struct {
	Codepoint rune
	X         uint16
	Y         uint16
	Width     uint16
	Height    uint16
	XOffset   int16
	YOffset   int16
	XAdvance  int16
	PageID    uint8
}

/**
 * @brief A kerning adjustment between two codepoints.
 */
type FontKerning struct {
	Codepoint0 rune
	Codepoint1 rune
	Amount     int16
}

/**
 * @brief One page of a bitmap font: the image file holding part of the
 * glyph atlas.
 */
type BitmapFontPage struct {
	ID   int8
	File string
}

/**
 * @brief A parsed bitmap font: glyph metrics plus the atlas pages to load
 * as textures.
 */
type FontData struct {
	Face       string
	Size       uint32
	LineHeight int32
	Baseline   int32
	AtlasSizeX int32
	AtlasSizeY int32
	Glyphs     []FontGlyph
	Kernings   []FontKerning
	Pages      []BitmapFontPage
}
