package loaders

import (
	"image"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/scene"
)

const (
	// Width of generated glyph atlases in texels.
	faceAtlasWidth = 256
	// Empty texels around every glyph to keep filtering from bleeding.
	faceGlyphPadding = 1
)

// PrintableASCII holds the characters rasterized by default.
func PrintableASCII() []rune {
	runes := make([]rune, 0, '~'-' '+1)
	for r := ' '; r <= '~'; r++ {
		runes = append(runes, r)
	}
	return runes
}

// DefaultFont returns the built-in 7x13 fixed width font.
func DefaultFont() *FontData {
	return NewFaceFont("default", basicfont.Face7x13, PrintableASCII())
}

/**
 * @brief Rasterizes a TrueType or OpenType font at the given size in pixels
 * into a sprite font atlas.
 */
func LoadTrueTypeFont(path string, size float64, runes []rune) (*FontData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &core.LoadError{Path: path, Err: err}
	}
	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil, &core.LoadError{Path: path, Err: err}
	}
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, &core.LoadError{Path: path, Err: err}
	}
	defer face.Close()

	name, err := parsed.Name(nil, 1)
	if err != nil || name == "" {
		name = path
	}
	return NewFaceFont(name, face, runes), nil
}

/**
 * @brief Draws every rune the face supports into rows of an atlas. Each glyph
 * cell spans the full line height, so glyph offsets are zero and the advance
 * comes from the face.
 */
func NewFaceFont(name string, face font.Face, runes []rune) *FontData {
	metrics := face.Metrics()
	lineHeight := metrics.Height.Ceil()
	ascent := metrics.Ascent.Ceil()

	type placed struct {
		r       rune
		x, y    int
		width   int
		advance int
	}
	var glyphs []placed
	x, y := faceGlyphPadding, faceGlyphPadding
	for _, r := range runes {
		bounds, advance, ok := face.GlyphBounds(r)
		if !ok {
			continue
		}
		width := max(advance.Ceil(), bounds.Max.X.Ceil())
		if x+width+faceGlyphPadding > faceAtlasWidth {
			x = faceGlyphPadding
			y += lineHeight + faceGlyphPadding
		}
		glyphs = append(glyphs, placed{r: r, x: x, y: y, width: width, advance: advance.Ceil()})
		x += width + faceGlyphPadding
	}

	height := y + lineHeight + faceGlyphPadding
	atlas := image.NewRGBA(image.Rect(0, 0, faceAtlasWidth, height))
	drawer := font.Drawer{Dst: atlas, Src: image.White, Face: face}

	out := &FontData{
		Font: scene.SpriteFont{
			Name:          name,
			TextureWidth:  faceAtlasWidth,
			TextureHeight: uint32(height),
			LineHeight:    uint32(lineHeight),
			Glyphs:        make(map[rune]scene.Glyph, len(glyphs)),
			Kernings:      make(map[[2]rune]int32),
		},
	}
	for _, g := range glyphs {
		drawer.Dot = fixed.P(g.x, g.y+ascent)
		drawer.DrawString(string(g.r))
		out.Font.Glyphs[g.r] = scene.Glyph{
			Region: scene.Rect{
				X:      uint32(g.x),
				Y:      uint32(g.y),
				Width:  uint32(g.width),
				Height: uint32(lineHeight),
			},
			XAdvance: int32(g.advance),
		}
	}
	for _, a := range glyphs {
		for _, b := range glyphs {
			if k := face.Kern(a.r, b.r).Round(); k != 0 {
				out.Font.Kernings[[2]rune{a.r, b.r}] = int32(k)
			}
		}
	}
	if _, ok := out.Font.Glyphs[fallbackCharacter]; ok {
		out.Font.DefaultCharacter = fallbackCharacter
	}

	out.Atlas = NewImageData(atlas)
	out.Atlas.Name = name
	return out
}
