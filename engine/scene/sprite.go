package scene

import (
	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

/**
 * @brief The 2D transform of a sprite in display pixels. Depth orders
 * sprites: larger depths are drawn first.
 */
type SpriteTransform struct {
	Translation    math.Vec2
	Depth          float32
	Rotation       float32
	RotationOrigin math.Vec2
	Scale          math.Vec2
}

func NewSpriteTransform(translation math.Vec2) SpriteTransform {
	return SpriteTransform{Translation: translation, Scale: math.NewVec2(1, 1)}
}

/** @brief A rectangle of a texture in texels. */
type Rect struct {
	X, Y, Width, Height uint32
}

type SpriteImage struct {
	Component

	Transform     SpriteTransform
	Texture       metadata.Handle
	TextureWidth  uint32
	TextureHeight uint32
	// The drawn part of the texture. A zero region draws the whole texture.
	Region    Rect
	BaseColor math.RGBA
}

func NewSpriteImage(texture metadata.Handle, width, height uint32, transform SpriteTransform) SpriteImage {
	return SpriteImage{
		Transform:     transform,
		Texture:       texture,
		TextureWidth:  width,
		TextureHeight: height,
		BaseColor:     math.NewRGBA(1, 1, 1, 1),
	}
}

// SourceRegion returns the drawn region, the whole texture if none was set.
func (s *SpriteImage) SourceRegion() Rect {
	if s.Region.Width == 0 || s.Region.Height == 0 {
		return Rect{Width: s.TextureWidth, Height: s.TextureHeight}
	}
	return s.Region
}

/** @brief A character of a sprite font. Offsets and advance are in pixels. */
type Glyph struct {
	Region   Rect
	XOffset  int32
	YOffset  int32
	XAdvance int32
}

/**
 * @brief A bitmap font: a texture atlas plus the glyph layout inside it.
 */
type SpriteFont struct {
	Name          string
	Texture       metadata.Handle
	TextureWidth  uint32
	TextureHeight uint32
	LineHeight    uint32
	Glyphs        map[rune]Glyph
	Kernings      map[[2]rune]int32
	// Drawn for characters the font does not contain.
	DefaultCharacter rune
}

func (f *SpriteFont) Glyph(r rune) (Glyph, bool) {
	if g, ok := f.Glyphs[r]; ok {
		return g, true
	}
	g, ok := f.Glyphs[f.DefaultCharacter]
	return g, ok
}

func (f *SpriteFont) Kerning(first, second rune) int32 {
	return f.Kernings[[2]rune{first, second}]
}

// MeasureString returns the size in pixels of text drawn with this font.
func (f *SpriteFont) MeasureString(text string) math.Vec2 {
	var width, lineWidth float32
	lines := float32(1)
	previous := rune(-1)
	for _, r := range text {
		if r == '\n' {
			width = max(width, lineWidth)
			lineWidth = 0
			lines++
			previous = -1
			continue
		}
		g, ok := f.Glyph(r)
		if !ok {
			continue
		}
		if previous >= 0 {
			lineWidth += float32(f.Kerning(previous, r))
		}
		lineWidth += float32(g.XAdvance)
		previous = r
	}
	return math.NewVec2(max(width, lineWidth), lines*float32(f.LineHeight))
}

type SpriteText struct {
	Component

	Transform SpriteTransform
	Text      string
	Font      *SpriteFont
	Colour    math.RGBA
}

func NewSpriteText(text string, font *SpriteFont, transform SpriteTransform) SpriteText {
	return SpriteText{
		Transform: transform,
		Text:      text,
		Font:      font,
		Colour:    math.NewRGBA(1, 1, 1, 1),
	}
}
