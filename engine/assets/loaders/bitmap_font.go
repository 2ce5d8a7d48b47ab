package loaders

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fzipp/bmfont"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/scene"
)

/**
 * @brief A sprite font and its atlas before upload. Font.Texture is set once
 * the atlas lives on the device.
 */
type FontData struct {
	Font  scene.SpriteFont
	Atlas *ImageData
}

// Drawn for missing characters when the font has it.
const fallbackCharacter = '?'

/**
 * @brief Imports an AngelCode BMFont text descriptor and its page sheet.
 * Sprite fonts sample a single texture, so fonts spread over several pages
 * are rejected.
 */
func LoadBitmapFont(path string) (*FontData, error) {
	font, err := bmfont.Load(path)
	if err != nil {
		return nil, &core.LoadError{Path: path, Err: err}
	}

	desc := font.Descriptor
	if len(desc.Pages) != 1 {
		return nil, &core.LoadError{Path: path, Err: fmt.Errorf("%d pages: %w", len(desc.Pages), core.ErrUnsupported)}
	}
	var pageID int
	for id := range desc.Pages {
		pageID = id
	}
	sheet, ok := font.PageSheets[pageID]
	if !ok {
		return nil, &core.LoadError{Path: path, Token: desc.Pages[pageID].File, Err: core.ErrResourceNotFound}
	}

	atlas := NewImageData(sheet)
	atlas.Name = filepath.Join(filepath.Dir(path), desc.Pages[pageID].File)

	name := desc.Info.Face
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	out := &FontData{
		Font: scene.SpriteFont{
			Name:          name,
			TextureWidth:  atlas.Width,
			TextureHeight: atlas.Height,
			LineHeight:    uint32(desc.Common.LineHeight),
			Glyphs:        make(map[rune]scene.Glyph, len(desc.Chars)),
			Kernings:      make(map[[2]rune]int32, len(desc.Kerning)),
		},
		Atlas: atlas,
	}

	for _, g := range desc.Chars {
		out.Font.Glyphs[rune(g.ID)] = scene.Glyph{
			Region: scene.Rect{
				X:      uint32(g.X),
				Y:      uint32(g.Y),
				Width:  uint32(g.Width),
				Height: uint32(g.Height),
			},
			XOffset:  int32(g.XOffset),
			YOffset:  int32(g.YOffset),
			XAdvance: int32(g.XAdvance),
		}
	}
	for p, k := range desc.Kerning {
		out.Font.Kernings[[2]rune{rune(p.First), rune(p.Second)}] = int32(k.Amount)
	}
	if _, ok := out.Font.Glyphs[fallbackCharacter]; ok {
		out.Font.DefaultCharacter = fallbackCharacter
	}
	return out, nil
}
