package loaders

import (
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/spaghettifunk/lumen/engine/core"
)

/** @brief Decoded texels, tightly packed RGBA with 8 bits per channel. */
type ImageData struct {
	Name   string
	Width  uint32
	Height uint32
	Pixels []byte
}

// LoadImage decodes a PNG, JPEG, BMP or TIFF file.
func LoadImage(path string) (*ImageData, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &core.LoadError{Path: path, Err: err}
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, &core.LoadError{Path: path, Err: err}
	}
	data := NewImageData(img)
	data.Name = path
	return data, nil
}

// NewImageData converts any image to packed RGBA8.
func NewImageData(img image.Image) *ImageData {
	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != 4*bounds.Dx() || bounds.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	}
	return &ImageData{
		Width:  uint32(bounds.Dx()),
		Height: uint32(bounds.Dy()),
		Pixels: rgba.Pix,
	}
}
