package math

import "github.com/chewxy/math32"

// RGB is a linear color.
type RGB Vec3

// SRGB is a gamma encoded color.
type SRGB Vec3

// XYZ is a CIE 1931 color.
type XYZ Vec3

// RGBA is a linear color with straight alpha.
type RGBA Vec4

// SRGBA is a gamma encoded color with straight alpha.
type SRGBA Vec4

func NewRGB(r, g, b float32) RGB {
	return RGB{r, g, b}
}

func NewRGBA(r, g, b, a float32) RGBA {
	return RGBA{r, g, b, a}
}

func (c RGBA) RGB() RGB {
	return RGB{c.X, c.Y, c.Z}
}

func (c RGB) Vec3() Vec3 {
	return Vec3(c)
}

func (c RGBA) Vec4() Vec4 {
	return Vec4(c)
}

// RGBToSRGBComponent applies the sRGB transfer curve to one channel.
func RGBToSRGBComponent(c float32) float32 {
	if c <= 0.0031308 {
		return 12.92 * c
	}
	return 1.055*math32.Pow(c, 1.0/2.4) - 0.055
}

// SRGBToRGBComponent inverts RGBToSRGBComponent.
func SRGBToRGBComponent(c float32) float32 {
	if c <= 0.04045 {
		return c / 12.92
	}
	return math32.Pow((c+0.055)/1.055, 2.4)
}

func RGBToSRGB(c RGB) SRGB {
	return SRGB{RGBToSRGBComponent(c.X), RGBToSRGBComponent(c.Y), RGBToSRGBComponent(c.Z)}
}

func SRGBToRGB(c SRGB) RGB {
	return RGB{SRGBToRGBComponent(c.X), SRGBToRGBComponent(c.Y), SRGBToRGBComponent(c.Z)}
}

// RGBAToSRGBA converts the color channels and keeps alpha.
func RGBAToSRGBA(c RGBA) SRGBA {
	return SRGBA{RGBToSRGBComponent(c.X), RGBToSRGBComponent(c.Y), RGBToSRGBComponent(c.Z), c.W}
}

func SRGBAToRGBA(c SRGBA) RGBA {
	return RGBA{SRGBToRGBComponent(c.X), SRGBToRGBComponent(c.Y), SRGBToRGBComponent(c.Z), c.W}
}

// BT.709 primaries, D65 white point, laid out for row vectors.
var (
	rgbToXYZ = Mat4{Data: [16]float32{
		0.412453, 0.212671, 0.019334, 0,
		0.357580, 0.715160, 0.119193, 0,
		0.180423, 0.072169, 0.950227, 0,
		0, 0, 0, 1,
	}}
	xyzToRGB = Mat4{Data: [16]float32{
		3.240479, -0.969256, 0.055648, 0,
		-1.537150, 1.875992, -0.204043, 0,
		-0.498535, 0.041556, 1.057311, 0,
		0, 0, 0, 1,
	}}
)

func RGBToXYZ(c RGB) XYZ {
	return XYZ(Vec3(c).TransformNormal(rgbToXYZ))
}

func XYZToRGB(c XYZ) RGB {
	return RGB(Vec3(c).TransformNormal(xyzToRGB))
}

// Luminance returns the Y component of the color.
func (c RGB) Luminance() float32 {
	return RGBToXYZ(c).Y
}
