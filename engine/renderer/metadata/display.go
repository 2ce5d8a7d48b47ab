package metadata

import (
	"fmt"
	"strings"

	"github.com/spaghettifunk/lumen/engine/core"
)

type AntiAliasing uint8

const (
	AntiAliasingNone AntiAliasing = iota
	AntiAliasingFXAA
	AntiAliasingMSAA2x
	AntiAliasingMSAA4x
	AntiAliasingMSAA8x
	AntiAliasingSSAA2x
	AntiAliasingSSAA3x
	AntiAliasingSSAA4x
)

var antiAliasingNames = map[AntiAliasing]string{
	AntiAliasingNone:   "none",
	AntiAliasingFXAA:   "fxaa",
	AntiAliasingMSAA2x: "msaa_2x",
	AntiAliasingMSAA4x: "msaa_4x",
	AntiAliasingMSAA8x: "msaa_8x",
	AntiAliasingSSAA2x: "ssaa_2x",
	AntiAliasingSSAA3x: "ssaa_3x",
	AntiAliasingSSAA4x: "ssaa_4x",
}

func (aa AntiAliasing) String() string {
	if name, ok := antiAliasingNames[aa]; ok {
		return name
	}
	return fmt.Sprintf("antialiasing(%d)", uint8(aa))
}

func ParseAntiAliasing(s string) (AntiAliasing, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return AntiAliasingNone, nil
	}
	for aa, name := range antiAliasingNames {
		if name == s {
			return aa, nil
		}
	}
	return AntiAliasingNone, fmt.Errorf("antialiasing %q: %w", s, core.ErrUnsupported)
}

func (aa AntiAliasing) UsesMSAA() bool {
	switch aa {
	case AntiAliasingMSAA2x, AntiAliasingMSAA4x, AntiAliasingMSAA8x:
		return true
	}
	return false
}

func (aa AntiAliasing) UsesSSAA() bool {
	switch aa {
	case AntiAliasingSSAA2x, AntiAliasingSSAA3x, AntiAliasingSSAA4x:
		return true
	}
	return false
}

// SampleCount returns the number of MSAA samples per pixel.
func (aa AntiAliasing) SampleCount() uint32 {
	switch aa {
	case AntiAliasingMSAA2x:
		return 2
	case AntiAliasingMSAA4x:
		return 4
	case AntiAliasingMSAA8x:
		return 8
	}
	return 1
}

// ResolutionMultiplier returns the SSAA scale of the render resolution.
func (aa AntiAliasing) ResolutionMultiplier() uint32 {
	switch aa {
	case AntiAliasingSSAA2x:
		return 2
	case AntiAliasingSSAA3x:
		return 3
	case AntiAliasingSSAA4x:
		return 4
	}
	return 1
}

/**
 * @brief The display settings the render core sizes its buffers and picks
 * its anti-aliasing path from. Read-only to the renderer.
 */
type DisplayConfiguration struct {
	Width        uint32
	Height       uint32
	AntiAliasing AntiAliasing
	VSync        bool
	Windowed     bool
}

func (d *DisplayConfiguration) DisplayResolution() (uint32, uint32) {
	return d.Width, d.Height
}

// SSDisplayResolution returns the resolution scenes are rendered at before the AA resolve.
func (d *DisplayConfiguration) SSDisplayResolution() (uint32, uint32) {
	m := d.AntiAliasing.ResolutionMultiplier()
	return d.Width * m, d.Height * m
}

func (d *DisplayConfiguration) UsesAA() bool {
	return d.AntiAliasing != AntiAliasingNone
}

func (d *DisplayConfiguration) UsesMSAA() bool {
	return d.AntiAliasing.UsesMSAA()
}

func (d *DisplayConfiguration) UsesSSAA() bool {
	return d.AntiAliasing.UsesSSAA()
}

func (d *DisplayConfiguration) Validate() error {
	if d.Width == 0 || d.Height == 0 {
		return fmt.Errorf("display resolution %dx%d must be positive", d.Width, d.Height)
	}
	if _, ok := antiAliasingNames[d.AntiAliasing]; !ok {
		return fmt.Errorf("%s: %w", d.AntiAliasing, core.ErrUnsupported)
	}
	return nil
}
