package metadata

import (
	"fmt"
	"strings"

	"github.com/spaghettifunk/lumen/engine/core"
)

/**
 * @brief Represents the pipeline a camera renders its view with.
 */
type RenderMode uint8

const (
	RenderModeNone RenderMode = iota
	RenderModeForward
	RenderModeDeferred
	RenderModeSolid
	RenderModeVoxelGrid
	RenderModeFalseColorBaseColor
	RenderModeFalseColorBaseColorCoefficient
	RenderModeFalseColorBaseColorTexture
	RenderModeFalseColorMaterial
	RenderModeFalseColorMaterialCoefficient
	RenderModeFalseColorMaterialTexture
	RenderModeFalseColorRoughness
	RenderModeFalseColorRoughnessCoefficient
	RenderModeFalseColorRoughnessTexture
	RenderModeFalseColorMetalness
	RenderModeFalseColorMetalnessCoefficient
	RenderModeFalseColorMetalnessTexture
	RenderModeFalseColorShadingNormal
	RenderModeFalseColorTSNMShadingNormal
	RenderModeFalseColorDepth
	RenderModeFalseColorDistance
	RenderModeFalseColorUV
	RenderModeCount
)

var renderModeNames = [RenderModeCount]string{
	"none",
	"forward",
	"deferred",
	"solid",
	"voxel_grid",
	"false_color_base_color",
	"false_color_base_color_coefficient",
	"false_color_base_color_texture",
	"false_color_material",
	"false_color_material_coefficient",
	"false_color_material_texture",
	"false_color_roughness",
	"false_color_roughness_coefficient",
	"false_color_roughness_texture",
	"false_color_metalness",
	"false_color_metalness_coefficient",
	"false_color_metalness_texture",
	"false_color_shading_normal",
	"false_color_tsnm_shading_normal",
	"false_color_depth",
	"false_color_distance",
	"false_color_uv",
}

func (m RenderMode) String() string {
	if m < RenderModeCount {
		return renderModeNames[m]
	}
	return fmt.Sprintf("render_mode(%d)", uint8(m))
}

func ParseRenderMode(s string) (RenderMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range renderModeNames {
		if name == s {
			return RenderMode(i), nil
		}
	}
	return RenderModeNone, fmt.Errorf("render mode %q: %w", s, core.ErrUnsupported)
}

// FalseColor returns the visualised quantity of a false color render mode.
func (m RenderMode) FalseColor() (FalseColor, bool) {
	if m < RenderModeFalseColorBaseColor || m >= RenderModeCount {
		return 0, false
	}
	return FalseColor(m - RenderModeFalseColorBaseColor), true
}

/** @brief The surface quantity a false color render displays. */
type FalseColor uint8

const (
	FalseColorBaseColor FalseColor = iota
	FalseColorBaseColorCoefficient
	FalseColorBaseColorTexture
	FalseColorMaterial
	FalseColorMaterialCoefficient
	FalseColorMaterialTexture
	FalseColorRoughness
	FalseColorRoughnessCoefficient
	FalseColorRoughnessTexture
	FalseColorMetalness
	FalseColorMetalnessCoefficient
	FalseColorMetalnessTexture
	FalseColorShadingNormal
	FalseColorTSNMShadingNormal
	FalseColorDepth
	FalseColorDistance
	FalseColorUV
	FalseColorCount
)

func (f FalseColor) String() string {
	return strings.TrimPrefix(RenderMode(f + FalseColor(RenderModeFalseColorBaseColor)).String(), "false_color_")
}

type BRDF uint8

const (
	BRDFLambertian BRDF = iota
	BRDFBlinnPhong
	BRDFCookTorrance
	BRDFFrostbite
	BRDFCount
)

var brdfNames = [BRDFCount]string{"lambertian", "blinn_phong", "cook_torrance", "frostbite"}

func (b BRDF) String() string {
	if b < BRDFCount {
		return brdfNames[b]
	}
	return fmt.Sprintf("brdf(%d)", uint8(b))
}

func ParseBRDF(s string) (BRDF, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range brdfNames {
		if name == s {
			return BRDF(i), nil
		}
	}
	return BRDFCookTorrance, fmt.Errorf("brdf %q: %w", s, core.ErrUnsupported)
}

type ToneMapping uint8

const (
	ToneMappingNone ToneMapping = iota
	ToneMappingACESFilmic
	ToneMappingMax3
	ToneMappingReinhard
	ToneMappingUncharted
	ToneMappingCount
)

var toneMappingNames = [ToneMappingCount]string{"none", "aces_filmic", "max3", "reinhard", "uncharted"}

func (t ToneMapping) String() string {
	if t < ToneMappingCount {
		return toneMappingNames[t]
	}
	return fmt.Sprintf("tone_mapping(%d)", uint8(t))
}

func ParseToneMapping(s string) (ToneMapping, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range toneMappingNames {
		if name == s {
			return ToneMapping(i), nil
		}
	}
	return ToneMappingNone, fmt.Errorf("tone mapping %q: %w", s, core.ErrUnsupported)
}

/** @brief Debug overlays drawn on top of a camera's view. */
type RenderLayer uint8

const (
	RenderLayerNone      RenderLayer = 0
	RenderLayerWireframe RenderLayer = 1 << 0
	RenderLayerAABB      RenderLayer = 1 << 1
)

func (l RenderLayer) Contains(layer RenderLayer) bool {
	return l&layer == layer && layer != RenderLayerNone
}
