package pipeline

import (
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

type blendState uint8

const (
	blendOpaque blendState = iota
	blendAlpha
	blendAdditive
	blendMultiplicative
	blendStateCount
)

type depthState uint8

const (
	depthNone depthState = iota
	depthReadWrite
	depthRead
	depthStateCount
)

type rasterizerState uint8

const (
	rasterizerCullNone rasterizerState = iota
	rasterizerCullCounterClockwise
	rasterizerCullClockwise
	rasterizerWireframe
	rasterizerStateCount
)

/**
 * @brief StateManager creates every fixed-function state object once and
 * binds them by name. The depth comparison follows the depth convention.
 */
type StateManager struct {
	device     metadata.Device
	convention math.DepthConvention

	blendStates      [blendStateCount]metadata.Handle
	depthStates      [depthStateCount]metadata.Handle
	rasterizerStates [rasterizerStateCount]metadata.Handle
	samplers         [metadata.SLOT_SAMPLER_COUNT]metadata.Handle
}

func NewStateManager(device metadata.Device, convention math.DepthConvention, multisample bool) (*StateManager, error) {
	sm := &StateManager{device: device, convention: convention}

	depthFunc := metadata.ComparisonLessEqual
	if convention == math.DepthInverted {
		depthFunc = metadata.ComparisonGreaterEqual
	}

	blends := [blendStateCount]metadata.StateDescriptor{
		blendOpaque:         {Name: "blend_opaque", Blend: metadata.BlendModeOpaque},
		blendAlpha:          {Name: "blend_alpha", Blend: metadata.BlendModeAlpha},
		blendAdditive:       {Name: "blend_additive", Blend: metadata.BlendModeAdditive},
		blendMultiplicative: {Name: "blend_multiplicative", Blend: metadata.BlendModeMultiply},
	}
	for i := range blends {
		blends[i].Kind = metadata.StateKindBlend
		if err := sm.create(&sm.blendStates[i], blends[i]); err != nil {
			return nil, err
		}
	}

	depths := [depthStateCount]metadata.StateDescriptor{
		depthNone:      {Name: "depth_none", DepthFunc: metadata.ComparisonAlways},
		depthReadWrite: {Name: "depth_read_write", DepthEnable: true, DepthWrite: true, DepthFunc: depthFunc},
		depthRead:      {Name: "depth_read", DepthEnable: true, DepthFunc: depthFunc},
	}
	for i := range depths {
		depths[i].Kind = metadata.StateKindDepthStencil
		if err := sm.create(&sm.depthStates[i], depths[i]); err != nil {
			return nil, err
		}
	}

	rasterizers := [rasterizerStateCount]metadata.StateDescriptor{
		rasterizerCullNone:             {Name: "cull_none", CullMode: metadata.CullModeNone},
		rasterizerCullCounterClockwise: {Name: "cull_counter_clockwise", CullMode: metadata.CullModeBack},
		rasterizerCullClockwise:        {Name: "cull_clockwise", CullMode: metadata.CullModeFront},
		rasterizerWireframe:            {Name: "wireframe", CullMode: metadata.CullModeNone, Wireframe: true},
	}
	for i := range rasterizers {
		rasterizers[i].Kind = metadata.StateKindRasterizer
		rasterizers[i].Multisample = multisample
		if err := sm.create(&sm.rasterizerStates[i], rasterizers[i]); err != nil {
			return nil, err
		}
	}

	samplers := [metadata.SLOT_SAMPLER_COUNT]metadata.StateDescriptor{
		metadata.SLOT_SAMPLER_POINT_WRAP:  {Name: "sampler_point_wrap", Filter: metadata.FilterPoint},
		metadata.SLOT_SAMPLER_LINEAR_WRAP: {Name: "sampler_linear_wrap", Filter: metadata.FilterLinear},
		metadata.SLOT_SAMPLER_ANISOTROPIC: {Name: "sampler_anisotropic_wrap", Filter: metadata.FilterAnisotropic, Anisotropy: 16},
		metadata.SLOT_SAMPLER_PCF: {
			Name:       "sampler_pcf",
			Filter:     metadata.FilterComparisonLinear,
			Address:    metadata.AddressModeClamp,
			Comparison: depthFunc,
		},
	}
	for i := range samplers {
		samplers[i].Kind = metadata.StateKindSampler
		if err := sm.create(&sm.samplers[i], samplers[i]); err != nil {
			return nil, err
		}
	}

	return sm, nil
}

func (sm *StateManager) create(out *metadata.Handle, desc metadata.StateDescriptor) error {
	handle, err := sm.device.CreateState(desc)
	if err != nil {
		return core.NewConstructionError("state manager", desc.Name, err)
	}
	*out = handle
	return nil
}

func (sm *StateManager) Convention() math.DepthConvention {
	return sm.convention
}

// ClearDepth returns the depth value of the far plane.
func (sm *StateManager) ClearDepth() float32 {
	return ClearDepth(sm.convention)
}

func ClearDepth(convention math.DepthConvention) float32 {
	if convention == math.DepthInverted {
		return 0.0
	}
	return 1.0
}

// BindPersistentState binds the samplers, which stay bound for the whole session.
func (sm *StateManager) BindPersistentState() {
	for stage := metadata.ShaderStage(0); stage < metadata.ShaderStageCount; stage++ {
		for slot, sampler := range sm.samplers {
			sm.device.BindSampler(stage, uint32(slot), sampler)
		}
	}
}

func (sm *StateManager) BindOpaqueBlendState() {
	sm.device.BindState(sm.blendStates[blendOpaque])
}

func (sm *StateManager) BindAlphaBlendState() {
	sm.device.BindState(sm.blendStates[blendAlpha])
}

func (sm *StateManager) BindAdditiveBlendState() {
	sm.device.BindState(sm.blendStates[blendAdditive])
}

func (sm *StateManager) BindMultiplicativeBlendState() {
	sm.device.BindState(sm.blendStates[blendMultiplicative])
}

func (sm *StateManager) BindDepthNoneState() {
	sm.device.BindState(sm.depthStates[depthNone])
}

func (sm *StateManager) BindDepthReadWriteState() {
	sm.device.BindState(sm.depthStates[depthReadWrite])
}

func (sm *StateManager) BindDepthReadState() {
	sm.device.BindState(sm.depthStates[depthRead])
}

func (sm *StateManager) BindCullNoneRasterizerState() {
	sm.device.BindState(sm.rasterizerStates[rasterizerCullNone])
}

func (sm *StateManager) BindCullCounterClockwiseRasterizerState() {
	sm.device.BindState(sm.rasterizerStates[rasterizerCullCounterClockwise])
}

func (sm *StateManager) BindCullClockwiseRasterizerState() {
	sm.device.BindState(sm.rasterizerStates[rasterizerCullClockwise])
}

func (sm *StateManager) BindWireframeRasterizerState() {
	sm.device.BindState(sm.rasterizerStates[rasterizerWireframe])
}
