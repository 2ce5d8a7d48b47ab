package passes

import (
	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
	"github.com/spaghettifunk/lumen/engine/renderer/pipeline"
	"github.com/spaghettifunk/lumen/engine/scene"
)

var (
	lightVolumeColour = math.NewVec4(1, 0, 0, 1)
	modelVolumeColour = math.NewVec4(0, 1, 0, 1)
)

// Corners of the [-1,1] cube and its twelve edges.
var (
	unitBoxVertices = [8]math.Vec3{
		{X: -1, Y: -1, Z: -1}, {X: 1, Y: -1, Z: -1}, {X: 1, Y: 1, Z: -1}, {X: -1, Y: 1, Z: -1},
		{X: -1, Y: -1, Z: 1}, {X: 1, Y: -1, Z: 1}, {X: 1, Y: 1, Z: 1}, {X: -1, Y: 1, Z: 1},
	}
	unitBoxIndices = [24]uint16{
		0, 1, 1, 2, 2, 3, 3, 0,
		4, 5, 5, 6, 6, 7, 7, 4,
		0, 4, 1, 5, 2, 6, 3, 7,
	}
)

/**
 * @brief Draws the boxes of the visible lights and models as lines. Light
 * boxes are red, model boxes green.
 */
type BoundingVolumePass struct {
	ctx    Context
	vs, ps metadata.Handle

	vertices metadata.Handle
	indices  metadata.Handle
	model    *pipeline.ConstantBuffer[metadata.ModelBuffer]
	colour   *pipeline.ConstantBuffer[metadata.ColourBuffer]
}

func NewBoundingVolumePass(ctx Context) (*BoundingVolumePass, error) {
	p := &BoundingVolumePass{ctx: ctx}

	shaders := newShaderLoader(ctx, "bounding volume pass")
	p.vs = shaders.load(metadata.ShaderStageVertex, "bounding_volume")
	p.ps = shaders.load(metadata.ShaderStagePixel, "constant_colour")
	if shaders.err != nil {
		return nil, shaders.err
	}

	if err := p.initialize(); err != nil {
		p.Release()
		return nil, err
	}
	return p, nil
}

func (p *BoundingVolumePass) initialize() error {
	device := p.ctx.Device
	var err error
	if p.vertices, err = pipeline.CreateStaticBuffer(device, "unit_box_vertices", metadata.BindVertexBuffer, unitBoxVertices[:]); err != nil {
		return err
	}
	if p.indices, err = pipeline.CreateStaticBuffer(device, "unit_box_indices", metadata.BindIndexBuffer, unitBoxIndices[:]); err != nil {
		return err
	}
	if p.model, err = pipeline.NewConstantBuffer[metadata.ModelBuffer](device, "bounding_volume_model"); err != nil {
		return err
	}
	p.colour, err = pipeline.NewConstantBuffer[metadata.ColourBuffer](device, "bounding_volume_colour")
	return err
}

func (p *BoundingVolumePass) Render(world *scene.World, worldToProjection math.Mat4) {
	device := p.ctx.Device
	device.SetMarker("BoundingVolumePass.Render")
	bindShaders(device, p.vs, p.ps)
	p.ctx.States.BindOpaqueBlendState()
	p.ctx.States.BindDepthReadState()
	p.ctx.States.BindCullNoneRasterizerState()

	device.BindPrimitiveTopology(metadata.PrimitiveTopologyLineList)
	device.BindVertexBuffer(p.vertices, uint32(12))
	device.BindIndexBuffer(p.indices)
	p.model.Bind(metadata.ShaderStageVertex, metadata.SLOT_CBUFFER_MODEL)
	p.colour.Bind(metadata.ShaderStagePixel, metadata.SLOT_CBUFFER_COLOUR)

	p.colour.UpdateData(&metadata.ColourBuffer{Colour: lightVolumeColour})
	world.ForEachActiveOmniLight(func(_ scene.OmniLightPtr, light *scene.OmniLight) {
		p.renderBox(world.ObjectToWorld(light.Owner()), light.AABB(), worldToProjection)
	})
	world.ForEachActiveSpotLight(func(_ scene.SpotLightPtr, light *scene.SpotLight) {
		p.renderBox(world.ObjectToWorld(light.Owner()), light.AABB(), worldToProjection)
	})

	p.colour.UpdateData(&metadata.ColourBuffer{Colour: modelVolumeColour})
	world.ForEachActiveModel(func(_ scene.ModelPtr, model *scene.Model) {
		p.renderBox(world.ObjectToWorld(model.Owner()), model.AABB, worldToProjection)
	})
}

func (p *BoundingVolumePass) renderBox(objectToWorld math.Mat4, aabb math.AABB, worldToProjection math.Mat4) {
	if cullAABB(objectToWorld.Mul(worldToProjection), aabb, p.ctx.Convention()) {
		return
	}
	boxToObject := math.NewMat4Scale(aabb.Radius()).Mul(math.NewMat4Translation(aabb.Centroid()))
	p.model.UpdateData(&metadata.ModelBuffer{
		ObjectToWorld:    boxToObject.Mul(objectToWorld),
		NormalToWorld:    math.NewMat4Identity(),
		TextureTransform: math.NewMat4Identity(),
	})
	p.ctx.Device.DrawIndexed(uint32(len(unitBoxIndices)), 0)
}

func (p *BoundingVolumePass) Release() {
	releaseHandles(p.ctx.Device, p.vertices, p.indices)
	p.model.Release()
	p.colour.Release()
}
