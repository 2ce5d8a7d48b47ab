package passes

import (
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
	"github.com/spaghettifunk/lumen/engine/renderer/pipeline"
	"github.com/spaghettifunk/lumen/engine/scene"
)

/**
 * @brief Context holds the collaborators shared by every pass. Passes keep
 * a copy and never outlive the renderer that created them.
 */
type Context struct {
	Device  metadata.Device
	Shaders metadata.ShaderLibrary
	States  *pipeline.StateManager
}

func (c Context) Convention() math.DepthConvention {
	return c.States.Convention()
}

// shaderLoader resolves the shaders of one pass and keeps the first error.
type shaderLoader struct {
	pass    string
	shaders metadata.ShaderLibrary
	err     error
}

func newShaderLoader(ctx Context, pass string) *shaderLoader {
	return &shaderLoader{pass: pass, shaders: ctx.Shaders}
}

func (l *shaderLoader) load(stage metadata.ShaderStage, name string) metadata.Handle {
	if l.err != nil {
		return metadata.InvalidHandle
	}
	h, err := l.shaders.Shader(stage, name)
	if err != nil {
		l.err = core.NewConstructionError(l.pass, stage.String()+"/"+name, err)
		return metadata.InvalidHandle
	}
	return h
}

// cullAABB reports whether the object space box lies outside the frustum of objectToProjection.
func cullAABB(objectToProjection math.Mat4, aabb math.AABB, convention math.DepthConvention) bool {
	return !math.NewBoundingFrustumWithConvention(objectToProjection, convention).OverlapsAABB(aabb)
}

/**
 * @brief Returns the object-to-world transform of the model and whether
 * its box survives the frustum of worldToProjection.
 */
func visibleModel(world *scene.World, model *scene.Model, worldToProjection math.Mat4, convention math.DepthConvention) (math.Mat4, bool) {
	objectToWorld := world.ObjectToWorld(model.Owner())
	objectToProjection := objectToWorld.Mul(worldToProjection)
	return objectToWorld, !cullAABB(objectToProjection, model.AABB, convention)
}

// modelRenderer uploads the per-draw model data and issues indexed draws.
type modelRenderer struct {
	device metadata.Device
	buffer *pipeline.ConstantBuffer[metadata.ModelBuffer]
}

func newModelRenderer(ctx Context, name string) (*modelRenderer, error) {
	buffer, err := pipeline.NewConstantBuffer[metadata.ModelBuffer](ctx.Device, name+"_model")
	if err != nil {
		return nil, err
	}
	return &modelRenderer{device: ctx.Device, buffer: buffer}, nil
}

func (r *modelRenderer) draw(world *scene.World, model *scene.Model, objectToWorld math.Mat4, textures bool) {
	data := model.Buffer(objectToWorld, world.WorldToObject(model.Owner()))
	r.buffer.UpdateData(&data)
	r.buffer.Bind(metadata.ShaderStageVertex, metadata.SLOT_CBUFFER_MODEL)
	r.buffer.Bind(metadata.ShaderStagePixel, metadata.SLOT_CBUFFER_MODEL)

	if textures {
		material := &model.Material
		r.device.BindShaderResource(metadata.ShaderStagePixel, metadata.SLOT_SRV_BASE_COLOR_TEXTURE, material.BaseColorTexture)
		r.device.BindShaderResource(metadata.ShaderStagePixel, metadata.SLOT_SRV_MATERIAL_TEXTURE, material.MaterialTexture)
		r.device.BindShaderResource(metadata.ShaderStagePixel, metadata.SLOT_SRV_NORMAL_TEXTURE, material.NormalTexture)
	}

	mesh := model.Mesh
	r.device.BindPrimitiveTopology(mesh.Topology)
	r.device.BindVertexBuffer(mesh.VertexBuffer, mesh.Stride)
	r.device.BindIndexBuffer(mesh.IndexBuffer)
	r.device.DrawIndexed(model.IndexCount, model.StartIndex)
}

func (r *modelRenderer) release() {
	r.buffer.Release()
}

func releaseHandles(device metadata.Device, handles ...metadata.Handle) {
	for _, h := range handles {
		if h != metadata.InvalidHandle {
			device.Release(h)
		}
	}
}

// bindShaders binds a vertex/pixel shader pair and unbinds the geometry stage.
func bindShaders(device metadata.Device, vs, ps metadata.Handle) {
	device.BindShader(metadata.ShaderStageVertex, vs)
	device.BindShader(metadata.ShaderStageGeometry, metadata.InvalidHandle)
	device.BindShader(metadata.ShaderStagePixel, ps)
}
