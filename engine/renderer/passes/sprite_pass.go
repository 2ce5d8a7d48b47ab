package passes

import (
	"cmp"

	"github.com/chewxy/math32"
	"golang.org/x/exp/slices"

	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
	"github.com/spaghettifunk/lumen/engine/renderer/pipeline"
	"github.com/spaghettifunk/lumen/engine/scene"
)

const initialSpriteCapacity = 256

// Unit quad corners in the order of quadIndices.
var quadCorners = [4]math.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}}

var quadIndices = [6]uint32{0, 1, 2, 2, 1, 3}

type spriteQuad struct {
	texture  metadata.Handle
	depth    float32
	vertices [4]metadata.SpriteVertex
}

/**
 * @brief Draws the sprite images and texts on top of the final image.
 * Sprites are sorted back to front by depth and consecutive sprites sharing
 * a texture are drawn in one batch.
 */
type SpritePass struct {
	ctx    Context
	vs, ps metadata.Handle

	vertices      *pipeline.DynamicBuffer[metadata.SpriteVertex]
	indices       metadata.Handle
	indexCapacity int

	quads       []spriteQuad
	vertexData  []metadata.SpriteVertex
	displaySize math.Vec2
}

func NewSpritePass(ctx Context) (*SpritePass, error) {
	shaders := newShaderLoader(ctx, "sprite pass")
	p := &SpritePass{
		ctx: ctx,
		vs:  shaders.load(metadata.ShaderStageVertex, "sprite"),
		ps:  shaders.load(metadata.ShaderStagePixel, "sprite"),
	}
	if shaders.err != nil {
		return nil, shaders.err
	}

	var err error
	if p.vertices, err = pipeline.NewDynamicVertexBuffer[metadata.SpriteVertex](ctx.Device, "sprite_vertices", 4*initialSpriteCapacity); err != nil {
		return nil, err
	}
	if err = p.createIndices(initialSpriteCapacity); err != nil {
		p.vertices.Release()
		return nil, err
	}
	return p, nil
}

func (p *SpritePass) createIndices(capacity int) error {
	indices := make([]uint32, 0, 6*capacity)
	for q := 0; q < capacity; q++ {
		for _, i := range quadIndices {
			indices = append(indices, uint32(4*q)+i)
		}
	}
	buffer, err := pipeline.CreateStaticBuffer(p.ctx.Device, "sprite_indices", metadata.BindIndexBuffer, indices)
	if err != nil {
		return err
	}
	if p.indices != metadata.InvalidHandle {
		p.ctx.Device.Release(p.indices)
	}
	p.indices = buffer
	p.indexCapacity = capacity
	return nil
}

// Render draws every active sprite onto a target of the given size in pixels.
func (p *SpritePass) Render(world *scene.World, width, height uint32) {
	device := p.ctx.Device
	device.SetMarker("SpritePass.Render")

	p.displaySize = math.NewVec2(float32(width), float32(height))
	p.quads = p.quads[:0]
	world.ForEachActiveSpriteImage(func(_ scene.SpriteImagePtr, sprite *scene.SpriteImage) {
		p.addImage(sprite)
	})
	world.ForEachActiveSpriteText(func(_ scene.SpriteTextPtr, sprite *scene.SpriteText) {
		p.addText(sprite)
	})
	if len(p.quads) == 0 {
		return
	}

	slices.SortStableFunc(p.quads, func(a, b spriteQuad) int {
		return cmp.Compare(b.depth, a.depth)
	})

	p.vertexData = p.vertexData[:0]
	for i := range p.quads {
		p.vertexData = append(p.vertexData, p.quads[i].vertices[:]...)
	}
	if len(p.quads) > p.indexCapacity {
		if err := p.createIndices(max(len(p.quads), 2*p.indexCapacity)); err != nil {
			panic(err)
		}
	}
	p.vertices.UpdateData(p.vertexData)

	bindShaders(device, p.vs, p.ps)
	p.ctx.States.BindAlphaBlendState()
	p.ctx.States.BindDepthNoneState()
	p.ctx.States.BindCullNoneRasterizerState()
	device.BindPrimitiveTopology(metadata.PrimitiveTopologyTriangleList)
	p.vertices.BindVertexBuffer()
	device.BindIndexBuffer(p.indices)

	for first := 0; first < len(p.quads); {
		texture := p.quads[first].texture
		last := first + 1
		for last < len(p.quads) && p.quads[last].texture == texture {
			last++
		}
		device.BindShaderResource(metadata.ShaderStagePixel, metadata.SLOT_SRV_SPRITE, texture)
		device.DrawIndexed(uint32(6*(last-first)), uint32(6*first))
		first = last
	}
}

func (p *SpritePass) addImage(sprite *scene.SpriteImage) {
	region := sprite.SourceRegion()
	p.addQuad(sprite.Texture, sprite.TextureWidth, sprite.TextureHeight, region, math.Vec2{}, &sprite.Transform, sprite.BaseColor.Vec4())
}

func (p *SpritePass) addText(sprite *scene.SpriteText) {
	font := sprite.Font
	if font == nil {
		return
	}
	colour := sprite.Colour.Vec4()
	var cursor math.Vec2
	previous := rune(-1)
	for _, r := range sprite.Text {
		if r == '\n' {
			cursor.X = 0
			cursor.Y += float32(font.LineHeight)
			previous = -1
			continue
		}
		glyph, ok := font.Glyph(r)
		if !ok {
			continue
		}
		if previous >= 0 {
			cursor.X += float32(font.Kerning(previous, r))
		}
		if glyph.Region.Width > 0 && glyph.Region.Height > 0 {
			offset := cursor.Add(math.NewVec2(float32(glyph.XOffset), float32(glyph.YOffset)))
			p.addQuad(font.Texture, font.TextureWidth, font.TextureHeight, glyph.Region, offset, &sprite.Transform, colour)
		}
		cursor.X += float32(glyph.XAdvance)
		previous = r
	}
}

func (p *SpritePass) addQuad(texture metadata.Handle, textureWidth, textureHeight uint32, region scene.Rect, offset math.Vec2, transform *scene.SpriteTransform, colour math.Vec4) {
	if textureWidth == 0 || textureHeight == 0 {
		return
	}
	sin, cos := math32.Sincos(transform.Rotation)
	size := math.NewVec2(float32(region.Width), float32(region.Height))
	quad := spriteQuad{texture: texture, depth: transform.Depth}

	for i, corner := range quadCorners {
		local := offset.Add(corner.Mul(size)).Sub(transform.RotationOrigin).Mul(transform.Scale)
		rotated := math.NewVec2(local.X*cos-local.Y*sin, local.X*sin+local.Y*cos)
		pixel := rotated.Add(transform.Translation)

		quad.vertices[i] = metadata.SpriteVertex{
			Position: math.NewVec3(2.0*pixel.X/p.displaySize.X-1.0, 1.0-2.0*pixel.Y/p.displaySize.Y, transform.Depth),
			Texcoord: math.NewVec2(
				(float32(region.X)+corner.X*float32(region.Width))/float32(textureWidth),
				(float32(region.Y)+corner.Y*float32(region.Height))/float32(textureHeight)),
			Colour: colour,
		}
	}
	p.quads = append(p.quads, quad)
}

func (p *SpritePass) Release() {
	p.vertices.Release()
	releaseHandles(p.ctx.Device, p.indices)
}
