package metadata

import "github.com/spaghettifunk/lumen/engine/math"

/** @brief An opaque reference to a GPU object owned by a Device. */
type Handle uint32

/** @brief The null handle. Binding it unbinds the slot. */
const InvalidHandle Handle = 0

/**
 * @brief Represents the pipeline stages a resource or shader can be bound to.
 */
type ShaderStage uint8

const (
	ShaderStageVertex ShaderStage = iota
	ShaderStageGeometry
	ShaderStagePixel
	ShaderStageCompute
	ShaderStageCount
)

func (s ShaderStage) String() string {
	switch s {
	case ShaderStageVertex:
		return "vs"
	case ShaderStageGeometry:
		return "gs"
	case ShaderStagePixel:
		return "ps"
	case ShaderStageCompute:
		return "cs"
	}
	return "unknown"
}

type PrimitiveTopology uint8

const (
	PrimitiveTopologyTriangleList PrimitiveTopology = iota
	PrimitiveTopologyLineList
	PrimitiveTopologyPointList
)

type Format uint8

const (
	FormatUnknown Format = iota
	FormatR8G8B8A8Unorm
	FormatR8G8B8A8UnormSRGB
	FormatR10G10B10A2Unorm
	FormatR16G16B16A16Float
	FormatR11G11B10Float
	FormatR32Float
	FormatR32Uint
	FormatD32Float
)

/** @brief Holds the ways a resource may be viewed by the pipeline. */
type BindFlags uint8

const (
	BindShaderResource BindFlags = 1 << iota
	BindRenderTarget
	BindUnorderedAccess
	BindDepthStencil
	BindConstantBuffer
	BindVertexBuffer
	BindIndexBuffer
)

func (f BindFlags) Has(flag BindFlags) bool {
	return f&flag == flag
}

type TextureDescriptor struct {
	Name   string
	Width  uint32
	Height uint32
	/** @brief The depth of a volume texture, or the array size otherwise. Zero means one. */
	Depth       uint32
	Volume      bool
	MipLevels   uint32
	SampleCount uint32
	Format      Format
	Bind        BindFlags
}

type BufferDescriptor struct {
	Name string
	/** @brief The total size in bytes. */
	Size uint32
	/** @brief The element size of structured buffers, zero otherwise. */
	Stride  uint32
	Bind    BindFlags
	Dynamic bool
}

type ShaderDescriptor struct {
	Name     string
	Stage    ShaderStage
	Bytecode []byte
}

type StateKind uint8

const (
	StateKindRasterizer StateKind = iota
	StateKindDepthStencil
	StateKindBlend
	StateKindSampler
)

type CullMode uint8

const (
	CullModeNone CullMode = iota
	CullModeFront
	CullModeBack
)

type ComparisonFunc uint8

const (
	ComparisonNever ComparisonFunc = iota
	ComparisonLess
	ComparisonLessEqual
	ComparisonGreater
	ComparisonGreaterEqual
	ComparisonAlways
)

type BlendMode uint8

const (
	BlendModeOpaque BlendMode = iota
	BlendModeAlpha
	BlendModeAdditive
	BlendModeMultiply
)

type Filter uint8

const (
	FilterPoint Filter = iota
	FilterLinear
	FilterAnisotropic
	FilterComparisonLinear
)

type AddressMode uint8

const (
	AddressModeWrap AddressMode = iota
	AddressModeClamp
	AddressModeMirror
)

/**
 * @brief Describes a fixed-function state object. Only the fields of the
 * given kind are read.
 */
type StateDescriptor struct {
	Name string
	Kind StateKind

	CullMode    CullMode
	Wireframe   bool
	Multisample bool

	DepthEnable bool
	DepthWrite  bool
	DepthFunc   ComparisonFunc

	Blend BlendMode

	Filter     Filter
	Address    AddressMode
	Comparison ComparisonFunc
	Anisotropy uint32
}

/** @brief A rectangle of the render target in pixels. */
type Viewport struct {
	TopLeftX float32
	TopLeftY float32
	Width    float32
	Height   float32
	MinDepth float32
	MaxDepth float32
}

func NewViewport(width, height uint32) Viewport {
	return Viewport{Width: float32(width), Height: float32(height), MaxDepth: 1.0}
}

// Size returns the viewport size in whole pixels.
func (v Viewport) Size() (uint32, uint32) {
	return uint32(v.Width), uint32(v.Height)
}

// Scaled returns the viewport in supersampled pixels.
func (v Viewport) Scaled(aa AntiAliasing) Viewport {
	m := float32(aa.ResolutionMultiplier())
	v.TopLeftX *= m
	v.TopLeftY *= m
	v.Width *= m
	v.Height *= m
	return v
}

/**
 * @brief Device is the graphics backend the render core drives. Resource
 * creation may fail and reports an error; binding, update and draw calls are
 * issued against an already validated pipeline and do not report errors.
 */
type Device interface {
	CreateTexture(desc TextureDescriptor) (Handle, error)
	CreateBuffer(desc BufferDescriptor) (Handle, error)
	CreateShader(desc ShaderDescriptor) (Handle, error)
	CreateState(desc StateDescriptor) (Handle, error)
	// CreateSliceView creates a view of one slice of an array texture, used
	// to render into a single shadow map or cube face.
	CreateSliceView(name string, texture Handle, slice uint32) (Handle, error)
	Release(handle Handle)

	// BackBuffer returns the render target of the swap chain.
	BackBuffer() Handle

	UpdateBuffer(buffer Handle, data []byte)
	// UpdateTexture replaces the first mip level of texture with tightly
	// packed texels.
	UpdateTexture(texture Handle, data []byte)
	BindConstantBuffer(stage ShaderStage, slot uint32, buffer Handle)
	BindShaderResource(stage ShaderStage, slot uint32, resource Handle)
	BindUnorderedAccess(slot uint32, resource Handle)
	BindRenderTargets(renderTargets []Handle, depthStencil Handle)
	BindShader(stage ShaderStage, shader Handle)
	BindState(state Handle)
	BindSampler(stage ShaderStage, slot uint32, sampler Handle)
	BindPrimitiveTopology(topology PrimitiveTopology)
	BindVertexBuffer(buffer Handle, stride uint32)
	BindIndexBuffer(buffer Handle)
	SetViewport(viewport Viewport)

	ClearRenderTarget(renderTarget Handle, colour math.Vec4)
	ClearDepthStencil(depthStencil Handle, depth float32)
	ClearUnorderedAccess(resource Handle)
	CopyResource(dst, src Handle)
	// GenerateMips fills the lower mip levels of texture from the first.
	GenerateMips(texture Handle)

	Draw(vertexCount, startVertex uint32)
	DrawIndexed(indexCount, startIndex uint32)
	Dispatch(x, y, z uint32)

	// SetMarker annotates the command stream for debuggers and tests.
	SetMarker(name string)
	Present(vsync bool)
}

/**
 * @brief ShaderLibrary supplies compiled shaders by name. Passes resolve every
 * shader they need when they are constructed.
 */
type ShaderLibrary interface {
	Shader(stage ShaderStage, name string) (Handle, error)
}
