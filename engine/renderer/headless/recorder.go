package headless

import (
	"fmt"
	"sync"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

type Op uint8

const (
	OpCreateTexture Op = iota
	OpCreateBuffer
	OpCreateShader
	OpCreateState
	OpCreateView
	OpRelease
	OpUpdateBuffer
	OpUpdateTexture
	OpBindConstantBuffer
	OpBindShaderResource
	OpBindUnorderedAccess
	OpBindRenderTargets
	OpBindShader
	OpBindState
	OpBindSampler
	OpBindPrimitiveTopology
	OpBindVertexBuffer
	OpBindIndexBuffer
	OpSetViewport
	OpClearRenderTarget
	OpClearDepthStencil
	OpClearUnorderedAccess
	OpCopyResource
	OpGenerateMips
	OpDraw
	OpDrawIndexed
	OpDispatch
	OpSetMarker
	OpPresent
	opCount
)

var opNames = [opCount]string{
	"CreateTexture", "CreateBuffer", "CreateShader", "CreateState", "CreateView", "Release",
	"UpdateBuffer", "UpdateTexture", "BindConstantBuffer", "BindShaderResource", "BindUnorderedAccess",
	"BindRenderTargets", "BindShader", "BindState", "BindSampler", "BindPrimitiveTopology",
	"BindVertexBuffer", "BindIndexBuffer", "SetViewport", "ClearRenderTarget",
	"ClearDepthStencil", "ClearUnorderedAccess", "CopyResource", "GenerateMips", "Draw", "DrawIndexed",
	"Dispatch", "SetMarker", "Present",
}

func (op Op) String() string {
	if op < opCount {
		return opNames[op]
	}
	return fmt.Sprintf("Op(%d)", uint8(op))
}

/**
 * @brief A recorded device call. Only the fields meaningful for the op are set.
 */
type Command struct {
	Op    Op
	Name  string
	Stage metadata.ShaderStage
	Slot  uint32
	// Bound, created or copied resources. For render targets the depth
	// stencil view comes last.
	Handles  []metadata.Handle
	Counts   [3]uint32
	Viewport metadata.Viewport
	Value    float32
}

type ResourceKind uint8

const (
	ResourceTexture ResourceKind = iota
	ResourceBuffer
	ResourceShader
	ResourceState
	ResourceView
)

type Resource struct {
	Name     string
	Kind     ResourceKind
	Texture  metadata.TextureDescriptor
	Buffer   metadata.BufferDescriptor
	Shader   metadata.ShaderDescriptor
	State    metadata.StateDescriptor
	// The texture and slice of a view.
	Parent   metadata.Handle
	Slice    uint32
	Data     []byte
	Released bool
}

/**
 * @brief Recorder is a Device without a GPU. It records every call so tests
 * can assert on the command stream, and can be told to fail resource
 * creation to exercise construction errors. Safe for concurrent use.
 */
type Recorder struct {
	mu         sync.Mutex
	commands   []Command
	resources  map[metadata.Handle]*Resource
	next       metadata.Handle
	backBuffer metadata.Handle

	failures  map[string]error
	failAfter int
	failErr   error
	creations int
}

func NewRecorder() *Recorder {
	r := &Recorder{
		resources: make(map[metadata.Handle]*Resource),
		failures:  make(map[string]error),
		failAfter: -1,
	}
	r.backBuffer = r.add(&Resource{
		Name: "back_buffer",
		Kind: ResourceTexture,
		Texture: metadata.TextureDescriptor{
			Name:   "back_buffer",
			Format: metadata.FormatR8G8B8A8UnormSRGB,
			Bind:   metadata.BindRenderTarget,
		},
	})
	return r
}

// FailCreate makes the creation of the resource with the given name fail with err.
func (r *Recorder) FailCreate(name string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures[name] = err
}

// FailCreateAfter lets n more creations succeed and fails every later one with err.
func (r *Recorder) FailCreateAfter(n int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failAfter = r.creations + n
	r.failErr = err
}

func (r *Recorder) add(res *Resource) metadata.Handle {
	r.next++
	r.resources[r.next] = res
	return r.next
}

func (r *Recorder) create(op Op, res *Resource) (metadata.Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err, ok := r.failures[res.Name]; ok {
		return metadata.InvalidHandle, err
	}
	if r.failAfter >= 0 && r.creations >= r.failAfter {
		return metadata.InvalidHandle, r.failErr
	}
	r.creations++
	h := r.add(res)
	r.commands = append(r.commands, Command{Op: op, Name: res.Name, Handles: []metadata.Handle{h}})
	return h, nil
}

func (r *Recorder) record(cmd Command) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = append(r.commands, cmd)
}

func (r *Recorder) CreateTexture(desc metadata.TextureDescriptor) (metadata.Handle, error) {
	if desc.Width == 0 || desc.Height == 0 {
		return metadata.InvalidHandle, fmt.Errorf("texture %s: empty extent %dx%d", desc.Name, desc.Width, desc.Height)
	}
	return r.create(OpCreateTexture, &Resource{Name: desc.Name, Kind: ResourceTexture, Texture: desc})
}

func (r *Recorder) CreateBuffer(desc metadata.BufferDescriptor) (metadata.Handle, error) {
	if desc.Size == 0 {
		return metadata.InvalidHandle, fmt.Errorf("buffer %s: empty", desc.Name)
	}
	return r.create(OpCreateBuffer, &Resource{Name: desc.Name, Kind: ResourceBuffer, Buffer: desc})
}

func (r *Recorder) CreateShader(desc metadata.ShaderDescriptor) (metadata.Handle, error) {
	return r.create(OpCreateShader, &Resource{Name: desc.Name, Kind: ResourceShader, Shader: desc})
}

func (r *Recorder) CreateState(desc metadata.StateDescriptor) (metadata.Handle, error) {
	return r.create(OpCreateState, &Resource{Name: desc.Name, Kind: ResourceState, State: desc})
}

func (r *Recorder) CreateSliceView(name string, texture metadata.Handle, slice uint32) (metadata.Handle, error) {
	parent, ok := r.Resource(texture)
	if !ok || parent.Kind != ResourceTexture {
		return metadata.InvalidHandle, fmt.Errorf("view %s: %w", name, core.ErrInvalidHandle)
	}
	if layers := max(parent.Texture.Depth, 1); slice >= layers {
		return metadata.InvalidHandle, fmt.Errorf("view %s: slice %d of %d layers", name, slice, layers)
	}
	return r.create(OpCreateView, &Resource{Name: name, Kind: ResourceView, Parent: texture, Slice: slice})
}

func (r *Recorder) Release(handle metadata.Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.resources[handle]; ok {
		res.Released = true
	}
	r.commands = append(r.commands, Command{Op: OpRelease, Handles: []metadata.Handle{handle}})
}

func (r *Recorder) BackBuffer() metadata.Handle {
	return r.backBuffer
}

func (r *Recorder) UpdateBuffer(buffer metadata.Handle, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.resources[buffer]; ok {
		res.Data = append(res.Data[:0], data...)
	}
	r.commands = append(r.commands, Command{Op: OpUpdateBuffer, Handles: []metadata.Handle{buffer}, Counts: [3]uint32{uint32(len(data))}})
}

func (r *Recorder) UpdateTexture(texture metadata.Handle, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.resources[texture]; ok {
		res.Data = append(res.Data[:0], data...)
	}
	r.commands = append(r.commands, Command{Op: OpUpdateTexture, Handles: []metadata.Handle{texture}, Counts: [3]uint32{uint32(len(data))}})
}

func (r *Recorder) BindConstantBuffer(stage metadata.ShaderStage, slot uint32, buffer metadata.Handle) {
	r.record(Command{Op: OpBindConstantBuffer, Stage: stage, Slot: slot, Handles: []metadata.Handle{buffer}})
}

func (r *Recorder) BindShaderResource(stage metadata.ShaderStage, slot uint32, resource metadata.Handle) {
	r.record(Command{Op: OpBindShaderResource, Stage: stage, Slot: slot, Handles: []metadata.Handle{resource}})
}

func (r *Recorder) BindUnorderedAccess(slot uint32, resource metadata.Handle) {
	r.record(Command{Op: OpBindUnorderedAccess, Stage: metadata.ShaderStageCompute, Slot: slot, Handles: []metadata.Handle{resource}})
}

func (r *Recorder) BindRenderTargets(renderTargets []metadata.Handle, depthStencil metadata.Handle) {
	handles := make([]metadata.Handle, 0, len(renderTargets)+1)
	handles = append(handles, renderTargets...)
	handles = append(handles, depthStencil)
	r.record(Command{Op: OpBindRenderTargets, Handles: handles})
}

func (r *Recorder) BindShader(stage metadata.ShaderStage, shader metadata.Handle) {
	r.record(Command{Op: OpBindShader, Stage: stage, Handles: []metadata.Handle{shader}, Name: r.name(shader)})
}

func (r *Recorder) BindState(state metadata.Handle) {
	r.record(Command{Op: OpBindState, Handles: []metadata.Handle{state}, Name: r.name(state)})
}

func (r *Recorder) BindSampler(stage metadata.ShaderStage, slot uint32, sampler metadata.Handle) {
	r.record(Command{Op: OpBindSampler, Stage: stage, Slot: slot, Handles: []metadata.Handle{sampler}})
}

func (r *Recorder) BindPrimitiveTopology(topology metadata.PrimitiveTopology) {
	r.record(Command{Op: OpBindPrimitiveTopology, Counts: [3]uint32{uint32(topology)}})
}

func (r *Recorder) BindVertexBuffer(buffer metadata.Handle, stride uint32) {
	r.record(Command{Op: OpBindVertexBuffer, Handles: []metadata.Handle{buffer}, Counts: [3]uint32{stride}})
}

func (r *Recorder) BindIndexBuffer(buffer metadata.Handle) {
	r.record(Command{Op: OpBindIndexBuffer, Handles: []metadata.Handle{buffer}})
}

func (r *Recorder) SetViewport(viewport metadata.Viewport) {
	r.record(Command{Op: OpSetViewport, Viewport: viewport})
}

func (r *Recorder) ClearRenderTarget(renderTarget metadata.Handle, colour math.Vec4) {
	r.record(Command{Op: OpClearRenderTarget, Handles: []metadata.Handle{renderTarget}})
}

func (r *Recorder) ClearDepthStencil(depthStencil metadata.Handle, depth float32) {
	r.record(Command{Op: OpClearDepthStencil, Handles: []metadata.Handle{depthStencil}, Value: depth})
}

func (r *Recorder) ClearUnorderedAccess(resource metadata.Handle) {
	r.record(Command{Op: OpClearUnorderedAccess, Handles: []metadata.Handle{resource}})
}

func (r *Recorder) CopyResource(dst, src metadata.Handle) {
	r.record(Command{Op: OpCopyResource, Handles: []metadata.Handle{dst, src}})
}

func (r *Recorder) GenerateMips(texture metadata.Handle) {
	r.record(Command{Op: OpGenerateMips, Handles: []metadata.Handle{texture}})
}

func (r *Recorder) Draw(vertexCount, startVertex uint32) {
	r.record(Command{Op: OpDraw, Counts: [3]uint32{vertexCount, startVertex}})
}

func (r *Recorder) DrawIndexed(indexCount, startIndex uint32) {
	r.record(Command{Op: OpDrawIndexed, Counts: [3]uint32{indexCount, startIndex}})
}

func (r *Recorder) Dispatch(x, y, z uint32) {
	r.record(Command{Op: OpDispatch, Counts: [3]uint32{x, y, z}})
}

func (r *Recorder) SetMarker(name string) {
	r.record(Command{Op: OpSetMarker, Name: name})
}

func (r *Recorder) Present(vsync bool) {
	var v uint32
	if vsync {
		v = 1
	}
	r.record(Command{Op: OpPresent, Counts: [3]uint32{v}})
}

func (r *Recorder) name(h metadata.Handle) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.resources[h]; ok {
		return res.Name
	}
	return ""
}

// Commands returns a copy of the recorded command stream.
func (r *Recorder) Commands() []Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Command, len(r.commands))
	copy(out, r.commands)
	return out
}

// Markers returns the recorded marker names in order.
func (r *Recorder) Markers() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var markers []string
	for _, cmd := range r.commands {
		if cmd.Op == OpSetMarker {
			markers = append(markers, cmd.Name)
		}
	}
	return markers
}

func (r *Recorder) Count(op Op) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, cmd := range r.commands {
		if cmd.Op == op {
			n++
		}
	}
	return n
}

// Reset forgets the recorded commands. Resources are kept.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = r.commands[:0]
}

func (r *Recorder) Resource(h metadata.Handle) (Resource, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.resources[h]
	if !ok {
		return Resource{}, false
	}
	return *res, true
}

// Lookup returns the handle of the live resource with the given name.
func (r *Recorder) Lookup(name string) (metadata.Handle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for h, res := range r.resources {
		if res.Name == name && !res.Released {
			return h, true
		}
	}
	return metadata.InvalidHandle, false
}

// LiveResources returns the number of created and not released resources.
func (r *Recorder) LiveResources() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, res := range r.resources {
		if !res.Released {
			n++
		}
	}
	return n
}

func (r *Recorder) LiveResourcesOf(kind ResourceKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, res := range r.resources {
		if res.Kind == kind && !res.Released {
			n++
		}
	}
	return n
}
