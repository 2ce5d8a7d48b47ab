package pipeline

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

var (
	ErrUnalignedLayout = errors.New("constant buffer layout is not a multiple of 16 bytes")
	ErrVariableLayout  = errors.New("buffer layout has no fixed size")
)

// encode writes the GPU layout of data into scratch.
func encode(scratch *bytes.Buffer, data any) []byte {
	scratch.Reset()
	if err := binary.Write(scratch, binary.LittleEndian, data); err != nil {
		// layouts are validated at creation, this is a programming error
		panic(fmt.Sprintf("pipeline: encoding %T: %v", data, err))
	}
	return scratch.Bytes()
}

/**
 * @brief A constant buffer holding one T. Updating and binding are separate:
 * the last update before a draw is the data the draw sees.
 */
type ConstantBuffer[T any] struct {
	device  metadata.Device
	name    string
	buffer  metadata.Handle
	scratch bytes.Buffer
}

func NewConstantBuffer[T any](device metadata.Device, name string) (*ConstantBuffer[T], error) {
	var zero T
	size := binary.Size(zero)
	if size <= 0 {
		return nil, core.NewConstructionError("constant buffer", name, fmt.Errorf("%T: %w", zero, ErrVariableLayout))
	}
	if size%16 != 0 {
		return nil, core.NewConstructionError("constant buffer", name, fmt.Errorf("%T is %d bytes: %w", zero, size, ErrUnalignedLayout))
	}
	buffer, err := device.CreateBuffer(metadata.BufferDescriptor{
		Name:    name,
		Size:    uint32(size),
		Bind:    metadata.BindConstantBuffer,
		Dynamic: true,
	})
	if err != nil {
		return nil, core.NewConstructionError("constant buffer", name, err)
	}
	return &ConstantBuffer[T]{device: device, name: name, buffer: buffer}, nil
}

func (b *ConstantBuffer[T]) UpdateData(data *T) {
	b.device.UpdateBuffer(b.buffer, encode(&b.scratch, data))
}

func (b *ConstantBuffer[T]) Bind(stage metadata.ShaderStage, slot uint32) {
	b.device.BindConstantBuffer(stage, slot, b.buffer)
}

// BindToPipeline binds the buffer to the same slot of every stage.
func (b *ConstantBuffer[T]) BindToPipeline(slot uint32) {
	for stage := metadata.ShaderStage(0); stage < metadata.ShaderStageCount; stage++ {
		b.device.BindConstantBuffer(stage, slot, b.buffer)
	}
}

func (b *ConstantBuffer[T]) Handle() metadata.Handle {
	return b.buffer
}

func (b *ConstantBuffer[T]) Release() {
	if b == nil || b.buffer == metadata.InvalidHandle {
		return
	}
	b.device.Release(b.buffer)
	b.buffer = metadata.InvalidHandle
}

/**
 * @brief A growable array of T on the device, used for structured buffers
 * and dynamic vertex buffers. Growing recreates the buffer with at least
 * twice the capacity.
 */
type DynamicBuffer[T any] struct {
	device   metadata.Device
	name     string
	bind     metadata.BindFlags
	stride   uint32
	buffer   metadata.Handle
	capacity int
	size     int
	scratch  bytes.Buffer
}

func NewStructuredBuffer[T any](device metadata.Device, name string, capacity int) (*DynamicBuffer[T], error) {
	return newDynamicBuffer[T](device, name, capacity, metadata.BindShaderResource)
}

func NewDynamicVertexBuffer[T any](device metadata.Device, name string, capacity int) (*DynamicBuffer[T], error) {
	return newDynamicBuffer[T](device, name, capacity, metadata.BindVertexBuffer)
}

func newDynamicBuffer[T any](device metadata.Device, name string, capacity int, bind metadata.BindFlags) (*DynamicBuffer[T], error) {
	var zero T
	stride := binary.Size(zero)
	if stride <= 0 {
		return nil, core.NewConstructionError("dynamic buffer", name, fmt.Errorf("%T: %w", zero, ErrVariableLayout))
	}
	b := &DynamicBuffer[T]{
		device: device,
		name:   name,
		bind:   bind,
		stride: uint32(stride),
	}
	if err := b.allocate(max(capacity, 1)); err != nil {
		return nil, core.NewConstructionError("dynamic buffer", name, err)
	}
	return b, nil
}

func (b *DynamicBuffer[T]) allocate(capacity int) error {
	buffer, err := b.device.CreateBuffer(metadata.BufferDescriptor{
		Name:    b.name,
		Size:    uint32(capacity) * b.stride,
		Stride:  b.stride,
		Bind:    b.bind,
		Dynamic: true,
	})
	if err != nil {
		return err
	}
	if b.buffer != metadata.InvalidHandle {
		b.device.Release(b.buffer)
	}
	b.buffer = buffer
	b.capacity = capacity
	return nil
}

/**
 * @brief Replaces the contents of the buffer. A failure to grow the buffer
 * during a frame is not recoverable and panics.
 */
func (b *DynamicBuffer[T]) UpdateData(data []T) {
	if len(data) > b.capacity {
		if err := b.allocate(max(len(data), 2*b.capacity)); err != nil {
			panic(core.NewConstructionError("dynamic buffer", b.name, err))
		}
	}
	b.size = len(data)
	if len(data) == 0 {
		return
	}
	b.device.UpdateBuffer(b.buffer, encode(&b.scratch, data))
}

func (b *DynamicBuffer[T]) BindShaderResource(stage metadata.ShaderStage, slot uint32) {
	b.device.BindShaderResource(stage, slot, b.buffer)
}

func (b *DynamicBuffer[T]) BindVertexBuffer() {
	b.device.BindVertexBuffer(b.buffer, b.stride)
}

func (b *DynamicBuffer[T]) Len() int {
	return b.size
}

func (b *DynamicBuffer[T]) Capacity() int {
	return b.capacity
}

func (b *DynamicBuffer[T]) Handle() metadata.Handle {
	return b.buffer
}

func (b *DynamicBuffer[T]) Release() {
	if b == nil || b.buffer == metadata.InvalidHandle {
		return
	}
	b.device.Release(b.buffer)
	b.buffer = metadata.InvalidHandle
}

/**
 * @brief Creates an immutable buffer initialized with data, a slice of a
 * fixed-size type.
 */
func CreateStaticBuffer(device metadata.Device, name string, bind metadata.BindFlags, data any) (metadata.Handle, error) {
	size := binary.Size(data)
	if size <= 0 {
		return metadata.InvalidHandle, core.NewConstructionError("static buffer", name, fmt.Errorf("%T: %w", data, ErrVariableLayout))
	}
	buffer, err := device.CreateBuffer(metadata.BufferDescriptor{Name: name, Size: uint32(size), Bind: bind})
	if err != nil {
		return metadata.InvalidHandle, core.NewConstructionError("static buffer", name, err)
	}
	var scratch bytes.Buffer
	device.UpdateBuffer(buffer, encode(&scratch, data))
	return buffer, nil
}
