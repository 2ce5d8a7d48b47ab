package headless

import (
	"fmt"
	"sync"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

type shaderKey struct {
	stage metadata.ShaderStage
	name  string
}

/**
 * @brief ShaderLibrary creates an empty shader on the device for every
 * requested name. The same stage and name always yield the same handle.
 */
type ShaderLibrary struct {
	mu      sync.Mutex
	device  metadata.Device
	shaders map[shaderKey]metadata.Handle
	missing map[string]struct{}
}

func NewShaderLibrary(device metadata.Device) *ShaderLibrary {
	return &ShaderLibrary{
		device:  device,
		shaders: make(map[shaderKey]metadata.Handle),
		missing: make(map[string]struct{}),
	}
}

// Remove makes later requests for the named shaders fail with ErrResourceNotFound.
func (l *ShaderLibrary) Remove(names ...string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, name := range names {
		l.missing[name] = struct{}{}
	}
}

func (l *ShaderLibrary) Shader(stage metadata.ShaderStage, name string) (metadata.Handle, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.missing[name]; ok {
		return metadata.InvalidHandle, fmt.Errorf("shader %s/%s: %w", stage, name, core.ErrResourceNotFound)
	}
	key := shaderKey{stage: stage, name: name}
	if h, ok := l.shaders[key]; ok {
		return h, nil
	}
	h, err := l.device.CreateShader(metadata.ShaderDescriptor{
		Name:     name,
		Stage:    stage,
		Bytecode: []byte(name),
	})
	if err != nil {
		return metadata.InvalidHandle, err
	}
	l.shaders[key] = h
	return h, nil
}

func (l *ShaderLibrary) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.shaders)
}
