package assets

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/spaghettifunk/lumen/engine/assets/loaders"
	"github.com/spaghettifunk/lumen/engine/containers"
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
	"github.com/spaghettifunk/lumen/engine/renderer/pipeline"
	"github.com/spaghettifunk/lumen/engine/scene"
	"github.com/spaghettifunk/lumen/engine/systems"
)

var ErrEmptyMesh = errors.New("mesh without triangles")

// Key of the built-in font.
const defaultFontKey = "<default>"

type ModelResource struct {
	GUID  uuid.UUID
	Path  string
	Mesh  *scene.Mesh
	Parts []loaders.MeshGroup
}

// Models returns a model per part. Parts naming a material get a copy of
// material renamed after it.
func (m *ModelResource) Models(material scene.Material) []scene.Model {
	models := make([]scene.Model, 0, len(m.Parts))
	for _, part := range m.Parts {
		mat := material
		if part.Material != "" {
			mat.Name = part.Material
		}
		models = append(models, scene.NewModelRange(m.Mesh, part.StartIndex, part.IndexCount, part.AABB, mat))
	}
	return models
}

type TextureResource struct {
	GUID    uuid.UUID
	Path    string
	Texture metadata.Handle
	Width   uint32
	Height  uint32
}

type FontResource struct {
	GUID uuid.UUID
	Path string
	Font *scene.SpriteFont
}

type shaderKey struct {
	stage metadata.ShaderStage
	name  string
}

type ResourceManagerConfig struct {
	// Directory of the compiled shaders, relative to the asset root.
	ShaderDir string
	// Pixel size TrueType fonts are rasterized at.
	FontSize float64
}

/**
 * @brief ResourceManager loads assets through the AssetManager index and
 * uploads them to the device. Resources are shared by path and reference
 * counted. A changed file is dropped from the cache so the next request
 * reloads it; resources still referenced at that point are released on Close.
 * Everything but the asynchronous parsing runs on the frame thread.
 */
type ResourceManager struct {
	device metadata.Device
	assets *AssetManager
	jobs   *systems.JobSystem
	config ResourceManagerConfig

	meshLoaders map[string]Loader[*loaders.MeshData]

	models   *containers.ResourcePool[string, *ModelResource]
	textures *containers.ResourcePool[string, *TextureResource]
	fonts    *containers.ResourcePool[string, *FontResource]
	shaders  *containers.ResourcePool[shaderKey, metadata.Handle]

	mu      sync.Mutex
	retired []metadata.Handle
}

// NewResourceManager creates a manager; jobs may be nil, which makes the
// asynchronous loads synchronous.
func NewResourceManager(device metadata.Device, assets *AssetManager, jobs *systems.JobSystem, config ResourceManagerConfig) *ResourceManager {
	if config.FontSize <= 0 {
		config.FontSize = 16
	}
	return &ResourceManager{
		device:      device,
		assets:      assets,
		jobs:        jobs,
		config:      config,
		meshLoaders: defaultMeshLoaders(),
		models:      containers.NewResourcePool[string, *ModelResource](),
		textures:    containers.NewResourcePool[string, *TextureResource](),
		fonts:       containers.NewResourcePool[string, *FontResource](),
		shaders:     containers.NewResourcePool[shaderKey, metadata.Handle](),
	}
}

// RegisterMeshLoader handles files with the given extension, replacing any previous loader.
func (rm *ResourceManager) RegisterMeshLoader(ext string, loader Loader[*loaders.MeshData]) {
	rm.meshLoaders[strings.ToLower(ext)] = loader
}

// Model returns the model at path, relative to the asset root, loading it on first use.
func (rm *ResourceManager) Model(path string) (*ModelResource, error) {
	return rm.models.Acquire(path, func() (*ModelResource, error) {
		data, err := rm.readMesh(path)
		if err != nil {
			return nil, err
		}
		return rm.uploadModel(path, data)
	})
}

/**
 * @brief Parses the model at path on a job worker and uploads it when the
 * job system delivers the result. done runs on the goroutine calling
 * JobSystem.Update.
 */
func (rm *ResourceManager) ModelAsync(path string, done func(*ModelResource, error)) error {
	if model, ok := rm.models.Get(path); ok {
		// Take the reference the caller will release.
		_, err := rm.models.Acquire(path, func() (*ModelResource, error) { return model, nil })
		done(model, err)
		return nil
	}
	if rm.jobs == nil {
		done(rm.Model(path))
		return nil
	}
	return rm.jobs.Submit(systems.JobTask{
		Name: "load " + path,
		Run: func(ctx context.Context) (any, error) {
			return rm.readMesh(path)
		},
		OnComplete: func(result any) {
			data := result.(*loaders.MeshData)
			done(rm.models.Acquire(path, func() (*ModelResource, error) {
				return rm.uploadModel(path, data)
			}))
		},
		OnFailure: func(err error) { done(nil, err) },
	})
}

func (rm *ResourceManager) ReleaseModel(path string) {
	model, ok := rm.models.Get(path)
	if ok && rm.models.Release(path) {
		rm.releaseMesh(model.Mesh)
	}
}

func (rm *ResourceManager) readMesh(path string) (*loaders.MeshData, error) {
	full, err := rm.assets.FullPath(path)
	if err != nil {
		return nil, err
	}
	loader, ok := rm.meshLoaders[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, &core.LoadError{Path: path, Err: fmt.Errorf("mesh format: %w", core.ErrUnsupported)}
	}
	data, err := loader.Load(full)
	if err != nil {
		return nil, err
	}
	if len(data.Indices) == 0 {
		return nil, &core.LoadError{Path: path, Err: ErrEmptyMesh}
	}
	return data, nil
}

func (rm *ResourceManager) uploadModel(path string, data *loaders.MeshData) (*ModelResource, error) {
	mesh := &scene.Mesh{
		Name:         data.Name,
		Stride:       uint32(binary.Size(math.Vertex3D{})),
		VertexCount:  uint32(len(data.Vertices)),
		IndexCount:   uint32(len(data.Indices)),
		Topology:     metadata.PrimitiveTopologyTriangleList,
		AABB:         data.AABB(),
		VertexBuffer: metadata.InvalidHandle,
		IndexBuffer:  metadata.InvalidHandle,
	}
	var err error
	mesh.VertexBuffer, err = pipeline.CreateStaticBuffer(rm.device, path+"/vertices", metadata.BindVertexBuffer, data.Vertices)
	if err != nil {
		return nil, err
	}
	mesh.IndexBuffer, err = pipeline.CreateStaticBuffer(rm.device, path+"/indices", metadata.BindIndexBuffer, data.Indices)
	if err != nil {
		rm.releaseMesh(mesh)
		return nil, err
	}

	model := &ModelResource{
		GUID:  uuid.New(),
		Path:  path,
		Mesh:  mesh,
		Parts: data.Groups,
	}
	core.LogDebug("loaded model %s (%s): %d vertices, %d parts", path, model.GUID, mesh.VertexCount, len(model.Parts))
	return model, nil
}

func (rm *ResourceManager) releaseMesh(mesh *scene.Mesh) {
	for _, h := range []metadata.Handle{mesh.VertexBuffer, mesh.IndexBuffer} {
		if h != metadata.InvalidHandle {
			rm.device.Release(h)
		}
	}
	mesh.VertexBuffer = metadata.InvalidHandle
	mesh.IndexBuffer = metadata.InvalidHandle
}

// Texture returns the texture at path with a full mip chain.
func (rm *ResourceManager) Texture(path string) (*TextureResource, error) {
	return rm.textures.Acquire(path, func() (*TextureResource, error) {
		full, err := rm.assets.FullPath(path)
		if err != nil {
			return nil, err
		}
		img, err := loaders.LoadImage(full)
		if err != nil {
			return nil, err
		}
		h, err := rm.uploadImage(path, img, 0)
		if err != nil {
			return nil, err
		}
		return &TextureResource{GUID: uuid.New(), Path: path, Texture: h, Width: img.Width, Height: img.Height}, nil
	})
}

func (rm *ResourceManager) ReleaseTexture(path string) {
	texture, ok := rm.textures.Get(path)
	if ok && rm.textures.Release(path) {
		rm.device.Release(texture.Texture)
	}
}

// uploadImage creates an sRGB texture; zero mip levels means a full chain.
func (rm *ResourceManager) uploadImage(name string, img *loaders.ImageData, mipLevels uint32) (metadata.Handle, error) {
	bind := metadata.BindShaderResource
	if mipLevels == 0 {
		bind |= metadata.BindRenderTarget
	}
	h, err := rm.device.CreateTexture(metadata.TextureDescriptor{
		Name:      name,
		Width:     img.Width,
		Height:    img.Height,
		MipLevels: mipLevels,
		Format:    metadata.FormatR8G8B8A8UnormSRGB,
		Bind:      bind,
	})
	if err != nil {
		return metadata.InvalidHandle, core.NewConstructionError("resource manager", name, err)
	}
	rm.device.UpdateTexture(h, img.Pixels)
	if mipLevels != 1 {
		rm.device.GenerateMips(h)
	}
	return h, nil
}

// Font returns the sprite font at path: a BMFont descriptor or a TrueType font.
func (rm *ResourceManager) Font(path string) (*scene.SpriteFont, error) {
	res, err := rm.fonts.Acquire(path, func() (*FontResource, error) {
		full, err := rm.assets.FullPath(path)
		if err != nil {
			return nil, err
		}
		var data *loaders.FontData
		switch strings.ToLower(filepath.Ext(path)) {
		case ".fnt":
			data, err = loaders.LoadBitmapFont(full)
		default:
			data, err = loaders.LoadTrueTypeFont(full, rm.config.FontSize, loaders.PrintableASCII())
		}
		if err != nil {
			return nil, err
		}
		return rm.uploadFont(path, data)
	})
	if err != nil {
		return nil, err
	}
	return res.Font, nil
}

// DefaultFont returns the built-in font, which needs no asset.
func (rm *ResourceManager) DefaultFont() (*scene.SpriteFont, error) {
	res, err := rm.fonts.Acquire(defaultFontKey, func() (*FontResource, error) {
		return rm.uploadFont(defaultFontKey, loaders.DefaultFont())
	})
	if err != nil {
		return nil, err
	}
	return res.Font, nil
}

func (rm *ResourceManager) ReleaseFont(path string) {
	font, ok := rm.fonts.Get(path)
	if ok && rm.fonts.Release(path) {
		rm.device.Release(font.Font.Texture)
	}
}

func (rm *ResourceManager) uploadFont(path string, data *loaders.FontData) (*FontResource, error) {
	h, err := rm.uploadImage(path, data.Atlas, 1)
	if err != nil {
		return nil, err
	}
	font := data.Font
	font.Texture = h
	return &FontResource{GUID: uuid.New(), Path: path, Font: &font}, nil
}

/**
 * @brief Shader returns the compiled shader <ShaderDir>/<name>.<stage>.spv.
 * Shaders live until Close.
 */
func (rm *ResourceManager) Shader(stage metadata.ShaderStage, name string) (metadata.Handle, error) {
	return rm.shaders.Acquire(shaderKey{stage: stage, name: name}, func() (metadata.Handle, error) {
		path := filepath.ToSlash(filepath.Join(rm.config.ShaderDir, fmt.Sprintf("%s.%s.spv", name, stage)))
		full, err := rm.assets.FullPath(path)
		if err != nil {
			return metadata.InvalidHandle, fmt.Errorf("shader %s/%s: %w", stage, name, err)
		}
		bytecode, err := loaders.LoadShaderBlob(full)
		if err != nil {
			return metadata.InvalidHandle, err
		}
		return rm.device.CreateShader(metadata.ShaderDescriptor{
			Name:     name,
			Stage:    stage,
			Bytecode: bytecode,
		})
	})
}

/**
 * @brief OnAssetChanged drops the changed asset from the caches. Registered
 * for EVENT_CODE_ASSET_CHANGED, so it runs during the event dispatch of the
 * frame thread.
 */
func (rm *ResourceManager) OnAssetChanged(ctx core.EventContext) bool {
	event, ok := ctx.Data.(*core.AssetEvent)
	if !ok {
		return false
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()
	if model, ok := rm.models.Evict(event.Path); ok {
		rm.retired = append(rm.retired, model.Mesh.VertexBuffer, model.Mesh.IndexBuffer)
		core.LogInfo("model %s changed, reloading on next use", event.Path)
	}
	if texture, ok := rm.textures.Evict(event.Path); ok {
		rm.retired = append(rm.retired, texture.Texture)
		core.LogInfo("texture %s changed, reloading on next use", event.Path)
	}
	if font, ok := rm.fonts.Evict(event.Path); ok {
		rm.retired = append(rm.retired, font.Font.Texture)
		core.LogInfo("font %s changed, reloading on next use", event.Path)
	}
	return false
}

// Close releases every device resource the manager created.
func (rm *ResourceManager) Close() {
	for _, model := range rm.models.Clear() {
		rm.releaseMesh(model.Mesh)
	}
	for _, texture := range rm.textures.Clear() {
		rm.device.Release(texture.Texture)
	}
	for _, font := range rm.fonts.Clear() {
		rm.device.Release(font.Font.Texture)
	}
	for _, shader := range rm.shaders.Clear() {
		rm.device.Release(shader)
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()
	for _, h := range rm.retired {
		if h != metadata.InvalidHandle {
			rm.device.Release(h)
		}
	}
	rm.retired = nil
}
