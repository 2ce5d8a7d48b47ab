package assets

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/spaghettifunk/lumen/engine/core"
)

type AssetType int

const (
	AssetTypeNone AssetType = iota
	AssetTypeMesh
	AssetTypeTexture
	AssetTypeFont
	AssetTypeShader
)

func (t AssetType) String() string {
	switch t {
	case AssetTypeMesh:
		return "mesh"
	case AssetTypeTexture:
		return "texture"
	case AssetTypeFont:
		return "font"
	case AssetTypeShader:
		return "shader"
	default:
		return "none"
	}
}

type AssetInfo struct {
	// Slash separated, relative to the asset root.
	Path     string
	Type     AssetType
	Modified time.Time
}

/**
 * @brief AssetManager indexes the files below an asset root and watches them.
 * Created, written and removed files update the index and post an
 * EVENT_CODE_ASSET_CHANGED event, delivered at the next event dispatch.
 */
type AssetManager struct {
	root   string
	assets map[string]AssetInfo
	events *core.EventSystem

	mutex sync.RWMutex

	done     chan struct{}
	stopped  sync.WaitGroup
	fsnotify *fsnotify.Watcher
	isClosed bool
}

// NewAssetManager creates a manager posting changes to events, which may be nil.
func NewAssetManager(events *core.EventSystem) (*AssetManager, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, core.NewConstructionError("asset manager", "file watcher", err)
	}

	return &AssetManager{
		assets:   make(map[string]AssetInfo),
		events:   events,
		fsnotify: fsWatch,
		done:     make(chan struct{}),
	}, nil
}

// Initialize indexes assetsDir and starts watching it and its subdirectories.
func (am *AssetManager) Initialize(assetsDir string) error {
	root, err := filepath.Abs(assetsDir)
	if err != nil {
		return err
	}
	am.mutex.Lock()
	if am.isClosed {
		am.mutex.Unlock()
		return core.ErrAlreadyClosed
	}
	am.root = root
	am.mutex.Unlock()

	if err := am.watchRecursive(root); err != nil {
		return err
	}

	am.stopped.Add(1)
	go am.start()

	core.LogInfo("asset manager indexed %d assets below %s", am.Len(), root)
	return nil
}

func (am *AssetManager) Root() string {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	return am.root
}

// Resolve looks an asset up by its path relative to the root.
func (am *AssetManager) Resolve(path string) (AssetInfo, bool) {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	info, ok := am.assets[filepath.ToSlash(filepath.Clean(path))]
	return info, ok
}

// FullPath returns the file system path of an indexed asset.
func (am *AssetManager) FullPath(path string) (string, error) {
	info, ok := am.Resolve(path)
	if !ok {
		return "", &core.LoadError{Path: path, Err: core.ErrResourceNotFound}
	}
	return filepath.Join(am.Root(), filepath.FromSlash(info.Path)), nil
}

// Assets lists the indexed assets of type t sorted by path.
func (am *AssetManager) Assets(t AssetType) []AssetInfo {
	am.mutex.RLock()
	defer am.mutex.RUnlock()

	var out []AssetInfo
	for _, info := range am.assets {
		if info.Type == t {
			out = append(out, info)
		}
	}
	slices.SortFunc(out, func(a, b AssetInfo) int { return strings.Compare(a.Path, b.Path) })
	return out
}

func (am *AssetManager) Len() int {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	return len(am.assets)
}

// Close stops watching. The index stays readable.
func (am *AssetManager) Close() error {
	am.mutex.Lock()
	if am.isClosed {
		am.mutex.Unlock()
		return core.ErrAlreadyClosed
	}
	am.isClosed = true
	am.mutex.Unlock()

	close(am.done)
	am.stopped.Wait()
	return am.fsnotify.Close()
}

func (am *AssetManager) start() {
	defer am.stopped.Done()
	for {
		select {
		case e, ok := <-am.fsnotify.Events:
			if !ok {
				return
			}
			am.handleEvent(e)

		case err, ok := <-am.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError("asset watcher: %s", err.Error())

		case <-am.done:
			return
		}
	}
}

func (am *AssetManager) handleEvent(e fsnotify.Event) {
	if e.Has(fsnotify.Create) {
		if s, err := os.Stat(e.Name); err == nil && s.IsDir() {
			if err := am.watchRecursive(e.Name); err != nil {
				core.LogWarn("asset watcher: failed to watch %s: %s", e.Name, err.Error())
			}
			return
		}
	}
	switch {
	case e.Has(fsnotify.Create), e.Has(fsnotify.Write):
		if path, ok := am.handleFileEvent(e.Name); ok {
			am.post(path, false)
		}
	case e.Has(fsnotify.Remove), e.Has(fsnotify.Rename):
		// A removed directory cannot be told apart from a file anymore.
		_ = am.fsnotify.Remove(e.Name)
		if path, ok := am.removeAsset(e.Name); ok {
			am.post(path, true)
		}
	}
}

func (am *AssetManager) post(path string, removed bool) {
	if am.events == nil {
		return
	}
	err := am.events.Post(core.EventContext{
		Type:   core.EVENT_CODE_ASSET_CHANGED,
		Sender: am,
		Data:   &core.AssetEvent{Path: path, Removed: removed},
	})
	if err != nil {
		core.LogWarn("asset watcher: dropped change of %s: %s", path, err.Error())
	}
}

// watchRecursive watches path and its subdirectories and indexes their files.
// Files created before the watch on their directory is added are still
// indexed by the walk.
func (am *AssetManager) watchRecursive(path string) error {
	return filepath.WalkDir(path, func(walkPath string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return am.fsnotify.Add(walkPath)
		}
		am.handleFileEvent(walkPath)
		return nil
	})
}

// Handle the creation or modification of a file
func (am *AssetManager) handleFileEvent(fullPath string) (string, bool) {
	assetType := determineAssetType(fullPath)
	if assetType == AssetTypeNone {
		return "", false
	}
	var modified time.Time
	if s, err := os.Stat(fullPath); err == nil {
		modified = s.ModTime()
	}

	am.mutex.Lock()
	defer am.mutex.Unlock()

	path, ok := am.relative(fullPath)
	if !ok {
		return "", false
	}
	am.assets[path] = AssetInfo{
		Path:     path,
		Type:     assetType,
		Modified: modified,
	}
	return path, true
}

// Remove the asset from the index if it was deleted
func (am *AssetManager) removeAsset(fullPath string) (string, bool) {
	am.mutex.Lock()
	defer am.mutex.Unlock()

	path, ok := am.relative(fullPath)
	if !ok {
		return "", false
	}
	if _, ok := am.assets[path]; !ok {
		return "", false
	}
	delete(am.assets, path)
	return path, true
}

func (am *AssetManager) relative(fullPath string) (string, bool) {
	rel, err := filepath.Rel(am.root, fullPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func determineAssetType(path string) AssetType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj", ".msh", ".gltf", ".glb":
		return AssetTypeMesh
	case ".png", ".jpg", ".jpeg", ".bmp", ".tif", ".tiff":
		return AssetTypeTexture
	case ".fnt", ".ttf", ".otf":
		return AssetTypeFont
	case ".spv":
		return AssetTypeShader
	default:
		return AssetTypeNone
	}
}
