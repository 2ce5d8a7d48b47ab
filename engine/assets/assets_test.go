package assets

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/lumen/engine/core"
)

func writeFile(t *testing.T, root, path string, data []byte) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(path))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, data, 0o644))
}

func newTestAssetManager(t *testing.T, root string, events *core.EventSystem) *AssetManager {
	t.Helper()
	am, err := NewAssetManager(events)
	require.NoError(t, err)
	require.NoError(t, am.Initialize(root))
	t.Cleanup(func() { _ = am.Close() })
	return am
}

func TestDetermineAssetType(t *testing.T) {
	tests := map[string]AssetType{
		"a/b/cube.obj":   AssetTypeMesh,
		"cube.MSH":       AssetTypeMesh,
		"scene.glb":      AssetTypeMesh,
		"albedo.png":     AssetTypeTexture,
		"photo.JPG":      AssetTypeTexture,
		"consolas.fnt":   AssetTypeFont,
		"go.ttf":         AssetTypeFont,
		"forward.ps.spv": AssetTypeShader,
		"readme.txt":     AssetTypeNone,
		"Makefile":       AssetTypeNone,
	}
	for path, want := range tests {
		assert.Equal(t, want, determineAssetType(path), path)
	}
	assert.Equal(t, "shader", AssetTypeShader.String())
}

func TestAssetManagerIndexesRoot(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "models/quad.obj", []byte("v 0 0 0\n"))
	writeFile(t, root, "models/props/crate.msh", []byte("MSH"))
	writeFile(t, root, "textures/albedo.png", nil)
	writeFile(t, root, "shaders/forward.vs.spv", nil)
	writeFile(t, root, "notes.txt", nil)

	am := newTestAssetManager(t, root, nil)

	assert.Equal(t, 4, am.Len())
	info, ok := am.Resolve("models/props/crate.msh")
	require.True(t, ok)
	assert.Equal(t, AssetTypeMesh, info.Type)
	assert.False(t, info.Modified.IsZero())

	_, ok = am.Resolve("notes.txt")
	assert.False(t, ok)

	meshes := am.Assets(AssetTypeMesh)
	require.Len(t, meshes, 2)
	assert.Equal(t, "models/props/crate.msh", meshes[0].Path)
	assert.Equal(t, "models/quad.obj", meshes[1].Path)

	full, err := am.FullPath("models/quad.obj")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(am.Root(), "models", "quad.obj"), full)

	_, err = am.FullPath("models/missing.obj")
	assert.ErrorIs(t, err, core.ErrResourceNotFound)

	require.NoError(t, am.Close())
	assert.ErrorIs(t, am.Close(), core.ErrAlreadyClosed)
	assert.ErrorIs(t, am.Initialize(root), core.ErrAlreadyClosed)
}

func TestAssetManagerPostsChanges(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "models/quad.obj", []byte("v 0 0 0\n"))

	events := core.NewEventSystem()
	var mu sync.Mutex
	changes := make(map[core.AssetEvent]int)
	events.Register(core.EVENT_CODE_ASSET_CHANGED, t, func(ctx core.EventContext) bool {
		mu.Lock()
		defer mu.Unlock()
		changes[*ctx.Data.(*core.AssetEvent)]++
		return true
	})
	seen := func(e core.AssetEvent) func() bool {
		return func() bool {
			events.Dispatch()
			mu.Lock()
			defer mu.Unlock()
			return changes[e] > 0
		}
	}

	am := newTestAssetManager(t, root, events)

	writeFile(t, root, "models/quad.obj", []byte("v 1 1 1\n"))
	require.Eventually(t, seen(core.AssetEvent{Path: "models/quad.obj"}), 5*time.Second, 10*time.Millisecond)

	require.NoError(t, os.Remove(filepath.Join(root, "models", "quad.obj")))
	require.Eventually(t, seen(core.AssetEvent{Path: "models/quad.obj", Removed: true}), 5*time.Second, 10*time.Millisecond)
	_, ok := am.Resolve("models/quad.obj")
	assert.False(t, ok)

	// New directories are watched as they appear.
	require.NoError(t, os.MkdirAll(filepath.Join(root, "fonts"), 0o755))
	require.Eventually(t, func() bool {
		writeFile(t, root, "fonts/mono.fnt", []byte("info"))
		return seen(core.AssetEvent{Path: "fonts/mono.fnt"})()
	}, 5*time.Second, 50*time.Millisecond)

	// Files the manager does not load are ignored.
	writeFile(t, root, "readme.txt", nil)
	events.Dispatch()
	mu.Lock()
	defer mu.Unlock()
	assert.Zero(t, changes[core.AssetEvent{Path: "readme.txt"}])
}
