package assets

import (
	"github.com/spaghettifunk/lumen/engine/assets/loaders"
)

// Loader reads one kind of asset from a file.
type Loader[T any] interface {
	Load(path string) (T, error)
}

type LoaderFunc[T any] func(path string) (T, error)

func (f LoaderFunc[T]) Load(path string) (T, error) {
	return f(path)
}

// Mesh loaders by lower case file extension.
func defaultMeshLoaders() map[string]Loader[*loaders.MeshData] {
	return map[string]Loader[*loaders.MeshData]{
		".obj": LoaderFunc[*loaders.MeshData](func(path string) (*loaders.MeshData, error) {
			return loaders.LoadOBJ(path, loaders.DefaultOBJOptions())
		}),
		".msh":  LoaderFunc[*loaders.MeshData](loaders.LoadMSH),
		".gltf": LoaderFunc[*loaders.MeshData](loaders.LoadGLTF),
		".glb":  LoaderFunc[*loaders.MeshData](loaders.LoadGLTF),
	}
}
