package loaders

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/math"
)

var (
	ErrInvalidValue     = errors.New("invalid value")
	ErrIndexOutOfRange  = errors.New("index out of range")
	ErrDegenerateFace   = errors.New("face with less than three vertices")
	ErrMissingArguments = errors.New("missing arguments")
)

type OBJOptions struct {
	// Converts right-handed files to the left-handed engine convention:
	// mirrors Z, flips V and reverses the winding order.
	InvertHandedness bool
}

func DefaultOBJOptions() OBJOptions {
	return OBJOptions{InvertHandedness: true}
}

// LoadOBJ reads a Wavefront OBJ file.
func LoadOBJ(path string, options OBJOptions) (*MeshData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &core.LoadError{Path: path, Err: err}
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return ReadOBJ(f, path, name, options)
}

// faceVertex holds the zero-based position, texcoord and normal indices of a
// face corner, -1 when absent.
type faceVertex [3]int

type objReader struct {
	path    string
	options OBJOptions
	line    int

	positions []math.Vec3
	texcoords []math.Vec2
	normals   []math.Vec3

	mesh           *MeshData
	vertexIndex    map[faceVertex]uint32
	missingNormals bool
}

/**
 * @brief Reads OBJ text from r. Path only labels errors. Unknown keywords are
 * logged and skipped; malformed values fail with a LoadError carrying the
 * line and the offending token.
 */
func ReadOBJ(r io.Reader, path, name string, options OBJOptions) (*MeshData, error) {
	or := &objReader{
		path:        path,
		options:     options,
		mesh:        &MeshData{Name: name},
		vertexIndex: make(map[faceVertex]uint32),
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		or.line++
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if err := or.readLine(fields[0], fields[1:]); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, &core.LoadError{Path: path, Line: or.line, Err: err}
	}

	if or.missingNormals {
		math.GeometryGenerateNormals(or.mesh.Vertices, or.mesh.Indices)
	}
	if len(or.texcoords) > 0 {
		math.GeometryGenerateTangents(or.mesh.Vertices, or.mesh.Indices)
	}
	or.mesh.finalize()
	return or.mesh, nil
}

func (or *objReader) readLine(keyword string, args []string) error {
	switch keyword {
	case "v":
		v, err := or.readVec3(keyword, args)
		if err != nil {
			return err
		}
		if or.options.InvertHandedness {
			v.Z = -v.Z
		}
		or.positions = append(or.positions, v)
	case "vt":
		if len(args) < 2 {
			return or.error(keyword, ErrMissingArguments)
		}
		u, err := or.readFloat(args[0])
		if err != nil {
			return err
		}
		v, err := or.readFloat(args[1])
		if err != nil {
			return err
		}
		if or.options.InvertHandedness {
			v = 1.0 - v
		}
		or.texcoords = append(or.texcoords, math.NewVec2(u, v))
	case "vn":
		n, err := or.readVec3(keyword, args)
		if err != nil {
			return err
		}
		if or.options.InvertHandedness {
			n.Z = -n.Z
		}
		or.normals = append(or.normals, n.Normalized())
	case "f":
		return or.readFace(args)
	case "g", "o":
		or.beginGroup(strings.Join(args, " "), "")
	case "usemtl":
		if len(args) < 1 {
			return or.error(keyword, ErrMissingArguments)
		}
		or.beginGroup("", args[0])
	case "mtllib", "s":
		// Materials are assigned by name; smoothing groups are ignored.
	default:
		core.LogWarn("%s:%d: unsupported keyword %q, skipping line", or.path, or.line, keyword)
	}
	return nil
}

// beginGroup starts a new index range, or renames the current one while it is empty.
func (or *objReader) beginGroup(name, material string) {
	groups := or.mesh.Groups
	start := uint32(len(or.mesh.Indices))
	if len(groups) == 0 && name == "" {
		name = or.mesh.Name
	}
	if n := len(groups); n > 0 {
		current := &groups[n-1]
		if current.IndexCount == 0 {
			if name != "" {
				current.Name = name
			}
			if material != "" {
				current.Material = material
			}
			return
		}
		if name == "" {
			name = current.Name
		}
		if material == "" {
			material = current.Material
		}
	}
	or.mesh.Groups = append(groups, MeshGroup{Name: name, Material: material, StartIndex: start})
}

func (or *objReader) readFace(args []string) error {
	if len(args) < 3 {
		return or.error("f", ErrDegenerateFace)
	}
	if len(or.mesh.Groups) == 0 {
		or.beginGroup(or.mesh.Name, "")
	}

	corners := make([]uint32, len(args))
	for i, arg := range args {
		idx, err := or.readFaceVertex(arg)
		if err != nil {
			return err
		}
		corners[i] = idx
	}

	// Triangle fan.
	for i := 1; i+1 < len(corners); i++ {
		a, b, c := corners[0], corners[i], corners[i+1]
		if or.options.InvertHandedness {
			b, c = c, b
		}
		or.mesh.Indices = append(or.mesh.Indices, a, b, c)
	}
	or.mesh.Groups[len(or.mesh.Groups)-1].IndexCount += uint32(3 * (len(corners) - 2))
	return nil
}

func (or *objReader) readFaceVertex(token string) (uint32, error) {
	fv := faceVertex{-1, -1, -1}
	parts := strings.Split(token, "/")
	if len(parts) > 3 {
		return 0, or.error(token, ErrInvalidValue)
	}
	counts := [3]int{len(or.positions), len(or.texcoords), len(or.normals)}
	for i, part := range parts {
		if part == "" {
			if i == 0 {
				return 0, or.error(token, ErrInvalidValue)
			}
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return 0, or.error(token, ErrInvalidValue)
		}
		// One-based, negative values count back from the last element.
		switch {
		case n > 0 && n <= counts[i]:
			fv[i] = n - 1
		case n < 0 && -n <= counts[i]:
			fv[i] = counts[i] + n
		default:
			return 0, or.error(token, ErrIndexOutOfRange)
		}
	}

	if idx, ok := or.vertexIndex[fv]; ok {
		return idx, nil
	}

	vertex := math.Vertex3D{Position: or.positions[fv[0]]}
	if fv[1] >= 0 {
		vertex.Texcoord = or.texcoords[fv[1]]
	}
	if fv[2] >= 0 {
		vertex.Normal = or.normals[fv[2]]
	} else {
		or.missingNormals = true
	}

	idx := uint32(len(or.mesh.Vertices))
	or.mesh.Vertices = append(or.mesh.Vertices, vertex)
	or.vertexIndex[fv] = idx
	return idx, nil
}

func (or *objReader) readVec3(keyword string, args []string) (math.Vec3, error) {
	if len(args) < 3 {
		return math.Vec3{}, or.error(keyword, ErrMissingArguments)
	}
	var v [3]float32
	for i := range v {
		f, err := or.readFloat(args[i])
		if err != nil {
			return math.Vec3{}, err
		}
		v[i] = f
	}
	return math.NewVec3(v[0], v[1], v[2]), nil
}

func (or *objReader) readFloat(token string) (float32, error) {
	f, err := strconv.ParseFloat(token, 32)
	if err != nil {
		return 0, or.error(token, fmt.Errorf("%w: %w", ErrInvalidValue, err))
	}
	return float32(f), nil
}

func (or *objReader) error(token string, err error) error {
	return &core.LoadError{Path: or.path, Line: or.line, Token: token, Err: err}
}
