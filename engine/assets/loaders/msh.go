package loaders

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/math"
)

/**
 * MSH files are big-endian:
 *
 *	"MSH"              magic
 *	uint32             vertex count
 *	uint32             index count
 *	vertex count x     position, normal, texcoord, tangent as float32
 *	index count x      uint32
 */
const mshMagic = "MSH"

var (
	ErrInvalidHeader   = errors.New("invalid file header")
	ErrNonEmptyOutput  = errors.New("vertex/index buffers must be empty before reading")
	ErrUnexpectedEnd   = errors.New("end of file")
	ErrTrailingData    = errors.New("unexpected data after the index buffer")
	mshVertexSize      = binary.Size(math.Vertex3D{})
	mshIndexSize       = binary.Size(uint32(0))
	mshHeaderSize      = len(mshMagic) + 2*mshIndexSize
)

func LoadMSH(path string) (*MeshData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &core.LoadError{Path: path, Err: err}
	}
	mesh := &MeshData{Name: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))}
	if err := ReadMSH(data, path, mesh); err != nil {
		return nil, err
	}
	return mesh, nil
}

/**
 * @brief Reads MSH data into mesh, whose vertices and indices must be empty.
 * Path only labels errors.
 */
func ReadMSH(data []byte, path string, mesh *MeshData) error {
	if len(mesh.Vertices) != 0 || len(mesh.Indices) != 0 {
		return &core.LoadError{Path: path, Err: ErrNonEmptyOutput}
	}
	if len(data) < mshHeaderSize || string(data[:len(mshMagic)]) != mshMagic {
		return &core.LoadError{Path: path, Err: ErrInvalidHeader}
	}

	vertexCount := binary.BigEndian.Uint32(data[len(mshMagic):])
	indexCount := binary.BigEndian.Uint32(data[len(mshMagic)+mshIndexSize:])

	body := data[mshHeaderSize:]
	expected := uint64(vertexCount)*uint64(mshVertexSize) + uint64(indexCount)*uint64(mshIndexSize)
	switch {
	case uint64(len(body)) < expected:
		return &core.LoadError{Path: path, Err: fmt.Errorf("%w: %d vertices and %d indices need %d bytes, %d left",
			ErrUnexpectedEnd, vertexCount, indexCount, expected, len(body))}
	case uint64(len(body)) > expected:
		return &core.LoadError{Path: path, Err: ErrTrailingData}
	}

	vertices := make([]math.Vertex3D, vertexCount)
	indices := make([]uint32, indexCount)
	r := bytes.NewReader(body)
	if err := binary.Read(r, binary.BigEndian, vertices); err != nil {
		return &core.LoadError{Path: path, Err: err}
	}
	if err := binary.Read(r, binary.BigEndian, indices); err != nil {
		return &core.LoadError{Path: path, Err: err}
	}
	for _, idx := range indices {
		if idx >= vertexCount {
			return &core.LoadError{Path: path, Err: fmt.Errorf("%w: %d >= %d", ErrIndexOutOfRange, idx, vertexCount)}
		}
	}

	mesh.Vertices = vertices
	mesh.Indices = indices
	mesh.Groups = nil
	mesh.finalize()
	return nil
}

// WriteMSH encodes the vertices and indices of mesh. Groups are not stored.
func WriteMSH(w io.Writer, mesh *MeshData) error {
	if _, err := io.WriteString(w, mshMagic); err != nil {
		return err
	}
	header := [2]uint32{uint32(len(mesh.Vertices)), uint32(len(mesh.Indices))}
	if err := binary.Write(w, binary.BigEndian, header); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, mesh.Vertices); err != nil {
		return err
	}
	return binary.Write(w, binary.BigEndian, mesh.Indices)
}
