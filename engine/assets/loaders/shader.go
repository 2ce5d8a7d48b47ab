package loaders

import (
	"errors"
	"fmt"
	"os"

	"github.com/spaghettifunk/lumen/engine/core"
)

var ErrInvalidBytecode = errors.New("invalid shader bytecode")

// Bytecode is made of 32-bit words.
const bytecodeWordSize = 4

// LoadShaderBlob reads a compiled shader.
func LoadShaderBlob(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &core.LoadError{Path: path, Err: err}
	}
	if len(data) == 0 || len(data)%bytecodeWordSize != 0 {
		return nil, &core.LoadError{Path: path, Err: fmt.Errorf("%w: %d bytes", ErrInvalidBytecode, len(data))}
	}
	return data, nil
}
