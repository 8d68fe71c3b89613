// Package shaders provides the vertex and fragment sources of the noise
// program, either the embedded copies or files from a directory.
package shaders

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gabornoise/internal/gpu"
)

const (
	VertexFile   = "gabor_noise.vs"
	FragmentFile = "gabor_noise.fs"
)

//go:embed gabor_noise.vs gabor_noise.fs
var embedded embed.FS

// ErrMissing reports a shader source that could not be read.
var ErrMissing = errors.New("shader source missing")

// Embedded is the compiled-in source set.
func Embedded() fs.FS {
	return embedded
}

// Dir returns the sources under dir, or the embedded ones when dir is empty.
func Dir(dir string) fs.FS {
	if dir == "" {
		return embedded
	}
	return os.DirFS(dir)
}

// Load reads both stages from fsys.
func Load(fsys fs.FS) (gpu.Sources, error) {
	vs, err := fs.ReadFile(fsys, VertexFile)
	if err != nil {
		return gpu.Sources{}, fmt.Errorf("%w: %w", ErrMissing, err)
	}
	frag, err := fs.ReadFile(fsys, FragmentFile)
	if err != nil {
		return gpu.Sources{}, fmt.Errorf("%w: %w", ErrMissing, err)
	}
	return gpu.Sources{Vertex: string(vs), Fragment: string(frag)}, nil
}
