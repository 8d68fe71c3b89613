// Package gpu owns the shader program lifecycle and the GPU-resident state
// of the noise stimulus. It talks to the driver through the GL interface so
// that the state machine and the upload contract are testable without a
// context; internal/gpu/opengl is the go-gl implementation.
package gpu

// Stage is a shader stage.
type Stage int

const (
	VertexStage Stage = iota
	FragmentStage
)

func (s Stage) String() string {
	switch s {
	case VertexStage:
		return "vertex"
	case FragmentStage:
		return "fragment"
	}
	return "unknown"
}

// InvalidIndex is returned by UniformBlockIndex for an unknown block.
const InvalidIndex = ^uint32(0)

// GL is the subset of OpenGL 3.3 core the stimulus uses. Every method must
// be called on the goroutine that owns the current context.
type GL interface {
	IsProgram(program uint32) bool
	CreateProgram() uint32
	CreateShader(stage Stage) uint32
	AttachShader(program, shader uint32)
	// CompileShader sets the source and compiles; it reports the compile
	// status and the info log.
	CompileShader(shader uint32, source string) (bool, string)
	LinkProgram(program uint32) (bool, string)
	ValidateProgram(program uint32) (bool, string)
	UseProgram(program uint32)

	UniformBlockIndex(program uint32, name string) uint32
	UniformBlockDataSize(program, index uint32) int
	UniformBlockBinding(program, index, binding uint32)
	// CreateUniformBuffer allocates size bytes, uploads data at offset 0 and
	// binds the buffer to the indexed binding point.
	CreateUniformBuffer(binding uint32, size int, data []float32) uint32
	DeleteBuffer(buffer uint32)

	UniformLocation(program uint32, name string) int32
	Uniform1f(location int32, v float32)
	Uniform2f(location int32, x, y float32)
	Uniform1ui(location int32, v uint32)

	// CreateVertexArray uploads vertices and enables attribute 0 with the
	// given component count.
	CreateVertexArray(vertices []float32, components int32) (vao, vbo uint32)
	BindVertexArray(vao uint32)
	EnableVertexAttribArray(index uint32)
	DisableVertexAttribArray(index uint32)
	DeleteVertexArray(vao, vbo uint32)
	DrawTriangleStrip(first, count int32)

	ClearColor(r, g, b, a float32)
}
