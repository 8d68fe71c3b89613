// Package opengl implements gpu.GL on top of go-gl's 3.3 core bindings.
package opengl

import (
	"strings"

	"github.com/go-gl/gl/v3.3-core/gl"

	"gabornoise/internal/gpu"
)

// Init loads the GL function pointers for the current context.
func Init() error {
	return gl.Init()
}

// Version returns the driver's GL_VERSION string.
func Version() string {
	return gl.GoStr(gl.GetString(gl.VERSION))
}

// Context is a gpu.GL bound to whatever context is current on the calling
// thread.
type Context struct{}

var _ gpu.GL = Context{}

func cstr(name string) *uint8 {
	return gl.Str(name + "\x00")
}

func shaderLog(shader uint32) string {
	var n int32
	gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &n)
	if n <= 0 {
		return ""
	}
	buf := make([]byte, n)
	gl.GetShaderInfoLog(shader, n, nil, &buf[0])
	return strings.TrimRight(string(buf), "\x00")
}

func programLog(program uint32) string {
	var n int32
	gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &n)
	if n <= 0 {
		return ""
	}
	buf := make([]byte, n)
	gl.GetProgramInfoLog(program, n, nil, &buf[0])
	return strings.TrimRight(string(buf), "\x00")
}

func (Context) IsProgram(program uint32) bool {
	return gl.IsProgram(program)
}

func (Context) CreateProgram() uint32 {
	return gl.CreateProgram()
}

func (Context) CreateShader(stage gpu.Stage) uint32 {
	if stage == gpu.FragmentStage {
		return gl.CreateShader(gl.FRAGMENT_SHADER)
	}
	return gl.CreateShader(gl.VERTEX_SHADER)
}

func (Context) AttachShader(program, shader uint32) {
	gl.AttachShader(program, shader)
}

func (Context) CompileShader(shader uint32, source string) (bool, string) {
	csources, free := gl.Strs(source)
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	return status != gl.FALSE, shaderLog(shader)
}

func (Context) LinkProgram(program uint32) (bool, string) {
	gl.LinkProgram(program)
	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	return status != gl.FALSE, programLog(program)
}

func (Context) ValidateProgram(program uint32) (bool, string) {
	gl.ValidateProgram(program)
	var status int32 = gl.FALSE
	gl.GetProgramiv(program, gl.VALIDATE_STATUS, &status)
	return status != gl.FALSE, programLog(program)
}

func (Context) UseProgram(program uint32) {
	gl.UseProgram(program)
}

func (Context) UniformBlockIndex(program uint32, name string) uint32 {
	return gl.GetUniformBlockIndex(program, cstr(name))
}

func (Context) UniformBlockDataSize(program, index uint32) int {
	var size int32
	gl.GetActiveUniformBlockiv(program, index, gl.UNIFORM_BLOCK_DATA_SIZE, &size)
	return int(size)
}

func (Context) UniformBlockBinding(program, index, binding uint32) {
	gl.UniformBlockBinding(program, index, binding)
}

func (Context) CreateUniformBuffer(binding uint32, size int, data []float32) uint32 {
	var buffer uint32
	gl.GenBuffers(1, &buffer)
	gl.BindBuffer(gl.UNIFORM_BUFFER, buffer)
	gl.BufferData(gl.UNIFORM_BUFFER, size, nil, gl.DYNAMIC_DRAW)
	if len(data) > 0 {
		gl.BufferSubData(gl.UNIFORM_BUFFER, 0, len(data)*4, gl.Ptr(data))
	}
	gl.BindBufferBase(gl.UNIFORM_BUFFER, binding, buffer)
	return buffer
}

func (Context) DeleteBuffer(buffer uint32) {
	gl.DeleteBuffers(1, &buffer)
}

func (Context) UniformLocation(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, cstr(name))
}

func (Context) Uniform1f(location int32, v float32) {
	gl.Uniform1f(location, v)
}

func (Context) Uniform2f(location int32, x, y float32) {
	gl.Uniform2f(location, x, y)
}

func (Context) Uniform1ui(location int32, v uint32) {
	gl.Uniform1ui(location, v)
}

func (Context) CreateVertexArray(vertices []float32, components int32) (uint32, uint32) {
	var vao, vbo uint32
	gl.GenVertexArrays(1, &vao)
	gl.BindVertexArray(vao)

	gl.GenBuffers(1, &vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, components, gl.FLOAT, false, 0, gl.PtrOffset(0))
	return vao, vbo
}

func (Context) BindVertexArray(vao uint32) {
	gl.BindVertexArray(vao)
}

func (Context) EnableVertexAttribArray(index uint32) {
	gl.EnableVertexAttribArray(index)
}

func (Context) DisableVertexAttribArray(index uint32) {
	gl.DisableVertexAttribArray(index)
}

func (Context) DeleteVertexArray(vao, vbo uint32) {
	gl.DeleteBuffers(1, &vbo)
	gl.DeleteVertexArrays(1, &vao)
}

func (Context) DrawTriangleStrip(first, count int32) {
	gl.DrawArrays(gl.TRIANGLE_STRIP, first, count)
}

func (Context) ClearColor(r, g, b, a float32) {
	gl.ClearColor(r, g, b, a)
}
