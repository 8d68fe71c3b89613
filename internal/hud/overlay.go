package hud

import (
	"fmt"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"gabornoise/internal/gpu"
	"gabornoise/internal/gpu/opengl"
)

const vertexSource = `#version 330 core
layout(location = 0) in vec2 aPos;
layout(location = 1) in vec2 aTexCoord;
out vec2 TexCoord;
uniform mat4 projection;

void main() {
    gl_Position = projection * vec4(aPos, 0.0, 1.0);
    TexCoord = aTexCoord;
}
`

const fragmentSource = `#version 330 core
in vec2 TexCoord;
out vec4 FragColor;
uniform sampler2D textTexture;
uniform vec3 textColor;

void main() {
    FragColor = vec4(textColor, texture(textTexture, TexCoord).r);
}
`

// Overlay draws text in the top-left corner. It needs a current 3.3 core
// context and saves and restores the program and vertex array it replaces.
type Overlay struct {
	program    *gpu.Program
	vao        uint32
	vbo        uint32
	texture    uint32
	projection int32
	textColor  int32
	width      int
	height     int
}

// NewOverlay builds the text program and buffers for a framebuffer of
// width x height pixels.
func NewOverlay(width, height int, logger *zap.Logger) (*Overlay, error) {
	o := &Overlay{program: gpu.NewProgram(opengl.Context{}, logger.Named("hud"))}
	if err := o.program.Build(gpu.Sources{Vertex: vertexSource, Fragment: fragmentSource}); err != nil {
		return nil, fmt.Errorf("hud program: %w", err)
	}
	h := o.program.Handle()
	o.projection = gl.GetUniformLocation(h, gl.Str("projection\x00"))
	o.textColor = gl.GetUniformLocation(h, gl.Str("textColor\x00"))

	var prevVAO int32
	gl.GetIntegerv(gl.VERTEX_ARRAY_BINDING, &prevVAO)

	gl.GenVertexArrays(1, &o.vao)
	gl.GenBuffers(1, &o.vbo)
	gl.BindVertexArray(o.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, o.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, 6*4*4, nil, gl.DYNAMIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 4*4, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 2, gl.FLOAT, false, 4*4, gl.PtrOffset(2*4))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(uint32(prevVAO))

	gl.GenTextures(1, &o.texture)
	gl.BindTexture(gl.TEXTURE_2D, o.texture)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	o.Resize(width, height)
	return o, nil
}

// Resize updates the projection for a new framebuffer size.
func (o *Overlay) Resize(width, height int) {
	o.width, o.height = width, height
}

// Render draws s at 1:1 pixel scale.
func (o *Overlay) Render(s Status) {
	img := Rasterize(s.Lines())
	w, h := float32(img.Rect.Dx()), float32(img.Rect.Dy())

	var prevProgram, prevVAO int32
	gl.GetIntegerv(gl.CURRENT_PROGRAM, &prevProgram)
	gl.GetIntegerv(gl.VERTEX_ARRAY_BINDING, &prevVAO)

	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, o.texture)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.R8, int32(w), int32(h), 0, gl.RED, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))

	// Top-left origin, y down.
	projection := mgl32.Ortho2D(0, float32(o.width), float32(o.height), 0)
	o.program.Use()
	gl.UniformMatrix4fv(o.projection, 1, false, &projection[0])
	gl.Uniform3f(o.textColor, 1, 1, 0)

	vertices := []float32{
		0, h, 0, 1,
		0, 0, 0, 0,
		w, 0, 1, 0,
		0, h, 0, 1,
		w, 0, 1, 0,
		w, h, 1, 1,
	}
	gl.BindVertexArray(o.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, o.vbo)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(vertices)*4, gl.Ptr(vertices))
	gl.DrawArrays(gl.TRIANGLES, 0, 6)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	gl.BindTexture(gl.TEXTURE_2D, 0)
	gl.Disable(gl.BLEND)
	gl.BindVertexArray(uint32(prevVAO))
	gl.UseProgram(uint32(prevProgram))
}

// Delete frees the overlay's GL objects.
func (o *Overlay) Delete() {
	gl.DeleteTextures(1, &o.texture)
	gl.DeleteBuffers(1, &o.vbo)
	gl.DeleteVertexArrays(1, &o.vao)
	gl.DeleteProgram(o.program.Handle())
}
