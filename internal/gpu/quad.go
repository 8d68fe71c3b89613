package gpu

import "github.com/go-gl/mathgl/mgl32"

// QuadVertices is the full-screen quad in clip space, in triangle strip
// order.
var QuadVertices = [4]mgl32.Vec4{
	{1, -1, 0, 1},
	{1, 1, 0, 1},
	{-1, -1, 0, 1},
	{-1, 1, 0, 1},
}

// Quad is the fixed full-screen geometry: 4 vertices, one vec4 attribute at
// location 0, no indices.
type Quad struct {
	gl  GL
	vao uint32
	vbo uint32
}

// NewQuad uploads the quad and leaves its vertex array bound.
func NewQuad(gl GL) *Quad {
	vertices := make([]float32, 0, len(QuadVertices)*4)
	for _, v := range QuadVertices {
		vertices = append(vertices, v[:]...)
	}
	vao, vbo := gl.CreateVertexArray(vertices, 4)
	gl.BindVertexArray(vao)
	return &Quad{gl: gl, vao: vao, vbo: vbo}
}

func (q *Quad) Draw() {
	q.gl.DrawTriangleStrip(0, int32(len(QuadVertices)))
}

// Bind makes the quad's vertex array current with attribute 0 enabled.
func (q *Quad) Bind() {
	q.gl.BindVertexArray(q.vao)
	q.gl.EnableVertexAttribArray(0)
}

// Unbind disables attribute 0 on the quad's vertex array and unbinds it.
func (q *Quad) Unbind() {
	q.gl.DisableVertexAttribArray(0)
	q.gl.BindVertexArray(0)
}

func (q *Quad) Delete() {
	q.gl.DeleteVertexArray(q.vao, q.vbo)
}
