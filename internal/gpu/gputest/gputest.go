// Package gputest provides a recording gpu.GL for tests that have no GL
// context.
package gputest

import (
	"fmt"
	"strings"

	"gabornoise/internal/gpu"
)

// CompileErrorMarker makes CompileShader fail when it appears in a source.
const CompileErrorMarker = "#error"

// DefaultBlockSize is the ImpulseParam data size reported by default,
// 1024 vec4 records.
const DefaultBlockSize = 16384

// GL records every call and keeps enough state to assert on.
type GL struct {
	// Configuration.
	BlockSize     int
	NoBlock       bool
	LinkFails     bool
	LinkLog       string
	ValidateFails bool
	Inactive      map[string]bool // uniform names reported as -1

	// Observed state.
	Calls        []string
	Sources      map[uint32]string
	Floats       map[string]float32
	Vec2s        map[string][2]float32
	Uints        map[string]uint32
	History      map[string][]float32
	Buffers      map[uint32][]float32
	BufferSizes  map[uint32]int
	BlockBinding map[uint32]uint32
	Current      uint32
	BoundVAO     uint32
	AttribOn     bool
	Draws        int
	ClearRGBA    [4]float32

	next      uint32
	programs  map[uint32]bool
	stages    map[uint32]gpu.Stage
	locations map[string]int32
	names     map[int32]string
	vaos      map[uint32]bool
}

var _ gpu.GL = (*GL)(nil)

// New returns a fake with a 16 KiB impulse block.
func New() *GL {
	return &GL{
		BlockSize:    DefaultBlockSize,
		Inactive:     map[string]bool{},
		Sources:      map[uint32]string{},
		Floats:       map[string]float32{},
		Vec2s:        map[string][2]float32{},
		Uints:        map[string]uint32{},
		History:      map[string][]float32{},
		Buffers:      map[uint32][]float32{},
		BufferSizes:  map[uint32]int{},
		BlockBinding: map[uint32]uint32{},
		programs:     map[uint32]bool{},
		stages:       map[uint32]gpu.Stage{},
		locations:    map[string]int32{},
		names:        map[int32]string{},
		vaos:         map[uint32]bool{},
	}
}

func (g *GL) record(format string, args ...any) {
	g.Calls = append(g.Calls, fmt.Sprintf(format, args...))
}

func (g *GL) handle() uint32 {
	g.next++
	return g.next
}

// Invalidate makes program unknown, as if the context had dropped it.
func (g *GL) Invalidate(program uint32) {
	delete(g.programs, program)
}

// Count returns how many recorded calls start with prefix.
func (g *GL) Count(prefix string) int {
	n := 0
	for _, c := range g.Calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

// LiveBuffers is the number of allocated, undeleted buffers.
func (g *GL) LiveBuffers() int {
	return len(g.Buffers)
}

func (g *GL) IsProgram(program uint32) bool {
	return g.programs[program]
}

func (g *GL) CreateProgram() uint32 {
	h := g.handle()
	g.programs[h] = true
	g.record("CreateProgram %d", h)
	return h
}

func (g *GL) CreateShader(stage gpu.Stage) uint32 {
	h := g.handle()
	g.stages[h] = stage
	g.record("CreateShader %s %d", stage, h)
	return h
}

func (g *GL) AttachShader(program, shader uint32) {
	g.record("AttachShader %d %d", program, shader)
}

func (g *GL) CompileShader(shader uint32, source string) (bool, string) {
	g.Sources[shader] = source
	g.record("CompileShader %s", g.stages[shader])
	if strings.Contains(source, CompileErrorMarker) {
		return false, "0:1(1): error: " + CompileErrorMarker + " directive"
	}
	return true, ""
}

func (g *GL) LinkProgram(program uint32) (bool, string) {
	g.record("LinkProgram %d", program)
	return !g.LinkFails, g.LinkLog
}

func (g *GL) ValidateProgram(program uint32) (bool, string) {
	g.record("ValidateProgram %d", program)
	if g.ValidateFails {
		return false, "validation: sampler mismatch"
	}
	return true, ""
}

func (g *GL) UseProgram(program uint32) {
	g.Current = program
	g.record("UseProgram %d", program)
}

func (g *GL) UniformBlockIndex(program uint32, name string) uint32 {
	g.record("UniformBlockIndex %s", name)
	if g.NoBlock || name != gpu.ImpulseBlock {
		return gpu.InvalidIndex
	}
	return 0
}

func (g *GL) UniformBlockDataSize(program, index uint32) int {
	return g.BlockSize
}

func (g *GL) UniformBlockBinding(program, index, binding uint32) {
	g.BlockBinding[index] = binding
	g.record("UniformBlockBinding %d %d", index, binding)
}

func (g *GL) CreateUniformBuffer(binding uint32, size int, data []float32) uint32 {
	h := g.handle()
	g.Buffers[h] = append([]float32(nil), data...)
	g.BufferSizes[h] = size
	g.record("CreateUniformBuffer %d %d", binding, size)
	return h
}

func (g *GL) DeleteBuffer(buffer uint32) {
	delete(g.Buffers, buffer)
	delete(g.BufferSizes, buffer)
	g.record("DeleteBuffer %d", buffer)
}

func (g *GL) UniformLocation(program uint32, name string) int32 {
	if g.Inactive[name] {
		return -1
	}
	if loc, ok := g.locations[name]; ok {
		return loc
	}
	loc := int32(len(g.locations))
	g.locations[name] = loc
	g.names[loc] = name
	return loc
}

func (g *GL) Uniform1f(location int32, v float32) {
	if location < 0 {
		return
	}
	name := g.names[location]
	g.Floats[name] = v
	g.History[name] = append(g.History[name], v)
}

func (g *GL) Uniform2f(location int32, x, y float32) {
	if location < 0 {
		return
	}
	g.Vec2s[g.names[location]] = [2]float32{x, y}
}

func (g *GL) Uniform1ui(location int32, v uint32) {
	if location < 0 {
		return
	}
	g.Uints[g.names[location]] = v
}

func (g *GL) CreateVertexArray(vertices []float32, components int32) (uint32, uint32) {
	vao, vbo := g.handle(), g.handle()
	g.vaos[vao] = true
	g.Buffers[vbo] = append([]float32(nil), vertices...)
	g.BufferSizes[vbo] = len(vertices) * 4
	g.AttribOn = true
	g.record("CreateVertexArray %d %d", len(vertices), components)
	return vao, vbo
}

func (g *GL) BindVertexArray(vao uint32) {
	g.BoundVAO = vao
	g.record("BindVertexArray %d", vao)
}

func (g *GL) EnableVertexAttribArray(index uint32) {
	g.AttribOn = true
	g.record("EnableVertexAttribArray %d", index)
}

func (g *GL) DisableVertexAttribArray(index uint32) {
	g.AttribOn = false
	g.record("DisableVertexAttribArray %d", index)
}

func (g *GL) DeleteVertexArray(vao, vbo uint32) {
	delete(g.vaos, vao)
	delete(g.Buffers, vbo)
	delete(g.BufferSizes, vbo)
	g.record("DeleteVertexArray %d", vao)
}

func (g *GL) DrawTriangleStrip(first, count int32) {
	g.Draws++
	g.record("DrawTriangleStrip %d %d", first, count)
}

func (g *GL) ClearColor(r, gr, b, a float32) {
	g.ClearRGBA = [4]float32{r, gr, b, a}
}
