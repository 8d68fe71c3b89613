package gpu

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ErrShaderBuild is wrapped by every compile or link failure. Callers treat
// it as fatal: there is no degraded rendering mode.
var ErrShaderBuild = errors.New("shader build failed")

// ShaderError carries the driver diagnostics of a failed build step.
type ShaderError struct {
	Step string // "vertex compile", "fragment compile" or "link"
	Log  string
}

func (e *ShaderError) Error() string {
	if e.Log == "" {
		return fmt.Sprintf("%s failed", e.Step)
	}
	return fmt.Sprintf("%s failed: %s", e.Step, e.Log)
}

func (e *ShaderError) Unwrap() error { return ErrShaderBuild }

// ProgramState is the lifecycle state of a Program.
type ProgramState int

const (
	Uncreated ProgramState = iota
	Compiling
	Linking
	Linked
	Validated
	Failed
)

func (s ProgramState) String() string {
	return [...]string{"uncreated", "compiling", "linking", "linked", "validated", "failed"}[s]
}

// Sources is the text of both stages.
type Sources struct {
	Vertex   string
	Fragment string
}

// Program is one vertex+fragment program. Handles live here rather than in
// package state so several stimuli can coexist. The program is never
// deleted: the context owner tears it down with the context.
type Program struct {
	gl     GL
	logger *zap.Logger

	handle   uint32
	vertex   uint32
	fragment uint32
	state    ProgramState
}

// NewProgram returns an uncreated program.
func NewProgram(gl GL, logger *zap.Logger) *Program {
	return &Program{gl: gl, logger: logger.Named("program")}
}

func (p *Program) Handle() uint32      { return p.handle }
func (p *Program) State() ProgramState { return p.state }

// Build compiles, links and validates src. Objects are (re)created when the
// current handle is not a valid program. Validation failure is logged and
// otherwise ignored.
func (p *Program) Build(src Sources) error {
	if p.state == Uncreated || !p.gl.IsProgram(p.handle) {
		p.create()
	}

	p.state = Compiling
	if err := p.compile(p.vertex, VertexStage, src.Vertex); err != nil {
		return err
	}
	if err := p.compile(p.fragment, FragmentStage, src.Fragment); err != nil {
		return err
	}

	p.state = Linking
	ok, log := p.gl.LinkProgram(p.handle)
	if !ok {
		p.state = Failed
		p.logger.Error("Shader program link failed", zap.String("log", log))
		return &ShaderError{Step: "link", Log: log}
	}
	p.state = Linked
	p.logger.Info("Shader program linked", zap.Uint32("program", p.handle), zap.String("log", log))

	if ok, log := p.gl.ValidateProgram(p.handle); !ok {
		p.logger.Warn("Shader program failed validation", zap.String("log", log))
		return nil
	}
	p.state = Validated
	return nil
}

func (p *Program) create() {
	p.handle = p.gl.CreateProgram()
	p.vertex = p.gl.CreateShader(VertexStage)
	p.gl.AttachShader(p.handle, p.vertex)
	p.fragment = p.gl.CreateShader(FragmentStage)
	p.gl.AttachShader(p.handle, p.fragment)
	p.logger.Debug("Created shader program", zap.Uint32("program", p.handle))
}

func (p *Program) compile(shader uint32, stage Stage, source string) error {
	ok, log := p.gl.CompileShader(shader, source)
	if ok {
		return nil
	}
	p.state = Failed
	p.logger.Error("Shader compile failed", zap.Stringer("stage", stage), zap.String("log", log))
	return &ShaderError{Step: stage.String() + " compile", Log: log}
}

// Use makes the program current.
func (p *Program) Use() {
	p.gl.UseProgram(p.handle)
}

// Release detaches whatever program is current.
func (p *Program) Release() {
	p.gl.UseProgram(0)
}
