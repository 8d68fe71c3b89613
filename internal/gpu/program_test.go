package gpu_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"gabornoise/internal/gpu"
	"gabornoise/internal/gpu/gputest"
)

var okSources = gpu.Sources{Vertex: "void main() {}", Fragment: "void main() {}"}

func observed() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

func TestProgramBuildValidates(t *testing.T) {
	fake := gputest.New()
	logger, logs := observed()
	p := gpu.NewProgram(fake, logger)
	assert.Equal(t, gpu.Uncreated, p.State())

	require.NoError(t, p.Build(okSources))
	assert.Equal(t, gpu.Validated, p.State())
	assert.True(t, fake.IsProgram(p.Handle()))
	assert.Equal(t, 1, fake.Count("CreateProgram"))
	assert.Equal(t, 2, fake.Count("AttachShader"))
	assert.Equal(t, []string{"CompileShader vertex", "CompileShader fragment"},
		filter(fake.Calls, "CompileShader"))
	assert.Equal(t, 1, logs.FilterMessage("Shader program linked").Len(), "link log is always emitted")
}

func TestProgramCompileFailureIsFatal(t *testing.T) {
	fake := gputest.New()
	logger, logs := observed()
	p := gpu.NewProgram(fake, logger)

	err := p.Build(gpu.Sources{Vertex: okSources.Vertex, Fragment: gputest.CompileErrorMarker})
	require.Error(t, err)
	assert.ErrorIs(t, err, gpu.ErrShaderBuild)

	var se *gpu.ShaderError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "fragment compile", se.Step)
	assert.Contains(t, se.Log, gputest.CompileErrorMarker)
	assert.Equal(t, gpu.Failed, p.State())
	assert.Zero(t, fake.Count("LinkProgram"), "no link after a failed compile")
	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
}

func TestProgramLinkFailureIsFatal(t *testing.T) {
	fake := gputest.New()
	fake.LinkFails = true
	fake.LinkLog = "error: varying mismatch"
	logger, _ := observed()
	p := gpu.NewProgram(fake, logger)

	err := p.Build(okSources)
	var se *gpu.ShaderError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "link", se.Step)
	assert.Equal(t, "error: varying mismatch", se.Log)
	assert.Equal(t, gpu.Failed, p.State())
}

func TestProgramValidationFailureIsNotFatal(t *testing.T) {
	fake := gputest.New()
	fake.ValidateFails = true
	logger, logs := observed()
	p := gpu.NewProgram(fake, logger)

	require.NoError(t, p.Build(okSources))
	assert.Equal(t, gpu.Linked, p.State())
	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.WarnLevel).Len())
}

func TestProgramRecreatedWhenInvalid(t *testing.T) {
	fake := gputest.New()
	logger, _ := observed()
	p := gpu.NewProgram(fake, logger)

	require.NoError(t, p.Build(okSources))
	first := p.Handle()

	require.NoError(t, p.Build(okSources))
	assert.Equal(t, first, p.Handle(), "valid program is reused")
	assert.Equal(t, 1, fake.Count("CreateProgram"))
	assert.Equal(t, 4, fake.Count("CompileShader"), "sources are recompiled on every build")

	fake.Invalidate(first)
	require.NoError(t, p.Build(okSources))
	assert.NotEqual(t, first, p.Handle())
	assert.Equal(t, 2, fake.Count("CreateProgram"))
}

func TestShaderErrorMessage(t *testing.T) {
	assert.Equal(t, "link failed", (&gpu.ShaderError{Step: "link"}).Error())
	assert.Equal(t, "vertex compile failed: bad", (&gpu.ShaderError{Step: "vertex compile", Log: "bad"}).Error())
	assert.Equal(t, "validated", gpu.Validated.String())
	assert.Equal(t, "fragment", gpu.FragmentStage.String())
}

func filter(calls []string, prefix string) []string {
	var out []string
	for _, c := range calls {
		if len(c) >= len(prefix) && c[:len(prefix)] == prefix {
			out = append(out, c)
		}
	}
	return out
}
