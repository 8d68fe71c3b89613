package gpu

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// Names shared with gabor_noise.fs.
const (
	ImpulseBlock   = "ImpulseParam"
	ImpulseBinding = 0

	uniformTime              = "gabor_noise_2d_time"
	uniformRadius            = "gabor_noise_2d_r"
	uniformBandwidth         = "gabor_noise_2d_a"
	uniformFrequency         = "gabor_noise_2d_f"
	uniformLambda            = "gabor_noise_2d_lambda"
	uniformGridSize          = "gabor_noise_gridSize"
	uniformImpulses          = "gabor_noise_impulses"
	uniformNoiseContrast     = "gabor_noise_contrast"
	uniformDetectionX        = "detection_Gabor_XLocation"
	uniformDetectionY        = "detection_Gabor_YLocation"
	uniformDetectionSigma    = "detection_Gabor_Sigma"
	uniformDetectionOrient   = "detection_Gabor_Orientation"
	uniformDetectionFreq     = "detection_Gabor_Frequency"
	uniformDetectionOffset   = "detection_Gabor_Offset"
	uniformDetectionTransp   = "detection_Gabor_Transparency"
	uniformDetectionContrast = "detection_Gabor_Contrast"
)

// recordBytes is one std140 vec4.
const recordBytes = 16

// Constants are the uniforms set once per load.
type Constants struct {
	Radius        float32
	Bandwidth     float32
	Frequency     mgl32.Vec2
	Lambda        float32
	GridSize      uint32
	Impulses      uint32
	NoiseContrast float32

	DetectionX           float32
	DetectionY           float32
	DetectionSigma       float32
	DetectionOrientation float32
	DetectionFrequency   float32
	DetectionOffset      float32
}

// CapacityError reports an impulse table larger than the uniform block.
type CapacityError struct {
	Records  int
	Capacity int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("impulse table has %d records, uniform block %s holds %d", e.Records, ImpulseBlock, e.Capacity)
}

// Binder uploads per-load state into a linked program and drives the three
// per-frame uniforms.
type Binder struct {
	gl     GL
	logger *zap.Logger

	program uint32
	buffer  uint32
	quad    *Quad

	timeLoc         int32
	transparencyLoc int32
	contrastLoc     int32
}

// NewBinder binds state to program, which must be linked and current.
func NewBinder(gl GL, program uint32, logger *zap.Logger) *Binder {
	return &Binder{gl: gl, program: program, logger: logger.Named("binder")}
}

func (b *Binder) block() (uint32, int, error) {
	index := b.gl.UniformBlockIndex(b.program, ImpulseBlock)
	if index == InvalidIndex {
		return 0, 0, fmt.Errorf("uniform block %s not found in program %d", ImpulseBlock, b.program)
	}
	return index, b.gl.UniformBlockDataSize(b.program, index), nil
}

// Reserve checks that records impulse records fit the ImpulseParam block
// before any table is built.
func (b *Binder) Reserve(records int) error {
	_, size, err := b.block()
	if err != nil {
		return err
	}
	if capacity := size / recordBytes; records > capacity {
		return &CapacityError{Records: records, Capacity: capacity}
	}
	return nil
}

// UploadImpulses copies table into a new uniform buffer backing the
// ImpulseParam block at binding point 0. The buffer is sized to the block's
// data size; a table that does not fit is a CapacityError.
func (b *Binder) UploadImpulses(table []float32) error {
	index, size, err := b.block()
	if err != nil {
		return err
	}
	tableBytes := len(table) * 4
	if tableBytes > size {
		return &CapacityError{Records: tableBytes / recordBytes, Capacity: size / recordBytes}
	}
	b.gl.UniformBlockBinding(b.program, index, ImpulseBinding)
	b.buffer = b.gl.CreateUniformBuffer(ImpulseBinding, size, table)
	b.logger.Debug("Uploaded impulse table",
		zap.Int("bytes", tableBytes),
		zap.Int("block_size", size),
		zap.Uint32("buffer", b.buffer))
	return nil
}

func (b *Binder) location(name string) int32 {
	loc := b.gl.UniformLocation(b.program, name)
	if loc < 0 {
		b.logger.Warn("Uniform not active in program", zap.String("uniform", name))
	}
	return loc
}

// SetConstants writes the per-load uniforms and caches the per-frame
// locations. Transparency starts at its current value and contrast at 0 so
// the target is masked until the first frame.
func (b *Binder) SetConstants(c Constants, transparency float32) {
	b.timeLoc = b.location(uniformTime)
	b.gl.Uniform1f(b.location(uniformRadius), c.Radius)
	b.gl.Uniform1f(b.location(uniformBandwidth), c.Bandwidth)
	b.gl.Uniform2f(b.location(uniformFrequency), c.Frequency.X(), c.Frequency.Y())
	b.gl.Uniform1f(b.location(uniformLambda), c.Lambda)
	b.gl.Uniform1ui(b.location(uniformGridSize), c.GridSize)
	b.gl.Uniform1ui(b.location(uniformImpulses), c.Impulses)
	b.gl.Uniform1f(b.location(uniformNoiseContrast), c.NoiseContrast)
	b.gl.Uniform1f(b.location(uniformDetectionX), c.DetectionX)
	b.gl.Uniform1f(b.location(uniformDetectionY), c.DetectionY)
	b.gl.Uniform1f(b.location(uniformDetectionSigma), c.DetectionSigma)
	b.gl.Uniform1f(b.location(uniformDetectionOrient), c.DetectionOrientation)
	b.gl.Uniform1f(b.location(uniformDetectionFreq), c.DetectionFrequency)
	b.gl.Uniform1f(b.location(uniformDetectionOffset), c.DetectionOffset)

	b.transparencyLoc = b.location(uniformDetectionTransp)
	b.contrastLoc = b.location(uniformDetectionContrast)
	b.gl.Uniform1f(b.transparencyLoc, transparency)
	b.gl.Uniform1f(b.contrastLoc, 0)
}

// BindQuad builds the full-screen quad and leaves it bound.
func (b *Binder) BindQuad() {
	b.quad = NewQuad(b.gl)
}

// SetFrame writes the per-frame uniforms.
func (b *Binder) SetFrame(time, transparency, contrast float32) {
	b.gl.Uniform1f(b.timeLoc, time)
	b.gl.Uniform1f(b.transparencyLoc, transparency)
	b.gl.Uniform1f(b.contrastLoc, contrast)
}

// Draw issues the quad draw call.
func (b *Binder) Draw() {
	b.quad.Draw()
}

// Rebind restores the quad binding after Unbind.
func (b *Binder) Rebind() {
	if b.quad != nil {
		b.quad.Bind()
	}
}

// Unbind clears the vertex array state.
func (b *Binder) Unbind() {
	if b.quad != nil {
		b.quad.Unbind()
	}
}

// Release frees the uniform buffer and the quad.
func (b *Binder) Release() {
	if b.buffer != 0 {
		b.gl.DeleteBuffer(b.buffer)
		b.buffer = 0
	}
	if b.quad != nil {
		b.quad.Delete()
		b.quad = nil
	}
}
