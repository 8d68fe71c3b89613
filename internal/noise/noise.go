// Package noise computes the sparse Gabor convolution kernel and fills the
// per-impulse parameter table that the fragment shader sums over.
//
// Table layout (version 1), shared with the ImpulseParam uniform block in
// gabor_noise.fs:
//
//	record i = cell*impulses + k, for cell in [0, gridSize^2), k in [0, impulses)
//	table[4*i+FieldX]           x offset within the cell, [0,1)
//	table[4*i+FieldY]           y offset within the cell, [0,1)
//	table[4*i+FieldOrientation] orientation, [0, 2*pi)
//	table[4*i+FieldPhase]       phase jitter, N(0, sigma)
//
// Each record is one std140 vec4 on the GPU side. Changing the order or the
// stride is a format change: bump LayoutVersion and the shader together.
package noise

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"gabornoise/internal/prng"
)

// LayoutVersion identifies the table layout above.
const LayoutVersion = 1

// Field indices within a record.
const (
	FieldX = iota
	FieldY
	FieldOrientation
	FieldPhase
	FieldsPerImpulse
)

// Truncate is the Gaussian envelope value at which an impulse's support is
// cut off.
const Truncate = 0.01

// Theta is the fixed orientation of the kernel frequency vector.
const Theta = math.Pi / 4

// ErrInvalidKernel reports parameters that would produce non-finite kernel
// quantities.
var ErrInvalidKernel = errors.New("invalid noise kernel parameters")

// Kernel holds the per-load kernel constants.
type Kernel struct {
	Radius      float64    // r, grid cell size in px
	Bandwidth   float64    // a
	Frequency   mgl32.Vec2 // f
	Lambda      float64    // impulse density per px^2
	GridSize    int        // cells per side, including one margin cell each side
	Impulses    int        // impulses per cell
	TextureSize int        // px
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// NewKernel derives the kernel from frequency and bandwidth in cycles/px.
func NewKernel(frequency, bandwidth float64, impulses, textureSize int) (Kernel, error) {
	if !positiveFinite(frequency) {
		return Kernel{}, fmt.Errorf("%w: frequency %v", ErrInvalidKernel, frequency)
	}
	if !positiveFinite(bandwidth) {
		return Kernel{}, fmt.Errorf("%w: bandwidth %v", ErrInvalidKernel, bandwidth)
	}
	if impulses < 1 {
		return Kernel{}, fmt.Errorf("%w: impulses per cell %d", ErrInvalidKernel, impulses)
	}
	if textureSize < 1 {
		return Kernel{}, fmt.Errorf("%w: texture size %d", ErrInvalidKernel, textureSize)
	}

	r := math.Sqrt(-math.Log(Truncate)/math.Pi) / bandwidth
	lambda := float64(impulses) / (math.Pi * r * r)
	if !positiveFinite(r) || !positiveFinite(lambda) {
		return Kernel{}, fmt.Errorf("%w: radius %v, lambda %v", ErrInvalidKernel, r, lambda)
	}

	// Record and byte counts must stay representable as int.
	grid := math.Ceil(float64(textureSize)/r) + 2
	if grid*grid*float64(impulses)*FieldsPerImpulse*4 >= math.MaxInt {
		return Kernel{}, fmt.Errorf("%w: %v cells of %d impulses do not fit an impulse table",
			ErrInvalidKernel, grid*grid, impulses)
	}

	return Kernel{
		Radius:    r,
		Bandwidth: bandwidth,
		Frequency: mgl32.Vec2{
			float32(frequency * math.Cos(Theta)),
			float32(frequency * math.Sin(Theta)),
		},
		Lambda:      lambda,
		GridSize:    int(grid),
		Impulses:    impulses,
		TextureSize: textureSize,
	}, nil
}

// Cells is gridSize^2.
func (k Kernel) Cells() int {
	return k.GridSize * k.GridSize
}

// Records is the number of impulse records in the table.
func (k Kernel) Records() int {
	return k.Cells() * k.Impulses
}

// Impulse is one decoded table record.
type Impulse struct {
	X, Y        float32
	Orientation float32
	Phase       float32
}

// Table is the flat impulse table in the layout described in the package
// doc.
type Table []float32

// Len is the number of records.
func (t Table) Len() int {
	return len(t) / FieldsPerImpulse
}

// Bytes is the upload size.
func (t Table) Bytes() int {
	return len(t) * 4
}

// At decodes record i.
func (t Table) At(i int) Impulse {
	r := t[i*FieldsPerImpulse : (i+1)*FieldsPerImpulse]
	return Impulse{X: r[FieldX], Y: r[FieldY], Orientation: r[FieldOrientation], Phase: r[FieldPhase]}
}

// Record returns the record for impulse k of the given cell.
func (t Table) Record(k Kernel, cell, impulse int) Impulse {
	return t.At(cell*k.Impulses + impulse)
}

// below narrows v to float32 and keeps it strictly under limit; rounding to
// the nearest float32 can otherwise land exactly on the bound.
func below(v, limit float64) float32 {
	f := float32(v)
	if float64(f) >= limit {
		return math.Nextafter32(float32(limit), 0)
	}
	return f
}

// Generate draws every record from rng in layout order. phaseVariance is the
// variance of the phase jitter Gaussian.
func Generate(k Kernel, phaseVariance float64, rng *prng.Stream) Table {
	t := make(Table, 0, k.Records()*FieldsPerImpulse)
	for i := 0; i < k.Records(); i++ {
		for field := 0; field < FieldsPerImpulse; field++ {
			switch field {
			case FieldX, FieldY:
				t = append(t, below(rng.Uniform01(), 1))
			case FieldOrientation:
				t = append(t, below(rng.Uniform(0, 2*math.Pi), 2*math.Pi))
			case FieldPhase:
				t = append(t, float32(rng.Gaussian(0, phaseVariance)))
			}
		}
	}
	return t
}
