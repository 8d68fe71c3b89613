// Package params is the stimulus configuration surface: parameter names,
// defaults, bound variables, and construction-time validation.
package params

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// Component metadata exposed to the host registry.
const (
	Signature   = "stimulus/DynamicGaborNoise"
	DisplayName = "Dynamic Gabor Noise"
	Description = "A Gabor surrounded by Gabor noise."
	StimType    = "Dynamic_Gabor_Noise"
)

// Parameter names. These are also the keys of announce records.
const (
	HorizontalResolution  = "horizontalResolution"
	VerticalResolution    = "verticalResolution"
	ViewingDistance       = "viewingDistance"
	HorizontalScreenSize  = "horizontalScreenSize"
	TextureSize           = "textureSize"
	NoiseImpulses         = "noise_nImpulses"
	NoiseSpatialFrequency = "noise_spatialFrequency"
	NoiseBandwidth        = "noise_bandwidth"
	NoiseTimeSpeedUp      = "noise_timeSpeedUp"
	NoiseTimeSpeedUpSigma = "noise_timeSpeedUpSigma"
	NoiseContrast         = "noise_contrast"
	Azimuth               = "azimuth"
	Elevation             = "elevation"
	Sigma                 = "sigma"
	Orientation           = "orientation"
	SpatialFrequency      = "spatialFrequency"
	PhaseOffset           = "phaseOffset"
	Contrast              = "contrast"
	Transparency          = "transparency"
)

// ErrInvalid is wrapped by every configuration error.
var ErrInvalid = errors.New("invalid stimulus parameters")

// Kind is the announced value type.
type Kind int

const (
	KindFloat Kind = iota
	KindInt
)

func (k Kind) String() string {
	if k == KindInt {
		return "integer"
	}
	return "float"
}

// Spec describes one parameter.
type Spec struct {
	Name    string
	Default float64
	Kind    Kind
	// Bound parameters become variables the host may change while the
	// stimulus runs.
	Bound bool
	Unit  string
}

// DefaultString renders the default the way the registry lists it.
func (s Spec) DefaultString() string {
	if s.Kind == KindInt {
		return strconv.Itoa(int(s.Default))
	}
	return strconv.FormatFloat(s.Default, 'f', -1, 64)
}

var schema = []Spec{
	{Name: HorizontalResolution, Default: 1980, Kind: KindInt, Unit: "px"},
	{Name: VerticalResolution, Default: 1080, Kind: KindInt, Bound: true, Unit: "px"},
	{Name: ViewingDistance, Default: 300, Kind: KindInt, Bound: true, Unit: "mm"},
	{Name: HorizontalScreenSize, Default: 477, Unit: "mm"},
	{Name: TextureSize, Default: 800, Kind: KindInt, Bound: true, Unit: "px"},
	{Name: NoiseImpulses, Default: 5, Kind: KindInt, Unit: "per cell"},
	{Name: NoiseSpatialFrequency, Default: 0.1, Bound: true, Unit: "cycles/deg"},
	{Name: NoiseBandwidth, Default: 0.1, Bound: true, Unit: "cycles/deg"},
	{Name: NoiseTimeSpeedUp, Default: 0.95, Bound: true},
	{Name: NoiseTimeSpeedUpSigma, Default: 5, Bound: true},
	{Name: NoiseContrast, Default: 1.0, Bound: true},
	{Name: Azimuth, Default: 1.0, Unit: "deg"},
	{Name: Elevation, Default: 1.0, Bound: true, Unit: "deg"},
	{Name: Sigma, Default: 3.0, Bound: true, Unit: "deg"},
	{Name: Orientation, Default: 45.0, Unit: "deg"},
	{Name: SpatialFrequency, Default: 0.11, Bound: true, Unit: "cycles/deg"},
	{Name: PhaseOffset, Default: 0.0, Bound: true, Unit: "deg"},
	{Name: Contrast, Default: 0.5, Bound: true},
	{Name: Transparency, Default: 1.0, Bound: true},
}

// Schema returns a copy of the parameter list in registry order.
func Schema() []Spec {
	out := make([]Spec, len(schema))
	copy(out, schema)
	return out
}

// Lookup finds a parameter by name.
func Lookup(name string) (Spec, bool) {
	for _, s := range schema {
		if s.Name == name {
			return s, true
		}
	}
	return Spec{}, false
}

// Defaults returns the default value of every parameter.
func Defaults() map[string]float64 {
	out := make(map[string]float64, len(schema))
	for _, s := range schema {
		out[s.Name] = s.Default
	}
	return out
}

// Parameters is the resolved set of sources for one stimulus.
type Parameters struct {
	sources map[string]Source
}

// New builds parameters from raw values. Missing names take their default;
// bound parameters become Variables, the rest Fixed. Unknown names are an
// error.
func New(values map[string]float64) (*Parameters, error) {
	p := &Parameters{sources: make(map[string]Source, len(schema))}
	for name := range values {
		if _, ok := Lookup(name); !ok {
			return nil, fmt.Errorf("%w: unknown parameter %q", ErrInvalid, name)
		}
	}
	for _, s := range schema {
		v, ok := values[s.Name]
		if !ok {
			v = s.Default
		}
		if s.Bound {
			p.sources[s.Name] = NewVariable(v)
		} else {
			p.sources[s.Name] = Fixed(v)
		}
	}
	return p, nil
}

// Bind replaces the source of one parameter, e.g. to share a variable
// owned by the host.
func (p *Parameters) Bind(name string, src Source) error {
	if _, ok := Lookup(name); !ok {
		return fmt.Errorf("%w: unknown parameter %q", ErrInvalid, name)
	}
	p.sources[name] = src
	return nil
}

// Source returns the source bound to name, or nil.
func (p *Parameters) Source(name string) Source {
	return p.sources[name]
}

// Variable returns the bound variable for name, if it is one.
func (p *Parameters) Variable(name string) (*Variable, bool) {
	v, ok := p.sources[name].(*Variable)
	return v, ok
}

// Float reads the current value of name.
func (p *Parameters) Float(name string) float64 {
	return p.sources[name].Float()
}

// Int reads the current value of name as an integer.
func (p *Parameters) Int(name string) int {
	return Int(p.sources[name])
}

// Validate checks the construction-time invariants on the current values.
func (p *Parameters) Validate() error {
	var errs []error
	if c := p.Float(Contrast); !(c > 0 && c < 1) {
		errs = append(errs, fmt.Errorf("contrast must be within (0,1), got %v", c))
	}
	for _, name := range []string{HorizontalResolution, ViewingDistance, HorizontalScreenSize, TextureSize, NoiseSpatialFrequency, NoiseBandwidth} {
		if v := p.Float(name); !(v > 0) || math.IsInf(v, 0) {
			errs = append(errs, fmt.Errorf("%s must be positive and finite, got %v", name, v))
		}
	}
	if n := p.Int(NoiseImpulses); n < 1 {
		errs = append(errs, fmt.Errorf("%s must be at least 1, got %d", NoiseImpulses, n))
	}
	if s := p.Float(NoiseTimeSpeedUpSigma); s < 0 || math.IsNaN(s) {
		errs = append(errs, fmt.Errorf("%s is a variance and must not be negative, got %v", NoiseTimeSpeedUpSigma, s))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
}
