// Package stimulus is the dynamic Gabor noise stimulus: construction-time
// unit conversion, per-load noise generation and GPU setup, and the
// per-frame driver.
//
// A Stimulus must be loaded, played, drawn and stopped from the goroutine
// that owns the GL context. Announce may be called from any goroutine.
package stimulus

import (
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"gabornoise/internal/gpu"
	"gabornoise/internal/noise"
	"gabornoise/internal/params"
	"gabornoise/internal/prng"
	"gabornoise/internal/shaders"
	"gabornoise/internal/units"
)

// Unset marks the frame-time markers before the first frame and after stop.
const Unset = -1.0

// baseRate divides elapsed seconds into animation time.
const baseRate = 60.0

var (
	ErrNotLoaded  = errors.New("stimulus not loaded")
	ErrNotPlaying = errors.New("stimulus not playing")
)

// Option configures a Stimulus.
type Option func(*Stimulus)

// WithSeed fixes the noise seed so every load regenerates the same table.
func WithSeed(seed uint32) Option {
	return func(s *Stimulus) {
		s.seedSource = func() uint32 { return seed }
	}
}

// WithSeedSource replaces the wall-clock seed.
func WithSeedSource(f func() uint32) Option {
	return func(s *Stimulus) { s.seedSource = f }
}

// WithClock replaces the monotonic system clock.
func WithClock(c Clock) Option {
	return func(s *Stimulus) { s.clock = c }
}

// WithLogger sets the parent logger; the stimulus logs under "stimulus".
func WithLogger(l *zap.Logger) Option {
	return func(s *Stimulus) { s.logger = l }
}

// WithShaders reads shader sources from fsys instead of the embedded set.
func WithShaders(fsys fs.FS) Option {
	return func(s *Stimulus) { s.shaders = fsys }
}

// Stimulus is one dynamic Gabor noise stimulus.
type Stimulus struct {
	mu sync.Mutex

	params   *params.Parameters
	geometry units.Geometry

	gl         gpu.GL
	program    *gpu.Program
	binder     *gpu.Binder
	clock      Clock
	seedSource func() uint32
	shaders    fs.FS
	logger     *zap.Logger

	loaded  bool
	playing bool
	start   int64

	previousTime float64
	currentTime  float64
	animation    float64

	kernel noise.Kernel
	seed   uint32
	loadID uuid.UUID
}

// New validates p and derives the renderer geometry. Configuration
// problems wrap params.ErrInvalid.
func New(p *params.Parameters, gl gpu.GL, opts ...Option) (*Stimulus, error) {
	s := &Stimulus{
		params:       p,
		gl:           gl,
		clock:        NewSystemClock(),
		seedSource:   prng.TimeSeed,
		shaders:      shaders.Embedded(),
		logger:       zap.NewNop(),
		previousTime: Unset,
		currentTime:  Unset,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("stimulus")

	if err := p.Validate(); err != nil {
		return nil, err
	}
	g, err := units.Derive(units.Input{
		Screen: units.Screen{
			HorizontalResolution: p.Float(params.HorizontalResolution),
			HorizontalSizeMM:     p.Float(params.HorizontalScreenSize),
			ViewingDistanceMM:    p.Float(params.ViewingDistance),
		},
		TextureSize:           p.Float(params.TextureSize),
		NoiseSpatialFrequency: p.Float(params.NoiseSpatialFrequency),
		NoiseBandwidth:        p.Float(params.NoiseBandwidth),
		Azimuth:               p.Float(params.Azimuth),
		Elevation:             p.Float(params.Elevation),
		Sigma:                 p.Float(params.Sigma),
		Orientation:           p.Float(params.Orientation),
		SpatialFrequency:      p.Float(params.SpatialFrequency),
		PhaseOffset:           p.Float(params.PhaseOffset),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", params.ErrInvalid, err)
	}
	s.geometry = g

	if _, err := s.newKernel(); err != nil {
		return nil, err
	}
	s.program = gpu.NewProgram(gl, s.logger)

	s.logger.Debug("Derived geometry",
		zap.Float64("pixels_per_degree", g.PixelsPerDegree),
		zap.Float64("noise_frequency", g.NoiseFrequency),
		zap.Float64("noise_bandwidth", g.NoiseBandwidth),
		zap.Float64("detection_frequency", g.DetectionFrequency))
	return s, nil
}

func (s *Stimulus) newKernel() (noise.Kernel, error) {
	k, err := noise.NewKernel(s.geometry.NoiseFrequency, s.geometry.NoiseBandwidth,
		s.params.Int(params.NoiseImpulses), s.params.Int(params.TextureSize))
	if err != nil {
		return noise.Kernel{}, fmt.Errorf("%w: %w", params.ErrInvalid, err)
	}
	return k, nil
}

// Geometry returns the derived geometry.
func (s *Stimulus) Geometry() units.Geometry {
	return s.geometry
}

// Parameters returns the parameter set the stimulus reads from.
func (s *Stimulus) Parameters() *params.Parameters {
	return s.params
}

// Load builds the program, generates a fresh impulse table and uploads it.
// Loading a loaded stimulus is a no-op. Shader build failures wrap
// gpu.ErrShaderBuild and must be treated as fatal.
func (s *Stimulus) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return nil
	}

	s.gl.ClearColor(0.5, 0.5, 0.5, 1)

	src, err := shaders.Load(s.shaders)
	if err != nil {
		return err
	}
	if err := s.program.Build(src); err != nil {
		return err
	}
	s.program.Use()

	k, err := s.newKernel()
	if err != nil {
		return err
	}
	b := gpu.NewBinder(s.gl, s.program.Handle(), s.logger)
	if err := b.Reserve(k.Records()); err != nil {
		var ce *gpu.CapacityError
		if errors.As(err, &ce) {
			return fmt.Errorf("%w: %w", params.ErrInvalid, err)
		}
		return err
	}

	seed := s.seedSource()
	table := noise.Generate(k, s.params.Float(params.NoiseTimeSpeedUpSigma), prng.New(seed))
	if err := b.UploadImpulses(table); err != nil {
		return err
	}
	g := s.geometry
	b.SetConstants(gpu.Constants{
		Radius:               float32(k.Radius),
		Bandwidth:            float32(k.Bandwidth),
		Frequency:            k.Frequency,
		Lambda:               float32(k.Lambda),
		GridSize:             uint32(k.GridSize),
		Impulses:             uint32(k.Impulses),
		NoiseContrast:        float32(s.params.Float(params.NoiseContrast)),
		DetectionX:           float32(g.DetectionX),
		DetectionY:           float32(g.DetectionY),
		DetectionSigma:       float32(g.DetectionSigma),
		DetectionOrientation: float32(g.DetectionOrientation),
		DetectionFrequency:   float32(g.DetectionFrequency),
		DetectionOffset:      float32(g.DetectionPhase),
	}, float32(s.params.Float(params.Transparency)))
	b.BindQuad()

	s.binder = b
	s.kernel = k
	s.seed = seed
	s.loadID = uuid.New()
	s.loaded = true

	s.logger.Info("Loaded stimulus",
		zap.String("load_id", s.loadID.String()),
		zap.Uint32("seed", seed),
		zap.Int("grid_size", k.GridSize),
		zap.Int("impulses", table.Len()),
		zap.Float64("radius", k.Radius),
		zap.Int("layout_version", noise.LayoutVersion))
	return nil
}

// Unload stops playback and frees the impulse buffer and quad. The next
// Load reseeds and regenerates the table.
func (s *Stimulus) Unload() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return
	}
	s.stopLocked()
	s.binder.Release()
	s.binder = nil
	s.loaded = false
	s.logger.Info("Unloaded stimulus", zap.String("load_id", s.loadID.String()))
}

// Reload is Unload followed by Load.
func (s *Stimulus) Reload() error {
	s.Unload()
	return s.Load()
}

// Play starts the elapsed-time clock and rebinds the program and quad.
func (s *Stimulus) Play() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return ErrNotLoaded
	}
	if s.playing {
		return nil
	}
	s.program.Use()
	s.binder.Rebind()
	s.start = s.clock.NowMicros()
	s.playing = true
	return nil
}

// Stop unbinds GPU state and resets frame-time tracking.
func (s *Stimulus) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *Stimulus) stopLocked() {
	if !s.playing {
		return
	}
	s.playing = false
	s.binder.Unbind()
	s.program.Release()
	s.previousTime = Unset
	s.currentTime = Unset
	s.animation = 0
}

// Loaded reports whether GPU state is set up.
func (s *Stimulus) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// Playing reports whether the stimulus is in its playing state.
func (s *Stimulus) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

// Times returns the previous and current frame times in seconds.
func (s *Stimulus) Times() (previous, current float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.previousTime, s.currentTime
}

// AnimationTime is the time value pushed with the last frame.
func (s *Stimulus) AnimationTime() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.animation
}

// LoadID identifies the current load, empty when unloaded.
func (s *Stimulus) LoadID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return ""
	}
	return s.loadID.String()
}

// Seed is the seed of the current load.
func (s *Stimulus) Seed() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seed
}

// Kernel is the kernel of the current load.
func (s *Stimulus) Kernel() noise.Kernel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.kernel
}

// DrawFrame pushes the per-frame uniforms and draws the quad.
func (s *Stimulus) DrawFrame() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return ErrNotLoaded
	}
	if !s.playing {
		return ErrNotPlaying
	}

	s.previousTime = s.currentTime
	s.currentTime = float64(s.clock.NowMicros()-s.start) / 1e6
	s.animation = s.params.Float(params.NoiseTimeSpeedUp) * (s.currentTime / baseRate)

	s.binder.SetFrame(float32(s.animation),
		float32(s.params.Float(params.Transparency)),
		float32(s.params.Float(params.Contrast)))
	s.binder.Draw()
	return nil
}

// Announce snapshots the stimulus type and the current value of every
// parameter.
func (s *Stimulus) Announce() Announcement {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := Announcement{Type: params.StimType, Time: s.currentTime}
	if s.loaded {
		a.LoadID = s.loadID.String()
		a.Seed = s.seed
	}
	for _, def := range params.Schema() {
		v := Value{Name: def.Name, Kind: def.Kind}
		if def.Kind == params.KindInt {
			v.Int = s.params.Int(def.Name)
		} else {
			v.Float = s.params.Float(def.Name)
		}
		a.Values = append(a.Values, v)
	}
	return a
}
