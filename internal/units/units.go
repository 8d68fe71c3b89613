// Package units converts visual-angle stimulus parameters into the pixel
// and radian quantities the renderer works in.
package units

import (
	"errors"
	"fmt"
	"math"
)

// ErrDegenerate reports screen geometry that cannot produce a finite,
// positive pixels-per-degree scale.
var ErrDegenerate = errors.New("degenerate screen geometry")

// Screen is the physical display setup.
type Screen struct {
	HorizontalResolution float64 // px
	HorizontalSizeMM     float64
	ViewingDistanceMM    float64
}

// HalfScreenDegrees is the visual angle subtended by half the screen width.
func (s Screen) HalfScreenDegrees() float64 {
	return 180 / math.Pi * math.Atan((s.HorizontalSizeMM/2)/s.ViewingDistanceMM)
}

func (s Screen) validate() error {
	check := func(name string, v float64) error {
		if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s must be positive and finite, got %v", ErrDegenerate, name, v)
		}
		return nil
	}
	if err := check("horizontal resolution", s.HorizontalResolution); err != nil {
		return err
	}
	if err := check("horizontal screen size", s.HorizontalSizeMM); err != nil {
		return err
	}
	return check("viewing distance", s.ViewingDistanceMM)
}

// Converter maps degrees to pixels for one screen.
type Converter struct {
	halfScreenDegrees float64
	pixelsPerDegree   float64
}

// NewConverter validates the screen and computes its scale.
func NewConverter(s Screen) (Converter, error) {
	if err := s.validate(); err != nil {
		return Converter{}, err
	}
	half := s.HalfScreenDegrees()
	ppd := (s.HorizontalResolution / 2) / half
	if ppd <= 0 || math.IsInf(ppd, 0) || math.IsNaN(ppd) {
		return Converter{}, fmt.Errorf("%w: pixels per degree is %v", ErrDegenerate, ppd)
	}
	return Converter{halfScreenDegrees: half, pixelsPerDegree: ppd}, nil
}

// HalfScreenDegrees is the visual angle from screen center to edge.
func (c Converter) HalfScreenDegrees() float64 { return c.halfScreenDegrees }

// PixelsPerDegree is the horizontal pixel density at the screen center.
func (c Converter) PixelsPerDegree() float64 { return c.pixelsPerDegree }

// CyclesPerPixel converts a spatial frequency or bandwidth from cycles/deg.
func (c Converter) CyclesPerPixel(cyclesPerDegree float64) float64 {
	return cyclesPerDegree / c.pixelsPerDegree
}

// Pixels converts a size or eccentricity from degrees.
func (c Converter) Pixels(degrees float64) float64 {
	return degrees * c.pixelsPerDegree
}

// Orientation converts degrees to radians and rotates by +90 degrees so that
// 0 is a vertical grating in the shader's convention.
func (c Converter) Orientation(degrees float64) float64 {
	return degrees/180*math.Pi + math.Pi/2
}

// Phase converts degrees to radians.
func (c Converter) Phase(degrees float64) float64 {
	return degrees / 180 * math.Pi
}

// Input is every angle-denominated value the stimulus derives from.
type Input struct {
	Screen      Screen
	TextureSize float64 // px

	NoiseSpatialFrequency float64 // cycles/deg
	NoiseBandwidth        float64 // cycles/deg

	Azimuth          float64 // deg
	Elevation        float64 // deg
	Sigma            float64 // deg
	Orientation      float64 // deg
	SpatialFrequency float64 // cycles/deg
	PhaseOffset      float64 // deg
}

// Geometry is the derived, immutable renderer geometry.
type Geometry struct {
	HalfScreenDegrees float64
	PixelsPerDegree   float64

	NoiseFrequency float64 // cycles/px
	NoiseBandwidth float64 // cycles/px

	DetectionX           float64 // px
	DetectionY           float64 // px
	DetectionSigma       float64 // px
	DetectionOrientation float64 // rad
	DetectionFrequency   float64 // cycles/px
	DetectionPhase       float64 // rad
}

// Derive runs the conversion once for a stimulus.
func Derive(in Input) (Geometry, error) {
	c, err := NewConverter(in.Screen)
	if err != nil {
		return Geometry{}, err
	}
	center := in.TextureSize / 2
	return Geometry{
		HalfScreenDegrees:    c.HalfScreenDegrees(),
		PixelsPerDegree:      c.PixelsPerDegree(),
		NoiseFrequency:       c.CyclesPerPixel(in.NoiseSpatialFrequency),
		NoiseBandwidth:       c.CyclesPerPixel(in.NoiseBandwidth),
		DetectionX:           center + c.Pixels(in.Azimuth),
		DetectionY:           center + c.Pixels(in.Elevation),
		DetectionSigma:       c.Pixels(in.Sigma),
		DetectionOrientation: c.Orientation(in.Orientation),
		DetectionFrequency:   c.CyclesPerPixel(in.SpatialFrequency),
		DetectionPhase:       c.Phase(in.PhaseOffset),
	}, nil
}
