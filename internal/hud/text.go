// Package hud draws a small debug overlay of frame and parameter state on
// top of the stimulus.
package hud

import (
	"fmt"
	"image"
	"image/draw"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Status is one frame's worth of overlay text.
type Status struct {
	LoadID       string
	Seed         uint32
	Time         float64 // animation seconds
	Contrast     float64
	Transparency float64
	Playing      bool
	FPS          float64
}

// Lines formats s for display.
func (s Status) Lines() []string {
	state := "stopped"
	if s.Playing {
		state = "playing"
	}
	id := s.LoadID
	if len(id) > 8 {
		id = id[:8]
	}
	return []string{
		fmt.Sprintf("%s  load %s  seed %d", state, id, s.Seed),
		fmt.Sprintf("t %8.3fs  %5.1f fps", s.Time, s.FPS),
		fmt.Sprintf("contrast %.3f  transparency %.2f", s.Contrast, s.Transparency),
	}
}

const (
	lineHeight = 15
	padding    = 4
)

var face = basicfont.Face7x13

// Rasterize renders lines into an alpha mask, top line first.
func Rasterize(lines []string) *image.Alpha {
	width := 0
	for _, l := range lines {
		if w := font.MeasureString(face, l).Ceil(); w > width {
			width = w
		}
	}
	img := image.NewAlpha(image.Rect(0, 0, width+2*padding, len(lines)*lineHeight+2*padding))
	draw.Draw(img, img.Bounds(), image.Transparent, image.Point{}, draw.Src)

	d := &font.Drawer{Dst: img, Src: image.Opaque, Face: face}
	for i, l := range lines {
		d.Dot = fixed.P(padding, padding+face.Ascent+i*lineHeight)
		d.DrawString(l)
	}
	return img
}

// FPSCounter averages frame rate over a sliding window.
type FPSCounter struct {
	window time.Duration
	start  time.Time
	frames int
	fps    float64
}

func NewFPSCounter(window time.Duration) *FPSCounter {
	return &FPSCounter{window: window}
}

// Tick counts a frame presented at now and returns the current estimate.
func (c *FPSCounter) Tick(now time.Time) float64 {
	if c.start.IsZero() {
		c.start = now
	}
	c.frames++
	if elapsed := now.Sub(c.start); elapsed >= c.window {
		c.fps = float64(c.frames) / elapsed.Seconds()
		c.frames = 0
		c.start = now
	}
	return c.fps
}
