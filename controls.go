package main

import (
	"github.com/go-gl/glfw/v3.3/glfw"
	"go.uber.org/zap"

	"gabornoise/internal/params"
	"gabornoise/internal/stimulus"
)

type action int

const (
	actionNone action = iota
	actionQuit
	actionContrastUp
	actionContrastDown
	actionToggleTransparency
	actionReload
	actionTogglePlay
)

var keyActions = map[glfw.Key]action{
	glfw.KeyEscape: actionQuit,
	glfw.KeyUp:     actionContrastUp,
	glfw.KeyDown:   actionContrastDown,
	glfw.KeyT:      actionToggleTransparency,
	glfw.KeyR:      actionReload,
	glfw.KeySpace:  actionTogglePlay,
}

// contrastStep is the Up/Down increment. Contrast stays inside
// [contrastStep, 1-contrastStep].
const contrastStep = 0.05

// controls maps operator keys onto the running stimulus.
type controls struct {
	stim   *stimulus.Stimulus
	logger *zap.Logger
	// onLoad runs after a successful reload.
	onLoad func()

	hiddenTransparency float64
}

func newControls(s *stimulus.Stimulus, logger *zap.Logger, onLoad func()) *controls {
	return &controls{stim: s, logger: logger.Named("controls"), onLoad: onLoad}
}

// key handles a key press and reports whether the host should quit.
func (c *controls) key(k glfw.Key) (bool, error) {
	return c.apply(keyActions[k])
}

func (c *controls) apply(a action) (bool, error) {
	switch a {
	case actionQuit:
		return true, nil
	case actionContrastUp:
		c.adjustContrast(contrastStep)
	case actionContrastDown:
		c.adjustContrast(-contrastStep)
	case actionToggleTransparency:
		c.toggleTransparency()
	case actionReload:
		return false, c.reload()
	case actionTogglePlay:
		if c.stim.Playing() {
			c.stim.Stop()
			c.logger.Info("Stopped")
			return false, nil
		}
		if err := c.stim.Play(); err != nil {
			return false, err
		}
		c.logger.Info("Playing")
	}
	return false, nil
}

func (c *controls) variable(name string) (*params.Variable, bool) {
	v, ok := c.stim.Parameters().Variable(name)
	if !ok {
		c.logger.Warn("Parameter is fixed", zap.String("parameter", name))
	}
	return v, ok
}

func (c *controls) adjustContrast(delta float64) {
	v, ok := c.variable(params.Contrast)
	if !ok {
		return
	}
	next := v.Float() + delta
	next = max(contrastStep, min(1-contrastStep, next))
	v.Set(next)
	c.logger.Info("Contrast changed", zap.Float64("contrast", next))
}

func (c *controls) toggleTransparency() {
	v, ok := c.variable(params.Transparency)
	if !ok {
		return
	}
	if cur := v.Float(); cur > 0 {
		c.hiddenTransparency = cur
		v.Set(0)
	} else {
		restore := c.hiddenTransparency
		if restore == 0 {
			restore = 1
		}
		v.Set(restore)
	}
	c.logger.Info("Transparency changed", zap.Float64("transparency", v.Float()))
}

// reload regenerates the noise with a fresh seed and resumes playback if
// it was running.
func (c *controls) reload() error {
	playing := c.stim.Playing()
	if err := c.stim.Reload(); err != nil {
		return err
	}
	if c.onLoad != nil {
		c.onLoad()
	}
	if playing {
		return c.stim.Play()
	}
	return nil
}
