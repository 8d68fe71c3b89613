package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gabornoise/internal/config"
	"gabornoise/internal/gpu"
	"gabornoise/internal/gpu/opengl"
	"gabornoise/internal/hud"
	"gabornoise/internal/observability"
	"gabornoise/internal/params"
	"gabornoise/internal/shaders"
	"gabornoise/internal/stimulus"
)

func newRunCmd(h *host) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Open a window and present the stimulus",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStimulus(h.cfg, h.logger)
		},
	}
	f := cmd.Flags()
	f.Bool("fullscreen", false, "present fullscreen on display.monitor")
	f.Bool("hud", false, "draw the debug overlay")
	f.Int64("seed", config.TimeSeed, "fixed noise seed, -1 seeds from the clock on every load")
	f.String("shaders", "", "directory with gabor_noise.vs and gabor_noise.fs")
	f.String("announce-file", "", "append announce records to this file")
	f.Int("announce-every", 0, "announce every N frames (0: on load only)")
	f.StringToStringVar(&h.sets, "set", nil, "stimulus parameter override, name=value")

	for key, flag := range map[string]string{
		"display.fullscreen":    "fullscreen",
		"display.hud":           "hud",
		"seed":                  "seed",
		"shaders.dir":           "shaders",
		"announce.file":         "announce-file",
		"announce.every_frames": "announce-every",
	} {
		_ = h.v.BindPFlag(key, f.Lookup(flag))
	}
	return cmd
}

// newStimulus builds the parameter set and stimulus described by cfg.
func newStimulus(cfg *config.Config, g gpu.GL, logger *zap.Logger) (*stimulus.Stimulus, error) {
	values, err := cfg.StimulusValues()
	if err != nil {
		return nil, err
	}
	p, err := params.New(values)
	if err != nil {
		return nil, err
	}
	opts := []stimulus.Option{
		stimulus.WithLogger(logger),
		stimulus.WithShaders(shaders.Dir(cfg.Shaders.Dir)),
	}
	if seed, ok := cfg.FixedSeed(); ok {
		opts = append(opts, stimulus.WithSeed(seed))
	}
	return stimulus.New(p, g, opts...)
}

func createWindow(d config.DisplayConfig) (*glfw.Window, error) {
	glfw.WindowHint(glfw.Resizable, glfw.False)
	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	if !d.Fullscreen {
		return glfw.CreateWindow(d.Width, d.Height, d.Title, nil, nil)
	}
	monitor := glfw.GetPrimaryMonitor()
	if monitors := glfw.GetMonitors(); d.Monitor < len(monitors) {
		monitor = monitors[d.Monitor]
	}
	if monitor == nil {
		return nil, errors.New("no monitor available for fullscreen")
	}
	mode := monitor.GetVideoMode()
	return glfw.CreateWindow(mode.Width, mode.Height, d.Title, monitor, nil)
}

// runStimulus owns the window and GL context for the lifetime of the
// stimulus. It must run on the main thread.
func runStimulus(cfg *config.Config, logger *zap.Logger) error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("initializing GLFW: %w", err)
	}
	defer glfw.Terminate()

	window, err := createWindow(cfg.Display)
	if err != nil {
		return fmt.Errorf("creating window: %w", err)
	}
	defer window.Destroy()
	window.MakeContextCurrent()
	if cfg.Display.VSync {
		glfw.SwapInterval(1)
	}
	if cfg.Display.Fullscreen {
		window.SetInputMode(glfw.CursorMode, glfw.CursorHidden)
	}

	if err := opengl.Init(); err != nil {
		return fmt.Errorf("initializing OpenGL: %w", err)
	}
	logger.Info("OpenGL context ready", zap.String("version", opengl.Version()))
	gl.Disable(gl.DEPTH_TEST)

	stim, err := newStimulus(cfg, opengl.Context{}, logger)
	if err != nil {
		return err
	}
	if err := stim.Load(); err != nil {
		return err
	}
	defer stim.Unload()

	announcer := observability.NewAnnounceLogger(cfg.Announce, logger)
	defer announcer.Close()
	var frame uint64
	announce := func() { announcer.Announce(frame, stim.Announce()) }
	announce()

	if err := stim.Play(); err != nil {
		return err
	}

	var overlay *hud.Overlay
	if cfg.Display.HUD {
		fbWidth, fbHeight := window.GetFramebufferSize()
		if overlay, err = hud.NewOverlay(fbWidth, fbHeight, logger); err != nil {
			return err
		}
		defer overlay.Delete()
	}
	fps := hud.NewFPSCounter(time.Second)

	ctl := newControls(stim, logger, announce)
	var keyErr error
	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if action != glfw.Press {
			return
		}
		quit, err := ctl.key(key)
		if err != nil {
			keyErr = err
			quit = true
		}
		if quit {
			w.SetShouldClose(true)
		}
	})

	p := stim.Parameters()
	for !window.ShouldClose() {
		fbWidth, fbHeight := window.GetFramebufferSize()
		gl.Viewport(0, 0, int32(fbWidth), int32(fbHeight))
		gl.Clear(gl.COLOR_BUFFER_BIT)

		if stim.Playing() {
			if err := stim.DrawFrame(); err != nil {
				return err
			}
			frame++
			if n := cfg.Announce.EveryFrames; n > 0 && frame%uint64(n) == 0 {
				announce()
			}
		}

		rate := fps.Tick(time.Now())
		if overlay != nil {
			overlay.Resize(fbWidth, fbHeight)
			overlay.Render(hud.Status{
				LoadID:       stim.LoadID(),
				Seed:         stim.Seed(),
				Time:         stim.AnimationTime(),
				Contrast:     p.Float(params.Contrast),
				Transparency: p.Float(params.Transparency),
				Playing:      stim.Playing(),
				FPS:          rate,
			})
		}

		window.SwapBuffers()
		glfw.PollEvents()
	}
	logger.Info("Presentation ended", zap.Uint64("frames", frame))
	return keyErr
}
