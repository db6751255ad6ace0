package sketch

import (
	"fmt"
	"time"
)

// RendererName identifies a concrete renderer backend.
type RendererName string

const (
	RendererWGPU     RendererName = "wgpu"
	RendererHeadless RendererName = "headless"
)

// Renderer draws one frame snapshot per call.
type Renderer interface {
	Resize(width, height int)
	Render(frame *Frame) error
	Release()
}

// RenderTarget holds the single installed renderer.
type RenderTarget struct {
	Name     RendererName
	Renderer Renderer

	viewportVersion uint64
}

// FrameStats counts rendered frames and per-frame failures.
type FrameStats struct {
	Frames     uint64
	Errors     uint64
	LastRender time.Duration
	FPS        float64
	LastErr    error

	windowStart  time.Time
	windowFrames int
}

// RendererTag marks that a renderer has been installed into the App.
type RendererTag struct {
	Name RendererName
}

// ensureSingleRenderer panics when a second, different renderer is installed.
func ensureSingleRenderer(app *App, name RendererName) {
	if app == nil {
		panic("ensureSingleRenderer: app is nil")
	}
	if tag, ok := Resource[RendererTag](app); ok {
		if tag.Name != name {
			app.Logger().Errorf("Multiple renderers installed: %s and %s", tag.Name, name)
			panic(fmt.Sprintf("Multiple renderers installed: %s and %s", tag.Name, name))
		}
		return
	}
	app.addResources(&RendererTag{Name: name})
}

// renderModule wires a Renderer into the Render stage.
type renderModule struct {
	name     RendererName
	renderer Renderer
}

func (mod renderModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(
		&RenderTarget{Name: mod.name, Renderer: mod.renderer},
		&FrameStats{},
	)
	app.UseSystem(System(renderSystem).InStage(Render))
	app.UseSystem(System(frameStatsSystem).InStage(PostRender))
}

// UseRenderer installs exactly one renderer. Installing the same renderer
// twice is a no-op; a different name or a second instance panics.
func (app *App) UseRenderer(name RendererName, r Renderer) *App {
	if _, ok := Resource[RendererTag](app); ok {
		ensureSingleRenderer(app, name)
		if target, ok := Resource[RenderTarget](app); ok && target.Renderer != r {
			app.Logger().Errorf("Renderer %s is already installed with another instance", name)
			panic(fmt.Sprintf("Renderer %s is already installed with another instance", name))
		}
		return app
	}
	ensureSingleRenderer(app, name)
	app.Logger().Infof("Renderer selected: %s", name)
	app.UseModules(renderModule{name: name, renderer: r})
	return app
}

// UseHeadless installs a HeadlessRenderer and returns it.
func (app *App) UseHeadless() *HeadlessRenderer {
	r := NewHeadlessRenderer(8)
	app.UseRenderer(RendererHeadless, r)
	return r
}

func renderSystem(cmd *Commands, target *RenderTarget, clock *Clock, viewport *Viewport, camera *Camera, store *PlaneStore, post *PostProcess, stats *FrameStats) {
	if target.Renderer == nil {
		return
	}
	if v := viewport.Version(); v != target.viewportVersion {
		target.Renderer.Resize(viewport.Width, viewport.Height)
		target.viewportVersion = v
	}

	frame := buildFrame(cmd.Ticks(), clock, viewport, camera, store, post)

	start := time.Now()
	err := target.Renderer.Render(frame)
	stats.LastRender = time.Since(start)
	stats.Frames++
	if err != nil {
		stats.Errors++
		stats.LastErr = err
		cmd.Logger().Errorf("render frame %d: %v", frame.Index, err)
	}
}

func frameStatsSystem(cmd *Commands, stats *FrameStats) {
	now := time.Now()
	if stats.windowStart.IsZero() {
		stats.windowStart = now
	}
	stats.windowFrames++

	elapsed := now.Sub(stats.windowStart)
	if elapsed < time.Second {
		return
	}
	stats.FPS = float64(stats.windowFrames) / elapsed.Seconds()
	cmd.Logger().Debugf("fps %.1f, last render %s, errors %d", stats.FPS, stats.LastRender, stats.Errors)
	stats.windowStart = now
	stats.windowFrames = 0
}
