package sketch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUseRenderer_SameNameIsNoop(t *testing.T) {
	app := NewApp().UseModules(TimeModule{}, NewFrameSyncModule(320, 240))
	r := app.UseHeadless()

	assert.NotPanics(t, func() {
		app.UseRenderer(RendererHeadless, r)
	})

	app.Step()
	assert.Equal(t, 1, r.Renders, "second install must not add another render system")
}

func TestUseRenderer_SameNameOtherInstancePanics(t *testing.T) {
	app := NewApp().UseModules(TimeModule{}, NewFrameSyncModule(320, 240))
	app.UseHeadless()

	assert.PanicsWithValue(t, "Renderer headless is already installed with another instance", func() {
		app.UseRenderer(RendererHeadless, NewHeadlessRenderer(1))
	})
}

func TestUseRenderer_DifferentNamePanics(t *testing.T) {
	app := NewApp().UseModules(TimeModule{}, NewFrameSyncModule(320, 240))
	app.UseHeadless()

	assert.PanicsWithValue(t, "Multiple renderers installed: headless and wgpu", func() {
		app.UseRenderer(RendererWGPU, NewHeadlessRenderer(1))
	})
}

func TestHeadlessRenderer_KeepsLastFrames(t *testing.T) {
	r := NewHeadlessRenderer(2)
	assert.Nil(t, r.Last())

	for i := 0; i < 5; i++ {
		assert.NoError(t, r.Render(&Frame{Index: uint64(i)}))
	}
	assert.Equal(t, 5, r.Renders)
	assert.Len(t, r.Frames(), 2)
	assert.Equal(t, uint64(4), r.Last().Index)

	r.Release()
	assert.True(t, r.Released)
}

func TestFrameStatsSystem_ComputesFPS(t *testing.T) {
	app := NewApp()
	stats := &FrameStats{windowStart: time.Now().Add(-2 * time.Second), windowFrames: 59}

	frameStatsSystem(app.Commands(), stats)
	assert.InDelta(t, 30, stats.FPS, 1)
	assert.Zero(t, stats.windowFrames)
}
