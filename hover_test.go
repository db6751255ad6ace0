package sketch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// hoverFixture lays out two planes side by side on an 800x600 viewport.
func hoverFixture(t *testing.T) (*PlaneStore, *Camera, PlaneId, PlaneId) {
	t.Helper()
	vp := &Viewport{}
	vp.Resize(800, 600)
	store := NewPlaneStore()
	left := store.Add("left", Rect{Top: 200, Left: 100, Width: 200, Height: 200})
	right := store.Add("right", Rect{Top: 200, Left: 500, Width: 200, Height: 200})
	layoutSystem(store, vp, NewScrollState(0.1))
	return store, NewCamera(800, 600, 600), left, right
}

// ndc converts a page pixel to normalized device coordinates.
func ndc(x, y float32) (float32, float32) {
	return x/800*2 - 1, 1 - y/600*2
}

func TestHoverSystem_EnterAndLeave(t *testing.T) {
	store, cam, left, _ := hoverFixture(t)
	hover := &Hover{}
	pointer := &Pointer{Inside: true}
	pointer.X, pointer.Y = ndc(200, 300)

	hoverSystem(pointer, cam, store, hover)
	assert.Equal(t, left, hover.Current)
	require.NotNil(t, hover.LastHit)

	p, _ := store.Get(left)
	assert.Equal(t, float32(1), p.Hover.To)
	assert.InDelta(t, 0.5, p.Uniforms.HoverUV.X(), 1e-3)
	assert.InDelta(t, 0.5, p.Uniforms.HoverUV.Y(), 1e-3)

	// pointer into the gap between planes
	pointer.X, pointer.Y = ndc(400, 300)
	hoverSystem(pointer, cam, store, hover)
	assert.Empty(t, hover.Current)
	assert.Nil(t, hover.LastHit)
	assert.Equal(t, float32(0), p.Hover.To)
}

func TestHoverSystem_MoveBetweenPlanes(t *testing.T) {
	store, cam, left, right := hoverFixture(t)
	hover := &Hover{}
	pointer := &Pointer{Inside: true}

	pointer.X, pointer.Y = ndc(150, 250)
	hoverSystem(pointer, cam, store, hover)
	pointer.X, pointer.Y = ndc(600, 350)
	hoverSystem(pointer, cam, store, hover)

	pl, _ := store.Get(left)
	pr, _ := store.Get(right)
	assert.Equal(t, right, hover.Current)
	assert.Equal(t, float32(0), pl.Hover.To)
	assert.Equal(t, float32(1), pr.Hover.To)
	// page y grows down, uv v grows up
	assert.InDelta(t, 0.5, pr.Uniforms.HoverUV.X(), 1e-3)
	assert.InDelta(t, 0.25, pr.Uniforms.HoverUV.Y(), 1e-3)
}

func TestHoverSystem_PointerLeftReleasesHover(t *testing.T) {
	store, cam, left, _ := hoverFixture(t)
	hover := &Hover{}
	pointer := &Pointer{Inside: true}
	pointer.X, pointer.Y = ndc(200, 300)
	hoverSystem(pointer, cam, store, hover)

	pointer.Inside = false
	hoverSystem(pointer, cam, store, hover)

	p, _ := store.Get(left)
	assert.Empty(t, hover.Current)
	assert.Equal(t, float32(0), p.Hover.To)
}

func TestTweenSystem_WritesHoverUniform(t *testing.T) {
	store, _, left, _ := hoverFixture(t)
	p, _ := store.Get(left)
	p.Hover.Retarget(1)

	tm := &Time{Dt: 100 * time.Millisecond}
	tweenSystem(tm, store)
	first := p.Uniforms.Hover
	assert.Greater(t, first, float32(0))
	assert.Less(t, first, float32(1))

	for i := 0; i < 10; i++ {
		tweenSystem(tm, store)
	}
	assert.Equal(t, float32(1), p.Uniforms.Hover)
}
