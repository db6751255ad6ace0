package sketch

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPlane(id PlaneId, pos mgl32.Vec3, w, h float32) *Plane {
	return &Plane{Id: id, Position: pos, Size: mgl32.Vec2{w, h}}
}

func TestIntersectPlane_UV(t *testing.T) {
	p := testPlane("p", mgl32.Vec3{0, 0, 0}, 200, 100)
	down := mgl32.Vec3{0, 0, -1}

	hit, ok := IntersectPlane(Ray{Origin: mgl32.Vec3{0, 0, 600}, Direction: down}, p)
	require.True(t, ok)
	assert.InDelta(t, 600, hit.Distance, 1e-4)
	assert.InDelta(t, 0.5, hit.UV.X(), 1e-6)
	assert.InDelta(t, 0.5, hit.UV.Y(), 1e-6)

	// bottom-left corner is the uv origin
	hit, ok = IntersectPlane(Ray{Origin: mgl32.Vec3{-99, -49, 600}, Direction: down}, p)
	require.True(t, ok)
	assert.InDelta(t, 0.005, hit.UV.X(), 1e-5)
	assert.InDelta(t, 0.01, hit.UV.Y(), 1e-5)

	hit, ok = IntersectPlane(Ray{Origin: mgl32.Vec3{50, 25, 600}, Direction: down}, p)
	require.True(t, ok)
	assert.InDelta(t, 0.75, hit.UV.X(), 1e-6)
	assert.InDelta(t, 0.75, hit.UV.Y(), 1e-6)
}

func TestIntersectPlane_Misses(t *testing.T) {
	p := testPlane("p", mgl32.Vec3{0, 0, 0}, 200, 100)

	_, ok := IntersectPlane(Ray{Origin: mgl32.Vec3{150, 0, 600}, Direction: mgl32.Vec3{0, 0, -1}}, p)
	assert.False(t, ok, "outside the quad")

	_, ok = IntersectPlane(Ray{Origin: mgl32.Vec3{0, 0, 600}, Direction: mgl32.Vec3{1, 0, 0}}, p)
	assert.False(t, ok, "parallel ray")

	_, ok = IntersectPlane(Ray{Origin: mgl32.Vec3{0, 0, 600}, Direction: mgl32.Vec3{0, 0, 1}}, p)
	assert.False(t, ok, "plane behind the ray")
}

func TestIntersectPlanes_SortedByDistance(t *testing.T) {
	store := NewPlaneStore()
	far := store.Add("far", Rect{Width: 100, Height: 100})
	near := store.Add("near", Rect{Width: 100, Height: 100})
	empty := store.Add("empty", Rect{})

	pf, _ := store.Get(far)
	pn, _ := store.Get(near)
	pe, _ := store.Get(empty)
	pf.Position = mgl32.Vec3{0, 0, -10}
	pn.Position = mgl32.Vec3{0, 0, 10}
	pe.Position = mgl32.Vec3{0, 0, 20}

	hits := IntersectPlanes(Ray{Origin: mgl32.Vec3{0, 0, 600}, Direction: mgl32.Vec3{0, 0, -1}}, store)
	require.Len(t, hits, 2)
	assert.Equal(t, near, hits[0].Plane)
	assert.Equal(t, far, hits[1].Plane)
	assert.Less(t, hits[0].Distance, hits[1].Distance)
}
