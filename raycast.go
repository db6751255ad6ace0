package sketch

import (
	"cmp"
	"math"
	"slices"

	"github.com/go-gl/mathgl/mgl32"
)

type Ray struct {
	Origin    mgl32.Vec3
	Direction mgl32.Vec3
}

// Hit is a ray intersection with a plane. UV has its origin at the plane's
// bottom-left corner.
type Hit struct {
	Plane    PlaneId
	Distance float32
	Point    mgl32.Vec3
	UV       mgl32.Vec2
}

// IntersectPlane tests a ray against the quad of p, which lies on z = p.Position.z
// facing +z.
func IntersectPlane(ray Ray, p *Plane) (Hit, bool) {
	dz := ray.Direction.Z()
	if float32(math.Abs(float64(dz))) < 1e-6 {
		return Hit{}, false
	}
	t := (p.Position.Z() - ray.Origin.Z()) / dz
	if t < 0 {
		return Hit{}, false
	}

	point := ray.Origin.Add(ray.Direction.Mul(t))
	u := (point.X()-p.Position.X())/p.Size.X() + 0.5
	v := (point.Y()-p.Position.Y())/p.Size.Y() + 0.5
	if u < 0 || u > 1 || v < 0 || v > 1 {
		return Hit{}, false
	}

	return Hit{
		Plane:    p.Id,
		Distance: t,
		Point:    point,
		UV:       mgl32.Vec2{u, v},
	}, true
}

// IntersectPlanes returns every hit ordered by increasing distance.
func IntersectPlanes(ray Ray, store *PlaneStore) []Hit {
	var hits []Hit
	store.Each(func(p *Plane) bool {
		if p.Detached || p.Size.X() <= 0 || p.Size.Y() <= 0 {
			return true
		}
		if hit, ok := IntersectPlane(ray, p); ok {
			hits = append(hits, hit)
		}
		return true
	})
	slices.SortStableFunc(hits, func(a, b Hit) int {
		return cmp.Compare(a.Distance, b.Distance)
	})
	return hits
}
