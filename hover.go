package sketch

// Hover tracks which plane is under the pointer.
type Hover struct {
	Current PlaneId
	LastHit *Hit
}

// hoverSystem casts the pointer ray and retargets hover tweens: the plane
// under the pointer eases toward 1, the one it left eases toward 0.
func hoverSystem(pointer *Pointer, camera *Camera, store *PlaneStore, hover *Hover) {
	var hit *Hit
	if pointer.Inside {
		if hits := IntersectPlanes(camera.PickRay(pointer.X, pointer.Y), store); len(hits) > 0 {
			hit = &hits[0]
		}
	}

	if hover.Current != "" && (hit == nil || hit.Plane != hover.Current) {
		if prev, err := store.Get(hover.Current); err == nil {
			prev.Hover.Retarget(0)
		}
		hover.Current = ""
	}

	hover.LastHit = hit
	if hit == nil {
		return
	}

	p, err := store.Get(hit.Plane)
	if err != nil {
		return
	}
	p.Uniforms.HoverUV = hit.UV
	p.Hover.Retarget(1)
	hover.Current = hit.Plane
}

func tweenSystem(t *Time, store *PlaneStore) {
	dt := float32(t.Dt.Seconds())
	store.Each(func(p *Plane) bool {
		p.Uniforms.Hover = p.Hover.Advance(dt)
		return true
	})
}
