package sketch

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

var ErrUnknownPlane = errors.New("unknown plane")

// DefaultHoverDuration is the hover tween length in seconds.
const DefaultHoverDuration float32 = 0.5

type PlaneId string

// Rect is a page-space box with a top-left origin, in pixels.
type Rect struct {
	Top    float32 `json:"top"`
	Left   float32 `json:"left"`
	Width  float32 `json:"width"`
	Height float32 `json:"height"`
}

// PlaneUniforms are the per-plane shader inputs written every tick.
type PlaneUniforms struct {
	Time        float32
	Hover       float32
	HoverUV     mgl32.Vec2
	ScrollSpeed float32
	Texture     AssetId
}

// Plane is one textured quad tracking one page image.
// Size is captured from Bounds at creation and never changes; only Position
// follows the viewport and scroll.
//
// Detached planes are not tied to the page: layout leaves their Position
// alone and pointer picking ignores them.
type Plane struct {
	Id       PlaneId
	Source   AssetId
	Bounds   Rect
	Size     mgl32.Vec2
	Position mgl32.Vec3
	// Rotation holds Euler angles in radians, applied X then Y then Z.
	Rotation mgl32.Vec3
	Detached bool
	Uniforms PlaneUniforms
	Hover    Tween
}

// Model is the plane's world transform.
func (p *Plane) Model() mgl32.Mat4 {
	m := mgl32.Translate3D(p.Position.X(), p.Position.Y(), p.Position.Z())
	if p.Rotation == (mgl32.Vec3{}) {
		return m
	}
	return m.Mul4(mgl32.HomogRotate3DX(p.Rotation.X())).
		Mul4(mgl32.HomogRotate3DY(p.Rotation.Y())).
		Mul4(mgl32.HomogRotate3DZ(p.Rotation.Z()))
}

// PlaneStore is the arena of image planes, keyed by a stable id and iterated
// in insertion order.
type PlaneStore struct {
	HoverDuration float32

	planes map[PlaneId]*Plane
	order  []PlaneId
}

func NewPlaneStore() *PlaneStore {
	return &PlaneStore{
		HoverDuration: DefaultHoverDuration,
		planes:        make(map[PlaneId]*Plane),
	}
}

func (s *PlaneStore) Add(source AssetId, bounds Rect) PlaneId {
	id := PlaneId(uuid.NewString())
	s.planes[id] = &Plane{
		Id:     id,
		Source: source,
		Bounds: bounds,
		Size:   mgl32.Vec2{bounds.Width, bounds.Height},
		Uniforms: PlaneUniforms{
			Texture: source,
			HoverUV: mgl32.Vec2{0.5, 0.5},
		},
		Hover: NewTween(0, s.HoverDuration),
	}
	s.order = append(s.order, id)
	return id
}

// AddDetached adds a free-standing plane of the given size centred at the
// world origin.
func (s *PlaneStore) AddDetached(source AssetId, size mgl32.Vec2) PlaneId {
	id := s.Add(source, Rect{Width: size.X(), Height: size.Y()})
	s.planes[id].Detached = true
	return id
}

func (s *PlaneStore) Get(id PlaneId) (*Plane, error) {
	p, ok := s.planes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlane, id)
	}
	return p, nil
}

func (s *PlaneStore) Remove(id PlaneId) error {
	if _, ok := s.planes[id]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPlane, id)
	}
	delete(s.planes, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *PlaneStore) Len() int {
	return len(s.order)
}

func (s *PlaneStore) Ids() []PlaneId {
	out := make([]PlaneId, len(s.order))
	copy(out, s.order)
	return out
}

// Each visits planes in insertion order until fn returns false.
func (s *PlaneStore) Each(fn func(p *Plane) bool) {
	for _, id := range s.order {
		if !fn(s.planes[id]) {
			return
		}
	}
}

// PlacePlane maps a page box to a world position on z=0. The origin is the
// viewport centre with y up, so the quad sits under its page image.
func PlacePlane(bounds Rect, viewport Viewport, scroll float32) mgl32.Vec3 {
	w := float32(viewport.Width)
	h := float32(viewport.Height)
	return mgl32.Vec3{
		bounds.Left - w/2 + bounds.Width/2,
		scroll - bounds.Top + h/2 - bounds.Height/2,
		0,
	}
}

func layoutSystem(store *PlaneStore, viewport *Viewport, scroll *ScrollState) {
	store.Each(func(p *Plane) bool {
		if !p.Detached {
			p.Position = PlacePlane(p.Bounds, *viewport, scroll.Current)
		}
		return true
	})
}
