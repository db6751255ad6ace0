package sketch

import (
	"github.com/go-gl/mathgl/mgl32"
)

// PostProcess configures the screen-space pass that follows the scene render.
// Strength is rewritten from the scroll speed every tick.
type PostProcess struct {
	Enabled  bool
	Strength float32
	Program  ShaderProgram
}

// PlaneDraw is the per-plane part of a frame snapshot.
type PlaneDraw struct {
	Id       PlaneId
	Texture  AssetId
	Model    mgl32.Mat4
	Size     mgl32.Vec2
	Uniforms PlaneUniforms
}

// Frame is an immutable snapshot handed to the renderer once per tick.
type Frame struct {
	Index      uint64
	Time       float32
	Viewport   Viewport
	View       mgl32.Mat4
	Projection mgl32.Mat4
	Planes     []PlaneDraw
	Post       PostUniforms
}

type PostUniforms struct {
	Enabled  bool
	Strength float32
	Time     float32
}

func (f *Frame) ViewProjection() mgl32.Mat4 {
	return f.Projection.Mul4(f.View)
}

func buildFrame(index uint64, clock *Clock, viewport *Viewport, camera *Camera, store *PlaneStore, post *PostProcess) *Frame {
	frame := &Frame{
		Index:      index,
		Time:       clock.Elapsed,
		Viewport:   *viewport,
		View:       camera.View(),
		Projection: camera.Projection(),
		Planes:     make([]PlaneDraw, 0, store.Len()),
		Post: PostUniforms{
			Enabled:  post.Enabled,
			Strength: post.Strength,
			Time:     clock.Elapsed,
		},
	}
	store.Each(func(p *Plane) bool {
		frame.Planes = append(frame.Planes, PlaneDraw{
			Id:       p.Id,
			Texture:  p.Uniforms.Texture,
			Model:    p.Model(),
			Size:     p.Size,
			Uniforms: p.Uniforms,
		})
		return true
	})
	return frame
}

// uniformSystem pushes clock and scroll speed into every plane and into the
// post pass.
func uniformSystem(clock *Clock, scroll *ScrollState, store *PlaneStore, post *PostProcess) {
	store.Each(func(p *Plane) bool {
		p.Uniforms.Time = clock.Elapsed
		p.Uniforms.ScrollSpeed = scroll.Speed
		p.Uniforms.Hover = p.Hover.Value
		return true
	})
	post.Strength = scroll.Speed
}
