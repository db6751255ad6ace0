package sketch

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// Event is a typed input message. Window callbacks push events onto the
// EventQueue and the frame loop drains them once per tick.
type Event interface {
	isEvent()
}

// Resized carries the new drawable size in pixels.
type Resized struct {
	Width, Height int
}

// Scrolled carries the absolute page scroll offset in pixels.
type Scrolled struct {
	Offset float32
}

// PointerMoved carries pointer coordinates normalized to [-1, 1], y up.
type PointerMoved struct {
	X, Y float32
}

// PointerLeft is sent when the pointer leaves the drawable surface.
type PointerLeft struct{}

// Dragged carries pointer movement in pixels while the primary button is held.
type Dragged struct {
	DX, DY float32
}

func (Resized) isEvent()      {}
func (Scrolled) isEvent()     {}
func (PointerMoved) isEvent() {}
func (PointerLeft) isEvent()  {}
func (Dragged) isEvent()      {}

// EventQueue is the only structure shared across goroutines. Push may be
// called from anywhere; Drain is called by the frame loop.
type EventQueue struct {
	mu      sync.Mutex
	pending []Event
}

func (q *EventQueue) Push(events ...Event) {
	q.mu.Lock()
	q.pending = append(q.pending, events...)
	q.mu.Unlock()
}

// Drain returns pending events in push order and empties the queue.
func (q *EventQueue) Drain() []Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return nil
	}
	out := q.pending
	q.pending = nil
	return out
}

func (q *EventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Pointer is the last known pointer position in normalized device coordinates.
// Drag sums the Dragged deltas of the current tick.
type Pointer struct {
	X, Y   float32
	Inside bool
	Drag   mgl32.Vec2
}

func eventsSystem(queue *EventQueue, viewport *Viewport, camera *Camera, scroll *ScrollState, pointer *Pointer, cmd *Commands) {
	pointer.Drag = mgl32.Vec2{}
	for _, ev := range queue.Drain() {
		switch e := ev.(type) {
		case Resized:
			if !viewport.Resize(e.Width, e.Height) {
				continue
			}
			camera.Resize(e.Width, e.Height)
			scroll.SetViewportHeight(float32(e.Height))
			cmd.Logger().Debugf("viewport %dx%d, fov %.2f", e.Width, e.Height, camera.FovDeg)
		case Scrolled:
			scroll.SetTarget(e.Offset)
		case PointerMoved:
			pointer.X = e.X
			pointer.Y = e.Y
			pointer.Inside = true
		case PointerLeft:
			pointer.Inside = false
		case Dragged:
			pointer.Drag = pointer.Drag.Add(mgl32.Vec2{e.DX, e.DY})
		}
	}
}
