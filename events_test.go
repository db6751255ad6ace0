package sketch

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventQueue_DrainPreservesOrder(t *testing.T) {
	q := &EventQueue{}
	assert.Nil(t, q.Drain())

	q.Push(Scrolled{Offset: 10}, PointerMoved{X: 0.1, Y: 0.2})
	q.Push(PointerLeft{})
	assert.Equal(t, 3, q.Len())

	events := q.Drain()
	assert.Equal(t, []Event{Scrolled{Offset: 10}, PointerMoved{X: 0.1, Y: 0.2}, PointerLeft{}}, events)
	assert.Zero(t, q.Len())
	assert.Nil(t, q.Drain())
}

func TestEventQueue_ConcurrentPush(t *testing.T) {
	q := &EventQueue{}
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				q.Push(Scrolled{Offset: float32(j)})
			}
		}()
	}
	wg.Wait()
	assert.Len(t, q.Drain(), 800)
}

func TestEventsSystem_AppliesEvents(t *testing.T) {
	app := NewApp()
	q := &EventQueue{}
	vp := &Viewport{}
	vp.Resize(1024, 768)
	cam := NewCamera(1024, 768, 600)
	scroll := NewScrollState(0.1)
	pointer := &Pointer{}
	cmd := app.Commands()

	q.Push(
		Resized{Width: 800, Height: 600},
		Scrolled{Offset: 250},
		PointerMoved{X: -0.25, Y: 0.5},
	)
	eventsSystem(q, vp, cam, scroll, pointer, cmd)

	assert.Equal(t, 800, vp.Width)
	assert.InDelta(t, 4.0/3.0, cam.Aspect, 1e-6)
	assert.InDelta(t, 53.13, cam.FovDeg, 0.01)
	assert.Equal(t, float32(250), scroll.Target)
	assert.Equal(t, Pointer{X: -0.25, Y: 0.5, Inside: true}, *pointer)

	q.Push(PointerLeft{}, Resized{Width: 0, Height: 0})
	eventsSystem(q, vp, cam, scroll, pointer, cmd)
	assert.False(t, pointer.Inside)
	// minimised window keeps the last size
	assert.Equal(t, 800, vp.Width)
	assert.InDelta(t, 4.0/3.0, cam.Aspect, 1e-6)
}
