package sketch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScrollState_DampedApproach(t *testing.T) {
	s := NewScrollState(0.1)
	s.SetTarget(1000)

	s.Step()
	assert.InDelta(t, 100, s.Current, 1e-4)
	assert.InDelta(t, 100, s.Speed, 1e-4)

	s.Step()
	assert.InDelta(t, 190, s.Current, 1e-4)
	assert.InDelta(t, 90, s.Speed, 1e-4)
	assert.InDelta(t, 100, s.Previous, 1e-4)
}

func TestScrollState_NeverOvershoots(t *testing.T) {
	for _, damping := range []float32{0.05, 0.1, 0.5, 0.99} {
		s := NewScrollState(damping)
		s.SetTarget(333.3)
		for i := 0; i < 500; i++ {
			s.Step()
			if s.Current > s.Target {
				t.Fatalf("damping %v: current %v passed target %v at step %d", damping, s.Current, s.Target, i)
			}
		}

		s.SetTarget(0)
		for i := 0; i < 500; i++ {
			s.Step()
			if s.Current < 0 {
				t.Fatalf("damping %v: current %v passed target 0 at step %d", damping, s.Current, i)
			}
			assert.LessOrEqual(t, s.Speed, float32(0))
		}
	}
}

func TestScrollState_SettlesToZeroSpeed(t *testing.T) {
	s := NewScrollState(0.1)
	s.SetTarget(50)
	for i := 0; i < 2000; i++ {
		s.Step()
	}
	assert.Equal(t, s.Target, s.Current)
	assert.Zero(t, s.Speed)
}

func TestScrollState_InvalidDampingFallsBack(t *testing.T) {
	assert.Equal(t, DefaultScrollDamping, NewScrollState(0).Damping)
	assert.Equal(t, DefaultScrollDamping, NewScrollState(1).Damping)
	assert.Equal(t, DefaultScrollDamping, NewScrollState(-0.3).Damping)
	assert.Equal(t, float32(0.25), NewScrollState(0.25).Damping)
}

func TestScrollState_TargetClamp(t *testing.T) {
	s := NewScrollState(0.1)
	s.SetTarget(-20)
	assert.Zero(t, s.Target)

	// unbounded without content height
	s.SetTarget(5000)
	assert.Equal(t, float32(5000), s.Target)

	s.ContentHeight = 2000
	s.SetViewportHeight(600)
	assert.Equal(t, float32(1400), s.Target)

	s.SetTarget(900)
	assert.Equal(t, float32(900), s.Target)

	// content shorter than the viewport cannot scroll
	s.SetViewportHeight(2400)
	assert.Zero(t, s.Target)
}

func TestScrollState_ResizeReclampsRequestedOffset(t *testing.T) {
	s := NewScrollState(0.1)
	s.ContentHeight = 2000
	s.SetViewportHeight(600)

	s.SetTarget(1500)
	assert.Equal(t, float32(1400), s.Target)

	// a shorter viewport opens up the rest of the page
	s.SetViewportHeight(500)
	assert.Equal(t, float32(1500), s.Target)
	assert.Equal(t, float32(1500), s.Limit())

	// a taller one pulls the target back in
	s.SetViewportHeight(900)
	assert.Equal(t, float32(1100), s.Target)

	s.SetViewportHeight(400)
	assert.Equal(t, float32(1500), s.Target)

	s.ContentHeight = 0
	assert.Zero(t, s.Limit())
}
