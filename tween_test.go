package sketch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tanema/gween/ease"
)

func TestTween_ReachesTargetAfterDuration(t *testing.T) {
	tw := NewTween(0, 0.5)
	assert.False(t, tw.Active())

	tw.Retarget(1)
	assert.True(t, tw.Active())

	tw.Advance(0.25)
	assert.Greater(t, tw.Value, float32(0))
	assert.Less(t, tw.Value, float32(1))
	// out-quad at half time covers three quarters
	assert.InDelta(t, 0.75, tw.Value, 1e-5)

	tw.Advance(0.3)
	assert.Equal(t, float32(1), tw.Value)
	assert.False(t, tw.Active())
}

func TestTween_ReversalIsContinuous(t *testing.T) {
	tw := NewTween(0, 0.5)
	tw.Ease = ease.Linear
	tw.Retarget(1)
	tw.Advance(0.2)
	mid := tw.Value
	assert.InDelta(t, 0.4, mid, 1e-5)

	tw.Retarget(0)
	assert.Equal(t, mid, tw.From)
	assert.Equal(t, mid, tw.Value)

	// the first step after reversing moves down from where it was
	tw.Advance(0.01)
	assert.Less(t, tw.Value, mid)
	assert.InDelta(t, mid, tw.Value, 0.02)

	tw.Advance(1)
	assert.Equal(t, float32(0), tw.Value)
}

func TestTween_RetargetSameTargetKeepsProgress(t *testing.T) {
	tw := NewTween(0, 1)
	tw.Ease = ease.Linear
	tw.Retarget(1)
	tw.Advance(0.5)

	tw.Retarget(1)
	assert.InDelta(t, 0.5, tw.Value, 1e-5)
	assert.Equal(t, float32(0), tw.From)

	tw.Advance(0.5)
	assert.Equal(t, float32(1), tw.Value)
	assert.False(t, tw.Active())
}

func TestTween_ZeroDurationSnaps(t *testing.T) {
	tw := NewTween(0, 0)
	tw.Retarget(1)
	assert.Equal(t, float32(1), tw.Advance(0))
	assert.False(t, tw.Active())
}

func TestTween_IdleAdvanceKeepsValue(t *testing.T) {
	tw := NewTween(0.3, 0.5)
	assert.Equal(t, float32(0.3), tw.Advance(0.1))

	tw.Retarget(1)
	tw.Advance(-1)
	assert.Equal(t, float32(0.3), tw.Value)
}
