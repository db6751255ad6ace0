package sketch

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Tween eases Value toward To over Duration seconds.
//
// Retargeting always starts the new segment from the current Value, so a
// reversal mid-flight changes direction without a jump.
type Tween struct {
	From     float32
	To       float32
	Value    float32
	Duration float32
	Ease     ease.TweenFunc

	anim *gween.Tween
}

func NewTween(value, duration float32) Tween {
	return Tween{
		From:     value,
		To:       value,
		Value:    value,
		Duration: duration,
		Ease:     ease.OutQuad,
	}
}

// Retarget starts easing toward to. It is a no-op when already heading there.
func (tw *Tween) Retarget(to float32) {
	if tw.To == to {
		return
	}
	fn := tw.Ease
	if fn == nil {
		fn = ease.Linear
	}
	tw.From = tw.Value
	tw.To = to
	tw.anim = gween.New(tw.From, to, tw.Duration, fn)
}

func (tw *Tween) Active() bool {
	return tw.anim != nil
}

// Advance moves the tween forward by dt seconds and returns the new value.
func (tw *Tween) Advance(dt float32) float32 {
	if tw.anim == nil {
		return tw.Value
	}
	if dt < 0 {
		dt = 0
	}
	if tw.Duration <= 0 {
		tw.Value = tw.To
		tw.anim = nil
		return tw.Value
	}

	value, done := tw.anim.Update(dt)
	tw.Value = value
	if done {
		tw.Value = tw.To
		tw.anim = nil
	}
	return tw.Value
}
