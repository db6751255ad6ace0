package sketch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimeSystem_FirstTickHasNoDelta(t *testing.T) {
	app := NewApp().UseModules(TimeModule{})
	tm := mustResource[Time](t, app)

	// setup before the first tick, such as a slow preload
	tm.Time = tm.Time.Add(-10 * time.Second)

	app.Step()
	assert.Zero(t, tm.Dt)

	time.Sleep(2 * time.Millisecond)
	app.Step()
	assert.Greater(t, tm.Dt, time.Duration(0))
	assert.Less(t, tm.Dt, time.Second)
}

func TestTimeSystem_FixedDt(t *testing.T) {
	app := NewApp().UseModules(TimeModule{FixedDt: 16 * time.Millisecond, ClockStep: 0.5})
	tm := mustResource[Time](t, app)
	start := tm.Time

	app.Step()
	app.Step()
	assert.Equal(t, 16*time.Millisecond, tm.Dt)
	assert.Equal(t, start.Add(32*time.Millisecond), tm.Time)

	clock := mustResource[Clock](t, app)
	assert.InDelta(t, 1.0, clock.Elapsed, 1e-6)
	assert.Equal(t, uint64(2), clock.Frame)
}
