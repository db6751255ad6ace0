package sketch

import (
	"time"
)

// DefaultClockStep is the amount the shader clock advances per tick.
const DefaultClockStep float32 = 0.05

// Time tracks wall-clock frame deltas. When FixedDt is set, Dt is pinned to it
// and Time advances by exactly that amount each tick. The first wall-clock
// tick has a zero Dt, so setup work done before Run (asset preload) never
// shows up as one long frame.
type Time struct {
	Time    time.Time
	Dt      time.Duration
	FixedDt time.Duration

	started bool
}

// Clock is the accumulating shader time. It advances by Step every tick and
// is independent of wall time.
type Clock struct {
	Elapsed float32
	Step    float32
	Frame   uint64
}

type TimeModule struct {
	ClockStep float32
	FixedDt   time.Duration
}

func (mod TimeModule) Install(app *App, cmd *Commands) {
	step := mod.ClockStep
	if step == 0 {
		step = DefaultClockStep
	}
	cmd.AddResources(
		&Time{
			Time:    time.Now(),
			Dt:      0,
			FixedDt: mod.FixedDt,
		},
		&Clock{Step: step},
	)
	app.UseSystem(System(timeSystem).InStage(PreUpdate))
	app.UseSystem(System(clockSystem).InStage(PreUpdate))
}

func timeSystem(timeResource *Time) {
	if timeResource.FixedDt > 0 {
		timeResource.Dt = timeResource.FixedDt
		timeResource.Time = timeResource.Time.Add(timeResource.FixedDt)
		return
	}

	now := time.Now()
	if !timeResource.started {
		timeResource.started = true
		timeResource.Dt = 0
		timeResource.Time = now
		return
	}

	timeResource.Dt = now.Sub(timeResource.Time)
	timeResource.Time = now
}

func clockSystem(clock *Clock) {
	clock.Elapsed += clock.Step
	clock.Frame++
}
