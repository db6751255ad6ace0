package sketch

import (
	"github.com/go-gl/mathgl/mgl32"
)

// DefaultOrbitSensitivity is the orbit rotation in degrees per dragged pixel.
const DefaultOrbitSensitivity float32 = 0.25

// OrbitCamera turns pointer drags into yaw and pitch around the camera target.
// While it is at rest (zero yaw and pitch) the camera keeps its pixel-aligned
// pose.
type OrbitCamera struct {
	Sensitivity float32
	// Return eases yaw and pitch back to zero when no drag is in progress,
	// as a fraction of the remaining angle per tick. Zero keeps the pose.
	Return float32
}

// OrbitCameraModule lets the user drag the camera around the page planes.
type OrbitCameraModule struct {
	Sensitivity float32
	Return      float32
}

func (m OrbitCameraModule) Install(app *App, cmd *Commands) {
	sensitivity := m.Sensitivity
	if sensitivity <= 0 {
		sensitivity = DefaultOrbitSensitivity
	}
	cmd.AddResources(&OrbitCamera{
		Sensitivity: sensitivity,
		Return:      mgl32.Clamp(m.Return, 0, 1),
	})
	app.UseSystem(System(orbitCameraSystem).InStage(Update))
}

func orbitCameraSystem(pointer *Pointer, orbit *OrbitCamera, camera *Camera) {
	yaw, pitch := camera.Yaw, camera.Pitch
	if pointer.Drag.X() != 0 || pointer.Drag.Y() != 0 {
		yaw += pointer.Drag.X() * orbit.Sensitivity
		pitch -= pointer.Drag.Y() * orbit.Sensitivity
	} else if orbit.Return > 0 {
		yaw -= yaw * orbit.Return
		pitch -= pitch * orbit.Return
		if abs32(yaw) < 1e-3 && abs32(pitch) < 1e-3 {
			yaw, pitch = 0, 0
		}
	} else {
		return
	}
	camera.Orbit(yaw, pitch)
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
