package sketch

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	DefaultCameraDistance float32 = 600
	DefaultCameraNear     float32 = 100
	DefaultCameraFar      float32 = 2000
)

// Viewport is the drawable size in pixels.
type Viewport struct {
	Width, Height int

	version uint64
}

// Resize applies a new size. Non-positive sizes (minimised windows) are
// ignored and reported as false.
func (v *Viewport) Resize(width, height int) bool {
	if width <= 0 || height <= 0 {
		return false
	}
	if width == v.Width && height == v.Height {
		return true
	}
	v.Width = width
	v.Height = height
	v.version++
	return true
}

// Version increments on every effective size change.
func (v *Viewport) Version() uint64 {
	return v.version
}

func (v Viewport) Aspect() float32 {
	if v.Height == 0 {
		return 1
	}
	return float32(v.Width) / float32(v.Height)
}

// FitFov returns the vertical field of view in degrees at which one world
// unit equals one pixel on the z=0 plane seen from the given distance.
func FitFov(height, distance float32) float32 {
	return float32(2 * math.Atan(float64(height)/2/float64(distance)) * (180 / math.Pi))
}

// MaxOrbitPitch keeps the orbit away from the poles, where the up vector
// degenerates.
const MaxOrbitPitch float32 = 89

// Camera is a perspective camera looking at Target from Distance away. With
// zero Yaw and Pitch it sits at (0, 0, Distance) looking down -z, which is the
// pose at which one world unit on z=0 equals one pixel.
type Camera struct {
	Position mgl32.Vec3
	Target   mgl32.Vec3
	Distance float32
	// Yaw and Pitch orbit the camera around Target, in degrees.
	Yaw    float32
	Pitch  float32
	FovDeg float32
	Aspect float32
	Near   float32
	Far    float32

	height float32
}

func NewCamera(width, height int, distance float32) *Camera {
	if distance <= 0 {
		distance = DefaultCameraDistance
	}
	c := &Camera{
		Near: DefaultCameraNear,
		Far:  DefaultCameraFar,
	}
	c.SetDistance(distance)
	c.Resize(width, height)
	return c
}

// Resize updates aspect and re-derives the field of view from the new height.
func (c *Camera) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.Aspect = float32(width) / float32(height)
	c.height = float32(height)
	c.FovDeg = FitFov(c.height, c.Distance)
}

// SetDistance moves the camera along its orbit radius and re-derives the
// field of view.
func (c *Camera) SetDistance(distance float32) {
	if distance <= 0 {
		return
	}
	c.Distance = distance
	c.updatePosition()
	if c.height > 0 {
		c.FovDeg = FitFov(c.height, distance)
	}
}

// Orbit places the camera at the given yaw and pitch around Target. Pitch is
// clamped to [-MaxOrbitPitch, MaxOrbitPitch].
func (c *Camera) Orbit(yaw, pitch float32) {
	c.Yaw = yaw
	c.Pitch = mgl32.Clamp(pitch, -MaxOrbitPitch, MaxOrbitPitch)
	c.updatePosition()
}

func (c *Camera) updatePosition() {
	yaw := float64(mgl32.DegToRad(c.Yaw))
	pitch := float64(mgl32.DegToRad(c.Pitch))
	offset := mgl32.Vec3{
		float32(-math.Sin(yaw) * math.Cos(pitch)),
		float32(-math.Sin(pitch)),
		float32(math.Cos(yaw) * math.Cos(pitch)),
	}
	c.Position = c.Target.Add(offset.Mul(c.Distance))
}

func (c *Camera) Projection() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FovDeg), c.Aspect, c.Near, c.Far)
}

func (c *Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Target, mgl32.Vec3{0, 1, 0})
}

func (c *Camera) ViewProjection() mgl32.Mat4 {
	return c.Projection().Mul4(c.View())
}

// PickRay unprojects a point given in normalized device coordinates.
func (c *Camera) PickRay(ndcX, ndcY float32) Ray {
	inv := c.ViewProjection().Inv()
	near := mgl32.TransformCoordinate(mgl32.Vec3{ndcX, ndcY, -1}, inv)
	far := mgl32.TransformCoordinate(mgl32.Vec3{ndcX, ndcY, 1}, inv)
	return Ray{
		Origin:    near,
		Direction: far.Sub(near).Normalize(),
	}
}
