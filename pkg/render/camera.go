package render

import (
	"math"

	"github.com/hcosta/renderizer/pkg/math3d"
)

// pitchLimit keeps the pitch inside (-pi/2, pi/2) so the look-at basis never
// degenerates into the up vector.
const pitchLimit = math.Pi/2 - 0.05

// Camera is a first-person camera: a position plus yaw and pitch angles from
// which the forward direction and the view matrix are derived.
type Camera struct {
	Position math3d.Vec3
	Yaw      float64 // rotation around Y, radians
	Pitch    float64 // rotation around X, radians

	viewMatrix math3d.Mat4
	viewDirty  bool
}

// NewCamera creates a camera at the origin looking down +z.
func NewCamera() *Camera {
	return &Camera{viewDirty: true}
}

// SetPosition sets the camera position.
func (c *Camera) SetPosition(pos math3d.Vec3) {
	c.Position = pos
	c.viewDirty = true
}

// SetRotation sets yaw and pitch, clamping pitch.
func (c *Camera) SetRotation(yaw, pitch float64) {
	c.Yaw = yaw
	c.Pitch = clampPitch(pitch)
	c.viewDirty = true
}

// Forward returns the view direction: (0,0,1) rotated first by pitch about X,
// then by yaw about Y.
func (c *Camera) Forward() math3d.Vec3 {
	dir := math3d.RotateX(c.Pitch).MulDir(math3d.V3(0, 0, 1))
	return math3d.RotateY(c.Yaw).MulDir(dir)
}

// Right returns the strafe direction, perpendicular to forward on the ground
// plane.
func (c *Camera) Right() math3d.Vec3 {
	return math3d.Up().Cross(c.Forward()).Normalize()
}

// ViewMatrix returns the look-at view matrix for the current state.
func (c *Camera) ViewMatrix() math3d.Mat4 {
	if c.viewDirty {
		target := c.Position.Add(c.Forward())
		c.viewMatrix = math3d.LookAt(c.Position, target, math3d.Up())
		c.viewDirty = false
	}
	return c.viewMatrix
}

// MoveForward moves along the view direction (backward if negative).
func (c *Camera) MoveForward(distance float64) {
	c.Position = c.Position.Add(c.Forward().Scale(distance))
	c.viewDirty = true
}

// MoveRight strafes right (left if negative).
func (c *Camera) MoveRight(distance float64) {
	c.Position = c.Position.Add(c.Right().Scale(distance))
	c.viewDirty = true
}

// MoveUp moves along the world up axis.
func (c *Camera) MoveUp(distance float64) {
	c.Position = c.Position.Add(math3d.Up().Scale(distance))
	c.viewDirty = true
}

// Rotate applies yaw/pitch deltas (e.g. mouse motion scaled by sensitivity).
// Pitch is clamped on every update.
func (c *Camera) Rotate(deltaYaw, deltaPitch float64) {
	c.Yaw += deltaYaw
	c.Pitch = clampPitch(c.Pitch + deltaPitch)
	c.viewDirty = true
}

func clampPitch(pitch float64) float64 {
	if pitch > pitchLimit {
		return pitchLimit
	}
	if pitch < -pitchLimit {
		return -pitchLimit
	}
	return pitch
}
