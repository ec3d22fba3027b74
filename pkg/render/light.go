package render

import "github.com/hcosta/renderizer/pkg/math3d"

// Light is a directional light. Direction is the direction the light ray
// travels, so a surface is lit when its normal opposes Direction.
type Light struct {
	Direction math3d.Vec3
}

// NewLight creates a directional light from the given ray direction.
func NewLight(dir math3d.Vec3) Light {
	return Light{Direction: dir.Normalize()}
}

// Intensity returns the flat-shading factor for a face normal, in [0,1].
func (l Light) Intensity(normal math3d.Vec3) float64 {
	f := -normal.Dot(l.Direction)
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// Shade applies the light to a base color using the face normal.
func (l Light) Shade(base Color, normal math3d.Vec3) Color {
	return ApplyIntensity(base, l.Intensity(normal))
}
