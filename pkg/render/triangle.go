package render

import "github.com/hcosta/renderizer/pkg/math3d"

// Triangle is the per-face record flowing through the pipeline. Each stage
// writes its own field instead of mutating the previous stage's output, so a
// later stage can always re-read the canonical positions.
type Triangle struct {
	// Local holds the model-space vertices, rebuilt from the mesh arrays at
	// the start of every frame.
	Local [3]math3d.Vec3
	// View holds the camera-space vertices after the world and view
	// transforms.
	View [3]math3d.Vec3
	// UV holds the per-vertex texture coordinates.
	UV [3]math3d.Vec2
	// Projected holds, per vertex, the screen-space x and y, the NDC depth z,
	// and the original view-space z in W.
	Projected [3]math3d.Vec4
	// ProjectedNormal holds the screen-space endpoints of the face-normal
	// overlay segment.
	ProjectedNormal [2]math3d.Vec4

	// Normal is the face normal, computed once in view space.
	Normal math3d.Vec3

	// Color is the current draw color after shading; BaseColor the immutable
	// original.
	Color     Color
	BaseColor Color

	// Culled marks back-facing triangles.
	Culled bool
}

// TransformView fills View by running the Local vertices through the world
// and view matrices.
func (t *Triangle) TransformView(world, view math3d.Mat4) {
	for i := range 3 {
		v := world.MulVec4(t.Local[i].Vec4())
		v = view.MulVec4(v)
		t.View[i] = v.Vec3()
	}
}

// ComputeNormal computes the view-space face normal: the cross product of the
// normalized AB and AC edges, AB × AC, for the left-handed system.
func (t *Triangle) ComputeNormal() {
	ab := t.View[1].Sub(t.View[0]).Normalize()
	ac := t.View[2].Sub(t.View[0]).Normalize()
	t.Normal = ab.Cross(ac).Normalize()
}

// ApplyCulling marks the triangle culled when its front face does not point
// at the camera (origin of view space). Edge-on faces are culled too.
func (t *Triangle) ApplyCulling() {
	cameraRay := math3d.Zero3().Sub(t.View[0])
	t.Culled = t.Normal.Dot(cameraRay) <= 0
}

// Project runs every view vertex through the projection matrix and maps the
// result to screen pixels. The projected W keeps the view-space z.
func (t *Triangle) Project(projection math3d.Mat4, width, height int) {
	for i := range 3 {
		t.Projected[i] = toScreen(projection.Project(t.View[i].Vec4()), width, height)
	}
}

// ProjectNormal projects a short segment from the face midpoint along the
// normal, for the normals overlay.
func (t *Triangle) ProjectNormal(projection math3d.Mat4, width, height int) {
	mid := t.View[0].Add(t.View[1]).Add(t.View[2]).Div(3)
	tip := mid.Add(t.Normal.Scale(0.05))

	t.ProjectedNormal[0] = toScreen(projection.Project(mid.Vec4()), width, height)
	t.ProjectedNormal[1] = toScreen(projection.Project(tip.Vec4()), width, height)
}

// ApplyFlatShading sets Color from BaseColor and the light, preserving alpha.
func (t *Triangle) ApplyFlatShading(light Light) {
	t.Color = light.Shade(t.BaseColor, t.Normal)
}

// toScreen maps an NDC point to pixel coordinates. Screen y grows downward,
// so the NDC y is inverted: y' = -y*(H/2) + H/2.
func toScreen(v math3d.Vec4, width, height int) math3d.Vec4 {
	halfW := float64(width) / 2
	halfH := float64(height) / 2
	v.X = v.X*halfW + halfW
	v.Y = -v.Y*halfH + halfH
	return v
}
