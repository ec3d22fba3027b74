package math3d

import "math"

// Vec2 represents a 2D vector or a screen-space point.
type Vec2 struct {
	X, Y float64
}

// V2 creates a new Vec2.
func V2(x, y float64) Vec2 {
	return Vec2{x, y}
}

// Add returns the vector sum a + b.
func (a Vec2) Add(b Vec2) Vec2 {
	return Vec2{a.X + b.X, a.Y + b.Y}
}

// Sub returns the vector difference a - b.
func (a Vec2) Sub(b Vec2) Vec2 {
	return Vec2{a.X - b.X, a.Y - b.Y}
}

// Scale returns the scalar product a * s.
func (a Vec2) Scale(s float64) Vec2 {
	return Vec2{a.X * s, a.Y * s}
}

// Div returns the scalar division a / s.
func (a Vec2) Div(s float64) Vec2 {
	return Vec2{a.X / s, a.Y / s}
}

// Dot returns the dot product a · b.
func (a Vec2) Dot(b Vec2) float64 {
	return a.X*b.X + a.Y*b.Y
}

// Cross returns the signed area of the parallelogram spanned by a and b.
func (a Vec2) Cross(b Vec2) float64 {
	return a.X*b.Y - a.Y*b.X
}

// Len returns the length (magnitude) of the vector.
func (a Vec2) Len() float64 {
	return math.Sqrt(a.X*a.X + a.Y*a.Y)
}

// Normalize returns the unit vector in the same direction.
func (a Vec2) Normalize() Vec2 {
	l := a.Len()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{a.X / l, a.Y / l}
}

// Lerp returns the linear interpolation between a and b by t.
func (a Vec2) Lerp(b Vec2, t float64) Vec2 {
	return Vec2{
		a.X + (b.X-a.X)*t,
		a.Y + (b.Y-a.Y)*t,
	}
}

// Barycentric computes the barycentric weights (alpha, beta, gamma) of point
// p relative to triangle ABC, from the signed parallelogram areas. The
// returned ok is false when the triangle is degenerate (zero area); such
// triangles must not be rasterized.
func Barycentric(a, b, c, p Vec2) (weights Vec3, ok bool) {
	ab := b.Sub(a)
	ac := c.Sub(a)

	area := ab.Cross(ac)
	if area == 0 {
		return Vec3{}, false
	}

	bc := c.Sub(b)
	bp := p.Sub(b)
	ap := p.Sub(a)

	// alpha weighs vertex A by the area of BCP, beta weighs B by ACP.
	alpha := bc.Cross(bp) / area
	beta := ap.Cross(ac) / area
	gamma := 1 - alpha - beta

	return Vec3{alpha, beta, gamma}, true
}
