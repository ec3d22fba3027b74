package render

import (
	"math"

	"github.com/hcosta/renderizer/pkg/math3d"
)

// Rasterizer writes display-list primitives into a color buffer through a
// depth buffer. It borrows both for the duration of a frame and never writes
// outside them; out-of-range inputs are skipped, never fatal.
type Rasterizer struct {
	fb    *Framebuffer
	depth *DepthBuffer
}

// NewRasterizer creates a rasterizer over the given buffers.
func NewRasterizer(fb *Framebuffer, depth *DepthBuffer) *Rasterizer {
	return &Rasterizer{fb: fb, depth: depth}
}

// Draw is the single display-list entry point.
func (r *Rasterizer) Draw(p *Primitive) {
	switch p.Kind {
	case PrimitiveSolidTri:
		r.DrawFilledTriangle(p.P, p.Color)
	case PrimitiveTexturedTri:
		r.DrawTexturedTriangle(p.P, p.UV, p.Texture)
	case PrimitiveLine3D:
		r.DrawLine3D(
			int(p.P[0].X), int(p.P[0].Y), p.P[0].W,
			int(p.P[1].X), int(p.P[1].Y), p.P[1].W,
			p.Color)
	case PrimitiveLineOverlay:
		r.fb.DrawLine(int(p.P[0].X), int(p.P[0].Y), int(p.P[1].X), int(p.P[1].Y), p.Color)
	case PrimitiveRect:
		r.fb.DrawRect(p.X, p.Y, p.W, p.H, p.Color)
	}
}

// DrawPixel writes the color buffer unconditionally (overlays only; triangle
// interiors go through the depth-aware paths).
func (r *Rasterizer) DrawPixel(x, y int, c Color) {
	r.fb.SetPixel(x, y, c)
}

// DrawLine3D draws a DDA line in screen space, interpolating 1/w linearly
// along the longest axis and testing each pixel against the depth buffer, so
// wireframes from different meshes z-fight correctly.
func (r *Rasterizer) DrawLine3D(x0, y0 int, w0 float64, x1, y1 int, w1 float64, c Color) {
	if w0 == 0 || w1 == 0 {
		return
	}

	dx := x1 - x0
	dy := y1 - y0
	steps := absInt(dx)
	if absInt(dy) > steps {
		steps = absInt(dy)
	}
	if steps == 0 {
		return
	}

	stepX := float64(dx) / float64(steps)
	stepY := float64(dy) / float64(steps)

	ow0 := 1 / w0
	ow1 := 1 / w1

	x := float64(x0)
	y := float64(y0)
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		ow := ow0 + (ow1-ow0)*t
		z := float32(1 - ow)

		px := int(math.Round(x))
		py := int(math.Round(y))
		if z < r.depth.At(px, py) {
			r.fb.SetPixel(px, py, c)
			r.depth.Set(px, py, z)
		}

		x += stepX
		y += stepY
	}
}

// DrawTriangle draws a wireframe outline ignoring depth.
func (r *Rasterizer) DrawTriangle(x0, y0, x1, y1, x2, y2 int, c Color) {
	r.fb.DrawLine(x0, y0, x1, y1, c)
	r.fb.DrawLine(x1, y1, x2, y2, c)
	r.fb.DrawLine(x2, y2, x0, y0, c)
}

// DrawTriangle3D draws a depth-tested wireframe outline.
func (r *Rasterizer) DrawTriangle3D(p [3]math3d.Vec4, c Color) {
	r.DrawLine3D(int(p[0].X), int(p[0].Y), p[0].W, int(p[1].X), int(p[1].Y), p[1].W, c)
	r.DrawLine3D(int(p[1].X), int(p[1].Y), p[1].W, int(p[2].X), int(p[2].Y), p[2].W, c)
	r.DrawLine3D(int(p[2].X), int(p[2].Y), p[2].W, int(p[0].X), int(p[0].Y), p[0].W, c)
}

// DrawFilledTriangle rasterizes a solid triangle with the scanline split at
// the middle vertex, depth-testing every pixel with the 1 - 1/w key.
func (r *Rasterizer) DrawFilledTriangle(p [3]math3d.Vec4, c Color) {
	x0, y0, w0 := int(p[0].X), int(p[0].Y), p[0].W
	x1, y1, w1 := int(p[1].X), int(p[1].Y), p[1].W
	x2, y2, w2 := int(p[2].X), int(p[2].Y), p[2].W

	// Sort ascending in y, swapping all attributes in parallel.
	if y0 > y1 {
		x0, x1 = x1, x0
		y0, y1 = y1, y0
		w0, w1 = w1, w0
	}
	if y1 > y2 {
		x1, x2 = x2, x1
		y1, y2 = y2, y1
		w1, w2 = w2, w1
	}
	if y0 > y1 {
		x0, x1 = x1, x0
		y0, y1 = y1, y0
		w0, w1 = w1, w0
	}

	if w0 == 0 || w1 == 0 || w2 == 0 {
		return
	}

	a := math3d.V4(float64(x0), float64(y0), 0, w0)
	b := math3d.V4(float64(x1), float64(y1), 0, w1)
	cc := math3d.V4(float64(x2), float64(y2), 0, w2)
	oneOverW := [3]float64{1 / w0, 1 / w1, 1 / w2}

	r.scanTriangle(x0, y0, x1, y1, x2, y2, func(x, y int) {
		r.drawTrianglePixel(x, y, a, b, cc, oneOverW, c)
	})
}

// DrawTexturedTriangle rasterizes a textured triangle with perspective-correct
// UV interpolation. The V coordinate is flipped (1-v) because source assets
// are upper-origin.
func (r *Rasterizer) DrawTexturedTriangle(p [3]math3d.Vec4, uv [3]math3d.Vec2, tex *Texture) {
	if tex == nil || tex.Width == 0 || tex.Height == 0 {
		return
	}

	x0, y0, w0 := int(p[0].X), int(p[0].Y), p[0].W
	x1, y1, w1 := int(p[1].X), int(p[1].Y), p[1].W
	x2, y2, w2 := int(p[2].X), int(p[2].Y), p[2].W
	uv0, uv1, uv2 := uv[0], uv[1], uv[2]

	// Sort ascending in y, swapping all attributes in parallel.
	if y0 > y1 {
		x0, x1 = x1, x0
		y0, y1 = y1, y0
		w0, w1 = w1, w0
		uv0, uv1 = uv1, uv0
	}
	if y1 > y2 {
		x1, x2 = x2, x1
		y1, y2 = y2, y1
		w1, w2 = w2, w1
		uv1, uv2 = uv2, uv1
	}
	if y0 > y1 {
		x0, x1 = x1, x0
		y0, y1 = y1, y0
		w0, w1 = w1, w0
		uv0, uv1 = uv1, uv0
	}

	if w0 == 0 || w1 == 0 || w2 == 0 {
		return
	}

	// Flip V for the upper-origin texture image.
	uv0.Y = 1 - uv0.Y
	uv1.Y = 1 - uv1.Y
	uv2.Y = 1 - uv2.Y

	a := math3d.V4(float64(x0), float64(y0), 0, w0)
	b := math3d.V4(float64(x1), float64(y1), 0, w1)
	c := math3d.V4(float64(x2), float64(y2), 0, w2)

	uOverW := [3]float64{uv0.X / w0, uv1.X / w1, uv2.X / w2}
	vOverW := [3]float64{uv0.Y / w0, uv1.Y / w1, uv2.Y / w2}
	oneOverW := [3]float64{1 / w0, 1 / w1, 1 / w2}

	r.scanTriangle(x0, y0, x1, y1, x2, y2, func(x, y int) {
		r.drawTexel(x, y, a, b, c, uOverW, vOverW, oneOverW, tex)
	})
}

// scanTriangle walks the scanlines of a y-sorted triangle split at the middle
// vertex: a flat-bottom upper half and a flat-top lower half. Zero-height
// halves are skipped, which also covers the degenerate coincident-x split.
func (r *Rasterizer) scanTriangle(x0, y0, x1, y1, x2, y2 int, plot func(x, y int)) {
	// Upper half (flat bottom): y0 .. y1-1.
	if y1-y0 != 0 {
		invSlope1 := float64(x1-x0) / float64(y1-y0)
		invSlope2 := 0.0
		if y2-y0 != 0 {
			invSlope2 = float64(x2-x0) / float64(y2-y0)
		}

		for i := 0; i < y1-y0; i++ {
			xStart := x0 + int(float64(i)*invSlope1)
			xEnd := x0 + int(float64(i)*invSlope2)
			y := y0 + i

			if xEnd < xStart {
				xStart, xEnd = xEnd, xStart
			}
			for x := xStart; x < xEnd; x++ {
				plot(x, y)
			}
		}
	}

	// Lower half (flat top): y2 down to y1, mirrored around (x2, y2).
	if y2-y1 != 0 {
		invSlope1 := float64(x1-x2) / float64(y2-y1)
		invSlope2 := 0.0
		if y2-y0 != 0 {
			invSlope2 = float64(x0-x2) / float64(y2-y0)
		}

		for i := 0; i <= y2-y1; i++ {
			xStart := x2 + int(float64(i)*invSlope1)
			xEnd := x2 + int(float64(i)*invSlope2)
			y := y2 - i

			if xEnd < xStart {
				xStart, xEnd = xEnd, xStart
			}
			for x := xStart; x < xEnd; x++ {
				plot(x, y)
			}
		}
	}
}

// drawTrianglePixel depth-tests one solid pixel and writes color and depth
// together on success.
func (r *Rasterizer) drawTrianglePixel(x, y int, a, b, c math3d.Vec4, oneOverW [3]float64, col Color) {
	if x < 0 || x >= r.fb.Width || y < 0 || y >= r.fb.Height {
		return
	}

	p := math3d.V2(float64(x), float64(y))
	weights, ok := math3d.Barycentric(a.Vec2(), b.Vec2(), c.Vec2(), p)
	if !ok {
		return
	}

	owP := weights.X*oneOverW[0] + weights.Y*oneOverW[1] + weights.Z*oneOverW[2]
	d := float32(1 - owP)
	if d < r.depth.At(x, y) {
		r.fb.SetPixel(x, y, col)
		r.depth.Set(x, y, d)
	}
}

// drawTexel reconstructs the perspective-correct UV for one pixel, samples
// the texture and depth-tests the result.
func (r *Rasterizer) drawTexel(x, y int, a, b, c math3d.Vec4, uOverW, vOverW, oneOverW [3]float64, tex *Texture) {
	if x < 0 || x >= r.fb.Width || y < 0 || y >= r.fb.Height {
		return
	}

	p := math3d.V2(float64(x), float64(y))
	weights, ok := math3d.Barycentric(a.Vec2(), b.Vec2(), c.Vec2(), p)
	if !ok {
		return
	}

	owP := weights.X*oneOverW[0] + weights.Y*oneOverW[1] + weights.Z*oneOverW[2]
	if owP == 0 {
		return
	}

	d := float32(1 - owP)
	if d >= r.depth.At(x, y) {
		return
	}

	u := (weights.X*uOverW[0] + weights.Y*uOverW[1] + weights.Z*uOverW[2]) / owP
	v := (weights.X*vOverW[0] + weights.Y*vOverW[1] + weights.Z*vOverW[2]) / owP

	r.fb.SetPixel(x, y, tex.Sample(u, v))
	r.depth.Set(x, y, d)
}
