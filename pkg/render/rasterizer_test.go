package render

import (
	"math"
	"testing"

	"github.com/hcosta/renderizer/pkg/math3d"
)

func newTestRasterizer(w, h int) (*Rasterizer, *Framebuffer, *DepthBuffer) {
	fb := NewFramebuffer(w, h)
	depth := NewDepthBuffer(w, h)
	return NewRasterizer(fb, depth), fb, depth
}

func TestApplyIntensity(t *testing.T) {
	tests := []struct {
		name     string
		color    Color
		f        float64
		expected Color
	}{
		{"half gray", 0xFF808080, 0.5, 0xFF404040},
		{"zero keeps alpha only", 0xFF123456, 0, 0xFF000000},
		{"one is identity", 0xFF123456, 1, 0xFF123456},
		{"clamps above one", 0xFF102030, 2.5, 0xFF102030},
		{"clamps below zero", 0xFF102030, -1, 0xFF000000},
		{"alpha preserved", 0x80FFFFFF, 0.5, 0x807F7F7F},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ApplyIntensity(tc.color, tc.f); got != tc.expected {
				t.Errorf("ApplyIntensity(%#08x, %v) = %#08x, want %#08x",
					uint32(tc.color), tc.f, uint32(got), uint32(tc.expected))
			}
		})
	}

	t.Run("monotone in f", func(t *testing.T) {
		c := Color(0xFFC08040)
		prev := ApplyIntensity(c, 0)
		for f := 0.1; f <= 1.0; f += 0.1 {
			cur := ApplyIntensity(c, f)
			if cur.R() < prev.R() || cur.G() < prev.G() || cur.B() < prev.B() {
				t.Fatalf("intensity not monotone at f=%v: %#08x -> %#08x",
					f, uint32(prev), uint32(cur))
			}
			prev = cur
		}
	})
}

func TestLightIntensity(t *testing.T) {
	light := NewLight(math3d.V3(0, 0, 1))

	tests := []struct {
		name     string
		normal   math3d.Vec3
		expected float64
	}{
		{"facing the light", math3d.V3(0, 0, -1), 1},
		{"away from the light", math3d.V3(0, 0, 1), 0},
		{"perpendicular", math3d.V3(1, 0, 0), 0},
		{"angled", math3d.V3(0, 0, -1).Add(math3d.V3(1, 0, 0)).Normalize(), math.Sqrt(2) / 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := light.Intensity(tc.normal)
			if math.Abs(got-tc.expected) > 1e-9 {
				t.Errorf("intensity = %v, want %v", got, tc.expected)
			}
		})
	}
}

// fullScreenQuad returns the two screen-space triangles covering a w x h
// viewport at constant view depth.
func fullScreenQuad(w, h int, viewZ float64) [2][3]math3d.Vec4 {
	fw, fh := float64(w), float64(h)
	tl := math3d.V4(0, 0, 0, viewZ)
	tr := math3d.V4(fw, 0, 0, viewZ)
	br := math3d.V4(fw, fh, 0, viewZ)
	bl := math3d.V4(0, fh, 0, viewZ)
	return [2][3]math3d.Vec4{
		{tl, tr, bl},
		{tr, br, bl},
	}
}

func TestDepthResolvesTwoQuads(t *testing.T) {
	// A 2x2 viewport with a red quad at view z = 1.2 and a blue quad at 1.8:
	// every pixel must come out red and the depth cells must all equal
	// 1 - 1/1.2, regardless of draw order.
	orders := []struct {
		name  string
		first float64
	}{
		{"near drawn first", 1.2},
		{"far drawn first", 1.8},
	}

	for _, order := range orders {
		t.Run(order.name, func(t *testing.T) {
			r, fb, depth := newTestRasterizer(2, 2)

			drawQuad := func(z float64, c Color) {
				for _, tri := range fullScreenQuad(2, 2, z) {
					r.DrawFilledTriangle(tri, c)
				}
			}

			if order.first == 1.2 {
				drawQuad(1.2, ColorRed)
				drawQuad(1.8, ColorBlue)
			} else {
				drawQuad(1.8, ColorBlue)
				drawQuad(1.2, ColorRed)
			}

			wantDepth := float32(1 - 1/1.2)
			for y := range 2 {
				for x := range 2 {
					if got := fb.GetPixel(x, y); got != ColorRed {
						t.Errorf("pixel (%d,%d) = %#08x, want red", x, y, uint32(got))
					}
					if got := depth.At(x, y); math.Abs(float64(got-wantDepth)) > 1e-6 {
						t.Errorf("depth (%d,%d) = %v, want %v", x, y, got, wantDepth)
					}
				}
			}
		})
	}
}

func TestCoplanarFirstWriteWins(t *testing.T) {
	r, fb, _ := newTestRasterizer(8, 8)

	tri := [3]math3d.Vec4{
		math3d.V4(0, 0, 0, 2),
		math3d.V4(8, 0, 0, 2),
		math3d.V4(0, 8, 0, 2),
	}

	r.DrawFilledTriangle(tri, ColorRed)
	r.DrawFilledTriangle(tri, ColorBlue)

	// Equal depth ties resolve to the first write.
	for y := range 8 {
		for x := range 8 {
			c := fb.GetPixel(x, y)
			if c != 0 && c != ColorRed {
				t.Fatalf("pixel (%d,%d) = %#08x, want first-drawn red", x, y, uint32(c))
			}
		}
	}
}

func TestFilledTriangleStaysInViewport(t *testing.T) {
	r, fb, _ := newTestRasterizer(4, 4)

	// A triangle far larger than the buffer must clamp, not crash.
	tri := [3]math3d.Vec4{
		math3d.V4(-100, -100, 0, 1),
		math3d.V4(100, -50, 0, 1),
		math3d.V4(0, 100, 0, 1),
	}
	r.DrawFilledTriangle(tri, ColorGreen)

	covered := 0
	for y := range 4 {
		for x := range 4 {
			if fb.GetPixel(x, y) == ColorGreen {
				covered++
			}
		}
	}
	if covered == 0 {
		t.Error("huge triangle should still cover the viewport")
	}
}

func TestDegenerateTriangleDrawsNothing(t *testing.T) {
	r, fb, _ := newTestRasterizer(8, 8)

	// All three vertices on one scanline: zero area.
	tri := [3]math3d.Vec4{
		math3d.V4(1, 4, 0, 1),
		math3d.V4(4, 4, 0, 1),
		math3d.V4(7, 4, 0, 1),
	}
	r.DrawFilledTriangle(tri, ColorRed)

	for i, c := range fb.Pixels {
		if c != 0 {
			t.Fatalf("pixel %d = %#08x, want untouched", i, uint32(c))
		}
	}
}

func TestTexturedTriangleUVReconstruction(t *testing.T) {
	const size = 16
	r, fb, _ := newTestRasterizer(size, size)

	// A texture whose texel (x, y) encodes its own coordinates.
	tex := NewTexture(8, 8)
	for y := range 8 {
		for x := range 8 {
			tex.SetPixel(x, y, RGB(uint8(x*32), uint8(y*32), 0))
		}
	}

	p := [3]math3d.Vec4{
		math3d.V4(0, 0, 0, 1),
		math3d.V4(size, 0, 0, 2),
		math3d.V4(0, size, 0, 2),
	}
	uv := [3]math3d.Vec2{
		math3d.V2(0, 0),
		math3d.V2(1, 0),
		math3d.V2(0, 1),
	}
	r.DrawTexturedTriangle(p, uv, tex)

	// Reconstruct the expected texel at a few interior pixels from the
	// perspective-correct interpolation constants and compare: the drawn
	// pixel must agree to within one texel.
	uvs := uv
	for i := range uvs {
		uvs[i].Y = 1 - uvs[i].Y // rasterizer flips V
	}
	w := [3]float64{1, 2, 2}

	samples := []struct{ x, y int }{{2, 2}, {4, 1}, {1, 6}, {5, 5}}
	for _, s := range samples {
		weights, ok := math3d.Barycentric(
			p[0].Vec2(), p[1].Vec2(), p[2].Vec2(),
			math3d.V2(float64(s.x), float64(s.y)))
		if !ok {
			t.Fatal("degenerate test triangle")
		}
		if weights.X < 0 || weights.Y < 0 || weights.Z < 0 {
			continue // outside
		}

		ow := weights.X/w[0] + weights.Y/w[1] + weights.Z/w[2]
		u := (weights.X*uvs[0].X/w[0] + weights.Y*uvs[1].X/w[1] + weights.Z*uvs[2].X/w[2]) / ow
		v := (weights.X*uvs[0].Y/w[0] + weights.Y*uvs[1].Y/w[1] + weights.Z*uvs[2].Y/w[2]) / ow

		want := tex.Sample(u, v)
		got := fb.GetPixel(s.x, s.y)

		// One texel of tolerance: 32 per channel step.
		if absInt(int(got.R())-int(want.R())) > 32 || absInt(int(got.G())-int(want.G())) > 32 {
			t.Errorf("pixel (%d,%d) = %#08x, want %#08x within one texel",
				s.x, s.y, uint32(got), uint32(want))
		}
	}
}

func TestDrawLineDDA(t *testing.T) {
	fb := NewFramebuffer(8, 8)

	t.Run("diagonal", func(t *testing.T) {
		fb.Clear(0)
		fb.DrawLine(0, 0, 3, 3, ColorWhite)
		for i := range 4 {
			if fb.GetPixel(i, i) != ColorWhite {
				t.Errorf("pixel (%d,%d) not set", i, i)
			}
		}
	})

	t.Run("zero length is a no-op", func(t *testing.T) {
		fb.Clear(0)
		fb.DrawLine(4, 4, 4, 4, ColorWhite)
		for i, c := range fb.Pixels {
			if c != 0 {
				t.Fatalf("pixel %d set by zero-length line", i)
			}
		}
	})

	t.Run("out of bounds is clipped", func(t *testing.T) {
		fb.Clear(0)
		fb.DrawLine(-10, -10, 20, 3, ColorWhite) // must not panic
	})
}

func TestDrawLine3DDepthTest(t *testing.T) {
	r, fb, depth := newTestRasterizer(8, 8)

	// Near line wins over a far line along the same pixels.
	r.DrawLine3D(0, 4, 1.2, 7, 4, 1.2, ColorRed)
	r.DrawLine3D(0, 4, 1.8, 7, 4, 1.8, ColorBlue)

	for x := range 8 {
		if got := fb.GetPixel(x, 4); got != ColorRed {
			t.Errorf("pixel (%d,4) = %#08x, want near red", x, uint32(got))
		}
	}

	wantDepth := float32(1 - 1/1.2)
	if got := depth.At(3, 4); math.Abs(float64(got-wantDepth)) > 1e-6 {
		t.Errorf("depth = %v, want %v", got, wantDepth)
	}
}

func TestDisplayListDispatch(t *testing.T) {
	r, fb, _ := newTestRasterizer(8, 8)

	r.Draw(&Primitive{
		Kind:  PrimitiveRect,
		X:     1,
		Y:     1,
		W:     2,
		H:     2,
		Color: ColorYellow,
	})
	if fb.GetPixel(1, 1) != ColorYellow || fb.GetPixel(2, 2) != ColorYellow {
		t.Error("rect primitive not drawn")
	}

	r.Draw(&Primitive{
		Kind:  PrimitiveLineOverlay,
		P:     [3]math3d.Vec4{math3d.V4(0, 7, 0, 0), math3d.V4(7, 7, 0, 0)},
		Color: ColorCyan,
	})
	if fb.GetPixel(4, 7) != ColorCyan {
		t.Error("overlay line primitive not drawn")
	}
}

func TestWireframePrimitives(t *testing.T) {
	r, fb, _ := newTestRasterizer(8, 8)

	t.Run("overlay pixel", func(t *testing.T) {
		fb.Clear(0)
		r.DrawPixel(3, 3, ColorWhite)
		r.DrawPixel(-1, 99, ColorWhite) // dropped, not fatal
		if fb.GetPixel(3, 3) != ColorWhite {
			t.Error("DrawPixel did not write")
		}
	})

	t.Run("flat outline", func(t *testing.T) {
		fb.Clear(0)
		r.DrawTriangle(0, 0, 7, 0, 0, 7, ColorWhite)
		if fb.GetPixel(3, 0) != ColorWhite || fb.GetPixel(0, 3) != ColorWhite {
			t.Error("outline edges missing")
		}
	})

	t.Run("depth tested outline", func(t *testing.T) {
		fb.Clear(0)
		tri := [3]math3d.Vec4{
			math3d.V4(0, 0, 0, 2),
			math3d.V4(7, 0, 0, 2),
			math3d.V4(0, 7, 0, 2),
		}
		r.DrawTriangle3D(tri, ColorGreen)
		if fb.GetPixel(3, 0) != ColorGreen {
			t.Error("depth-tested outline missing")
		}

		// A farther outline along the same edges must lose.
		far := tri
		for i := range far {
			far[i].W = 5
		}
		r.DrawTriangle3D(far, ColorRed)
		if fb.GetPixel(3, 0) != ColorGreen {
			t.Error("farther outline overwrote a nearer one")
		}
	})
}

func TestDepthBufferClear(t *testing.T) {
	db := NewDepthBuffer(4, 4)
	for _, c := range db.Cells {
		if c != 1 {
			t.Fatalf("fresh depth cell = %v, want 1", c)
		}
	}

	db.Set(1, 1, 0.25)
	db.Clear()
	if db.At(1, 1) != 1 {
		t.Error("clear should reset cells to 1")
	}

	if db.At(-1, 0) != 1 || db.At(10, 10) != 1 {
		t.Error("out-of-range reads should report the far value")
	}
}

func BenchmarkDrawFilledTriangle(b *testing.B) {
	r, _, depth := newTestRasterizer(256, 256)
	tri := [3]math3d.Vec4{
		math3d.V4(10, 10, 0, 2),
		math3d.V4(240, 40, 0, 3),
		math3d.V4(60, 240, 0, 4),
	}

	for b.Loop() {
		depth.Clear()
		r.DrawFilledTriangle(tri, ColorGray)
	}
}

func BenchmarkDrawTexturedTriangle(b *testing.B) {
	r, _, depth := newTestRasterizer(256, 256)
	tex := NewCheckerTexture(64, 64, 8, ColorWhite, ColorGray)
	tri := [3]math3d.Vec4{
		math3d.V4(10, 10, 0, 2),
		math3d.V4(240, 40, 0, 3),
		math3d.V4(60, 240, 0, 4),
	}
	uv := [3]math3d.Vec2{
		math3d.V2(0, 0),
		math3d.V2(1, 0),
		math3d.V2(0, 1),
	}

	for b.Loop() {
		depth.Clear()
		r.DrawTexturedTriangle(tri, uv, tex)
	}
}
