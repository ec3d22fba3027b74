package render

import (
	"math"
	"testing"

	"github.com/hcosta/renderizer/pkg/math3d"
)

// stubMesh implements MeshSource for pipeline tests.
type stubMesh struct {
	faces []FaceData
}

func (m *stubMesh) FaceCount() int { return len(m.faces) }

func (m *stubMesh) Face(i int) (FaceData, bool) {
	if i < 0 || i >= len(m.faces) {
		return FaceData{}, false
	}
	return m.faces[i], true
}

// frontQuad is a camera-facing unit quad in model space, wound so the face
// normals point back at the camera.
func frontQuad() *stubMesh {
	bl := math3d.V3(-0.5, -0.5, 0)
	br := math3d.V3(0.5, -0.5, 0)
	tl := math3d.V3(-0.5, 0.5, 0)
	tr := math3d.V3(0.5, 0.5, 0)

	return &stubMesh{faces: []FaceData{
		{
			Vertices: [3]math3d.Vec3{bl, tl, br},
			UVs:      [3]math3d.Vec2{math3d.V2(0, 0), math3d.V2(0, 1), math3d.V2(1, 0)},
		},
		{
			Vertices: [3]math3d.Vec3{br, tl, tr},
			UVs:      [3]math3d.Vec2{math3d.V2(1, 0), math3d.V2(0, 1), math3d.V2(1, 1)},
		},
	}}
}

func testParams() RenderParams {
	return RenderParams{
		DrawFilledTriangles:   true,
		EnableBackfaceCulling: true,
		ModelScale:            math3d.V3(1, 1, 1),
		ModelTranslation:      math3d.V3(0, 0, 3),
		FOVDegrees:            60,
		ZNear:                 0.5,
		ZFar:                  20,
		Light:                 NewLight(math3d.V3(0, 0, 1)),
		BaseColor:             ColorWhite,
	}
}

func newTestPipeline(w, h int) (*Pipeline, *Framebuffer) {
	fb := NewFramebuffer(w, h)
	depth := NewDepthBuffer(w, h)
	camera := NewCamera()
	return NewPipeline(camera, fb, depth), fb
}

func countLit(fb *Framebuffer) int {
	n := 0
	for _, c := range fb.Pixels {
		if c != 0 {
			n++
		}
	}
	return n
}

func TestPipelineRendersFacingQuad(t *testing.T) {
	p, fb := newTestPipeline(64, 64)
	params := testParams()

	p.BeginFrame(params)
	p.RenderMesh(frontQuad(), nil, params)
	p.Flush()

	if p.TriangleCount() != 2 {
		t.Errorf("queued %d triangles, want 2", p.TriangleCount())
	}

	lit := countLit(fb)
	if lit == 0 {
		t.Fatal("facing quad rendered no pixels")
	}

	// The quad faces the camera head on and the light ray travels down +z,
	// so the flat-shaded color is full white. Sample away from the quad's
	// diagonal to stay clear of the triangle seam.
	inside := fb.GetPixel(27, 37)
	if inside != ColorWhite {
		t.Errorf("interior pixel = %#08x, want white", uint32(inside))
	}
}

func TestPipelineBackfaceCulling(t *testing.T) {
	// Reverse the winding: with culling on, nothing survives; with culling
	// off, the quad renders.
	quad := frontQuad()
	for i := range quad.faces {
		f := &quad.faces[i]
		f.Vertices[1], f.Vertices[2] = f.Vertices[2], f.Vertices[1]
		f.UVs[1], f.UVs[2] = f.UVs[2], f.UVs[1]
	}

	p, fb := newTestPipeline(64, 64)
	params := testParams()

	p.BeginFrame(params)
	p.RenderMesh(quad, nil, params)
	p.Flush()

	if p.TriangleCount() != 0 {
		t.Errorf("culling on: queued %d triangles, want 0", p.TriangleCount())
	}
	if lit := countLit(fb); lit != 0 {
		t.Errorf("culling on: %d pixels lit, want 0", lit)
	}

	params.EnableBackfaceCulling = false
	p.BeginFrame(params)
	p.RenderMesh(quad, nil, params)
	p.Flush()

	if p.TriangleCount() != 2 {
		t.Errorf("culling off: queued %d triangles, want 2", p.TriangleCount())
	}
}

func TestPipelineClipsTrianglesBehindCamera(t *testing.T) {
	p, fb := newTestPipeline(32, 32)
	params := testParams()
	params.ModelTranslation = math3d.V3(0, 0, -3) // behind the camera
	params.EnableBackfaceCulling = false          // leave the work to the clipper

	p.BeginFrame(params)
	p.RenderMesh(frontQuad(), nil, params)
	p.Flush()

	if p.TriangleCount() != 0 {
		t.Errorf("queued %d triangles, want 0 behind the camera", p.TriangleCount())
	}
	if lit := countLit(fb); lit != 0 {
		t.Errorf("%d pixels lit, want 0", lit)
	}
}

func TestPipelineStraddlingNearPlaneEmitsClippedGeometry(t *testing.T) {
	p, _ := newTestPipeline(32, 32)
	params := testParams()

	// Rotate the quad so it extends toward the camera through the near
	// plane: the clipper must keep the far part.
	params.ModelRotation = math3d.V3(math.Pi/2, 0, 0)
	params.ModelScale = math3d.V3(1, 8, 1)
	params.ModelTranslation = math3d.V3(0, -0.1, 2)
	params.EnableBackfaceCulling = false

	p.BeginFrame(params)
	p.RenderMesh(frontQuad(), nil, params)

	if p.TriangleCount() == 0 {
		t.Fatal("straddling quad was clipped away entirely")
	}

	// Every queued triangle sits inside (or on) the frustum planes.
	f := p.Frustum()
	for i := range p.queue {
		for _, v := range p.queue[i].View {
			for pi, plane := range f.Planes {
				if d := plane.Distance(v); d < -1e-6 {
					t.Fatalf("clipped vertex %v outside plane %d: d = %v", v, pi, d)
				}
			}
		}
	}
}

func TestPipelineOverlayPrimitives(t *testing.T) {
	p, _ := newTestPipeline(64, 64)
	params := testParams()
	params.DrawFilledTriangles = false
	params.DrawWireframe = true
	params.DrawWireframeDots = true
	params.DrawTriangleNormals = true

	p.BeginFrame(params)
	p.RenderMesh(frontQuad(), nil, params)

	var wires, rects, normals int
	for i := range p.display {
		switch prim := &p.display[i]; prim.Kind {
		case PrimitiveLine3D:
			if prim.Color == ColorNormal {
				normals++
			} else {
				wires++
			}
		case PrimitiveRect:
			rects++
		}
	}

	if wires != 6 {
		t.Errorf("wireframe lines = %d, want 6", wires)
	}
	if rects != 6 {
		t.Errorf("vertex dots = %d, want 6", rects)
	}
	if normals != 2 {
		t.Errorf("normal overlays = %d, want 2", normals)
	}
}

func TestPipelineTexturedPath(t *testing.T) {
	p, fb := newTestPipeline(64, 64)
	tex := NewCheckerTexture(8, 8, 1, ColorRed, ColorBlue)

	params := testParams()
	params.DrawTexturedTriangles = true
	params.DrawFilledTriangles = false

	p.BeginFrame(params)
	p.RenderMesh(frontQuad(), tex, params)
	p.Flush()

	var reds, blues int
	for _, c := range fb.Pixels {
		switch c {
		case ColorRed:
			reds++
		case ColorBlue:
			blues++
		}
	}
	if reds == 0 || blues == 0 {
		t.Errorf("textured quad should show both checker colors, got %d red / %d blue", reds, blues)
	}
}

func TestPipelineGridOverlay(t *testing.T) {
	p, fb := newTestPipeline(32, 32)
	params := testParams()
	params.DrawGrid = true

	p.BeginFrame(params)
	if fb.GetPixel(0, 0) != ColorGrid || fb.GetPixel(10, 20) != ColorGrid {
		t.Error("grid dots missing at 10 pixel spacing")
	}
	if fb.GetPixel(5, 5) == ColorGrid {
		t.Error("grid should only mark every 10th pixel")
	}
}
