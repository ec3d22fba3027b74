package render

import (
	"math"

	"github.com/hcosta/renderizer/pkg/math3d"
)

// RenderParams is the per-frame snapshot of the UI property bag. The pipeline
// reads it at the start of a frame and never writes it.
type RenderParams struct {
	DrawGrid              bool
	DrawWireframe         bool
	DrawWireframeDots     bool
	DrawTriangleNormals   bool
	DrawFilledTriangles   bool
	DrawTexturedTriangles bool
	EnableBackfaceCulling bool

	ModelScale       math3d.Vec3
	ModelRotation    math3d.Vec3
	ModelTranslation math3d.Vec3

	// FOVDegrees is the vertical field of view in degrees.
	FOVDegrees float64
	ZNear      float64
	ZFar       float64

	Light     Light
	BaseColor Color
}

// FaceData is one triangle worth of mesh geometry.
type FaceData struct {
	Vertices [3]math3d.Vec3
	UVs      [3]math3d.Vec2
}

// MeshSource yields triangle faces to the pipeline. The second return is
// false for faces with unresolvable indices, which the pipeline skips.
type MeshSource interface {
	FaceCount() int
	Face(i int) (FaceData, bool)
}

// Pipeline drives one frame: transform, cull, clip, project, shade, and
// finally rasterize through the display list. It borrows the camera and
// buffers; per-frame scratch is cleared at the start of every frame.
type Pipeline struct {
	camera *Camera
	fb     *Framebuffer
	depth  *DepthBuffer
	raster *Rasterizer

	view       math3d.Mat4
	projection math3d.Mat4
	frustum    Frustum

	queue   []Triangle
	display []Primitive
}

// NewPipeline creates a pipeline over the given camera and buffers.
func NewPipeline(camera *Camera, fb *Framebuffer, depth *DepthBuffer) *Pipeline {
	return &Pipeline{
		camera: camera,
		fb:     fb,
		depth:  depth,
		raster: NewRasterizer(fb, depth),
	}
}

// Projection returns the projection matrix of the current frame.
func (p *Pipeline) Projection() math3d.Mat4 {
	return p.projection
}

// Frustum returns the view frustum of the current frame.
func (p *Pipeline) Frustum() Frustum {
	return p.frustum
}

// BeginFrame clears the per-frame containers and the depth buffer and
// rebuilds the view and projection matrices and the frustum from the current
// camera state and projection parameters.
func (p *Pipeline) BeginFrame(params RenderParams) {
	p.queue = p.queue[:0]
	p.display = p.display[:0]
	p.depth.Clear()

	fovY := params.FOVDegrees * math.Pi / 180
	aspectX := float64(p.fb.Width) / float64(p.fb.Height)
	aspectY := float64(p.fb.Height) / float64(p.fb.Width)
	fovX := 2 * math.Atan(math.Tan(fovY/2)*aspectX)

	p.view = p.camera.ViewMatrix()
	p.projection = math3d.Perspective(fovY, aspectY, params.ZNear, params.ZFar)
	p.frustum = NewFrustum(fovX, fovY, params.ZNear, params.ZFar)

	if params.DrawGrid {
		p.fb.DrawGrid(10, ColorGrid)
	}
}

// RenderMesh runs every face of the mesh through the pipeline stages and
// appends the resulting primitives to the display list.
func (p *Pipeline) RenderMesh(mesh MeshSource, tex *Texture, params RenderParams) {
	world := math3d.World(params.ModelScale, params.ModelRotation, params.ModelTranslation)
	start := len(p.queue)

	for i := 0; i < mesh.FaceCount(); i++ {
		face, ok := mesh.Face(i)
		if !ok {
			continue
		}

		tri := Triangle{
			Local:     face.Vertices,
			UV:        face.UVs,
			BaseColor: params.BaseColor,
		}
		tri.TransformView(world, p.view)
		tri.ComputeNormal()

		if params.EnableBackfaceCulling {
			tri.ApplyCulling()
			if tri.Culled {
				continue
			}
		}

		poly := PolygonFromTriangle(
			tri.View[0], tri.View[1], tri.View[2],
			tri.UV[0], tri.UV[1], tri.UV[2])
		p.frustum.Clip(&poly)

		poly.Triangles(func(a, b, c PolygonVertex) {
			p.queue = append(p.queue, Triangle{
				View:      [3]math3d.Vec3{a.Position, b.Position, c.Position},
				UV:        [3]math3d.Vec2{a.UV, b.UV, c.UV},
				Normal:    tri.Normal,
				BaseColor: tri.BaseColor,
			})
		})
	}

	for i := start; i < len(p.queue); i++ {
		tri := &p.queue[i]
		tri.Project(p.projection, p.fb.Width, p.fb.Height)
		tri.ApplyFlatShading(params.Light)
		p.emit(tri, tex, params)
	}
}

// emit converts one projected triangle into display-list primitives
// according to the active options.
func (p *Pipeline) emit(tri *Triangle, tex *Texture, params RenderParams) {
	if params.DrawFilledTriangles && !params.DrawTexturedTriangles {
		p.display = append(p.display, Primitive{
			Kind:  PrimitiveSolidTri,
			P:     tri.Projected,
			Color: tri.Color,
		})
	}

	if params.DrawTexturedTriangles && tex != nil {
		p.display = append(p.display, Primitive{
			Kind:    PrimitiveTexturedTri,
			P:       tri.Projected,
			UV:      tri.UV,
			Texture: tex,
		})
	}

	if params.DrawWireframe {
		for e := range 3 {
			p.display = append(p.display, Primitive{
				Kind:  PrimitiveLine3D,
				P:     [3]math3d.Vec4{tri.Projected[e], tri.Projected[(e+1)%3]},
				Color: ColorWire,
			})
		}
	}

	if params.DrawTriangleNormals {
		tri.ProjectNormal(p.projection, p.fb.Width, p.fb.Height)
		p.display = append(p.display, Primitive{
			Kind:  PrimitiveLine3D,
			P:     [3]math3d.Vec4{tri.ProjectedNormal[0], tri.ProjectedNormal[1]},
			Color: ColorNormal,
		})
	}

	if params.DrawWireframeDots {
		for v := range 3 {
			p.display = append(p.display, Primitive{
				Kind:  PrimitiveRect,
				X:     int(tri.Projected[v].X) - 1,
				Y:     int(tri.Projected[v].Y) - 1,
				W:     3,
				H:     3,
				Color: ColorVertexDot,
			})
		}
	}
}

// Flush rasterizes the accumulated display list in emission order.
func (p *Pipeline) Flush() {
	for i := range p.display {
		p.raster.Draw(&p.display[i])
	}
}

// TriangleCount returns the number of clipped triangles queued this frame.
func (p *Pipeline) TriangleCount() int {
	return len(p.queue)
}
