package render

import "github.com/hcosta/renderizer/pkg/math3d"

// PrimitiveKind tags the display-list variants the rasterizer understands.
type PrimitiveKind int

const (
	// PrimitiveSolidTri is a flat-colored, depth-tested triangle.
	PrimitiveSolidTri PrimitiveKind = iota
	// PrimitiveTexturedTri is a perspective-correct textured, depth-tested
	// triangle.
	PrimitiveTexturedTri
	// PrimitiveLine3D is a depth-tested line between two projected points.
	PrimitiveLine3D
	// PrimitiveLineOverlay is a screen-space line that ignores depth.
	PrimitiveLineOverlay
	// PrimitiveRect is a screen-space filled rectangle that ignores depth.
	PrimitiveRect
)

// Primitive is one display-list entry. The pipeline accumulates primitives
// per frame; the rasterizer consumes them through a single entry point, so
// the raster backend stays swappable.
type Primitive struct {
	Kind PrimitiveKind

	// P holds projected vertices: screen x and y, NDC depth in Z, view-space
	// z in W. Triangles use all three entries, lines the first two.
	P  [3]math3d.Vec4
	UV [3]math3d.Vec2

	Color   Color
	Texture *Texture

	// Rect payload, in pixels.
	X, Y, W, H int
}
