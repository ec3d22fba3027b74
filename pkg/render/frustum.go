package render

import (
	"math"

	"github.com/hcosta/renderizer/pkg/math3d"
)

// Plane is a view-space plane given by a point on it and its inward-facing
// unit normal.
type Plane struct {
	Point  math3d.Vec3
	Normal math3d.Vec3
}

// Distance returns the signed distance from the plane to a point.
// Positive means inside the frustum half-space.
func (p Plane) Distance(v math3d.Vec3) float64 {
	return v.Sub(p.Point).Dot(p.Normal)
}

// Frustum plane indices, in clipping order.
const (
	FrustumLeft = iota
	FrustumRight
	FrustumTop
	FrustumBottom
	FrustumNear
	FrustumFar
	frustumPlaneCount
)

// Frustum is the truncated view pyramid as six inward-facing planes in camera
// space (+z into the scene).
type Frustum struct {
	Planes [frustumPlaneCount]Plane
}

// NewFrustum builds the frustum for a symmetric perspective with the given
// horizontal and vertical fields of view (radians) around the +z axis.
func NewFrustum(fovX, fovY, zNear, zFar float64) Frustum {
	cosHalfX := math.Cos(fovX / 2)
	sinHalfX := math.Sin(fovX / 2)
	cosHalfY := math.Cos(fovY / 2)
	sinHalfY := math.Sin(fovY / 2)

	var f Frustum
	f.Planes[FrustumLeft] = Plane{Normal: math3d.V3(cosHalfX, 0, sinHalfX)}
	f.Planes[FrustumRight] = Plane{Normal: math3d.V3(-cosHalfX, 0, sinHalfX)}
	f.Planes[FrustumTop] = Plane{Normal: math3d.V3(0, -cosHalfY, sinHalfY)}
	f.Planes[FrustumBottom] = Plane{Normal: math3d.V3(0, cosHalfY, sinHalfY)}
	f.Planes[FrustumNear] = Plane{Point: math3d.V3(0, 0, zNear), Normal: math3d.V3(0, 0, 1)}
	f.Planes[FrustumFar] = Plane{Point: math3d.V3(0, 0, zFar), Normal: math3d.V3(0, 0, -1)}
	return f
}

// ContainsPoint reports whether a view-space point lies inside or on all six
// planes.
func (f Frustum) ContainsPoint(v math3d.Vec3) bool {
	for i := range f.Planes {
		if f.Planes[i].Distance(v) < 0 {
			return false
		}
	}
	return true
}

// MaxPolygonVertices is the worst case for a triangle clipped against six
// planes: each plane can add at most one vertex to a convex polygon.
const MaxPolygonVertices = 9

// PolygonVertex is one ring entry of the clipper: a view-space position with
// its interpolated texture coordinate.
type PolygonVertex struct {
	Position math3d.Vec3
	UV       math3d.Vec2
}

// Polygon is the clipper's ordered convex vertex ring. Storage is inline so
// clipping performs no heap allocation.
type Polygon struct {
	verts [MaxPolygonVertices]PolygonVertex
	count int
}

// PolygonFromTriangle seeds a polygon with the three vertices of a triangle.
func PolygonFromTriangle(a, b, c math3d.Vec3, uvA, uvB, uvC math3d.Vec2) Polygon {
	var p Polygon
	p.verts[0] = PolygonVertex{Position: a, UV: uvA}
	p.verts[1] = PolygonVertex{Position: b, UV: uvB}
	p.verts[2] = PolygonVertex{Position: c, UV: uvC}
	p.count = 3
	return p
}

// Len returns the number of vertices in the ring.
func (p *Polygon) Len() int {
	return p.count
}

// Vertex returns the i-th ring vertex.
func (p *Polygon) Vertex(i int) PolygonVertex {
	return p.verts[i]
}

func (p *Polygon) push(v PolygonVertex) {
	if p.count < MaxPolygonVertices {
		p.verts[p.count] = v
		p.count++
	}
}

// clipAgainstPlane runs one Sutherland-Hodgman pass. Vertices on the plane
// count as inside. Crossing edges insert the intersection at
// t = dPrev / (dPrev - dCurr), which also interpolates the UVs.
func (p *Polygon) clipAgainstPlane(plane Plane) {
	if p.count == 0 {
		return
	}

	in := p.verts
	n := p.count
	p.count = 0

	prev := in[n-1]
	dPrev := plane.Distance(prev.Position)

	for i := 0; i < n; i++ {
		curr := in[i]
		dCurr := plane.Distance(curr.Position)

		switch {
		case dPrev >= 0 && dCurr >= 0:
			p.push(curr)
		case dPrev >= 0 && dCurr < 0:
			p.push(intersect(prev, curr, dPrev, dCurr))
		case dPrev < 0 && dCurr >= 0:
			p.push(intersect(prev, curr, dPrev, dCurr))
			p.push(curr)
		}

		prev = curr
		dPrev = dCurr
	}

	// A convex polygon clipped to fewer than three vertices is gone.
	if p.count < 3 {
		p.count = 0
	}
}

func intersect(prev, curr PolygonVertex, dPrev, dCurr float64) PolygonVertex {
	t := dPrev / (dPrev - dCurr)
	return PolygonVertex{
		Position: prev.Position.Lerp(curr.Position, t),
		UV:       prev.UV.Lerp(curr.UV, t),
	}
}

// Clip runs the polygon through all six planes in order: left, right, top,
// bottom, near, far.
func (f Frustum) Clip(p *Polygon) {
	for i := range f.Planes {
		p.clipAgainstPlane(f.Planes[i])
		if p.count == 0 {
			return
		}
	}
}

// Triangles fan-triangulates the ring into (0, i+1, i+2) triples, preserving
// UVs, and calls emit for each.
func (p *Polygon) Triangles(emit func(a, b, c PolygonVertex)) {
	for i := 0; i < p.count-2; i++ {
		emit(p.verts[0], p.verts[i+1], p.verts[i+2])
	}
}
