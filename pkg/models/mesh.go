// Package models provides mesh representation and model loading for
// renderizer.
package models

import (
	"math"

	"github.com/hcosta/renderizer/pkg/math3d"
	"github.com/hcosta/renderizer/pkg/render"
)

// Face is one triangle of a mesh: a triple of 1-based position indices and a
// triple of 1-based texture-coordinate indices, following the Wavefront OBJ
// convention. A UV index of 0 means the face carries no texture coordinate
// for that corner.
type Face struct {
	V  [3]int
	VT [3]int
}

// Mesh holds the arrays a loader produces: positions, texture coordinates and
// indexed faces.
type Mesh struct {
	Name      string
	Positions []math3d.Vec3
	UVs       []math3d.Vec2
	Faces     []Face

	BoundsMin math3d.Vec3
	BoundsMax math3d.Vec3
}

// NewMesh creates an empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{Name: name}
}

// VertexCount returns the number of positions.
func (m *Mesh) VertexCount() int {
	return len(m.Positions)
}

// FaceCount returns the number of triangle faces.
// Implements render.MeshSource.
func (m *Mesh) FaceCount() int {
	return len(m.Faces)
}

// Face resolves the i-th face's indices into geometry. Faces with
// out-of-range position indices report ok=false and are skipped by the
// pipeline; missing UV indices yield zero UVs.
// Implements render.MeshSource.
func (m *Mesh) Face(i int) (render.FaceData, bool) {
	if i < 0 || i >= len(m.Faces) {
		return render.FaceData{}, false
	}

	f := m.Faces[i]
	var data render.FaceData
	for j := range 3 {
		vi := f.V[j] - 1
		if vi < 0 || vi >= len(m.Positions) {
			return render.FaceData{}, false
		}
		data.Vertices[j] = m.Positions[vi]

		ti := f.VT[j] - 1
		if ti >= 0 && ti < len(m.UVs) {
			data.UVs[j] = m.UVs[ti]
		}
	}
	return data, true
}

// CalculateBounds computes the axis-aligned bounding box of the positions.
func (m *Mesh) CalculateBounds() {
	if len(m.Positions) == 0 {
		m.BoundsMin = math3d.Zero3()
		m.BoundsMax = math3d.Zero3()
		return
	}

	m.BoundsMin = m.Positions[0]
	m.BoundsMax = m.Positions[0]
	for _, p := range m.Positions[1:] {
		m.BoundsMin = m.BoundsMin.Min(p)
		m.BoundsMax = m.BoundsMax.Max(p)
	}
}

// Center returns the center of the bounding box.
func (m *Mesh) Center() math3d.Vec3 {
	return m.BoundsMin.Add(m.BoundsMax).Scale(0.5)
}

// Size returns the dimensions of the bounding box.
func (m *Mesh) Size() math3d.Vec3 {
	return m.BoundsMax.Sub(m.BoundsMin)
}

// NormalizeSize recenters the mesh on the origin and scales its largest
// dimension to extent, so any model fits the default scene.
func (m *Mesh) NormalizeSize(extent float64) {
	m.CalculateBounds()
	size := m.Size()
	maxDim := math.Max(size.X, math.Max(size.Y, size.Z))
	if maxDim == 0 {
		return
	}

	center := m.Center()
	scale := extent / maxDim
	for i := range m.Positions {
		m.Positions[i] = m.Positions[i].Sub(center).Scale(scale)
	}
	m.CalculateBounds()
}
