package models

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hcosta/renderizer/pkg/math3d"
)

// LoadOBJ parses a Wavefront OBJ file into a Mesh. Supported statements are
// `v`, `vt` and `f` with `v`, `v/vt` or `v/vt/vn` references; faces with more
// than three corners are fan-triangulated. Malformed statements are reported
// as errors so callers can fail fast at startup.
func LoadOBJ(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open model: %w", err)
	}
	defer f.Close()

	mesh := NewMesh(filepath.Base(path))

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		switch fields[0] {
		case "v":
			v, err := parseVec3(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("%s:%d: vertex: %w", path, lineNo, err)
			}
			mesh.Positions = append(mesh.Positions, v)

		case "vt":
			uv, err := parseVec2(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("%s:%d: texture coord: %w", path, lineNo, err)
			}
			mesh.UVs = append(mesh.UVs, uv)

		case "f":
			if err := parseFace(mesh, fields[1:]); err != nil {
				return nil, fmt.Errorf("%s:%d: face: %w", path, lineNo, err)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}

	if len(mesh.Faces) == 0 {
		return nil, fmt.Errorf("%s: no faces found", path)
	}

	mesh.CalculateBounds()
	return mesh, nil
}

func parseVec3(fields []string) (math3d.Vec3, error) {
	if len(fields) < 3 {
		return math3d.Vec3{}, fmt.Errorf("want 3 components, got %d", len(fields))
	}
	var c [3]float64
	for i := range 3 {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return math3d.Vec3{}, err
		}
		c[i] = v
	}
	return math3d.V3(c[0], c[1], c[2]), nil
}

func parseVec2(fields []string) (math3d.Vec2, error) {
	if len(fields) < 2 {
		return math3d.Vec2{}, fmt.Errorf("want 2 components, got %d", len(fields))
	}
	u, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return math3d.Vec2{}, err
	}
	v, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return math3d.Vec2{}, err
	}
	return math3d.V2(u, v), nil
}

// faceRef is one `v`, `v/vt` or `v/vt/vn` corner reference, 1-based.
type faceRef struct {
	v, vt int
}

func parseFace(mesh *Mesh, fields []string) error {
	if len(fields) < 3 {
		return fmt.Errorf("want at least 3 corners, got %d", len(fields))
	}

	refs := make([]faceRef, 0, len(fields))
	for _, field := range fields {
		ref, err := parseFaceRef(mesh, field)
		if err != nil {
			return err
		}
		refs = append(refs, ref)
	}

	// Fan-triangulate polygons: (0, i+1, i+2).
	for i := 0; i+2 < len(refs); i++ {
		mesh.Faces = append(mesh.Faces, Face{
			V:  [3]int{refs[0].v, refs[i+1].v, refs[i+2].v},
			VT: [3]int{refs[0].vt, refs[i+1].vt, refs[i+2].vt},
		})
	}
	return nil
}

func parseFaceRef(mesh *Mesh, field string) (faceRef, error) {
	parts := strings.Split(field, "/")

	v, err := strconv.Atoi(parts[0])
	if err != nil {
		return faceRef{}, fmt.Errorf("corner %q: %w", field, err)
	}
	// Negative indices count back from the end of the list.
	if v < 0 {
		v = len(mesh.Positions) + 1 + v
	}

	ref := faceRef{v: v}
	if len(parts) > 1 && parts[1] != "" {
		vt, err := strconv.Atoi(parts[1])
		if err != nil {
			return faceRef{}, fmt.Errorf("corner %q: %w", field, err)
		}
		if vt < 0 {
			vt = len(mesh.UVs) + 1 + vt
		}
		ref.vt = vt
	}
	return ref, nil
}
