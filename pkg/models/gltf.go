package models

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"github.com/qmuntal/gltf"

	"github.com/hcosta/renderizer/pkg/math3d"
)

// LoadGLB loads a binary glTF (.glb) file into a Mesh.
func LoadGLB(path string) (*Mesh, error) {
	mesh, _, err := LoadGLBWithTexture(path)
	return mesh, err
}

// LoadGLBWithTexture loads a .glb/.gltf file and decodes the first embedded
// texture image, when one exists.
func LoadGLBWithTexture(path string) (*Mesh, image.Image, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open gltf: %w", err)
	}

	mesh := NewMesh(filepath.Base(path))
	for _, gm := range doc.Meshes {
		if err := appendGLTFMesh(doc, gm, mesh); err != nil {
			return nil, nil, fmt.Errorf("mesh %q: %w", gm.Name, err)
		}
	}
	if len(mesh.Faces) == 0 {
		return nil, nil, fmt.Errorf("%s: no triangle primitives", path)
	}
	mesh.CalculateBounds()

	tex := firstEmbeddedTexture(doc, path)
	return mesh, tex, nil
}

// appendGLTFMesh converts one glTF mesh's triangle primitives into indexed
// positions, UVs and 1-based faces.
func appendGLTFMesh(doc *gltf.Document, gm *gltf.Mesh, mesh *Mesh) error {
	for _, prim := range gm.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
			continue // lines, points, strips
		}

		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}
		positions, err := readVec3Accessor(doc, posIdx)
		if err != nil {
			return fmt.Errorf("positions: %w", err)
		}

		var uvs []math3d.Vec2
		if uvIdx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
			uvs, err = readVec2Accessor(doc, uvIdx)
			if err != nil {
				return fmt.Errorf("uvs: %w", err)
			}
		}

		// glTF texture coordinates are top-origin; the rasterizer flips V for
		// upper-origin images, so pre-flip here to land on the right row.
		basePos := len(mesh.Positions)
		baseUV := len(mesh.UVs)
		mesh.Positions = append(mesh.Positions, positions...)
		for _, uv := range uvs {
			mesh.UVs = append(mesh.UVs, math3d.V2(uv.X, 1-uv.Y))
		}

		var indices []int
		if prim.Indices != nil {
			indices, err = readIndices(doc, *prim.Indices)
			if err != nil {
				return fmt.Errorf("indices: %w", err)
			}
		} else {
			indices = make([]int, len(positions))
			for i := range indices {
				indices[i] = i
			}
		}

		hasUV := len(uvs) > 0
		for i := 0; i+2 < len(indices); i += 3 {
			// glTF fronts are counter-clockwise; swap the last two corners to
			// match the pipeline's winding convention.
			corners := [3]int{indices[i], indices[i+2], indices[i+1]}

			var face Face
			for j, ci := range corners {
				face.V[j] = basePos + ci + 1
				if hasUV && ci < len(uvs) {
					face.VT[j] = baseUV + ci + 1
				}
			}
			mesh.Faces = append(mesh.Faces, face)
		}
	}
	return nil
}

// firstEmbeddedTexture returns the first image of the document, in document
// order, that can be read and decoded. Each image is read from its buffer
// view when it has one, otherwise from the file its URI names.
func firstEmbeddedTexture(doc *gltf.Document, path string) image.Image {
	for _, img := range doc.Images {
		var data []byte
		if img.BufferView != nil {
			bv := doc.BufferViews[*img.BufferView]
			buf := doc.Buffers[bv.Buffer]
			if buf.Data != nil {
				data = buf.Data[bv.ByteOffset : bv.ByteOffset+bv.ByteLength]
			}
		} else if img.URI != "" {
			data, _ = os.ReadFile(filepath.Join(filepath.Dir(path), img.URI))
		}
		if len(data) == 0 {
			continue
		}

		// PNG and JPEG are decoded directly: a format registered with an
		// empty magic string (TGA) would otherwise claim every image.
		var decoded image.Image
		var err error
		switch {
		case bytes.HasPrefix(data, []byte("\x89PNG")):
			decoded, err = png.Decode(bytes.NewReader(data))
		case bytes.HasPrefix(data, []byte{0xFF, 0xD8}):
			decoded, err = jpeg.Decode(bytes.NewReader(data))
		default:
			decoded, _, err = image.Decode(bytes.NewReader(data))
		}
		if err == nil {
			return decoded
		}
	}
	return nil
}

func readVec3Accessor(doc *gltf.Document, accessorIdx int) ([]math3d.Vec3, error) {
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorVec3 {
		return nil, fmt.Errorf("expected VEC3, got %v", accessor.Type)
	}

	data, stride, err := accessorBytes(doc, accessor, 12)
	if err != nil {
		return nil, err
	}

	out := make([]math3d.Vec3, accessor.Count)
	for i := range accessor.Count {
		off := i * stride
		out[i] = math3d.V3(
			float64(readFloat32(data[off:])),
			float64(readFloat32(data[off+4:])),
			float64(readFloat32(data[off+8:])),
		)
	}
	return out, nil
}

func readVec2Accessor(doc *gltf.Document, accessorIdx int) ([]math3d.Vec2, error) {
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorVec2 {
		return nil, fmt.Errorf("expected VEC2, got %v", accessor.Type)
	}

	data, stride, err := accessorBytes(doc, accessor, 8)
	if err != nil {
		return nil, err
	}

	out := make([]math3d.Vec2, accessor.Count)
	for i := range accessor.Count {
		off := i * stride
		out[i] = math3d.V2(
			float64(readFloat32(data[off:])),
			float64(readFloat32(data[off+4:])),
		)
	}
	return out, nil
}

func readIndices(doc *gltf.Document, accessorIdx int) ([]int, error) {
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorScalar {
		return nil, fmt.Errorf("expected SCALAR, got %v", accessor.Type)
	}

	var compSize int
	switch accessor.ComponentType {
	case gltf.ComponentUbyte:
		compSize = 1
	case gltf.ComponentUshort:
		compSize = 2
	case gltf.ComponentUint:
		compSize = 4
	default:
		return nil, fmt.Errorf("unexpected index component type: %v", accessor.ComponentType)
	}

	data, stride, err := accessorBytes(doc, accessor, compSize)
	if err != nil {
		return nil, err
	}

	out := make([]int, accessor.Count)
	for i := range accessor.Count {
		off := i * stride
		switch compSize {
		case 1:
			out[i] = int(data[off])
		case 2:
			out[i] = int(uint16(data[off]) | uint16(data[off+1])<<8)
		case 4:
			out[i] = int(uint32(data[off]) | uint32(data[off+1])<<8 |
				uint32(data[off+2])<<16 | uint32(data[off+3])<<24)
		}
	}
	return out, nil
}

// accessorBytes returns the raw bytes behind an accessor plus the element
// stride. Only embedded (GLB) buffers are supported.
func accessorBytes(doc *gltf.Document, accessor *gltf.Accessor, defaultStride int) ([]byte, int, error) {
	if accessor.BufferView == nil {
		return nil, 0, fmt.Errorf("accessor has no buffer view")
	}

	bufferView := doc.BufferViews[*accessor.BufferView]
	buffer := doc.Buffers[bufferView.Buffer]
	if buffer.URI != "" {
		return nil, 0, fmt.Errorf("external buffers not supported")
	}
	if buffer.Data == nil {
		return nil, 0, fmt.Errorf("buffer has no data")
	}

	stride := bufferView.ByteStride
	if stride == 0 {
		stride = defaultStride
	}

	start := bufferView.ByteOffset + accessor.ByteOffset
	end := start + (accessor.Count-1)*stride + defaultStride
	if end > len(buffer.Data) {
		return nil, 0, fmt.Errorf("accessor overruns buffer")
	}
	return buffer.Data[start:end], stride, nil
}

// readFloat32 reads a little-endian float32.
func readFloat32(b []byte) float32 {
	bits := uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
	return math.Float32frombits(bits)
}
