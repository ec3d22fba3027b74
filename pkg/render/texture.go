package render

import (
	"bufio"
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"math"
	"os"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
)

// Texture holds a decoded image for texture mapping: width, height and
// tightly packed row-major ARGB texels. Sampling is nearest-neighbor with
// wrap-repeat.
type Texture struct {
	Width  int
	Height int
	Pixels []Color
}

// NewTexture creates an empty texture with the given dimensions.
func NewTexture(width, height int) *Texture {
	return &Texture{
		Width:  width,
		Height: height,
		Pixels: make([]Color, width*height),
	}
}

// LoadTexture loads a texture from an image file (PNG, JPEG, TGA or BMP).
func LoadTexture(path string) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open texture: %w", err)
	}
	defer f.Close()

	// The tga package registers an empty magic string, so image.Decode would
	// hand every file to it; pick the decoder from the leading bytes instead.
	br := bufio.NewReader(f)
	magic, _ := br.Peek(4)
	var img image.Image
	switch {
	case bytes.HasPrefix(magic, []byte("\x89PNG")):
		img, err = png.Decode(br)
	case bytes.HasPrefix(magic, []byte{0xFF, 0xD8}):
		img, err = jpeg.Decode(br)
	case bytes.HasPrefix(magic, []byte("BM")):
		img, err = bmp.Decode(br)
	default:
		img, err = tga.Decode(br)
	}
	if err != nil {
		return nil, fmt.Errorf("decode texture %s: %w", path, err)
	}

	return TextureFromImage(img), nil
}

// TextureFromImage converts a decoded image into a texture.
func TextureFromImage(img image.Image) *Texture {
	bounds := img.Bounds()
	tex := NewTexture(bounds.Dx(), bounds.Dy())

	for y := range tex.Height {
		for x := range tex.Width {
			c := img.At(bounds.Min.X+x, bounds.Min.Y+y)
			r, g, b, a := c.RGBA()
			// RGBA returns 16-bit channels, scale to 8-bit
			tex.SetPixel(x, y, ARGB(uint8(a>>8), uint8(r>>8), uint8(g>>8), uint8(b>>8)))
		}
	}

	return tex
}

// NewCheckerTexture creates a procedural checkerboard, used as a fallback
// when no texture file is supplied.
func NewCheckerTexture(width, height, checkSize int, c1, c2 Color) *Texture {
	tex := NewTexture(width, height)
	for y := range height {
		for x := range width {
			if ((x/checkSize)+(y/checkSize))%2 == 0 {
				tex.SetPixel(x, y, c1)
			} else {
				tex.SetPixel(x, y, c2)
			}
		}
	}
	return tex
}

// SetPixel sets a texel with bounds checking.
func (t *Texture) SetPixel(x, y int, c Color) {
	if x < 0 || x >= t.Width || y < 0 || y >= t.Height {
		return
	}
	t.Pixels[y*t.Width+x] = c
}

// GetPixel returns the texel at (x, y), or transparent black out of range.
func (t *Texture) GetPixel(x, y int) Color {
	if x < 0 || x >= t.Width || y < 0 || y >= t.Height {
		return 0
	}
	return t.Pixels[y*t.Width+x]
}

// Sample returns the nearest texel for the given UV coordinates with
// wrap-repeat: (|floor(u*W)| mod W, |floor(v*H)| mod H).
func (t *Texture) Sample(u, v float64) Color {
	x := absInt(int(math.Floor(u*float64(t.Width)))) % t.Width
	y := absInt(int(math.Floor(v*float64(t.Height)))) % t.Height
	return t.Pixels[y*t.Width+x]
}
