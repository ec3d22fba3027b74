package render

import (
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
)

// SavePNG writes the framebuffer to a PNG file.
func (fb *Framebuffer) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := png.Encode(f, fb.ToImage()); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return nil
}

// SaveWebP writes the framebuffer to a lossless WebP file.
func (fb *Framebuffer) SaveWebP(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := nativewebp.Encode(f, fb.ToImage(), nil); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return nil
}

// Screenshot saves the framebuffer under path, picking the encoder from the
// extension (.webp or .png).
func (fb *Framebuffer) Screenshot(path string) error {
	if strings.EqualFold(filepath.Ext(path), ".webp") {
		return fb.SaveWebP(path)
	}
	return fb.SavePNG(path)
}
