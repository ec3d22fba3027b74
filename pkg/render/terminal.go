package render

import (
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"
)

// Presenter blits the ARGB color buffer to the terminal. Each terminal cell
// shows two vertically stacked pixels using the upper half block: the
// foreground carries the top pixel, the background the bottom one.
type Presenter struct {
	term *uv.Terminal
	cols int
	rows int
}

// NewPresenter creates a presenter for a terminal of cols x rows cells.
func NewPresenter(term *uv.Terminal, cols, rows int) *Presenter {
	return &Presenter{term: term, cols: cols, rows: rows}
}

// FramebufferSize returns the pixel dimensions the presenter can show:
// terminal columns wide, twice the terminal rows tall.
func (p *Presenter) FramebufferSize() (width, height int) {
	return p.cols, p.rows * 2
}

// Render converts the framebuffer into terminal cells.
func (p *Presenter) Render(fb *Framebuffer) {
	area := uv.Rect(0, 0, p.cols, p.rows)
	p.draw(fb, p.term, area)
}

// Flush presents the prepared cells.
func (p *Presenter) Flush() error {
	return p.term.Display()
}

func (p *Presenter) draw(fb *Framebuffer, scr uv.Screen, area uv.Rectangle) {
	for row := area.Min.Y; row < area.Max.Y; row++ {
		topY := row * 2
		botY := topY + 1

		for col := area.Min.X; col < area.Max.X && col < fb.Width; col++ {
			top := fb.GetPixel(col, topY)
			bot := fb.GetPixel(col, botY)

			cell := &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: argbToColor(top),
					Bg: argbToColor(bot),
				},
			}
			scr.SetCell(col, row, cell)
		}
	}
}

// argbToColor converts an ARGB word to Go's color.Color interface.
func argbToColor(c Color) color.Color {
	if c.A() == 0 {
		return nil // transparent = no color
	}
	return c.RGBA()
}
