// SPDX-License-Identifier: MIT
/*
Package render turns magnitude snapshots and tone parameters into per-frame
pixel output. It contains the fixed-size software raster (Surface), the two
renderers (spectrum bars and the analytic response curve), and the
cancellable render loop that drives them at display cadence.
*/
package render

import (
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Surface is a fixed-size RGBA raster with a device-pixel-ratio-aware
// backing store. Drawing operations take logical coordinates; the backing
// store is scaled by the pixel ratio. Out-of-range coordinates are clipped,
// never a panic.
//
// Surface implements draw.Image so text can be set with a font.Drawer.
type Surface struct {
	width, height int     // Logical size.
	ratio         float64 // Device pixel ratio.
	pw, ph        int     // Backing store size in device pixels.
	pix           []byte  // RGBA, row-major.
}

// NewSurface allocates a surface of the given logical size. A ratio <= 0 is
// treated as 1. Zero-area surfaces are valid; all drawing on them is a no-op.
func NewSurface(width, height int, ratio float64) *Surface {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	if ratio <= 0 {
		ratio = 1
	}
	pw := int(float64(width) * ratio)
	ph := int(float64(height) * ratio)
	return &Surface{
		width:  width,
		height: height,
		ratio:  ratio,
		pw:     pw,
		ph:     ph,
		pix:    make([]byte, pw*ph*4),
	}
}

// Width returns the logical width.
func (s *Surface) Width() int { return s.width }

// Height returns the logical height.
func (s *Surface) Height() int { return s.height }

// PixelSize returns the backing store size in device pixels.
func (s *Surface) PixelSize() (int, int) { return s.pw, s.ph }

// Pixels exposes the RGBA backing store for blitting to a window.
func (s *Surface) Pixels() []byte { return s.pix }

// Empty reports whether the surface has no drawable area.
func (s *Surface) Empty() bool { return s.pw == 0 || s.ph == 0 }

// --- draw.Image implementation (device pixel space) ---

func (s *Surface) ColorModel() color.Model { return color.RGBAModel }

func (s *Surface) Bounds() image.Rectangle { return image.Rect(0, 0, s.pw, s.ph) }

func (s *Surface) At(x, y int) color.Color {
	if x < 0 || y < 0 || x >= s.pw || y >= s.ph {
		return color.RGBA{}
	}
	i := (y*s.pw + x) * 4
	return color.RGBA{s.pix[i], s.pix[i+1], s.pix[i+2], s.pix[i+3]}
}

func (s *Surface) Set(x, y int, c color.Color) {
	if x < 0 || y < 0 || x >= s.pw || y >= s.ph {
		return
	}
	r, g, b, a := c.RGBA()
	i := (y*s.pw + x) * 4
	s.pix[i] = byte(r >> 8)
	s.pix[i+1] = byte(g >> 8)
	s.pix[i+2] = byte(b >> 8)
	s.pix[i+3] = byte(a >> 8)
}

func (s *Surface) setRGBA(x, y int, c color.RGBA) {
	if x < 0 || y < 0 || x >= s.pw || y >= s.ph {
		return
	}
	i := (y*s.pw + x) * 4
	s.pix[i] = c.R
	s.pix[i+1] = c.G
	s.pix[i+2] = c.B
	s.pix[i+3] = c.A
}

// dev converts a logical coordinate to device pixels.
func (s *Surface) dev(v float64) int {
	return int(v * s.ratio)
}

// Fill paints the whole surface with c.
func (s *Surface) Fill(c color.RGBA) {
	for i := 0; i < len(s.pix); i += 4 {
		s.pix[i] = c.R
		s.pix[i+1] = c.G
		s.pix[i+2] = c.B
		s.pix[i+3] = c.A
	}
}

// FillRect paints an axis-aligned rectangle given in logical coordinates.
func (s *Surface) FillRect(x, y, w, h float64, c color.RGBA) {
	if s.Empty() || w <= 0 || h <= 0 {
		return
	}
	x0, y0 := s.dev(x), s.dev(y)
	x1, y1 := s.dev(x+w), s.dev(y+h)
	for py := y0; py < y1; py++ {
		for px := x0; px < x1; px++ {
			s.setRGBA(px, py, c)
		}
	}
}

// VGradient paints a rectangle with a vertical linear gradient from top to
// bottom.
func (s *Surface) VGradient(x, y, w, h float64, top, bottom color.RGBA) {
	if s.Empty() || w <= 0 || h <= 0 {
		return
	}
	x0, y0 := s.dev(x), s.dev(y)
	x1, y1 := s.dev(x+w), s.dev(y+h)
	span := y1 - y0
	if span <= 0 {
		return
	}
	for py := y0; py < y1; py++ {
		t := float64(py-y0) / float64(span)
		c := lerpRGBA(top, bottom, t)
		for px := x0; px < x1; px++ {
			s.setRGBA(px, py, c)
		}
	}
}

func lerpRGBA(a, b color.RGBA, t float64) color.RGBA {
	lerp := func(x, y uint8) uint8 {
		return uint8(float64(x) + (float64(y)-float64(x))*t)
	}
	return color.RGBA{lerp(a.R, b.R), lerp(a.G, b.G), lerp(a.B, b.B), lerp(a.A, b.A)}
}

// Line draws a straight segment between two logical points (Bresenham).
func (s *Surface) Line(x0, y0, x1, y1 float64, c color.RGBA) {
	if s.Empty() {
		return
	}
	px0, py0 := s.dev(x0), s.dev(y0)
	px1, py1 := s.dev(x1), s.dev(y1)

	dx := abs(px1 - px0)
	dy := -abs(py1 - py0)
	sx := 1
	if px0 > px1 {
		sx = -1
	}
	sy := 1
	if py0 > py1 {
		sy = -1
	}
	err := dx + dy
	for {
		s.setRGBA(px0, py0, c)
		if px0 == px1 && py0 == py1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			px0 += sx
		}
		if e2 <= dx {
			err += dx
			py0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Point is a logical coordinate pair.
type Point struct {
	X, Y float64
}

// Polyline strokes connected segments through the given points.
func (s *Surface) Polyline(points []Point, c color.RGBA) {
	for i := 1; i < len(points); i++ {
		s.Line(points[i-1].X, points[i-1].Y, points[i].X, points[i].Y, c)
	}
}

// FillCircle paints a filled disc centered at a logical point.
func (s *Surface) FillCircle(cx, cy, r float64, c color.RGBA) {
	if s.Empty() || r <= 0 {
		return
	}
	pcx, pcy := s.dev(cx), s.dev(cy)
	pr := s.dev(r)
	if pr < 1 {
		pr = 1
	}
	for dy := -pr; dy <= pr; dy++ {
		for dx := -pr; dx <= pr; dx++ {
			if dx*dx+dy*dy <= pr*pr {
				s.setRGBA(pcx+dx, pcy+dy, c)
			}
		}
	}
}

// DrawText renders a string with the fixed 7x13 face, anchored at the
// logical baseline point. Glyphs are rasterized at device scale 1.
func (s *Surface) DrawText(x, y float64, text string, c color.RGBA) {
	if s.Empty() || text == "" {
		return
	}
	d := font.Drawer{
		Dst:  s,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(s.dev(x), s.dev(y)),
	}
	d.DrawString(text)
}

// TextWidth returns the advance of text in logical units, for centering.
func (s *Surface) TextWidth(text string) float64 {
	w := font.MeasureString(basicfont.Face7x13, text)
	return float64(w.Ceil()) / s.ratio
}
