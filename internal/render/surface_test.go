package render

import (
	"image/color"
	"testing"
)

var red = color.RGBA{255, 0, 0, 255}

func TestSurfaceDimensions(t *testing.T) {
	s := NewSurface(100, 50, 2)
	if s.Width() != 100 || s.Height() != 50 {
		t.Errorf("logical size = %dx%d, want 100x50", s.Width(), s.Height())
	}
	pw, ph := s.PixelSize()
	if pw != 200 || ph != 100 {
		t.Errorf("pixel size = %dx%d, want 200x100", pw, ph)
	}
	if len(s.Pixels()) != 200*100*4 {
		t.Errorf("backing store = %d bytes, want %d", len(s.Pixels()), 200*100*4)
	}
}

func TestZeroAreaSurfaceIsSafe(t *testing.T) {
	for _, s := range []*Surface{NewSurface(0, 0, 1), NewSurface(10, 0, 1), NewSurface(-3, 5, 1)} {
		if !s.Empty() {
			t.Errorf("surface %dx%d should report Empty", s.Width(), s.Height())
		}
		// None of these may panic.
		s.Fill(red)
		s.FillRect(0, 0, 10, 10, red)
		s.VGradient(0, 0, 10, 10, red, red)
		s.Line(-5, -5, 50, 50, red)
		s.FillCircle(5, 5, 3, red)
		s.DrawText(1, 1, "idle", red)
	}
}

func TestOutOfBoundsDrawingClips(t *testing.T) {
	s := NewSurface(10, 10, 1)
	s.FillRect(-100, -100, 1000, 1000, red)
	s.Line(-50, 5, 50, 5, red)
	s.FillCircle(9, 9, 20, red)

	if got := s.At(5, 5); got != red {
		t.Errorf("pixel inside clip = %v, want %v", got, red)
	}
}

func TestFillRect(t *testing.T) {
	s := NewSurface(10, 10, 1)
	s.FillRect(2, 3, 4, 5, red)

	if got := s.At(2, 3); got != red {
		t.Errorf("top-left corner = %v, want %v", got, red)
	}
	if got := s.At(5, 7); got != red {
		t.Errorf("bottom-right inside = %v, want %v", got, red)
	}
	if got := s.At(6, 3); got == red {
		t.Error("pixel right of rect painted")
	}
	if got := s.At(1, 3); got == red {
		t.Error("pixel left of rect painted")
	}
}

func TestVGradientEndpoints(t *testing.T) {
	top := color.RGBA{0, 0, 0, 255}
	bottom := color.RGBA{200, 200, 200, 255}
	s := NewSurface(4, 100, 1)
	s.VGradient(0, 0, 4, 100, top, bottom)

	if got := s.At(0, 0); got != top {
		t.Errorf("gradient top = %v, want %v", got, top)
	}
	gotBottom := s.At(0, 99).(color.RGBA)
	if gotBottom.R < 190 {
		t.Errorf("gradient bottom R = %d, want near 200", gotBottom.R)
	}
	mid := s.At(0, 50).(color.RGBA)
	if mid.R < 80 || mid.R > 120 {
		t.Errorf("gradient midpoint R = %d, want near 100", mid.R)
	}
}

func TestLineEndpoints(t *testing.T) {
	s := NewSurface(20, 20, 1)
	s.Line(0, 0, 19, 19, red)
	if s.At(0, 0) != red || s.At(19, 19) != red || s.At(10, 10) != red {
		t.Error("diagonal line missing endpoint or midpoint pixels")
	}
}

func TestDrawTextPaintsPixels(t *testing.T) {
	s := NewSurface(100, 20, 1)
	s.DrawText(2, 14, "A", red)

	var painted bool
	pix := s.Pixels()
	for i := 0; i < len(pix); i += 4 {
		if pix[i] != 0 {
			painted = true
			break
		}
	}
	if !painted {
		t.Error("DrawText painted no pixels")
	}
}
