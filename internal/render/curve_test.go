package render

import (
	"bytes"
	"math"
	"testing"

	"tonelab/internal/freqmap"
)

func TestEnvelopePeaksAtCenter(t *testing.T) {
	for _, f := range []float64{10, 100, 440, 1000, 12345, 25000} {
		if got := Envelope(f, f); math.Abs(got-1) > 1e-12 {
			t.Errorf("Envelope(%v, %v) = %v, want 1", f, f, got)
		}
	}
}

func TestEnvelopeFallsOffSymmetrically(t *testing.T) {
	const center = 1000.0
	up := Envelope(center*2, center)   // One octave up.
	down := Envelope(center/2, center) // One octave down.
	if math.Abs(up-down) > 1e-12 {
		t.Errorf("envelope asymmetric: up %v, down %v", up, down)
	}
	if up >= 1 {
		t.Errorf("envelope at one octave = %v, want < 1", up)
	}
	want := math.Exp(-1 / (2 * Sigma * Sigma))
	if math.Abs(up-want) > 1e-12 {
		t.Errorf("envelope at one octave = %v, want %v", up, want)
	}
}

func TestPulse(t *testing.T) {
	if got := Pulse(false, 0); got != idlePulse {
		t.Errorf("idle pulse = %v, want %v", got, idlePulse)
	}
	if got := Pulse(false, 99999); got != idlePulse {
		t.Error("idle pulse must not depend on the clock")
	}
	for _, ms := range []float64{0, 100, 1000, 5000} {
		p := Pulse(true, ms)
		if p < pulseBase-pulseDepth || p > pulseBase+pulseDepth {
			t.Errorf("running pulse at %vms = %v outside [%v,%v]",
				ms, p, pulseBase-pulseDepth, pulseBase+pulseDepth)
		}
	}
}

func TestIdleRenderIsStatic(t *testing.T) {
	r := NewCurveRenderer()
	a := NewSurface(160, 60, 1)
	b := NewSurface(160, 60, 1)

	r.Render(a, 1000, 0.1, false, 0)
	r.Render(b, 1000, 0.1, false, 123456)

	if !bytes.Equal(a.Pixels(), b.Pixels()) {
		t.Error("idle frames must be identical regardless of the clock")
	}
}

func TestRunningRenderAnimates(t *testing.T) {
	r := NewCurveRenderer()
	a := NewSurface(160, 60, 1)
	b := NewSurface(160, 60, 1)

	r.Render(a, 1000, 0.1, true, 0)
	// Quarter period of the pulse: sin moves from 0 toward 1.
	r.Render(b, 1000, 0.1, true, pulsePeriod*math.Pi/2)

	if bytes.Equal(a.Pixels(), b.Pixels()) {
		t.Error("running frames must differ as the pulse advances")
	}
}

func TestPeakColumnIsTallest(t *testing.T) {
	r := NewCurveRenderer()
	s := NewSurface(200, 80, 1)
	const freq = 1000.0
	r.Render(s, freq, 0.2, true, 0)

	peakX := int(freqmap.ToPosition(freq) / freqmap.MaxPosition * 199)
	peakTop := columnTop(s, peakX)
	for _, dx := range []int{-40, 40} {
		if other := columnTop(s, peakX+dx); other <= peakTop {
			t.Errorf("column %d top %d not below peak column top %d", peakX+dx, other, peakTop)
		}
	}
}

func TestCurveZeroAreaIsSkipped(t *testing.T) {
	r := NewCurveRenderer()
	r.Render(nil, 440, 0.1, true, 0)
	r.Render(NewSurface(0, 0, 1), 440, 0.1, true, 0)
	r.Render(NewSurface(1, 10, 1), 440, 0.1, true, 0)
}

// columnTop returns the first y whose pixel differs from the column's
// bottom-up background, i.e. the top of whatever is drawn in that column.
func columnTop(s *Surface, x int) int {
	bg := NewCurveRenderer().bg
	for y := 0; y < s.Height(); y++ {
		c := s.At(x, y)
		r, g, b, _ := c.RGBA()
		if byte(r>>8) != bg.R || byte(g>>8) != bg.G || byte(b>>8) != bg.B {
			return y
		}
	}
	return s.Height()
}
