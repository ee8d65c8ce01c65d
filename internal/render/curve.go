// SPDX-License-Identifier: MIT
package render

import (
	"image/color"
	"math"

	"tonelab/internal/freqmap"
	"tonelab/internal/tone"
)

// Sigma is the width of the Gaussian envelope in octaves; the curve spans
// roughly one octave around the selected frequency.
const Sigma = 0.23

// Pulse constants: the running pulse breathes around 0.9 with the animation
// clock, the idle value is a single damped constant. The pulse is the sole
// visual cue separating idle from active.
const (
	pulseBase   = 0.9
	pulseDepth  = 0.1
	pulsePeriod = 420.0 // Clock divisor, milliseconds.
	idlePulse   = 0.55
)

// CurveRenderer draws the synthetic frequency-response curve: a Gaussian
// bell centered on the tone frequency, scaled by amplitude and a
// time-varying pulse. It consumes no audio data.
type CurveRenderer struct {
	bg       color.RGBA
	grid     color.RGBA
	fillTop  color.RGBA
	fillBot  color.RGBA
	stroke   color.RGBA
	peak     color.RGBA
	baseline float64 // Bottom padding in logical pixels.

	points []Point // Reused outline buffer.
}

// NewCurveRenderer creates a renderer with the default palette.
func NewCurveRenderer() *CurveRenderer {
	return &CurveRenderer{
		bg:       color.RGBA{16, 18, 28, 255},
		grid:     color.RGBA{38, 42, 58, 255},
		fillTop:  color.RGBA{129, 140, 248, 180},
		fillBot:  color.RGBA{30, 34, 70, 180},
		stroke:   color.RGBA{165, 180, 252, 255},
		peak:     color.RGBA{250, 204, 21, 255},
		baseline: 4,
	}
}

// Envelope evaluates the Gaussian falloff at currentFreq for a curve
// centered on centerFreq. The distance is measured in octaves, so
// Envelope(f, f) == 1 for every f in the frequency domain.
func Envelope(currentFreq, centerFreq float64) float64 {
	d := math.Log2(currentFreq / centerFreq)
	return math.Exp(-(d * d) / (2 * Sigma * Sigma))
}

// Pulse returns the time-varying height modulation. clockMs is the
// monotonically increasing animation clock in milliseconds; it matters only
// while running.
func Pulse(running bool, clockMs float64) float64 {
	if !running {
		return idlePulse
	}
	return pulseBase + pulseDepth*math.Sin(clockMs/pulsePeriod)
}

// Render fully redraws the curve: filled area, outline, and the peak dot.
// Amplitude is the raw tone amplitude; it is normalized against the
// amplitude ceiling here. Recomputed every frame because the pulse depends
// on the clock even when all other inputs are static. A zero-area surface
// skips the frame.
func (r *CurveRenderer) Render(s *Surface, frequency, amplitude float64, running bool, clockMs float64) {
	if s == nil || s.Empty() || s.Width() < 2 {
		return
	}

	w := float64(s.Width())
	h := float64(s.Height())

	s.Fill(r.bg)
	for i := 1; i < 4; i++ {
		y := h * float64(i) / 4
		s.Line(0, y, w, y, r.grid)
	}

	normAmp := tone.ClampAmplitude(amplitude) / tone.MaxAmplitude
	pulse := Pulse(running, clockMs)
	drawable := h - 2*r.baseline
	bottom := h - r.baseline

	width := int(w)
	if cap(r.points) < width {
		r.points = make([]Point, 0, width)
	}
	r.points = r.points[:0]

	for x := 0; x < width; x++ {
		// x=0 maps to MinFrequency, x=width-1 to MaxFrequency, the inverse
		// of the control's log mapping.
		pos := float64(x) / float64(width-1) * freqmap.MaxPosition
		currentFreq := freqmap.ToFrequency(pos)

		height := Envelope(currentFreq, frequency) * normAmp * pulse * drawable
		y := bottom - height

		if height >= 1 {
			s.VGradient(float64(x), y, 1, height, r.fillTop, r.fillBot)
		}
		r.points = append(r.points, Point{X: float64(x), Y: y})
	}

	s.Polyline(r.points, r.stroke)

	// Peak marker at the exact center frequency (envelope distance 0).
	peakX := freqmap.ToPosition(frequency) / freqmap.MaxPosition * (w - 1)
	peakY := bottom - normAmp*pulse*drawable
	s.FillCircle(peakX, peakY, 3, r.peak)
}
