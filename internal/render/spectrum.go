// SPDX-License-Identifier: MIT
package render

import (
	"image/color"
	"math"

	"tonelab/internal/freqmap"
)

// DefaultBuckets is the number of log-spaced frequency buckets in the
// spectrum display.
const DefaultBuckets = 72

// DefaultNyquist is assumed when the session sample rate is unknown (half
// of 48 kHz output).
const DefaultNyquist = 24000.0

// SpectrumRenderer draws a magnitude snapshot as log-spaced vertical bars
// with a marker line at the current tone frequency. Absent a snapshot it
// draws the idle placeholder; that is the defined idle visual, not an error.
type SpectrumRenderer struct {
	Buckets int

	bg         color.RGBA
	grid       color.RGBA
	barTop     color.RGBA
	barBottom  color.RGBA
	marker     color.RGBA
	textColor  color.RGBA
	idleStatus string
}

// NewSpectrumRenderer creates a renderer with the default palette.
func NewSpectrumRenderer(buckets int) *SpectrumRenderer {
	if buckets <= 0 {
		buckets = DefaultBuckets
	}
	return &SpectrumRenderer{
		Buckets:    buckets,
		bg:         color.RGBA{16, 18, 28, 255},
		grid:       color.RGBA{38, 42, 58, 255},
		barTop:     color.RGBA{94, 234, 212, 255},
		barBottom:  color.RGBA{20, 90, 110, 255},
		marker:     color.RGBA{250, 204, 21, 255},
		textColor:  color.RGBA{130, 140, 160, 255},
		idleStatus: "no signal",
	}
}

// BucketBounds returns the frequency span [from, to) of bucket i out of n,
// log-spaced across the full control frequency range.
func BucketBounds(i, n int) (from, to float64) {
	ratio := freqmap.MaxFrequency / freqmap.MinFrequency
	from = freqmap.MinFrequency * math.Pow(ratio, float64(i)/float64(n))
	to = freqmap.MinFrequency * math.Pow(ratio, float64(i+1)/float64(n))
	return from, to
}

// BucketSpan maps a bucket's frequency range onto magnitude indices
// [lo, hi] (inclusive), clamped to the snapshot length. Adjacent buckets
// share their boundary index so the union of all spans covers the snapshot
// without gaps.
func BucketSpan(i, n, bins int, nyquist float64) (lo, hi int) {
	from, to := BucketBounds(i, n)
	lo = clampIndex(int(from/nyquist*float64(bins)), bins)
	hi = clampIndex(int(to/nyquist*float64(bins)), bins)
	return lo, hi
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// Render fully redraws the surface: background, grid, bars, and the
// frequency marker. Magnitudes may be nil while Idle. A zero-area surface
// skips the frame.
func (r *SpectrumRenderer) Render(s *Surface, magnitudes []byte, frequency, nyquist float64) {
	if s == nil || s.Empty() {
		return
	}
	if nyquist <= 0 {
		nyquist = DefaultNyquist
	}

	w := float64(s.Width())
	h := float64(s.Height())

	s.Fill(r.bg)
	r.drawGrid(s, w, h)

	if len(magnitudes) == 0 {
		msg := r.idleStatus
		s.DrawText((w-s.TextWidth(msg))/2, h/2, msg, r.textColor)
		r.drawMarker(s, frequency, w, h)
		return
	}

	pad := 4.0
	drawable := h - 2*pad
	barW := w / float64(r.Buckets)

	for i := range r.Buckets {
		lo, hi := BucketSpan(i, r.Buckets, len(magnitudes), nyquist)

		// Max across the span, not the average: transient peaks stay visible.
		var peak byte
		for j := lo; j <= hi; j++ {
			if magnitudes[j] > peak {
				peak = magnitudes[j]
			}
		}

		level := float64(peak) / 255
		barH := level * drawable
		if barH < 1 {
			continue
		}
		x := float64(i) * barW
		y := h - pad - barH
		s.VGradient(x+1, y, barW-2, barH, r.barTop, r.barBottom)
	}

	r.drawMarker(s, frequency, w, h)
}

// drawGrid draws faint horizontal quarter lines and decade verticals.
func (r *SpectrumRenderer) drawGrid(s *Surface, w, h float64) {
	for i := 1; i < 4; i++ {
		y := h * float64(i) / 4
		s.Line(0, y, w, y, r.grid)
	}
	for _, f := range []float64{100, 1000, 10000} {
		x := freqmap.ToPosition(f) / freqmap.MaxPosition * w
		s.Line(x, 0, x, h, r.grid)
	}
}

// drawMarker draws the vertical line at the current tone frequency, placed
// with the same log mapping the control uses.
func (r *SpectrumRenderer) drawMarker(s *Surface, frequency, w, h float64) {
	x := freqmap.ToPosition(frequency) / freqmap.MaxPosition * w
	s.Line(x, 0, x, h, r.marker)
}
