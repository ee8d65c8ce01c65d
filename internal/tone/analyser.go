// SPDX-License-Identifier: MIT
package tone

import (
	"math"
	"math/cmplx"
	"sync"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"

	"tonelab/pkg/bitint"
)

// Decibel range mapped onto the byte magnitude scale. A bin at or below
// minDecibels reads 0, at or above maxDecibels reads 255.
const (
	minDecibels = -100.0
	maxDecibels = -30.0
)

// Analyser is the spectral tap inserted between the gain stage and the
// output. The audio callback feeds rendered samples into a ring; Snapshot
// computes a Hann-windowed FFT over the most recent window and returns byte
// magnitudes with exponential smoothing applied across frames.
//
// Feed runs on the audio callback; Snapshot runs on render-cadence readers
// (render loop, UDP publisher). The ring and the FFT workspace are guarded
// separately so the callback never waits on an in-progress FFT.
type Analyser struct {
	windowSize int
	sampleRate float64
	smoothing  float64

	ringMu  sync.Mutex
	ring    []float64
	ringPos int

	fft *fourier.FFT

	workMu   sync.Mutex
	input    []float64
	coeffs   []complex128
	hann     []float64
	scale    float64 // Magnitude normalization so a unit sine peaks near 1.
	smoothed []float64
	bytes    []byte
}

// NewAnalyser creates an analyser with the given window size (rounded up to
// a power of 2) and smoothing factor in [0,1).
func NewAnalyser(windowSize int, sampleRate, smoothing float64) *Analyser {
	windowSize = bitint.NextPowerOfTwo(windowSize)
	bins := windowSize / 2

	hann := make([]float64, windowSize)
	for i := range hann {
		hann[i] = 1.0
	}
	window.Hann(hann)

	var windowSum float64
	for _, c := range hann {
		windowSum += c
	}

	return &Analyser{
		windowSize: windowSize,
		sampleRate: sampleRate,
		smoothing:  smoothing,
		ring:       make([]float64, windowSize),
		fft:        fourier.NewFFT(windowSize),
		input:      make([]float64, windowSize),
		coeffs:     make([]complex128, windowSize/2+1),
		hann:       hann,
		scale:      2 / windowSum,
		smoothed:   make([]float64, bins),
		bytes:      make([]byte, bins),
	}
}

// Bins returns the number of magnitude bins per snapshot (windowSize/2).
func (a *Analyser) Bins() int {
	return a.windowSize / 2
}

// Nyquist returns the highest representable frequency of the analysis.
func (a *Analyser) Nyquist() float64 {
	return a.sampleRate / 2
}

// Feed appends rendered output samples to the analysis ring.
// Real-time safe: bounded copy, no allocation.
func (a *Analyser) Feed(samples []float32) {
	a.ringMu.Lock()
	for _, s := range samples {
		a.ring[a.ringPos] = float64(s)
		a.ringPos++
		if a.ringPos == a.windowSize {
			a.ringPos = 0
		}
	}
	a.ringMu.Unlock()
}

// Snapshot computes the current byte magnitude spectrum. Each call windows
// the most recent windowSize samples, runs the FFT, smooths the linear
// magnitudes against the previous frame, and maps them to bytes on the
// [minDecibels, maxDecibels] scale. The returned slice is a copy.
func (a *Analyser) Snapshot() []byte {
	a.workMu.Lock()
	defer a.workMu.Unlock()

	// Unroll the ring into time order, oldest sample first.
	a.ringMu.Lock()
	n := copy(a.input, a.ring[a.ringPos:])
	copy(a.input[n:], a.ring[:a.ringPos])
	a.ringMu.Unlock()

	for i := range a.input {
		a.input[i] *= a.hann[i]
	}
	a.fft.Coefficients(a.coeffs, a.input)

	s := a.smoothing
	for i := range a.smoothed {
		mag := cmplx.Abs(a.coeffs[i]) * a.scale
		a.smoothed[i] = s*a.smoothed[i] + (1-s)*mag
		a.bytes[i] = toByteMagnitude(a.smoothed[i])
	}

	out := make([]byte, len(a.bytes))
	copy(out, a.bytes)
	return out
}

// toByteMagnitude maps a linear magnitude to the 0-255 display scale.
func toByteMagnitude(mag float64) byte {
	if mag <= 0 {
		return 0
	}
	db := 20 * math.Log10(mag)
	v := 255 * (db - minDecibels) / (maxDecibels - minDecibels)
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return byte(v)
}

// BinFor returns the magnitude bin index covering the given frequency.
func (a *Analyser) BinFor(frequency float64) int {
	bin := int(frequency / a.sampleRate * float64(a.windowSize))
	if bin < 0 {
		return 0
	}
	if bin >= a.Bins() {
		return a.Bins() - 1
	}
	return bin
}
