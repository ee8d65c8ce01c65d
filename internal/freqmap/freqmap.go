// SPDX-License-Identifier: MIT
//
// Package freqmap maps a linear control position to a logarithmic frequency
// scale and back, and derives display values (note label, formatted
// frequency) from a frequency. Equal steps of the control correspond to
// equal frequency ratios, matching pitch perception. All functions are pure.
package freqmap

import (
	"fmt"
	"math"
)

// Frequency domain of the tone control, in Hz.
const (
	MinFrequency = 10.0
	MaxFrequency = 25000.0
)

// Control position domain. The control is linear; the mapping to frequency
// is geometric.
const (
	MinPosition = 0.0
	MaxPosition = 100.0
)

// ratio is the total frequency span covered by the control.
const ratio = MaxFrequency / MinFrequency

var logRatio = math.Log(ratio)

// ClampFrequency restricts f to the supported frequency domain.
func ClampFrequency(f float64) float64 {
	if f < MinFrequency {
		return MinFrequency
	}
	if f > MaxFrequency {
		return MaxFrequency
	}
	return f
}

// ClampPosition restricts p to the control position domain.
func ClampPosition(p float64) float64 {
	if p < MinPosition {
		return MinPosition
	}
	if p > MaxPosition {
		return MaxPosition
	}
	return p
}

// ToFrequency converts a control position in [0,100] to a frequency in Hz:
//
//	f = MIN * (MAX/MIN)^(p/100)
//
// The mapping is monotonic; ToFrequency(0) == MinFrequency and
// ToFrequency(100) == MaxFrequency exactly.
func ToFrequency(position float64) float64 {
	position = ClampPosition(position)
	return MinFrequency * math.Pow(ratio, position/MaxPosition)
}

// ToPosition is the exact inverse of ToFrequency:
//
//	p = 100 * log(f/MIN) / log(MAX/MIN)
func ToPosition(frequency float64) float64 {
	frequency = ClampFrequency(frequency)
	return MaxPosition * math.Log(frequency/MinFrequency) / logRatio
}

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// ToNoteLabel returns the nearest equal-tempered pitch for a frequency as
// "<Note><Octave> (<signed cents>c)", e.g. ToNoteLabel(440) == "A4 (+0c)".
// The cents deviation is measured against the exact frequency of the
// nearest pitch and carries an explicit sign.
func ToNoteLabel(frequency float64) string {
	frequency = ClampFrequency(frequency)

	// MIDI-style pitch number: A4 (440 Hz) is 69.
	pitch := int(math.Round(12*math.Log2(frequency/440) + 69))

	idx := pitch % 12
	if idx < 0 {
		idx += 12
	}
	octave := int(math.Floor(float64(pitch)/12)) - 1

	target := 440 * math.Pow(2, float64(pitch-69)/12)
	cents := int(math.Round(1200 * math.Log2(frequency/target)))

	return fmt.Sprintf("%s%d (%+dc)", noteNames[idx], octave, cents)
}

// FormatFrequency renders a frequency for display: whole Hertz below 1 kHz,
// two-decimal kilohertz at or above it.
func FormatFrequency(frequency float64) string {
	if frequency < 1000 {
		return fmt.Sprintf("%.0f Hz", frequency)
	}
	return fmt.Sprintf("%.2f kHz", frequency/1000)
}
