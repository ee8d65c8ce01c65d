// SPDX-License-Identifier: MIT
package tone

import (
	"fmt"
	"math"
	"strings"
	"sync/atomic"
)

// Waveform selects the periodic shape generated by the oscillator.
type Waveform int32

const (
	Sine Waveform = iota
	Square
	Triangle
	Sawtooth
)

func (w Waveform) String() string {
	switch w {
	case Sine:
		return "sine"
	case Square:
		return "square"
	case Triangle:
		return "triangle"
	case Sawtooth:
		return "sawtooth"
	default:
		return "unknown"
	}
}

// ParseWaveform converts a string name (case-insensitive) to a Waveform.
func ParseWaveform(name string) (Waveform, error) {
	switch strings.ToLower(name) {
	case "sine", "sin":
		return Sine, nil
	case "square", "sqr":
		return Square, nil
	case "triangle", "tri":
		return Triangle, nil
	case "sawtooth", "saw":
		return Sawtooth, nil
	default:
		return Sine, fmt.Errorf("unknown waveform name: %q", name)
	}
}

// Oscillator is a phase-accumulator generator for a single periodic tone.
// Frequency and waveform are stored atomically so the control thread can
// update them while the audio callback renders; changes take effect at the
// next rendered block without resetting the phase, so there is no click
// beyond the shape discontinuity itself.
type Oscillator struct {
	sampleRate float64
	phase      float64 // Position within the cycle, in [0,1).
	freqBits   atomic.Uint64
	wave       atomic.Int32
}

// NewOscillator creates an oscillator producing samples in [-1,1].
func NewOscillator(sampleRate, frequency float64, wave Waveform) *Oscillator {
	o := &Oscillator{sampleRate: sampleRate}
	o.SetFrequency(frequency)
	o.SetWaveform(wave)
	return o
}

// SetFrequency updates the oscillation frequency in Hz.
func (o *Oscillator) SetFrequency(frequency float64) {
	o.freqBits.Store(math.Float64bits(frequency))
}

// Frequency returns the current oscillation frequency in Hz.
func (o *Oscillator) Frequency() float64 {
	return math.Float64frombits(o.freqBits.Load())
}

// SetWaveform updates the waveform shape.
func (o *Oscillator) SetWaveform(wave Waveform) {
	o.wave.Store(int32(wave))
}

// Waveform returns the current waveform shape.
func (o *Oscillator) Waveform() Waveform {
	return Waveform(o.wave.Load())
}

// Render fills out with the next len(out) samples at unit amplitude.
// Only the audio callback may call Render; the phase is not shared.
func (o *Oscillator) Render(out []float32) {
	step := o.Frequency() / o.sampleRate
	wave := o.Waveform()

	phase := o.phase
	for i := range out {
		out[i] = float32(sampleAt(wave, phase))
		phase += step
		if phase >= 1 {
			phase -= math.Floor(phase)
		}
	}
	o.phase = phase
}

// sampleAt evaluates one cycle of the waveform at phase in [0,1).
// All shapes are aligned so the cycle starts at zero crossing (rising),
// matching the sine: value 0 at phase 0, peak at 0.25, trough at 0.75.
func sampleAt(wave Waveform, phase float64) float64 {
	switch wave {
	case Square:
		if phase < 0.5 {
			return 1
		}
		return -1
	case Triangle:
		switch {
		case phase < 0.25:
			return 4 * phase
		case phase < 0.75:
			return 2 - 4*phase
		default:
			return 4*phase - 4
		}
	case Sawtooth:
		return 2*phase - 1
	default: // Sine
		return math.Sin(2 * math.Pi * phase)
	}
}
