// SPDX-License-Identifier: MIT
/*
Package tone implements the audio generation engine: a single-voice
oscillator, an amplitude stage, and a spectral analysis tap wired
oscillator -> gain -> analyser -> output.

The engine is a two-state machine (Idle, Running) with at most one live
session. Invalid transitions degrade to no-ops: Start while Running keeps
the existing session, Stop while Idle does nothing, parameter updates while
Idle are ignored and the caller re-applies them on the next Start.

Thread safety:
  - Parameter updates land on atomics and win at the next rendered block
  - The analyser copies snapshots out under its own locks
  - Session transitions are serialized by the engine mutex
*/
package tone

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"tonelab/internal/config"
	"tonelab/internal/freqmap"
	applog "tonelab/internal/log"
)

// Amplitude domain. The low ceiling keeps output levels safe; the engine
// clamps defensively rather than trusting the caller.
const (
	MinAmplitude = 0.01
	MaxAmplitude = 0.20
)

// ClampAmplitude restricts a to the supported amplitude domain.
func ClampAmplitude(a float64) float64 {
	if a < MinAmplitude {
		return MinAmplitude
	}
	if a > MaxAmplitude {
		return MaxAmplitude
	}
	return a
}

// session is the acquire-all/release-all resource group for one Running
// period: oscillator, gain, analyser, and the output stream behind them.
type session struct {
	osc      *Oscillator
	ampBits  atomic.Uint64 // Gain stage level as float64 bits.
	analyser *Analyser
	output   Output
}

func (s *session) setAmplitude(a float64) {
	s.ampBits.Store(math.Float64bits(a))
}

func (s *session) amplitude() float64 {
	return math.Float64frombits(s.ampBits.Load())
}

// render is the per-block audio callback: oscillator, gain, analysis tap.
// Runs in the output backend's real-time context; no allocation.
func (s *session) render(out []float32) {
	s.osc.Render(out)
	amp := float32(s.amplitude())
	for i := range out {
		out[i] *= amp
	}
	s.analyser.Feed(out)
}

// Engine owns the playback state machine and the single live session.
type Engine struct {
	cfg       *config.Config
	newOutput OutputFactory

	mu      sync.Mutex
	session *session
}

// NewEngine creates an engine using factory to allocate output backends.
// A nil factory selects the backend named in the configuration.
func NewEngine(cfg *config.Config, factory OutputFactory) *Engine {
	if factory == nil {
		factory = defaultFactory(cfg)
	}
	return &Engine{cfg: cfg, newOutput: factory}
}

func defaultFactory(cfg *config.Config) OutputFactory {
	switch cfg.Audio.Backend {
	case "oto":
		return func(sampleRate float64, blockSize int) (Output, error) {
			return NewOtoOutput(sampleRate, blockSize), nil
		}
	case "none":
		return func(sampleRate float64, blockSize int) (Output, error) {
			return NewNullOutput(blockSize), nil
		}
	default:
		return func(sampleRate float64, blockSize int) (Output, error) {
			return NewPortAudioOutput(cfg.Audio.OutputDevice, sampleRate, blockSize, cfg.Audio.LowLatency)
		}
	}
}

// Running reports whether a session is active.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session != nil
}

// SampleRate returns the configured output sample rate in Hz.
func (e *Engine) SampleRate() float64 {
	return e.cfg.Audio.SampleRate
}

// Nyquist returns half the output sample rate, the highest frequency
// representable in a magnitude snapshot.
func (e *Engine) Nyquist() float64 {
	return e.cfg.Audio.SampleRate / 2
}

// Start allocates a session and begins audible output. If a session is
// already running, Start is a no-op and returns nil; the existing session
// keeps its parameters. Platform-denied output acquisition is the one
// failure surfaced to the caller.
func (e *Engine) Start(frequency, amplitude float64, wave Waveform) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session != nil {
		applog.Debugf("Engine: Start while running, keeping existing session")
		return nil
	}

	frequency = freqmap.ClampFrequency(frequency)
	amplitude = ClampAmplitude(amplitude)

	output, err := e.newOutput(e.cfg.Audio.SampleRate, e.cfg.Audio.BlockSize)
	if err != nil {
		return fmt.Errorf("failed to acquire audio output: %w", err)
	}

	s := &session{
		osc:      NewOscillator(e.cfg.Audio.SampleRate, frequency, wave),
		analyser: NewAnalyser(e.cfg.Tone.WindowSize, e.cfg.Audio.SampleRate, e.cfg.Tone.Smoothing),
		output:   output,
	}
	s.setAmplitude(amplitude)

	if err := output.Start(s.render); err != nil {
		output.Close()
		return fmt.Errorf("failed to start audio output: %w", err)
	}

	e.session = s
	applog.Infof("Engine: session started (%.1f Hz, amp %.2f, %s)", frequency, amplitude, wave)
	return nil
}

// SetFrequency applies a new frequency to the live session. No-op while Idle.
func (e *Engine) SetFrequency(frequency float64) {
	e.mu.Lock()
	s := e.session
	e.mu.Unlock()
	if s != nil {
		s.osc.SetFrequency(freqmap.ClampFrequency(frequency))
	}
}

// SetAmplitude applies a new amplitude to the live session. No-op while Idle.
func (e *Engine) SetAmplitude(amplitude float64) {
	e.mu.Lock()
	s := e.session
	e.mu.Unlock()
	if s != nil {
		s.setAmplitude(ClampAmplitude(amplitude))
	}
}

// SetWaveform applies a new waveform to the live session. No-op while Idle.
func (e *Engine) SetWaveform(wave Waveform) {
	e.mu.Lock()
	s := e.session
	e.mu.Unlock()
	if s != nil {
		s.osc.SetWaveform(wave)
	}
}

// ReadMagnitudes returns the most recent magnitude snapshot, or nil while
// Idle. The snapshot is a copy; one frame of staleness against a concurrent
// parameter update is acceptable.
func (e *Engine) ReadMagnitudes() []byte {
	e.mu.Lock()
	s := e.session
	e.mu.Unlock()
	if s == nil {
		return nil
	}
	return s.analyser.Snapshot()
}

// Stop releases the session resources and returns to Idle. Idempotent.
func (e *Engine) Stop() {
	e.mu.Lock()
	s := e.session
	e.session = nil
	e.mu.Unlock()

	if s == nil {
		return
	}
	if err := s.output.Close(); err != nil {
		applog.Errorf("Engine: error closing output: %v", err)
	}
	applog.Infof("Engine: session stopped")
}

// Close is the forced teardown for owner shutdown, equivalent to Stop.
// No session outlives its owner.
func (e *Engine) Close() error {
	e.Stop()
	return nil
}
