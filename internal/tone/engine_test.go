package tone

import (
	"errors"
	"testing"

	"tonelab/internal/config"
)

// testFactory counts allocations and hands out NullOutputs so tests can pump
// the render callback like a device clock.
type testFactory struct {
	created int
	last    *NullOutput
}

func (f *testFactory) new(sampleRate float64, blockSize int) (Output, error) {
	f.created++
	f.last = NewNullOutput(blockSize)
	return f.last, nil
}

func newTestEngine(t *testing.T) (*Engine, *testFactory) {
	t.Helper()
	cfg := config.NewConfig()
	cfg.Audio.Backend = "none"
	f := &testFactory{}
	return NewEngine(cfg, f.new), f
}

func TestStartIsIdempotent(t *testing.T) {
	e, f := newTestEngine(t)
	defer e.Close()

	if err := e.Start(1000, 0.1, Sine); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := e.Start(2000, 0.2, Square); err != nil {
		t.Fatalf("second Start: %v", err)
	}
	if f.created != 1 {
		t.Errorf("outputs created = %d, want exactly one session", f.created)
	}
	if !e.Running() {
		t.Error("engine should be Running")
	}
}

func TestStopIsIdempotent(t *testing.T) {
	e, _ := newTestEngine(t)

	e.Stop() // Stop while Idle is a no-op.
	if e.Running() {
		t.Fatal("engine should be Idle")
	}

	if err := e.Start(440, 0.1, Sine); err != nil {
		t.Fatalf("Start: %v", err)
	}
	e.Stop()
	e.Stop()
	if e.Running() {
		t.Error("engine should be Idle after Stop")
	}
}

func TestReadMagnitudesWhileIdle(t *testing.T) {
	e, _ := newTestEngine(t)
	if snap := e.ReadMagnitudes(); snap != nil {
		t.Errorf("ReadMagnitudes while Idle = %d bytes, want nil", len(snap))
	}
}

func TestParameterUpdatesWhileIdleAreIgnored(t *testing.T) {
	e, _ := newTestEngine(t)
	// None of these may panic or create a session.
	e.SetFrequency(880)
	e.SetAmplitude(0.15)
	e.SetWaveform(Triangle)
	if e.Running() {
		t.Error("parameter updates must not start a session")
	}
}

func TestEndToEnd(t *testing.T) {
	e, f := newTestEngine(t)

	if err := e.Start(1000, 0.1, Sine); err != nil {
		t.Fatalf("Start: %v", err)
	}
	// Let the fake device pull enough blocks to fill the analysis window.
	f.last.Pump(4096 / 256)

	snap := e.ReadMagnitudes()
	if len(snap) == 0 {
		t.Fatal("ReadMagnitudes returned empty snapshot while Running")
	}
	var nonZero bool
	for _, v := range snap {
		if v != 0 {
			nonZero = true
			break
		}
	}
	if !nonZero {
		t.Error("snapshot has no energy for an audible tone")
	}

	e.Stop()
	if snap := e.ReadMagnitudes(); snap != nil {
		t.Errorf("ReadMagnitudes after Stop = %d bytes, want nil", len(snap))
	}
}

func TestLiveParameterUpdates(t *testing.T) {
	e, f := newTestEngine(t)
	defer e.Close()

	if err := e.Start(440, 0.1, Sine); err != nil {
		t.Fatalf("Start: %v", err)
	}

	e.SetFrequency(880)
	e.SetWaveform(Square)
	e.SetAmplitude(0.05)

	s := e.session
	if got := s.osc.Frequency(); got != 880 {
		t.Errorf("session frequency = %v, want 880", got)
	}
	if got := s.osc.Waveform(); got != Square {
		t.Errorf("session waveform = %v, want Square", got)
	}
	if got := s.amplitude(); got != 0.05 {
		t.Errorf("session amplitude = %v, want 0.05", got)
	}
	f.last.Pump(1)
}

func TestDefensiveClamping(t *testing.T) {
	e, _ := newTestEngine(t)
	defer e.Close()

	if err := e.Start(5, 3.0, Sine); err != nil {
		t.Fatalf("Start: %v", err)
	}
	s := e.session
	if got := s.osc.Frequency(); got != 10 {
		t.Errorf("frequency = %v, want clamp to 10", got)
	}
	if got := s.amplitude(); got != MaxAmplitude {
		t.Errorf("amplitude = %v, want clamp to %v", got, MaxAmplitude)
	}

	e.SetFrequency(1e9)
	if got := s.osc.Frequency(); got != 25000 {
		t.Errorf("frequency = %v, want clamp to 25000", got)
	}
	e.SetAmplitude(0)
	if got := s.amplitude(); got != MinAmplitude {
		t.Errorf("amplitude = %v, want clamp to %v", got, MinAmplitude)
	}
}

func TestStartFailurePropagates(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Audio.Backend = "none"
	wantErr := errors.New("device busy")
	e := NewEngine(cfg, func(sampleRate float64, blockSize int) (Output, error) {
		return nil, wantErr
	})

	err := e.Start(440, 0.1, Sine)
	if err == nil {
		t.Fatal("expected error from denied output acquisition")
	}
	if !errors.Is(err, wantErr) {
		t.Errorf("error = %v, want wrapped %v", err, wantErr)
	}
	if e.Running() {
		t.Error("engine must stay Idle after failed Start")
	}
}

func TestClampAmplitude(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{0, MinAmplitude},
		{0.01, 0.01},
		{0.1, 0.1},
		{0.2, 0.2},
		{0.5, MaxAmplitude},
		{-1, MinAmplitude},
	}
	for _, c := range cases {
		if got := ClampAmplitude(c.in); got != c.want {
			t.Errorf("ClampAmplitude(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}
