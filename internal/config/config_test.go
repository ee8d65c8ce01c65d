package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultsAreValid(t *testing.T) {
	cfg := NewConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default configuration invalid: %v", err)
	}
	if cfg.Tone.WindowSize != 4096 {
		t.Errorf("default window size = %d, want 4096", cfg.Tone.WindowSize)
	}
	if cfg.Tone.Smoothing != 0.82 {
		t.Errorf("default smoothing = %v, want 0.82", cfg.Tone.Smoothing)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tonelab.yaml")
	data := []byte(`
debug: true
audio:
  sample_rate: 44100
  backend: none
tone:
  frequency: 1000
  waveform: square
  window_size: 2048
transport:
  udp_enabled: true
  udp_target_address: "10.0.0.1:9999"
  udp_send_interval: 50ms
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Debug {
		t.Error("debug not loaded")
	}
	if cfg.Audio.SampleRate != 44100 {
		t.Errorf("sample rate = %v, want 44100", cfg.Audio.SampleRate)
	}
	if cfg.Tone.Waveform != "square" || cfg.Tone.WindowSize != 2048 {
		t.Errorf("tone section not loaded: %+v", cfg.Tone)
	}
	if cfg.Tone.Amplitude != DefaultAmplitude {
		t.Errorf("unset amplitude should keep default, got %v", cfg.Tone.Amplitude)
	}
	if cfg.Transport.UDPSendInterval != 50*time.Millisecond {
		t.Errorf("udp interval = %v, want 50ms", cfg.Transport.UDPSendInterval)
	}
}

func TestLoadRejectsBadWindowSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte("tone:\n  window_size: 1000\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for non power-of-two window size")
	}
}

func TestValidateRejectsBadBackend(t *testing.T) {
	cfg := NewConfig()
	cfg.Audio.Backend = "jack"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TONELAB_DEBUG", "true")
	t.Setenv("TONELAB_UDP_ENABLED", "1")
	t.Setenv("TONELAB_UDP_TARGET_ADDRESS", "192.168.1.5:7000")
	t.Setenv("TONELAB_UDP_SEND_INTERVAL", "25ms")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected error for missing explicit path")
	}

	cfg, err = Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Debug || !cfg.Transport.UDPEnabled {
		t.Error("env bool overrides not applied")
	}
	if cfg.Transport.UDPTargetAddress != "192.168.1.5:7000" {
		t.Errorf("udp target = %q", cfg.Transport.UDPTargetAddress)
	}
	if cfg.Transport.UDPSendInterval != 25*time.Millisecond {
		t.Errorf("udp interval = %v, want 25ms", cfg.Transport.UDPSendInterval)
	}
}

func TestValidateNormalizesRenderFallbacks(t *testing.T) {
	cfg := NewConfig()
	cfg.Render.PixelRatio = 0
	cfg.Render.Buckets = -1
	cfg.Render.FrameRate = 0
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Render.PixelRatio != DefaultPixelRatio {
		t.Errorf("pixel ratio = %v, want normalized default", cfg.Render.PixelRatio)
	}
	if cfg.Render.Buckets != DefaultBuckets || cfg.Render.FrameRate != DefaultFrameRate {
		t.Errorf("buckets/frame rate not normalized: %+v", cfg.Render)
	}
}
