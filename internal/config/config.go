// SPDX-License-Identifier: MIT
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"tonelab/pkg/bitint"
)

// Default values and domain limits for the tone generator.
const (
	DefaultSampleRate = 48000.0
	DefaultBlockSize  = 256
	DefaultBackend    = "portaudio"
	DefaultDeviceID   = -1 // System default output device.

	DefaultFrequency  = 440.0
	DefaultAmplitude  = 0.1
	DefaultWaveform   = "sine"
	DefaultWindowSize = 4096
	DefaultSmoothing  = 0.82

	DefaultCanvasWidth  = 640
	DefaultCanvasHeight = 240
	DefaultPixelRatio   = 1.0
	DefaultBuckets      = 72
	DefaultFrameRate    = 60

	MinSampleRate = 8000.0
	MaxSampleRate = 192000.0
	MaxWindowSize = 32768
)

// Config is the application configuration, loaded from YAML with
// environment overrides applied on top.
type Config struct {
	Debug    bool   `yaml:"debug"`
	LogLevel string `yaml:"log_level"`

	Audio     AudioConfig     `yaml:"audio"`
	Tone      ToneConfig      `yaml:"tone"`
	Render    RenderConfig    `yaml:"render"`
	Transport TransportConfig `yaml:"transport"`

	// Filled by the CLI, not the file.
	Command  string `yaml:"-"` // One-off command ("list", "note") instead of running.
	NoteArg  string `yaml:"-"` // Argument of the "note" command.
	Headless bool   `yaml:"-"` // Run without a window, publishing snapshots only.
}

// AudioConfig holds output device and callback settings.
type AudioConfig struct {
	OutputDevice int     `yaml:"output_device"` // PortAudio device index, -1 for default.
	SampleRate   float64 `yaml:"sample_rate"`
	BlockSize    int     `yaml:"block_size"` // Frames per output callback.
	Backend      string  `yaml:"backend"`    // "portaudio", "oto", or "none".
	LowLatency   bool    `yaml:"low_latency"`
}

// ToneConfig holds the initial tone parameters and the analysis tap settings.
type ToneConfig struct {
	Frequency  float64 `yaml:"frequency"`
	Amplitude  float64 `yaml:"amplitude"`
	Waveform   string  `yaml:"waveform"`
	WindowSize int     `yaml:"window_size"` // FFT window, power of 2.
	Smoothing  float64 `yaml:"smoothing"`   // Inter-frame magnitude smoothing [0,1).
}

// RenderConfig holds visualization settings shared by both canvases.
type RenderConfig struct {
	Width      int     `yaml:"width"`
	Height     int     `yaml:"height"`
	PixelRatio float64 `yaml:"pixel_ratio"`
	Buckets    int     `yaml:"buckets"`    // Log-spaced spectrum buckets.
	FrameRate  int     `yaml:"frame_rate"` // Headless render loop cadence.
}

// TransportConfig holds settings for publishing magnitude snapshots.
type TransportConfig struct {
	WebSocketEnabled bool          `yaml:"websocket_enabled"`
	WebSocketAddr    string        `yaml:"websocket_addr"`
	UDPEnabled       bool          `yaml:"udp_enabled"`
	UDPTargetAddress string        `yaml:"udp_target_address"`
	UDPSendInterval  time.Duration `yaml:"udp_send_interval"`
}

// NewConfig returns a Config populated with built-in defaults.
func NewConfig() *Config {
	return &Config{
		Debug:    false,
		LogLevel: "info",
		Audio: AudioConfig{
			OutputDevice: DefaultDeviceID,
			SampleRate:   DefaultSampleRate,
			BlockSize:    DefaultBlockSize,
			Backend:      DefaultBackend,
			LowLatency:   false,
		},
		Tone: ToneConfig{
			Frequency:  DefaultFrequency,
			Amplitude:  DefaultAmplitude,
			Waveform:   DefaultWaveform,
			WindowSize: DefaultWindowSize,
			Smoothing:  DefaultSmoothing,
		},
		Render: RenderConfig{
			Width:      DefaultCanvasWidth,
			Height:     DefaultCanvasHeight,
			PixelRatio: DefaultPixelRatio,
			Buckets:    DefaultBuckets,
			FrameRate:  DefaultFrameRate,
		},
		Transport: TransportConfig{
			WebSocketEnabled: false,
			WebSocketAddr:    ":8080",
			UDPEnabled:       false,
			UDPTargetAddress: "127.0.0.1:9090",
			UDPSendInterval:  33 * time.Millisecond,
		},
	}
}

// Load reads configuration from a YAML file. An empty path searches the
// default locations; if no file is found the built-in defaults are used.
// Environment overrides are applied after the file, then the result is
// validated.
func Load(path string) (*Config, error) {
	cfg := NewConfig()

	if path == "" {
		for _, candidate := range []string{"tonelab.yaml", "config.yaml"} {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks hard limits and normalizes values that have a defined
// in-domain fallback.
func (c *Config) Validate() error {
	if c.Audio.SampleRate < MinSampleRate || c.Audio.SampleRate > MaxSampleRate {
		return fmt.Errorf("audio.sample_rate %.0f outside [%.0f, %.0f]",
			c.Audio.SampleRate, MinSampleRate, MaxSampleRate)
	}
	if c.Audio.BlockSize <= 0 {
		return fmt.Errorf("audio.block_size must be positive, got %d", c.Audio.BlockSize)
	}
	switch c.Audio.Backend {
	case "portaudio", "oto", "none":
	default:
		return fmt.Errorf("audio.backend %q not one of portaudio, oto, none", c.Audio.Backend)
	}

	if !bitint.IsPowerOfTwo(c.Tone.WindowSize) || c.Tone.WindowSize > MaxWindowSize {
		return fmt.Errorf("tone.window_size must be a power of 2 up to %d, got %d",
			MaxWindowSize, c.Tone.WindowSize)
	}
	if c.Tone.Smoothing < 0 || c.Tone.Smoothing >= 1 {
		return fmt.Errorf("tone.smoothing %v outside [0,1)", c.Tone.Smoothing)
	}

	if c.Render.Width < 0 || c.Render.Height < 0 {
		return fmt.Errorf("render dimensions must be non-negative, got %dx%d",
			c.Render.Width, c.Render.Height)
	}
	if c.Render.PixelRatio <= 0 {
		c.Render.PixelRatio = DefaultPixelRatio
	}
	if c.Render.Buckets <= 0 {
		c.Render.Buckets = DefaultBuckets
	}
	if c.Render.FrameRate <= 0 {
		c.Render.FrameRate = DefaultFrameRate
	}

	if c.Transport.UDPEnabled && c.Transport.UDPSendInterval <= 0 {
		c.Transport.UDPSendInterval = 33 * time.Millisecond
	}
	return nil
}

// applyEnvOverrides applies TONELAB_* environment variables on top of the
// loaded configuration.
func (c *Config) applyEnvOverrides() {
	if val, ok := os.LookupEnv("TONELAB_DEBUG"); ok {
		if b, err := strconv.ParseBool(val); err == nil {
			c.Debug = b
		}
	}
	if val, ok := os.LookupEnv("TONELAB_LOG_LEVEL"); ok {
		c.LogLevel = val
	}
	if val, ok := os.LookupEnv("TONELAB_WS_ENABLED"); ok {
		if b, err := strconv.ParseBool(val); err == nil {
			c.Transport.WebSocketEnabled = b
		}
	}
	if val, ok := os.LookupEnv("TONELAB_WS_ADDR"); ok {
		c.Transport.WebSocketAddr = val
	}
	if val, ok := os.LookupEnv("TONELAB_UDP_ENABLED"); ok {
		if b, err := strconv.ParseBool(val); err == nil {
			c.Transport.UDPEnabled = b
		}
	}
	if val, ok := os.LookupEnv("TONELAB_UDP_TARGET_ADDRESS"); ok {
		c.Transport.UDPTargetAddress = val
	}
	if val, ok := os.LookupEnv("TONELAB_UDP_SEND_INTERVAL"); ok {
		if dur, err := time.ParseDuration(val); err == nil {
			c.Transport.UDPSendInterval = dur
		}
	}
}
