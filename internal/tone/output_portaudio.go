// SPDX-License-Identifier: MIT
package tone

import (
	"fmt"

	"github.com/gordonklaus/portaudio"

	applog "tonelab/internal/log"
)

// Initialize sets up the PortAudio subsystem. Must be called once before any
// portaudio-backed session is started and paired with Terminate.
func Initialize() error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize PortAudio: %w", err)
	}
	return nil
}

// Terminate shuts down the PortAudio subsystem.
func Terminate() error {
	if err := portaudio.Terminate(); err != nil {
		return fmt.Errorf("failed to terminate PortAudio: %w", err)
	}
	return nil
}

// PortAudioOutput drives a mono portaudio output stream. The stream callback
// delegates to the session render function.
type PortAudioOutput struct {
	device     *portaudio.DeviceInfo
	sampleRate float64
	blockSize  int
	lowLatency bool
	stream     *portaudio.Stream
}

// NewPortAudioOutput resolves the output device and prepares a backend.
// deviceID -1 selects the system default output device. The stream is not
// opened until Start.
func NewPortAudioOutput(deviceID int, sampleRate float64, blockSize int, lowLatency bool) (*PortAudioOutput, error) {
	device, err := OutputDevice(deviceID)
	if err != nil {
		return nil, err
	}
	return &PortAudioOutput{
		device:     device,
		sampleRate: sampleRate,
		blockSize:  blockSize,
		lowLatency: lowLatency,
	}, nil
}

func (o *PortAudioOutput) Start(render RenderFunc) error {
	latency := o.device.DefaultHighOutputLatency
	if o.lowLatency {
		latency = o.device.DefaultLowOutputLatency
	}

	params := portaudio.StreamParameters{
		Output: portaudio.StreamDeviceParameters{
			Device:   o.device,
			Channels: 1,
			Latency:  latency,
		},
		FramesPerBuffer: o.blockSize,
		SampleRate:      o.sampleRate,
	}

	stream, err := portaudio.OpenStream(params, func(out []float32) {
		render(out)
	})
	if err != nil {
		return fmt.Errorf("failed to open output stream: %w", err)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		return fmt.Errorf("failed to start output stream: %w", err)
	}

	o.stream = stream
	applog.Debugf("PortAudio: output stream started (%s, %.0f Hz, %d frames)",
		o.device.Name, o.sampleRate, o.blockSize)
	return nil
}

func (o *PortAudioOutput) Close() error {
	if o.stream == nil {
		return nil
	}
	stream := o.stream
	o.stream = nil

	if err := stream.Stop(); err != nil {
		stream.Close()
		return fmt.Errorf("failed to stop output stream: %w", err)
	}
	if err := stream.Close(); err != nil {
		return fmt.Errorf("failed to close output stream: %w", err)
	}
	return nil
}

var _ Output = (*PortAudioOutput)(nil)
