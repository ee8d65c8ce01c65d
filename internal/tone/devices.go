// SPDX-License-Identifier: MIT
package tone

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// OutputDevice resolves the audio output device for the given ID.
// -1 selects the system default output device.
func OutputDevice(deviceID int) (*portaudio.DeviceInfo, error) {
	if deviceID == -1 {
		device, err := portaudio.DefaultOutputDevice()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve default output device: %w", err)
		}
		return device, nil
	}

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, err
	}
	if deviceID < 0 || deviceID >= len(devices) {
		return nil, fmt.Errorf("invalid device ID: %d", deviceID)
	}
	device := devices[deviceID]
	if device.MaxOutputChannels < 1 {
		return nil, fmt.Errorf("device %d (%s) has no output channels", deviceID, device.Name)
	}
	return device, nil
}

// ListOutputDevices prints every device that can play audio, with its ID,
// channel count, default sample rate, and latency range.
func ListOutputDevices() error {
	devices, err := portaudio.Devices()
	if err != nil {
		return err
	}

	fmt.Printf("\nAvailable Audio Output Devices\n\n")

	for i, device := range devices {
		if device.MaxOutputChannels < 1 {
			continue
		}
		fmt.Printf("[%d] %s\n", i, device.Name)
		fmt.Printf("    Output channels: %d\n", device.MaxOutputChannels)
		fmt.Printf("    Default sample rate: %.0f Hz\n", device.DefaultSampleRate)
		fmt.Printf("    Latency: Low=%.2fms, High=%.2fms\n",
			device.DefaultLowOutputLatency.Seconds()*1000,
			device.DefaultHighOutputLatency.Seconds()*1000)
		fmt.Println()
	}

	return nil
}
