// SPDX-License-Identifier: MIT
package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"tonelab/internal/config"
	"tonelab/pkg/build"
)

// ParseArgs parses the command line into a configuration. File values load
// first, flags override them. One-off commands ("list", "note") are
// recorded in the config for main to dispatch.
func ParseArgs() (*config.Config, error) {
	buildInfo := build.GetFlags()

	var configPath string
	options := config.NewConfig()

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name,
		Short:         "Single-tone generator with live spectrum and response-curve visuals",
		Version:       buildInfo.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(configPath)
			if err != nil {
				return err
			}
			merged := *loaded
			merged.Headless = options.Headless
			applyFlagOverrides(cmd, options, &merged)
			*options = merged
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
	}

	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List available audio output devices",
		Run: func(cmd *cobra.Command, args []string) {
			options.Command = "list"
		},
	}
	rootCmd.AddCommand(listCmd)

	noteCmd := &cobra.Command{
		Use:   "note <frequency>",
		Short: "Print the nearest note label for a frequency in Hz",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := strconv.ParseFloat(args[0], 64); err != nil {
				return fmt.Errorf("invalid frequency %q: %w", args[0], err)
			}
			options.Command = "note"
			options.NoteArg = args[0]
			return nil
		},
	}
	rootCmd.AddCommand(noteCmd)

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to YAML config file")

	// Tone parameters
	rootCmd.PersistentFlags().Float64VarP(&options.Tone.Frequency, "frequency", "f", config.DefaultFrequency,
		"Initial tone frequency in Hz")
	rootCmd.PersistentFlags().Float64VarP(&options.Tone.Amplitude, "amplitude", "a", config.DefaultAmplitude,
		"Tone amplitude (0.01-0.20)")
	rootCmd.PersistentFlags().StringVarP(&options.Tone.Waveform, "waveform", "w", config.DefaultWaveform,
		"Waveform: sine, square, triangle, sawtooth")

	// Audio device configuration
	rootCmd.PersistentFlags().IntVarP(&options.Audio.OutputDevice, "device", "d", config.DefaultDeviceID,
		"Output device ID, use 'list' to see available devices")
	rootCmd.PersistentFlags().Float64VarP(&options.Audio.SampleRate, "sample-rate", "s", config.DefaultSampleRate,
		"Sample rate in Hertz (Hz)")
	rootCmd.PersistentFlags().StringVar(&options.Audio.Backend, "backend", config.DefaultBackend,
		"Audio output backend: portaudio, oto, none")
	rootCmd.PersistentFlags().BoolVarP(&options.Audio.LowLatency, "low-latency", "l", false,
		"Use low latency mode for the output stream")

	// Run mode
	rootCmd.PersistentFlags().BoolVar(&options.Headless, "headless", false,
		"Run without a window, playing the tone and publishing snapshots")
	rootCmd.PersistentFlags().BoolVarP(&options.Debug, "verbose", "v", false,
		"Show verbose output")

	rootCmd.SetArgs(os.Args[1:])
	if err := rootCmd.Execute(); err != nil {
		return nil, err
	}

	return options, nil
}

// applyFlagOverrides copies explicitly-set flag values over the file-loaded
// configuration, so the precedence is defaults < file < env < flags.
func applyFlagOverrides(cmd *cobra.Command, flags, merged *config.Config) {
	set := cmd.Root().PersistentFlags().Changed
	if set("frequency") {
		merged.Tone.Frequency = flags.Tone.Frequency
	}
	if set("amplitude") {
		merged.Tone.Amplitude = flags.Tone.Amplitude
	}
	if set("waveform") {
		merged.Tone.Waveform = flags.Tone.Waveform
	}
	if set("device") {
		merged.Audio.OutputDevice = flags.Audio.OutputDevice
	}
	if set("sample-rate") {
		merged.Audio.SampleRate = flags.Audio.SampleRate
	}
	if set("backend") {
		merged.Audio.Backend = flags.Audio.Backend
	}
	if set("low-latency") {
		merged.Audio.LowLatency = flags.Audio.LowLatency
	}
	if set("verbose") {
		merged.Debug = flags.Debug
	}
}
