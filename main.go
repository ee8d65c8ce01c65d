// SPDX-License-Identifier: MIT
package main

import (
	"fmt"
	stdlog "log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"tonelab/cmd"
	"tonelab/internal/config"
	"tonelab/internal/freqmap"
	applog "tonelab/internal/log"
	"tonelab/internal/render"
	"tonelab/internal/tone"
	"tonelab/internal/transport"
	"tonelab/internal/transport/udp"
	"tonelab/internal/ui"
	"tonelab/pkg/build"
)

// main runs in three phases:
//
//  1. Startup (cold path): build info, CLI/config parsing, one-off commands.
//  2. Concurrent (hot path): tone engine, renderers, transports, frontend.
//  3. Shutdown (cold path): ordered teardown so no audio session or
//     per-frame callback outlives the process owner.
func main() {
	// ==================== STARTUP PHASE ====================

	build.Initialize()

	cfg, err := cmd.ParseArgs()
	if err != nil {
		stdlog.Fatal(err)
	}

	if level, ok := applog.ParseLevel(cfg.LogLevel); ok {
		applog.SetLevel(level)
	}
	if cfg.Debug {
		applog.SetLevel(applog.LevelDebug)
	}

	// One-off commands that never start the engine.
	switch cfg.Command {
	case "note":
		freq, _ := strconv.ParseFloat(cfg.NoteArg, 64)
		freq = freqmap.ClampFrequency(freq)
		fmt.Printf("%s = %s\n", freqmap.FormatFrequency(freq), freqmap.ToNoteLabel(freq))
		return
	case "list":
		if err := tone.Initialize(); err != nil {
			stdlog.Fatal(err)
		}
		defer tone.Terminate()
		if err := tone.ListOutputDevices(); err != nil {
			stdlog.Fatal(err)
		}
		return
	}

	if cfg.Audio.Backend == "portaudio" {
		if err := tone.Initialize(); err != nil {
			stdlog.Fatal(err)
		}
		defer tone.Terminate()
	}

	// ==================== CONCURRENT PHASE ====================

	engine := tone.NewEngine(cfg, nil)

	var transports []transport.Transport
	if cfg.Transport.WebSocketEnabled {
		transports = append(transports,
			transport.NewWebSocketBroadcaster(cfg.Transport.WebSocketAddr, 0))
	}

	var publisher *udp.Publisher
	if cfg.Transport.UDPEnabled {
		sender, err := udp.NewSender(cfg.Transport.UDPTargetAddress)
		if err != nil {
			stdlog.Fatal(err)
		}
		publisher, err = udp.NewPublisher(cfg.Transport.UDPSendInterval, sender, engine)
		if err != nil {
			stdlog.Fatal(err)
		}
		publisher.Start()
		defer func() {
			publisher.Stop()
			sender.Close()
		}()
	}

	if cfg.Headless {
		runHeadless(cfg, engine, transports)
		return
	}

	app, err := ui.NewApp(cfg, engine, transports)
	if err != nil {
		stdlog.Fatal(err)
	}
	if err := app.Run(); err != nil {
		stdlog.Fatal(err)
	}
}

// runHeadless plays the configured tone without a window. The render loop
// still exercises both renderers into offscreen rasters each frame and
// feeds the transports, so remote visualizers see the same output the
// window would.
func runHeadless(cfg *config.Config, engine *tone.Engine, transports []transport.Transport) {
	wave, err := tone.ParseWaveform(cfg.Tone.Waveform)
	if err != nil {
		stdlog.Fatal(err)
	}
	if err := engine.Start(cfg.Tone.Frequency, cfg.Tone.Amplitude, wave); err != nil {
		stdlog.Fatal(err)
	}

	spectrum := render.NewSpectrumRenderer(cfg.Render.Buckets)
	curve := render.NewCurveRenderer()
	specSurf := render.NewSurface(cfg.Render.Width, cfg.Render.Height, cfg.Render.PixelRatio)
	curveSurf := render.NewSurface(cfg.Render.Width, cfg.Render.Height, cfg.Render.PixelRatio)

	frequency := freqmap.ClampFrequency(cfg.Tone.Frequency)
	loop := render.NewLoop(time.Second/time.Duration(cfg.Render.FrameRate), func(elapsed time.Duration) {
		snapshot := engine.ReadMagnitudes()
		spectrum.Render(specSurf, snapshot, frequency, engine.Nyquist())
		curve.Render(curveSurf, frequency, cfg.Tone.Amplitude, true, float64(elapsed.Milliseconds()))
		if len(snapshot) > 0 {
			for _, t := range transports {
				t.Send(snapshot)
			}
		}
	})
	loop.Start()

	applog.Infof("Playing %s (%s) until interrupted",
		freqmap.FormatFrequency(frequency), freqmap.ToNoteLabel(frequency))

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	<-done

	// ==================== SHUTDOWN PHASE ====================

	loop.Stop()
	for _, t := range transports {
		t.Close()
	}
	engine.Close()
}
