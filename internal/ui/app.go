// SPDX-License-Identifier: MIT
/*
Package ui is the windowed frontend. It owns the authoritative control
state (frequency position, amplitude, waveform, playback state), applies
edits to the tone engine, and blits the two software rasters to the window
every display frame. Ebiten's draw cycle is the frame scheduler here: one
callback per repaint at the display refresh rate, cancelled automatically
when the window closes.

Controls:

	left/right  move the frequency control (fine with shift held)
	up/down     adjust amplitude
	W           cycle the waveform
	space       start / stop the tone
*/
package ui

import (
	"fmt"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"tonelab/internal/config"
	"tonelab/internal/freqmap"
	applog "tonelab/internal/log"
	"tonelab/internal/render"
	"tonelab/internal/tone"
	"tonelab/internal/transport"
)

const readoutHeight = 24

// App is the ebiten game driving the controller loop.
type App struct {
	cfg    *config.Config
	engine *tone.Engine

	spectrum  *render.SpectrumRenderer
	curve     *render.CurveRenderer
	specSurf  *render.Surface
	curveSurf *render.Surface
	specImg   *ebiten.Image
	curveImg  *ebiten.Image

	transports []transport.Transport

	// Authoritative control state.
	position  float64 // Control position in [0,100].
	amplitude float64
	waveform  tone.Waveform
	running   bool

	start time.Time
}

// NewApp builds the frontend around an engine. Transports, if any, receive
// a snapshot per frame (they rate limit internally).
func NewApp(cfg *config.Config, engine *tone.Engine, transports []transport.Transport) (*App, error) {
	wave, err := tone.ParseWaveform(cfg.Tone.Waveform)
	if err != nil {
		return nil, err
	}

	w, h := cfg.Render.Width, cfg.Render.Height
	specSurf := render.NewSurface(w, h, cfg.Render.PixelRatio)
	curveSurf := render.NewSurface(w, h, cfg.Render.PixelRatio)
	pw, ph := specSurf.PixelSize()

	return &App{
		cfg:        cfg,
		engine:     engine,
		spectrum:   render.NewSpectrumRenderer(cfg.Render.Buckets),
		curve:      render.NewCurveRenderer(),
		specSurf:   specSurf,
		curveSurf:  curveSurf,
		specImg:    ebiten.NewImage(pw, ph),
		curveImg:   ebiten.NewImage(pw, ph),
		transports: transports,
		position:   freqmap.ToPosition(cfg.Tone.Frequency),
		amplitude:  tone.ClampAmplitude(cfg.Tone.Amplitude),
		waveform:   wave,
		start:      time.Now(),
	}, nil
}

// Frequency returns the frequency currently selected by the control.
func (a *App) Frequency() float64 {
	return freqmap.ToFrequency(a.position)
}

// Update handles input and pushes parameter edits to the engine.
func (a *App) Update() error {
	a.handleInput()
	return nil
}

func (a *App) handleInput() {
	step := 0.25
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		step = 0.02
	}

	if ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		a.position = freqmap.ClampPosition(a.position + step)
		a.engine.SetFrequency(a.Frequency())
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		a.position = freqmap.ClampPosition(a.position - step)
		a.engine.SetFrequency(a.Frequency())
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		a.amplitude = tone.ClampAmplitude(a.amplitude + 0.001)
		a.engine.SetAmplitude(a.amplitude)
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		a.amplitude = tone.ClampAmplitude(a.amplitude - 0.001)
		a.engine.SetAmplitude(a.amplitude)
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyW) {
		a.waveform = (a.waveform + 1) % 4
		a.engine.SetWaveform(a.waveform)
	}

	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		if a.running {
			a.engine.Stop()
			a.running = false
		} else {
			if err := a.engine.Start(a.Frequency(), a.amplitude, a.waveform); err != nil {
				applog.Errorf("UI: failed to start tone: %v", err)
			} else {
				a.running = true
			}
		}
	}
}

// Draw renders both visualizations into their rasters and blits them.
func (a *App) Draw(screen *ebiten.Image) {
	freq := a.Frequency()
	elapsed := float64(time.Since(a.start).Milliseconds())

	snapshot := a.engine.ReadMagnitudes()
	a.spectrum.Render(a.specSurf, snapshot, freq, a.engine.Nyquist())
	a.curve.Render(a.curveSurf, freq, a.amplitude, a.running, elapsed)

	for _, t := range a.transports {
		if len(snapshot) > 0 {
			t.Send(snapshot)
		}
	}

	a.specImg.WritePixels(a.specSurf.Pixels())
	a.curveImg.WritePixels(a.curveSurf.Pixels())

	var op ebiten.DrawImageOptions
	op.GeoM.Translate(0, readoutHeight)
	screen.DrawImage(a.specImg, &op)
	op.GeoM.Reset()
	op.GeoM.Translate(0, float64(readoutHeight+a.cfg.Render.Height))
	screen.DrawImage(a.curveImg, &op)

	state := "idle"
	if a.running {
		state = "playing"
	}
	readout := fmt.Sprintf("%s  %s  |  amp %.3f  |  %s  |  %s  [space: start/stop, arrows: tune, W: wave]",
		freqmap.FormatFrequency(freq), freqmap.ToNoteLabel(freq), a.amplitude, a.waveform, state)
	ebitenutil.DebugPrintAt(screen, readout, 4, 4)
}

// Layout reports the fixed logical window size.
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return a.cfg.Render.Width, readoutHeight + 2*a.cfg.Render.Height
}

// Run opens the window and blocks until it closes. The engine session and
// transports are torn down before returning, so nothing outlives the owner.
func (a *App) Run() error {
	ebiten.SetWindowSize(a.cfg.Render.Width, readoutHeight+2*a.cfg.Render.Height)
	ebiten.SetWindowTitle("tonelab")
	ebiten.SetVsyncEnabled(true)

	err := ebiten.RunGame(a)

	a.engine.Close()
	for _, t := range a.transports {
		t.Close()
	}
	return err
}
