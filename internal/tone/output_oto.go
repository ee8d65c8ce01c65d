// SPDX-License-Identifier: MIT
package tone

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"github.com/ebitengine/oto/v3"
)

// oto allows a single context per process; reuse it across sessions.
var (
	otoOnce sync.Once
	otoCtx  *oto.Context
	otoErr  error
)

func otoContext(sampleRate int) (*oto.Context, error) {
	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: 1,
			Format:       oto.FormatFloat32LE,
		}
		ctx, ready, err := oto.NewContext(op)
		if err != nil {
			otoErr = err
			return
		}
		<-ready
		otoCtx = ctx
	})
	return otoCtx, otoErr
}

// OtoOutput is the fallback output backend built on oto v3. The player pulls
// samples through the io.Reader interface; Read renders float32 blocks and
// packs them little-endian into the byte stream oto expects.
type OtoOutput struct {
	sampleRate float64
	render     RenderFunc
	player     *oto.Player
	buf        []float32

	mu sync.Mutex
}

// NewOtoOutput prepares an oto-backed output. The shared context is created
// lazily on the first session.
func NewOtoOutput(sampleRate float64, blockSize int) *OtoOutput {
	return &OtoOutput{
		sampleRate: sampleRate,
		buf:        make([]float32, blockSize),
	}
}

func (o *OtoOutput) Start(render RenderFunc) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.player != nil {
		return nil
	}

	ctx, err := otoContext(int(o.sampleRate))
	if err != nil {
		return fmt.Errorf("failed to create oto context: %w", err)
	}

	o.render = render
	o.player = ctx.NewPlayer(o)
	o.player.Play()
	return nil
}

// Read implements io.Reader for the oto player. Each float32 sample occupies
// four bytes of p.
func (o *OtoOutput) Read(p []byte) (int, error) {
	render := o.render
	if render == nil {
		for i := range p {
			p[i] = 0
		}
		return len(p), nil
	}

	numSamples := len(p) / 4
	if len(o.buf) < numSamples {
		o.buf = make([]float32, numSamples)
	}
	samples := o.buf[:numSamples]
	render(samples)

	for i, s := range samples {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(s))
	}
	return numSamples * 4, nil
}

func (o *OtoOutput) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.player == nil {
		return nil
	}
	player := o.player
	o.player = nil
	o.render = nil

	if err := player.Close(); err != nil {
		return fmt.Errorf("failed to close oto player: %w", err)
	}
	return nil
}

var _ Output = (*OtoOutput)(nil)
