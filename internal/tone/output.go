// SPDX-License-Identifier: MIT
package tone

// RenderFunc fills a block of mono float32 samples. It is invoked from the
// output backend's real-time context and must not block or allocate.
type RenderFunc func(out []float32)

// Output is one audio output backend. Start begins pulling blocks through
// render; Close stops the stream and releases the device. Close must be
// idempotent.
type Output interface {
	Start(render RenderFunc) error
	Close() error
}

// OutputFactory allocates an output backend for a session. The engine calls
// it on Start and owns the returned Output for the session's lifetime.
type OutputFactory func(sampleRate float64, blockSize int) (Output, error)

// NullOutput is a silent backend for tests and the "none" backend setting.
// Start renders one block eagerly so analysis data is available immediately;
// Pump renders further blocks on demand, standing in for the device clock.
type NullOutput struct {
	render RenderFunc
	buf    []float32
	closed bool
}

// NewNullOutput creates a silent output with the given block size.
func NewNullOutput(blockSize int) *NullOutput {
	return &NullOutput{buf: make([]float32, blockSize)}
}

func (n *NullOutput) Start(render RenderFunc) error {
	n.render = render
	render(n.buf)
	return nil
}

// Pump renders blocks additional blocks, discarding the samples.
func (n *NullOutput) Pump(blocks int) {
	if n.render == nil || n.closed {
		return
	}
	for range blocks {
		n.render(n.buf)
	}
}

func (n *NullOutput) Close() error {
	n.closed = true
	n.render = nil
	return nil
}

var _ Output = (*NullOutput)(nil)
