// SPDX-License-Identifier: MIT
package udp

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	applog "tonelab/internal/log"
	"tonelab/internal/transport"
)

/*
Packet layout (BigEndian):

	| Sequence uint32 | Timestamp int64 | Count uint16 | Magnitudes [Count]byte |

Timestamp is nanoseconds since epoch. Magnitudes are the raw 0-255 byte
snapshot, one byte per analysis bin.
*/

// Publisher periodically reads the latest magnitude snapshot from a source
// and sends it through a Sender. Empty snapshots (engine Idle) produce no
// packet. Start/Stop manage the publisher goroutine.
type Publisher struct {
	sender   *Sender
	source   transport.SnapshotSource
	interval time.Duration

	mu       sync.Mutex
	ticker   *time.Ticker
	doneChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	sequence uint32
	packet   bytes.Buffer // Reused between packets.
}

// NewPublisher creates a publisher sending every interval. An interval <= 0
// defaults to 33ms (~30 Hz).
func NewPublisher(interval time.Duration, sender *Sender, source transport.SnapshotSource) (*Publisher, error) {
	if sender == nil {
		return nil, fmt.Errorf("udp publisher: sender cannot be nil")
	}
	if source == nil {
		return nil, fmt.Errorf("udp publisher: snapshot source cannot be nil")
	}
	if interval <= 0 {
		interval = 33 * time.Millisecond
		applog.Warnf("UDP: invalid publish interval, defaulting to %s", interval)
	}
	return &Publisher{
		sender:   sender,
		source:   source,
		interval: interval,
	}, nil
}

// Start launches the publisher goroutine. A second Start while running is a
// no-op.
func (p *Publisher) Start() {
	p.mu.Lock()
	if p.ticker != nil {
		p.mu.Unlock()
		applog.Warnf("UDP: publisher Start called but already running")
		return
	}
	p.ticker = time.NewTicker(p.interval)
	p.doneChan = make(chan struct{})
	p.stopOnce = sync.Once{}

	ticker := p.ticker
	doneChan := p.doneChan
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		applog.Infof("UDP: publisher started (interval %s)", p.interval)
		for {
			select {
			case <-ticker.C:
				p.publishOnce()
			case <-doneChan:
				return
			}
		}
	}()
}

// Stop signals the goroutine and waits for it to exit. Idempotent.
func (p *Publisher) Stop() {
	p.mu.Lock()
	if p.ticker == nil {
		p.mu.Unlock()
		return
	}
	p.stopOnce.Do(func() {
		close(p.doneChan)
		p.ticker.Stop()
		p.ticker = nil
	})
	p.mu.Unlock()

	p.wg.Wait()
	applog.Infof("UDP: publisher stopped")
}

func (p *Publisher) publishOnce() {
	snapshot := p.source.ReadMagnitudes()
	if len(snapshot) == 0 {
		return // Idle; nothing to publish.
	}

	p.sequence++
	if err := encodePacket(&p.packet, p.sequence, time.Now().UnixNano(), snapshot); err != nil {
		applog.Errorf("UDP: error packing snapshot: %v", err)
		return
	}

	if err := p.sender.Send(p.packet.Bytes()); err != nil {
		applog.Debugf("UDP: send failed for packet %d: %v", p.sequence, err)
		return
	}
	applog.Debugf("UDP: sent packet %d (%d bytes)", p.sequence, p.packet.Len())
}

// encodePacket resets buf and writes one snapshot packet into it.
func encodePacket(buf *bytes.Buffer, seq uint32, timestamp int64, magnitudes []byte) error {
	buf.Reset()
	if err := binary.Write(buf, binary.BigEndian, seq); err != nil {
		return err
	}
	if err := binary.Write(buf, binary.BigEndian, timestamp); err != nil {
		return err
	}
	if err := binary.Write(buf, binary.BigEndian, uint16(len(magnitudes))); err != nil {
		return err
	}
	_, err := buf.Write(magnitudes)
	return err
}

// Close stops the publisher. Implements io.Closer for shutdown lists.
func (p *Publisher) Close() error {
	p.Stop()
	return nil
}
