package udp

import (
	"bytes"
	"encoding/binary"
	"net"
	"testing"
	"time"
)

type stubSource struct {
	snapshot []byte
}

func (s *stubSource) ReadMagnitudes() []byte { return s.snapshot }

func TestEncodePacketRoundTrip(t *testing.T) {
	mags := []byte{0, 1, 127, 255, 42}
	var buf bytes.Buffer
	ts := time.Now().UnixNano()

	if err := encodePacket(&buf, 7, ts, mags); err != nil {
		t.Fatalf("encodePacket: %v", err)
	}

	wantLen := 4 + 8 + 2 + len(mags)
	if buf.Len() != wantLen {
		t.Fatalf("packet length = %d, want %d", buf.Len(), wantLen)
	}

	r := bytes.NewReader(buf.Bytes())
	var seq uint32
	var gotTS int64
	var count uint16
	if err := binary.Read(r, binary.BigEndian, &seq); err != nil {
		t.Fatal(err)
	}
	if err := binary.Read(r, binary.BigEndian, &gotTS); err != nil {
		t.Fatal(err)
	}
	if err := binary.Read(r, binary.BigEndian, &count); err != nil {
		t.Fatal(err)
	}
	if seq != 7 || gotTS != ts || int(count) != len(mags) {
		t.Errorf("header = (%d, %d, %d), want (7, %d, %d)", seq, gotTS, count, ts, len(mags))
	}

	payload := make([]byte, count)
	if _, err := r.Read(payload); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(payload, mags) {
		t.Errorf("payload = %v, want %v", payload, mags)
	}
}

func TestEncodePacketReusesBuffer(t *testing.T) {
	var buf bytes.Buffer
	if err := encodePacket(&buf, 1, 0, []byte{9, 9, 9, 9, 9, 9}); err != nil {
		t.Fatal(err)
	}
	if err := encodePacket(&buf, 2, 0, []byte{1}); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 4+8+2+1 {
		t.Errorf("buffer not reset between packets: %d bytes", buf.Len())
	}
}

func TestPublisherValidation(t *testing.T) {
	src := &stubSource{}
	if _, err := NewPublisher(time.Millisecond, nil, src); err == nil {
		t.Error("expected error for nil sender")
	}
	if _, err := NewPublisher(time.Millisecond, &Sender{}, nil); err == nil {
		t.Error("expected error for nil source")
	}
	p, err := NewPublisher(-1, &Sender{}, src)
	if err != nil {
		t.Fatalf("NewPublisher: %v", err)
	}
	if p.interval != 33*time.Millisecond {
		t.Errorf("interval = %v, want 33ms default", p.interval)
	}
}

func TestPublisherSendsToListener(t *testing.T) {
	// Real loopback listener so the full publisher path is exercised.
	addr, packets := startListener(t)

	sender, err := NewSender(addr)
	if err != nil {
		t.Fatalf("NewSender: %v", err)
	}
	defer sender.Close()

	src := &stubSource{snapshot: []byte{10, 20, 30}}
	p, err := NewPublisher(time.Millisecond, sender, src)
	if err != nil {
		t.Fatalf("NewPublisher: %v", err)
	}

	p.Start()
	defer p.Stop()

	select {
	case pkt := <-packets:
		if len(pkt) != 4+8+2+3 {
			t.Fatalf("packet length = %d, want %d", len(pkt), 4+8+2+3)
		}
		count := binary.BigEndian.Uint16(pkt[12:14])
		if count != 3 {
			t.Errorf("count = %d, want 3", count)
		}
		if !bytes.Equal(pkt[14:], []byte{10, 20, 30}) {
			t.Errorf("payload = %v", pkt[14:])
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no packet received")
	}
}

func TestPublisherSkipsEmptySnapshots(t *testing.T) {
	addr, packets := startListener(t)

	sender, err := NewSender(addr)
	if err != nil {
		t.Fatalf("NewSender: %v", err)
	}
	defer sender.Close()

	p, err := NewPublisher(time.Millisecond, sender, &stubSource{snapshot: nil})
	if err != nil {
		t.Fatalf("NewPublisher: %v", err)
	}
	p.Start()
	defer p.Stop()

	select {
	case <-packets:
		t.Fatal("received packet for empty snapshot")
	case <-time.After(50 * time.Millisecond):
	}
}

// startListener binds an ephemeral loopback UDP port and funnels received
// packets into a channel.
func startListener(t *testing.T) (string, chan []byte) {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 0})
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	packets := make(chan []byte, 16)
	go func() {
		buf := make([]byte, 65536)
		for {
			n, _, err := conn.ReadFromUDP(buf)
			if err != nil {
				return
			}
			pkt := make([]byte, n)
			copy(pkt, buf[:n])
			select {
			case packets <- pkt:
			default:
			}
		}
	}()
	return conn.LocalAddr().String(), packets
}
