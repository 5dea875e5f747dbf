package xbee

import (
	"bytes"
	"crypto/rand"
	"testing"
)

// feed pushes raw wire bytes into the device ring via the transport.
func feed(t *testing.T, d *Device, tr *chunkTransport, raw []byte) {
	t.Helper()
	tr.push(raw)
	for {
		n, err := d.FillBuffer()
		if err != nil {
			t.Fatalf("FillBuffer: %v", err)
		}
		if n == 0 {
			return
		}
	}
}

func newTestDevice(ringSize int) (*Device, *chunkTransport) {
	tr := &chunkTransport{}
	return New(tr, make([]byte, ringSize)), tr
}

func TestDecodeFrame_RoundTrip(t *testing.T) {
	d, tr := newTestDevice(DefaultRingSize)
	payload := []byte{0x08, 0x01, 0x41, 0x50}
	feed(t, d, tr, AppendFrame(nil, payload))
	out := make([]byte, MaxFrame)
	n := d.DecodeFrame(out)
	if n != len(payload) {
		t.Fatalf("decoded length %d, want %d", n, len(payload))
	}
	if !bytes.Equal(out[:n], payload) {
		t.Fatalf("payload mismatch\n got  % X\n want % X", out[:n], payload)
	}
	if d.recvSize != 0 {
		t.Fatalf("ring not drained: %d bytes left", d.recvSize)
	}
}

func TestDecodeFrame_RoundTripEscaped(t *testing.T) {
	d, tr := newTestDevice(DefaultRingSize)
	payload := []byte{0x01, 0x7E, 0x7D, 0x11, 0x13, 0xAB}
	feed(t, d, tr, AppendFrame(nil, payload))
	out := make([]byte, MaxFrame)
	if n := d.DecodeFrame(out); n != len(payload) || !bytes.Equal(out[:n], payload) {
		t.Fatalf("escaped round trip failed: n=%d out=% X", n, out[:n])
	}
}

func TestDecodeFrame_RoundTripEscapedLength(t *testing.T) {
	// 0x7E-byte payload: the low length byte arrives escaped.
	d, tr := newTestDevice(DefaultRingSize)
	payload := make([]byte, 0x7E)
	for i := range payload {
		payload[i] = byte(i)
	}
	feed(t, d, tr, AppendFrame(nil, payload))
	out := make([]byte, MaxFrame)
	if n := d.DecodeFrame(out); n != len(payload) || !bytes.Equal(out[:n], payload) {
		t.Fatalf("escaped length round trip failed: n=%d", n)
	}
}

func TestDecodeFrame_TwoFramesBackToBack(t *testing.T) {
	d, tr := newTestDevice(DefaultRingSize)
	a := []byte{0x08, 0x01, 0x41, 0x50}
	b := []byte{0x08, 0x02, 0x44, 0x37, 0x01}
	feed(t, d, tr, append(AppendFrame(nil, a), AppendFrame(nil, b)...))
	out := make([]byte, MaxFrame)
	if n := d.DecodeFrame(out); n != len(a) || !bytes.Equal(out[:n], a) {
		t.Fatalf("first frame mismatch: n=%d out=% X", n, out[:n])
	}
	if n := d.DecodeFrame(out); n != len(b) || !bytes.Equal(out[:n], b) {
		t.Fatalf("second frame mismatch: n=%d out=% X", n, out[:n])
	}
}

func TestDecodeFrame_MidFrameDelimiterResync(t *testing.T) {
	// First frame truncated by a new start delimiter; the decoder must drop
	// into the second frame and decode it.
	d, tr := newTestDevice(DefaultRingSize)
	stream := []byte{
		0x7E, 0x00, 0x04, 0x08, 0x01, 0x41, 0x50, // truncated
		0x7E, 0x00, 0x04, 0x08, 0x02, 0x41, 0x50, 0x64, // valid, frame id 2
	}
	feed(t, d, tr, stream)
	out := make([]byte, MaxFrame)
	n := d.DecodeFrame(out)
	want := []byte{0x08, 0x02, 0x41, 0x50}
	if n != len(want) || !bytes.Equal(out[:n], want) {
		t.Fatalf("resync failed: n=%d out=% X", n, out[:n])
	}
}

func TestDecodeFrame_ChecksumFailure(t *testing.T) {
	d, tr := newTestDevice(DefaultRingSize)
	feed(t, d, tr, []byte{0x7E, 0x00, 0x04, 0x08, 0x01, 0x41, 0x50, 0x00})
	out := make([]byte, MaxFrame)
	if n := d.DecodeFrame(out); n != 0 {
		t.Fatalf("corrupt frame decoded: n=%d out=% X", n, out[:n])
	}
	// A subsequent well-formed frame still decodes.
	good := []byte{0x08, 0x02, 0x41, 0x50}
	feed(t, d, tr, AppendFrame(nil, good))
	if n := d.DecodeFrame(out); n != len(good) || !bytes.Equal(out[:n], good) {
		t.Fatalf("recovery failed: n=%d out=% X", n, out[:n])
	}
}

func TestDecodeFrame_GarbagePrefixResync(t *testing.T) {
	d, tr := newTestDevice(DefaultRingSize)
	garbage := []byte{0xDE, 0xAD, 0xBE, 0xEF, 0x00, 0x55, 0xAA, 0x01, 0x02}
	payload := []byte{0x81, 0x12, 0x34, 0x28, 0x00, 0xDE, 0xAD}
	feed(t, d, tr, append(garbage, AppendFrame(nil, payload)...))
	out := make([]byte, MaxFrame)
	if n := d.DecodeFrame(out); n != len(payload) || !bytes.Equal(out[:n], payload) {
		t.Fatalf("garbage prefix resync failed: n=%d out=% X", n, out[:n])
	}
}

func TestDecodeFrame_RingWrap(t *testing.T) {
	// C=16 with the head near the end of the buffer; a 9-byte frame must
	// wrap across the physical boundary and still decode.
	d, tr := newTestDevice(16)
	d.recvIdx = 12
	payload := []byte{0x08, 0x01, 0x41, 0x50, 0x00}
	wire := AppendFrame(nil, payload) // 9 raw bytes
	if len(wire) != 9 {
		t.Fatalf("test setup: wire length %d, want 9", len(wire))
	}
	feed(t, d, tr, wire)
	if d.recvSize != 9 {
		t.Fatalf("fill added %d bytes, want 9", d.recvSize)
	}
	out := make([]byte, MaxFrame)
	if n := d.DecodeFrame(out); n != len(payload) || !bytes.Equal(out[:n], payload) {
		t.Fatalf("wrapped frame mismatch: n=%d out=% X", n, out[:n])
	}
	if d.recvIdx != (12+9)%16 || d.recvSize != 0 {
		t.Fatalf("head not advanced modulo capacity: idx=%d size=%d", d.recvIdx, d.recvSize)
	}
}

func TestDecodeFrame_OversizeForOutputResyncs(t *testing.T) {
	d, tr := newTestDevice(DefaultRingSize)
	big := make([]byte, 40)
	for i := range big {
		big[i] = byte(i + 1)
	}
	small := []byte{0x08, 0x07, 0x41, 0x50}
	feed(t, d, tr, append(AppendFrame(nil, big), AppendFrame(nil, small)...))
	out := make([]byte, 16) // cannot hold the 40-byte frame
	if n := d.DecodeFrame(out); n != len(small) || !bytes.Equal(out[:n], small) {
		t.Fatalf("expected small frame after oversize resync: n=%d out=% X", n, out[:n])
	}
}

func TestDecodeFrame_OversizeForRingResyncs(t *testing.T) {
	// Advertised length larger than the ring can ever hold: the decoder
	// must drop and resync rather than wait forever.
	d, tr := newTestDevice(16)
	feed(t, d, tr, []byte{0x7E, 0x01, 0x00, 0x01, 0x02, 0x03})
	out := make([]byte, MaxFrame)
	if n := d.DecodeFrame(out); n != 0 {
		t.Fatalf("unexpected frame: %d", n)
	}
	good := []byte{0x08, 0x09, 0x41, 0x50}
	feed(t, d, tr, AppendFrame(nil, good))
	if n := d.DecodeFrame(out); n != len(good) || !bytes.Equal(out[:n], good) {
		t.Fatalf("recovery after oversize length failed: n=%d", n)
	}
}

func TestDecodeFrame_RingFullForcesProgress(t *testing.T) {
	// Fill the whole ring with a frame that claims more payload than is
	// buffered; with the ring full the decoder must discard a byte instead
	// of returning "wait for more".
	d, tr := newTestDevice(16)
	raw := make([]byte, 16)
	raw[0] = 0x7E
	raw[1] = 0x00
	raw[2] = 0x0B // 11 payload bytes fit the ring pre-escape, yet escapes below starve it
	for i := 3; i < 15; i++ {
		raw[i] = 0x7D // every byte escaped: needs far more raw bytes than 16
	}
	raw[15] = 0x31
	feed(t, d, tr, raw)
	if d.recvSize != 16 {
		t.Fatalf("ring not full: %d", d.recvSize)
	}
	out := make([]byte, MaxFrame)
	if n := d.DecodeFrame(out); n != 0 {
		t.Fatalf("unexpected frame: %d", n)
	}
	if d.recvSize == 16 {
		t.Fatalf("decoder made no progress on full ring")
	}
}

func TestDecodeFrame_PartialThenComplete(t *testing.T) {
	d, tr := newTestDevice(DefaultRingSize)
	payload := []byte{0x89, 0x01, 0x00}
	wire := AppendFrame(nil, payload)
	feed(t, d, tr, wire[:5])
	out := make([]byte, MaxFrame)
	if n := d.DecodeFrame(out); n != 0 {
		t.Fatalf("decoded from partial frame: %d", n)
	}
	feed(t, d, tr, wire[5:])
	if n := d.DecodeFrame(out); n != len(payload) || !bytes.Equal(out[:n], payload) {
		t.Fatalf("completion failed: n=%d out=% X", n, out[:n])
	}
}

func TestDecodeFrame_TerminatesOnRandomGarbage(t *testing.T) {
	d, tr := newTestDevice(64)
	garbage := make([]byte, 4096)
	rand.Read(garbage)
	out := make([]byte, MaxFrame)
	for off := 0; off < len(garbage); off += 48 {
		end := off + 48
		if end > len(garbage) {
			end = len(garbage)
		}
		feed(t, d, tr, garbage[off:end])
		for d.DecodeFrame(out) > 0 {
		}
		if d.recvSize > 64 || d.recvIdx >= 64 || d.recvSize < 0 {
			t.Fatalf("ring invariant violated: idx=%d size=%d", d.recvIdx, d.recvSize)
		}
	}
}

func TestRecvFrame_SplitAcrossReads(t *testing.T) {
	d, tr := newTestDevice(DefaultRingSize)
	payload := []byte{0x8A, 0x06}
	wire := AppendFrame(nil, payload)
	tr.push(wire[:3])
	out := make([]byte, MaxFrame)
	n, err := d.RecvFrame(out)
	if err != nil || n != 0 {
		t.Fatalf("expected no frame yet, got n=%d err=%v", n, err)
	}
	tr.push(wire[3:])
	n, err = d.RecvFrame(out)
	if err != nil {
		t.Fatalf("RecvFrame: %v", err)
	}
	if n != len(payload) || !bytes.Equal(out[:n], payload) {
		t.Fatalf("split frame mismatch: n=%d out=% X", n, out[:n])
	}
}
