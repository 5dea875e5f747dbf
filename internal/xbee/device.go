package xbee

import (
	"io"
	"time"
)

// Transport is the byte-stream link to the radio module. Read returning
// (0, nil) means "nothing available now"; Write must accept the full slice
// (a short count is treated as a fatal frame error by the encoder). Sleep
// blocks the caller, typically for guard times during initialization.
type Transport interface {
	io.Reader
	io.Writer
	Sleep(d time.Duration)
}

// Device is the owning handle for one radio module: the transport reference
// plus the receive ring. It is not safe for concurrent use; the send path
// (SendFrame and the command builders) and the receive path (FillBuffer,
// DecodeFrame, RecvFrame) touch disjoint state, so a dedicated TX goroutine
// and a dedicated RX goroutine may share one handle, but each path must be
// serialized by its owner.
type Device struct {
	t        Transport
	buf      []byte
	recvIdx  int
	recvSize int
}

// New wraps t without running the API-mode initializer; use it for modules
// already configured for API mode 2, and for framing arbitrary byte streams
// (the TCP gateway runs one per client connection). buf is the caller-owned
// receive ring; when nil a DefaultRingSize buffer is allocated.
func New(t Transport, buf []byte) *Device {
	if len(buf) == 0 {
		buf = make([]byte, DefaultRingSize)
	}
	return &Device{t: t, buf: buf}
}

// Open wraps t and switches the module out of transparent mode into API
// mode 2 with hardware flow control. On error the handle must be discarded.
func Open(t Transport, buf []byte) (*Device, error) {
	d := New(t, buf)
	if err := d.init(); err != nil {
		return nil, err
	}
	return d, nil
}

// SendFrame emits one complete frame carrying payload.
func (d *Device) SendFrame(payload []byte) error {
	return EncodeFrame(d.t, payload)
}

// RecvFrame decodes one frame into out, refilling the ring from the
// transport when the buffered bytes do not yet hold a complete frame.
// It returns the unescaped payload length (out additionally holds the
// validated checksum byte at out[n]), 0 when no frame is available yet,
// or the transport read error.
func (d *Device) RecvFrame(out []byte) (int, error) {
	if n := d.DecodeFrame(out); n > 0 {
		return n, nil
	}
	n, err := d.FillBuffer()
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, nil
	}
	return d.DecodeFrame(out), nil
}
