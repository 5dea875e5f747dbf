package serial

import (
	"context"
	"errors"

	"github.com/kstaniek/go-xbee-server/internal/logging"
	"github.com/kstaniek/go-xbee-server/internal/metrics"
	"github.com/kstaniek/go-xbee-server/internal/transport"
	"github.com/kstaniek/go-xbee-server/internal/xbee"
)

var ErrTxOverflow = errors.New("serial tx overflow")

// TXWriter funnels all radio frame writes through one goroutine, keeping the
// device's send path single-owner while TCP readers enqueue concurrently.
type TXWriter struct{ base *transport.AsyncTx }

// NewTXWriter creates a serial TXWriter with a buffered channel of size buf.
func NewTXWriter(parent context.Context, dev *xbee.Device, buf int) *TXWriter {
	send := func(p xbee.Packet) error {
		return dev.SendFrame(p.Bytes())
	}
	hooks := transport.Hooks{
		OnError: func(err error) {
			metrics.IncError(metrics.ErrSerialWrite)
			logging.L().Error("serial_write_error", "error", err)
		},
		OnAfter: func() { metrics.IncXBeeTx() },
		OnDrop: func() error {
			metrics.IncError(metrics.ErrSerialOverflow)
			return ErrTxOverflow
		},
	}
	return &TXWriter{base: transport.NewAsyncTx(parent, buf, send, hooks)}
}

// SendPacket queues a frame for asynchronous write (drops with ErrTxOverflow if buffer full).
func (w *TXWriter) SendPacket(p xbee.Packet) error { return w.base.SendPacket(p) }

// Close stops the writer and waits for pending goroutine exit.
func (w *TXWriter) Close() { w.base.Close() }
