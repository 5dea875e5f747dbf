package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/kstaniek/go-xbee-server/internal/hub"
	"github.com/kstaniek/go-xbee-server/internal/metrics"
	"github.com/kstaniek/go-xbee-server/internal/serial"
	"github.com/kstaniek/go-xbee-server/internal/xbee"
)

// sleepFn allows tests to intercept backoff sleeps.
var sleepFn = time.Sleep

// openSerialPort is a hook for tests (overridden in unit tests).
var openSerialPort = serial.Open

// initSerialBackend opens the radio serial link, runs the API-mode
// initializer (unless skipped) and launches the RX loop. It returns the
// frame sender for TCP readers and a cleanup function.
func initSerialBackend(ctx context.Context, cfg *appConfig, h *hub.Hub, l *slog.Logger, wg *sync.WaitGroup) (func(xbee.Packet) error, func(), error) {
	sp, err := openSerialPort(cfg.serialDev, cfg.baud, cfg.serialReadTO)
	if err != nil {
		return nil, func() {}, fmt.Errorf("open serial: %w", err)
	}
	l.Info("serial_open", "device", cfg.serialDev, "baud", cfg.baud)
	tr := serial.Transport{P: sp}
	ring := make([]byte, cfg.ringSize)
	var dev *xbee.Device
	if cfg.skipInit {
		dev = xbee.New(tr, ring)
		l.Info("modem_init_skipped")
	} else {
		dev, err = xbee.Open(tr, ring)
		if err != nil {
			metrics.IncError(metrics.ErrModemInit)
			_ = sp.Close()
			return nil, func() {}, fmt.Errorf("modem init: %w", err)
		}
		l.Info("modem_ready", "api_mode", 2)
	}
	w := serial.NewTXWriter(ctx, dev, txQueueSize)
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer l.Info("serial_rx_end")
		out := make([]byte, xbee.MaxFrame)
		backoff := rxBackoffMin
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}
			n, err := dev.RecvFrame(out)
			if n > 0 {
				metrics.IncXBeeRx()
				if l.Enabled(ctx, slog.LevelDebug) {
					if resp, perr := xbee.ParseFrame(out[:n]); perr == nil {
						l.Debug("xbee_rx", "frame", fmt.Sprintf("%T", resp), "len", n)
					} else {
						l.Debug("xbee_rx_unparsed", "error", perr, "len", n)
					}
				}
				h.Broadcast(xbee.PacketOf(out[:n]))
				backoff = rxBackoffMin
			}
			if err != nil {
				if ctx.Err() != nil { // shutting down
					return
				}
				var perr *os.PathError
				if errors.As(err, &perr) {
					return // device removed or fatal
				}
				metrics.IncError(metrics.ErrSerialRead)
				l.Warn("serial_read_error", "error", err, "backoff", backoff)
				sleepFn(backoff)
				backoff *= 2
				if backoff > rxBackoffMax {
					backoff = rxBackoffMax
				}
			}
		}
	}()
	return w.SendPacket, func() { _ = sp.Close(); w.Close() }, nil
}
