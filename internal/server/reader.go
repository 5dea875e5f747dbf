package server

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"time"

	"github.com/kstaniek/go-xbee-server/internal/hub"
	"github.com/kstaniek/go-xbee-server/internal/metrics"
	"github.com/kstaniek/go-xbee-server/internal/serial"
	"github.com/kstaniek/go-xbee-server/internal/xbee"
)

// connTransport adapts a net.Conn to the frame codec's transport contract.
// Deadline timeouts pass through as errors so the reader loop can refresh
// the deadline and keep the connection alive.
type connTransport struct{ c net.Conn }

func (t connTransport) Read(p []byte) (int, error)  { return t.c.Read(p) }
func (t connTransport) Write(p []byte) (int, error) { return t.c.Write(p) }
func (t connTransport) Sleep(d time.Duration)       { time.Sleep(d) }

// startReader launches the goroutine reassembling API frames from a client
// connection and forwarding their payloads to the radio backend.
func (s *Server) startReader(ctxDone <-chan struct{}, conn net.Conn, cl *hub.Client, logger *slog.Logger) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() { _ = conn.Close() }()
		dev := xbee.New(connTransport{conn}, make([]byte, s.clientRingSize))
		out := make([]byte, xbee.MaxFrame)
		for {
			_ = conn.SetReadDeadline(time.Now().Add(s.readDeadline))
			n, err := dev.RecvFrame(out)
			if err != nil {
				if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
					return
				}
				if ne, ok := err.(net.Error); ok && ne.Timeout() {
					continue
				}
				wrap := fmt.Errorf("%w: %v", ErrConnRead, err)
				metrics.IncError(mapErrToMetric(wrap))
				s.setError(wrap)
				return
			}
			if n > 0 {
				pkt := xbee.PacketOf(out[:n])
				if s.frameFilter == nil || s.frameFilter(&pkt) {
					metrics.IncTCPRx()
					if err := s.Send(pkt); err != nil {
						if errors.Is(err, serial.ErrTxOverflow) {
							s.totalBackendOverflow.Add(1)
							logger.Debug("backend_overflow_drop", "api", fmt.Sprintf("0x%02X", pkt.Data[0]), "len", pkt.Len)
						} else {
							wrap := fmt.Errorf("%w: %v", ErrBackendTx, err)
							s.setError(wrap)
							s.totalBackendErrors.Add(1)
							logger.Error("backend_tx_error", "error", wrap, "api", fmt.Sprintf("0x%02X", pkt.Data[0]))
						}
					}
				}
			}
			select {
			case <-ctxDone:
				return
			default:
			}
		}
	}()
}
