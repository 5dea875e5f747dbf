package server

import (
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/kstaniek/go-xbee-server/internal/hub"
	"github.com/kstaniek/go-xbee-server/internal/metrics"
	"github.com/kstaniek/go-xbee-server/internal/xbee"
)

// startWriter launches the goroutine pushing hub packets to a single client
// connection. Packets are re-framed (escaped, length-prefixed, checksummed)
// and batched into one write per flush.
func (s *Server) startWriter(ctxDone <-chan struct{}, conn net.Conn, cl *hub.Client, logger *slog.Logger) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			_ = conn.Close()
			if s.Hub != nil {
				s.Hub.Remove(cl)
			}
			s.totalDisconnected.Add(1)
			logger.Info("client_disconnected")
		}()
		t := time.NewTicker(s.flushInterval)
		defer t.Stop()
		batch := make([]xbee.Packet, 0, s.batchSize)
		// Worst case every byte escapes: 2x payload + delimiter, length, checksum.
		wire := make([]byte, 0, s.batchSize*(2*xbee.MaxFrame+7))
		flush := func() error {
			if len(batch) == 0 {
				return nil
			}
			n := len(batch)
			wire = wire[:0]
			for i := range batch {
				wire = xbee.AppendFrame(wire, batch[i].Bytes())
			}
			batch = batch[:0]
			if _, err := conn.Write(wire); err != nil {
				wrap := fmt.Errorf("%w: %v", ErrConnWrite, err)
				metrics.IncError(mapErrToMetric(wrap))
				s.setError(wrap)
				return wrap
			}
			metrics.AddTCPTx(n)
			return nil
		}
		for {
			select {
			case p := <-cl.Out:
				batch = append(batch, p)
				if len(batch) >= s.batchSize {
					if err := flush(); err != nil {
						return
					}
				}
			case <-t.C:
				if err := flush(); err != nil {
					return
				}
			case <-cl.Closed:
				_ = flush()
				return
			case <-ctxDone:
				_ = flush()
				return
			}
		}
	}()
}
