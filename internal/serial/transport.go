package serial

import (
	"io"
	"time"
)

// Transport adapts a Port to the radio core's transport contract: a read
// timeout surfaces as zero bytes (not an error), and Sleep blocks the
// calling goroutine. tarm/serial reports timeouts as (0, nil) on POSIX and
// io.EOF elsewhere; both collapse to "nothing now".
type Transport struct {
	P Port
}

func (t Transport) Read(p []byte) (int, error) {
	n, err := t.P.Read(p)
	if n == 0 && (err == nil || err == io.EOF) {
		return 0, nil
	}
	return n, err
}

func (t Transport) Write(p []byte) (int, error) { return t.P.Write(p) }

func (t Transport) Sleep(d time.Duration) { time.Sleep(d) }
