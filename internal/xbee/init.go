package xbee

import (
	"bytes"
	"fmt"
	"time"
)

const (
	// guardTime is the silent window around the +++ escape sequence. The
	// module default is one second; the margin covers slow host scheduling.
	guardTime = 1100 * time.Millisecond

	// atModeSetup switches to API mode 2, enables RTS/CTS flow control and
	// applies the changes. Four lines, four OK acknowledgements.
	atModeSetup = "ATAP 2\rATD7 1\rATD6 1\rATCN\r"

	maxDrainReads = 64
	readRetries   = 100
	readRetryWait = 10 * time.Millisecond
)

var atOK = []byte("OK\r")

// init sequences the module out of transparent AT mode into API mode 2.
// The serial baud rate must already match. Each step fails with its own
// sentinel so the operator can tell which stage of the mode switch broke.
func (d *Device) init() error {
	// Stale bytes from before open would misalign every read below.
	tmp := make([]byte, 64)
	for i := 0; i < maxDrainReads; i++ {
		n, err := d.t.Read(tmp)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInitDrain, err)
		}
		if n == 0 {
			break
		}
	}

	d.t.Sleep(guardTime)
	for i := 0; i < 3; i++ {
		if err := writeFull(d.t, []byte{'+'}); err != nil {
			return fmt.Errorf("%w: %v", ErrInitEscapeWrite, err)
		}
	}
	d.t.Sleep(guardTime)

	ack := make([]byte, len(atOK))
	if err := d.readFull(ack); err != nil {
		return fmt.Errorf("%w: %v", ErrInitNoCommandMode, err)
	}
	if !bytes.Equal(ack, atOK) {
		return fmt.Errorf("%w: got %q", ErrInitNoCommandMode, ack)
	}

	if err := writeFull(d.t, []byte(atModeSetup)); err != nil {
		return fmt.Errorf("%w: %v", ErrInitConfigWrite, err)
	}

	// Query back the three parameters just set. The queries are emitted as
	// API frames: after ATCN the module is already framing.
	queries := [3][2]byte{{'A', 'P'}, {'D', '7'}, {'D', '6'}}
	for i, q := range queries {
		if err := d.ATCommand(byte(i+1), q, nil); err != nil {
			return err
		}
	}
	d.t.Sleep(time.Second)

	acks := make([]byte, 4*len(atOK))
	if err := d.readFull(acks); err != nil {
		return fmt.Errorf("%w: %v", ErrInitNoConfigAck, err)
	}
	if !bytes.Equal(acks, bytes.Repeat(atOK, 4)) {
		return fmt.Errorf("%w: got %q", ErrInitNoConfigAck, acks)
	}

	want := [3]byte{0x02, 0x01, 0x01}
	out := make([]byte, MaxFrame)
	for i := range queries {
		n, err := d.recvFrameWait(out)
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%w: query %c%c", ErrInitNoResponse, queries[i][0], queries[i][1])
		}
		resp, err := ParseFrame(out[:n])
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInitBadResponse, err)
		}
		at, ok := resp.(ATResponse)
		if !ok {
			return fmt.Errorf("%w: api 0x%02X", ErrInitBadResponse, out[0])
		}
		if at.FrameID != byte(i+1) || at.Command != queries[i] || at.Status != 0 {
			return fmt.Errorf("%w: frame %d cmd %c%c status %d",
				ErrInitBadResponse, at.FrameID, at.Command[0], at.Command[1], at.Status)
		}
		if len(at.Data) != 1 || at.Data[0] != want[i] {
			return fmt.Errorf("%w: %c%c = % X, want %02X",
				ErrInitParamMismatch, at.Command[0], at.Command[1], at.Data, want[i])
		}
	}
	return nil
}

// readFull fills p, retrying idle reads over a bounded window so noise-free
// but slow links still converge.
func (d *Device) readFull(p []byte) error {
	var got int
	for try := 0; got < len(p); try++ {
		if try >= readRetries {
			return fmt.Errorf("read %d of %d bytes", got, len(p))
		}
		n, err := d.t.Read(p[got:])
		if err != nil {
			return err
		}
		if n == 0 {
			d.t.Sleep(readRetryWait)
			continue
		}
		got += n
	}
	return nil
}

// recvFrameWait runs RecvFrame until a frame lands or the retry window is
// exhausted (n == 0).
func (d *Device) recvFrameWait(out []byte) (int, error) {
	for try := 0; try < readRetries; try++ {
		n, err := d.RecvFrame(out)
		if n > 0 || err != nil {
			return n, err
		}
		d.t.Sleep(readRetryWait)
	}
	return 0, nil
}

func writeFull(t Transport, p []byte) error {
	n, err := t.Write(p)
	if err != nil {
		return err
	}
	if n < len(p) {
		return fmt.Errorf("wrote %d of %d", n, len(p))
	}
	return nil
}
