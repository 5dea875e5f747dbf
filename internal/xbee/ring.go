package xbee

// The receive ring stores raw wire bytes (still escaped, still including
// delimiters) in the caller-provided buffer. Logical byte i lives at
// physical offset (recvIdx+i) mod cap; recvSize never exceeds cap and
// recvIdx stays below cap even when the ring is empty.

// at returns logical ring byte i.
func (d *Device) at(i int) byte {
	return d.buf[(d.recvIdx+i)%len(d.buf)]
}

// drop advances the head past n consumed bytes.
func (d *Device) drop(n int) {
	d.recvIdx = (d.recvIdx + n) % len(d.buf)
	d.recvSize -= n
}

// Buffered returns the number of raw bytes currently held in the ring.
func (d *Device) Buffered() int { return d.recvSize }

// FillBuffer tops the ring up from the transport and returns the bytes
// added. The fill is two-phase: first from the tail to the end of the
// physical buffer; if that read came back complete and the head is not at
// physical index 0, a second read fills the freed space before the head.
// A transport read of 0 bytes is not an error.
func (d *Device) FillBuffer() (int, error) {
	c := len(d.buf)
	if d.recvSize == c {
		return 0, nil
	}
	tail := (d.recvIdx + d.recvSize) % c
	if tail < d.recvIdx {
		// Free space is one contiguous span between tail and head.
		n, err := d.t.Read(d.buf[tail:d.recvIdx])
		d.recvSize += n
		return n, err
	}
	n, err := d.t.Read(d.buf[tail:c])
	d.recvSize += n
	if err != nil {
		return n, err
	}
	if n < c-tail || d.recvIdx == 0 {
		return n, nil
	}
	n2, err := d.t.Read(d.buf[:d.recvIdx])
	d.recvSize += n2
	return n + n2, err
}
