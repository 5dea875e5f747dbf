package xbee

import "github.com/kstaniek/go-xbee-server/internal/metrics"

// minViableFrame is the number of buffered raw bytes below which the decoder
// does not attempt a frame. It covers the delimiter and both length bytes
// even when both arrive escaped; a frame with a payload shorter than two
// bytes is only decoded once further bytes follow it.
const minViableFrame = 6

type unescapeStatus int

const (
	unescapeOK unescapeStatus = iota
	unescapeFoundStart
	unescapeNoData
)

// readUnescaped consumes one unescaped byte at logical offset *idx.
// A raw start delimiter, on its own or as the trailing byte of an escape
// pair, is never valid mid-frame and reports unescapeFoundStart without
// consuming anything; running off the buffered bytes, including in the
// middle of an escape pair, reports unescapeNoData.
func (d *Device) readUnescaped(idx *int) (byte, unescapeStatus) {
	if *idx >= d.recvSize {
		return 0, unescapeNoData
	}
	b := d.at(*idx)
	if b == startDelimiter {
		return 0, unescapeFoundStart
	}
	if b == escapeChar {
		if *idx+1 >= d.recvSize {
			return 0, unescapeNoData
		}
		b = d.at(*idx + 1)
		if b == startDelimiter {
			return 0, unescapeFoundStart
		}
		*idx += 2
		return b ^ escapeXOR, unescapeOK
	}
	*idx++
	return b, unescapeOK
}

// dropResync discards one byte from the head to force progress after a
// framing failure. Resynchronization happens at the next start delimiter.
func (d *Device) dropResync() {
	d.drop(1)
	metrics.AddResyncDrop(1)
}

// delimiterPastHead reports whether a raw start delimiter exists anywhere
// after the head byte, i.e. a newer frame has already begun arriving.
func (d *Device) delimiterPastHead() bool {
	for i := 1; i < d.recvSize; i++ {
		if d.at(i) == startDelimiter {
			return true
		}
	}
	return false
}

// DecodeFrame extracts one validated frame from the ring into out and
// returns its unescaped payload length; out[n] holds the checksum byte.
// It returns 0 when the buffered bytes do not yet contain a complete frame.
// The ring is consumed non-destructively: the head only advances past a
// committed frame or, on any failure, by exactly one byte, so a garbage
// stream can never stall the decoder or hide a later well-formed frame.
func (d *Device) DecodeFrame(out []byte) int {
	c := len(d.buf)
outer:
	for d.recvSize >= minViableFrame {
		if d.at(0) != startDelimiter {
			d.dropResync()
			continue
		}
		// Unescape the two length bytes; recvSize >= 6 guarantees they are
		// buffered even when both arrive escaped.
		idx := 1
		hi, st := d.readUnescaped(&idx)
		if st != unescapeOK {
			if st == unescapeNoData {
				return 0
			}
			d.dropResync()
			continue
		}
		lo, st := d.readUnescaped(&idx)
		if st != unescapeOK {
			if st == unescapeNoData {
				return 0
			}
			d.dropResync()
			continue
		}
		length := int(hi)<<8 | int(lo)
		// length+4 is the pre-escape lower bound on raw frame size; a frame
		// that cannot fit the ring or the caller's buffer can never complete.
		if length+1 > len(out) || length+4 > c {
			metrics.IncMalformed()
			d.dropResync()
			continue
		}
		var sum byte
		for i := 0; i <= length; i++ {
			b, st := d.readUnescaped(&idx)
			switch st {
			case unescapeFoundStart:
				// A delimiter mid-frame always wins: this frame is corrupt
				// and a new one has started.
				metrics.IncMalformed()
				d.dropResync()
				continue outer
			case unescapeNoData:
				if d.recvSize == c {
					// Ring full and still no complete frame: forced progress.
					d.dropResync()
					continue outer
				}
				if d.delimiterPastHead() {
					// A newer frame already began; abandon this one.
					d.dropResync()
					continue outer
				}
				return 0
			}
			out[i] = b
			sum += b
		}
		if sum != 0xFF {
			metrics.IncMalformed()
			d.dropResync()
			continue
		}
		d.drop(idx)
		return length
	}
	return 0
}
