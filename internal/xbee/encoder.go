package xbee

import (
	"fmt"
	"io"
)

// needsEscape reports whether b must be escaped anywhere outside the leading
// start delimiter.
func needsEscape(b byte) bool {
	switch b {
	case startDelimiter, escapeChar, xonChar, xoffChar:
		return true
	}
	return false
}

// encoder emits one escaped API frame, threading the checksum accumulator
// across incremental writes. Writes go straight to the underlying writer
// with no buffering; length and checksum bytes are escaped like payload.
type encoder struct {
	w   io.Writer
	sum byte
}

// begin writes the start delimiter and the escaped big-endian length of the
// unescaped payload, then resets the checksum accumulator.
func (e *encoder) begin(n int) error {
	if n > 0xFFFF {
		return ErrPayloadTooLarge
	}
	if err := e.writeAll([]byte{startDelimiter}, ErrWriteDelimiter); err != nil {
		return err
	}
	if err := e.writeEscaped(byte(n>>8), ErrWriteLength); err != nil {
		return err
	}
	if err := e.writeEscaped(byte(n), ErrWriteLength); err != nil {
		return err
	}
	e.sum = 0
	return nil
}

// write emits payload bytes, escaping on the wire while accumulating the
// checksum over the unescaped values.
func (e *encoder) write(p []byte) error {
	for _, b := range p {
		if err := e.writeEscaped(b, ErrWritePayload); err != nil {
			return err
		}
		e.sum += b
	}
	return nil
}

// finish emits the checksum trailer: 0xFF minus the payload sum, escaped.
func (e *encoder) finish() error {
	return e.writeEscaped(0xFF-e.sum, ErrWriteChecksum)
}

func (e *encoder) writeEscaped(b byte, stage error) error {
	if needsEscape(b) {
		return e.writeAll([]byte{escapeChar, b ^ escapeXOR}, stage)
	}
	return e.writeAll([]byte{b}, stage)
}

func (e *encoder) writeAll(p []byte, stage error) error {
	n, err := e.w.Write(p)
	if err != nil {
		return fmt.Errorf("%w: %v", stage, err)
	}
	if n < len(p) {
		return fmt.Errorf("%w: wrote %d of %d", stage, n, len(p))
	}
	return nil
}

// EncodeFrame writes one complete frame carrying payload to w.
func EncodeFrame(w io.Writer, payload []byte) error {
	e := encoder{w: w}
	if err := e.begin(len(payload)); err != nil {
		return err
	}
	if err := e.write(payload); err != nil {
		return err
	}
	return e.finish()
}

// AppendFrame appends the wire encoding of one frame carrying payload to dst
// and returns the extended slice. Panics if payload exceeds the 16-bit
// length field; callers bound payloads at MaxFrame well below that.
func AppendFrame(dst, payload []byte) []byte {
	if len(payload) > 0xFFFF {
		panic("xbee: payload exceeds frame length field")
	}
	appendEscaped := func(dst []byte, b byte) []byte {
		if needsEscape(b) {
			return append(dst, escapeChar, b^escapeXOR)
		}
		return append(dst, b)
	}
	dst = append(dst, startDelimiter)
	dst = appendEscaped(dst, byte(len(payload)>>8))
	dst = appendEscaped(dst, byte(len(payload)))
	var sum byte
	for _, b := range payload {
		dst = appendEscaped(dst, b)
		sum += b
	}
	return appendEscaped(dst, 0xFF-sum)
}
