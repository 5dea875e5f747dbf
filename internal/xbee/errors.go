package xbee

import "errors"

// Encoder stage errors. A short write anywhere in a frame is fatal for that
// frame; the sentinel names the stage so callers can classify via errors.Is.
var (
	ErrWriteDelimiter = errors.New("xbee: write start delimiter")
	ErrWriteLength    = errors.New("xbee: write length")
	ErrWritePayload   = errors.New("xbee: write payload")
	ErrWriteChecksum  = errors.New("xbee: write checksum")
)

// ErrPayloadTooLarge is returned when a frame payload exceeds the 16-bit
// length field.
var ErrPayloadTooLarge = errors.New("xbee: payload exceeds frame length field")

// Parser errors.
var (
	ErrWrongLengthForAPI = errors.New("xbee: wrong payload length for api id")
	ErrUnknownAPIID      = errors.New("xbee: unknown api id")
)

// Initializer stage errors, one per step so the operator can diagnose which
// part of the mode switch failed. The handle must not be used after any of
// these.
var (
	ErrInitDrain         = errors.New("xbee init: drain read")
	ErrInitEscapeWrite   = errors.New("xbee init: write escape sequence")
	ErrInitNoCommandMode = errors.New("xbee init: no OK after escape sequence")
	ErrInitConfigWrite   = errors.New("xbee init: write AT configuration")
	ErrInitNoConfigAck   = errors.New("xbee init: missing OK for AT configuration")
	ErrInitNoResponse    = errors.New("xbee init: no AT response frame")
	ErrInitBadResponse   = errors.New("xbee init: unexpected AT response frame")
	ErrInitParamMismatch = errors.New("xbee init: parameter verification failed")
)
