package xbee

import (
	"encoding/binary"
	"fmt"
)

// Response is one parsed API frame from the module. The concrete type
// carries the variant; variable-length fields alias the frame buffer the
// payload was parsed from, so the buffer must outlive the response.
type Response interface {
	apiID() byte
}

// ModemStatus reports a module state change (API 0x8A).
type ModemStatus struct {
	Status byte
}

// TransmitStatus acknowledges a transmit request (API 0x89).
type TransmitStatus struct {
	FrameID byte
	Status  byte
}

// ATResponse answers a local AT command (API 0x88).
type ATResponse struct {
	FrameID byte
	Command [2]byte
	Status  byte
	Data    []byte
}

// RemoteATResponse answers a remote AT command (API 0x97).
type RemoteATResponse struct {
	FrameID byte
	Addr64  uint64
	Addr16  uint16
	Command [2]byte
	Status  byte
	Data    []byte
}

// Receive64 is an RF packet from a 64-bit source address (API 0x80).
type Receive64 struct {
	Src     uint64
	RSSI    byte
	Options byte
	Payload []byte
}

// Receive16 is an RF packet from a 16-bit source address (API 0x81).
type Receive16 struct {
	Src     uint16
	RSSI    byte
	Options byte
	Payload []byte
}

func (ModemStatus) apiID() byte      { return APIModemStatus }
func (TransmitStatus) apiID() byte   { return APITransmitStatus }
func (ATResponse) apiID() byte       { return APIATResponse }
func (RemoteATResponse) apiID() byte { return APIRemoteATResponse }
func (Receive64) apiID() byte        { return APIReceive64 }
func (Receive16) apiID() byte        { return APIReceive16 }

// ParseFrame demarshals an unescaped, checksum-validated frame payload into
// a tagged response. Fixed-size frames must match their length exactly;
// variable frames carry the remainder as data.
func ParseFrame(payload []byte) (Response, error) {
	if len(payload) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrWrongLengthForAPI)
	}
	switch payload[0] {
	case APIModemStatus:
		if len(payload) != 2 {
			return nil, wrongLength(payload)
		}
		return ModemStatus{Status: payload[1]}, nil
	case APITransmitStatus:
		if len(payload) != 3 {
			return nil, wrongLength(payload)
		}
		return TransmitStatus{FrameID: payload[1], Status: payload[2]}, nil
	case APIATResponse:
		if len(payload) < 5 {
			return nil, wrongLength(payload)
		}
		return ATResponse{
			FrameID: payload[1],
			Command: [2]byte{payload[2], payload[3]},
			Status:  payload[4],
			Data:    payload[5:],
		}, nil
	case APIRemoteATResponse:
		if len(payload) < 15 {
			return nil, wrongLength(payload)
		}
		return RemoteATResponse{
			FrameID: payload[1],
			Addr64:  binary.BigEndian.Uint64(payload[2:10]),
			Addr16:  binary.BigEndian.Uint16(payload[10:12]),
			Command: [2]byte{payload[12], payload[13]},
			Status:  payload[14],
			Data:    payload[15:],
		}, nil
	case APIReceive64:
		if len(payload) < 11 {
			return nil, wrongLength(payload)
		}
		return Receive64{
			Src:     binary.BigEndian.Uint64(payload[1:9]),
			RSSI:    payload[9],
			Options: payload[10],
			Payload: payload[11:],
		}, nil
	case APIReceive16:
		if len(payload) < 5 {
			return nil, wrongLength(payload)
		}
		return Receive16{
			Src:     binary.BigEndian.Uint16(payload[1:3]),
			RSSI:    payload[3],
			Options: payload[4],
			Payload: payload[5:],
		}, nil
	default:
		return nil, fmt.Errorf("%w: 0x%02X", ErrUnknownAPIID, payload[0])
	}
}

func wrongLength(payload []byte) error {
	return fmt.Errorf("%w: api 0x%02X, %d bytes", ErrWrongLengthForAPI, payload[0], len(payload))
}
