package xbee

import (
	"bytes"
	"errors"
	"testing"
)

func TestParseFrame_ModemStatus(t *testing.T) {
	resp, err := ParseFrame([]byte{0x8A, 0x06})
	if err != nil {
		t.Fatalf("ParseFrame: %v", err)
	}
	ms, ok := resp.(ModemStatus)
	if !ok {
		t.Fatalf("wrong type %T", resp)
	}
	if ms.Status != 0x06 {
		t.Fatalf("status 0x%02X, want 0x06", ms.Status)
	}
}

func TestParseFrame_TransmitStatus(t *testing.T) {
	resp, err := ParseFrame([]byte{0x89, 0x2A, 0x01})
	if err != nil {
		t.Fatalf("ParseFrame: %v", err)
	}
	ts, ok := resp.(TransmitStatus)
	if !ok {
		t.Fatalf("wrong type %T", resp)
	}
	if ts.FrameID != 0x2A || ts.Status != 0x01 {
		t.Fatalf("got %+v", ts)
	}
}

func TestParseFrame_ATResponse(t *testing.T) {
	resp, err := ParseFrame([]byte{0x88, 0x01, 'A', 'P', 0x00, 0x02})
	if err != nil {
		t.Fatalf("ParseFrame: %v", err)
	}
	at, ok := resp.(ATResponse)
	if !ok {
		t.Fatalf("wrong type %T", resp)
	}
	if at.FrameID != 1 || at.Command != [2]byte{'A', 'P'} || at.Status != 0 {
		t.Fatalf("got %+v", at)
	}
	if !bytes.Equal(at.Data, []byte{0x02}) {
		t.Fatalf("data % X", at.Data)
	}
}

func TestParseFrame_ATResponseEmptyData(t *testing.T) {
	resp, err := ParseFrame([]byte{0x88, 0x03, 'C', 'N', 0x00})
	if err != nil {
		t.Fatalf("ParseFrame: %v", err)
	}
	if at := resp.(ATResponse); len(at.Data) != 0 {
		t.Fatalf("expected empty data, got % X", at.Data)
	}
}

func TestParseFrame_RemoteATResponse(t *testing.T) {
	payload := []byte{
		0x97, 0x07,
		0x00, 0x13, 0xA2, 0x00, 0x40, 0x5E, 0x7B, 0x41,
		0x12, 0x7E,
		'N', 'I', 0x00,
		'R', 'E', 'L', 'A', 'Y',
	}
	resp, err := ParseFrame(payload)
	if err != nil {
		t.Fatalf("ParseFrame: %v", err)
	}
	rat, ok := resp.(RemoteATResponse)
	if !ok {
		t.Fatalf("wrong type %T", resp)
	}
	if rat.FrameID != 7 || rat.Addr64 != 0x0013A200405E7B41 || rat.Addr16 != 0x127E {
		t.Fatalf("got %+v", rat)
	}
	if rat.Command != [2]byte{'N', 'I'} || rat.Status != 0 || string(rat.Data) != "RELAY" {
		t.Fatalf("got %+v", rat)
	}
}

func TestParseFrame_Receive64(t *testing.T) {
	payload := []byte{
		0x80,
		0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08,
		0x28, 0x00,
		0xDE, 0xAD,
	}
	resp, err := ParseFrame(payload)
	if err != nil {
		t.Fatalf("ParseFrame: %v", err)
	}
	rx, ok := resp.(Receive64)
	if !ok {
		t.Fatalf("wrong type %T", resp)
	}
	if rx.Src != 0x0102030405060708 {
		t.Fatalf("src %016X", rx.Src)
	}
	if rx.RSSI != 0x28 || rx.Options != 0 || !bytes.Equal(rx.Payload, []byte{0xDE, 0xAD}) {
		t.Fatalf("got %+v", rx)
	}
}

func TestParseFrame_Receive16(t *testing.T) {
	payload := []byte{0x81, 0x12, 0x34, 0x28, 0x00, 0xDE, 0xAD, 0xBE, 0xEF}
	resp, err := ParseFrame(payload)
	if err != nil {
		t.Fatalf("ParseFrame: %v", err)
	}
	rx, ok := resp.(Receive16)
	if !ok {
		t.Fatalf("wrong type %T", resp)
	}
	if rx.Src != 0x1234 || rx.RSSI != 0x28 || rx.Options != 0x00 {
		t.Fatalf("got %+v", rx)
	}
	if !bytes.Equal(rx.Payload, []byte{0xDE, 0xAD, 0xBE, 0xEF}) {
		t.Fatalf("payload % X", rx.Payload)
	}
}

func TestParseFrame_BorrowsFrameBuffer(t *testing.T) {
	payload := []byte{0x81, 0x12, 0x34, 0x28, 0x00, 0x01}
	resp, err := ParseFrame(payload)
	if err != nil {
		t.Fatalf("ParseFrame: %v", err)
	}
	rx := resp.(Receive16)
	payload[5] = 0xFF
	if rx.Payload[0] != 0xFF {
		t.Fatalf("payload field does not alias the frame buffer")
	}
}

func TestParseFrame_WrongLength(t *testing.T) {
	cases := [][]byte{
		{},
		{0x8A},                   // modem status too short
		{0x8A, 0x00, 0x00},       // modem status too long (exact frame)
		{0x89, 0x01},             // transmit status too short
		{0x89, 0x01, 0x00, 0x00}, // transmit status too long
		{0x88, 0x01, 'A', 'P'},   // at response too short
		{0x97, 0x01, 0x00},       // remote at too short
		{0x80, 0x01, 0x02},       // receive 64 too short
		{0x81, 0x12, 0x34, 0x28}, // receive 16 too short
	}
	for _, p := range cases {
		if _, err := ParseFrame(p); !errors.Is(err, ErrWrongLengthForAPI) {
			t.Fatalf("payload % X: got %v, want ErrWrongLengthForAPI", p, err)
		}
	}
}

func TestParseFrame_UnknownAPIID(t *testing.T) {
	for _, id := range []byte{0x02, 0x42, 0xFE} {
		if _, err := ParseFrame([]byte{id, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}); !errors.Is(err, ErrUnknownAPIID) {
			t.Fatalf("api 0x%02X: got %v, want ErrUnknownAPIID", id, err)
		}
	}
}
