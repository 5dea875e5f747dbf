package xbee

// API frame type identifiers (first byte of an unescaped frame payload).
const (
	APITransmit64       = 0x00
	APITransmit16       = 0x01
	APIATCommand        = 0x08
	APIATQueueParameter = 0x09
	APIRemoteATCommand  = 0x17
	APIReceive64        = 0x80
	APIReceive16        = 0x81
	APIATResponse       = 0x88
	APITransmitStatus   = 0x89
	APIModemStatus      = 0x8A
	APIRemoteATResponse = 0x97
)

// Framing bytes for API mode 2. The leading start delimiter of a frame is
// never escaped; anywhere else on the wire all four reserved bytes (the
// delimiter value included) are replaced by escapeChar followed by the byte
// XOR escapeXOR.
const (
	startDelimiter = 0x7E
	escapeChar     = 0x7D
	xonChar        = 0x11
	xoffChar       = 0x13
	escapeXOR      = 0x20
)

// MaxFrame is the largest unescaped frame payload the gateway handles:
// the biggest 802.15.4 API frame (receive-64 with a full 100-byte RF
// payload) plus headroom, and the checksum byte the decoder appends.
const MaxFrame = 128

// DefaultRingSize is the receive ring capacity used when the caller does not
// provide its own buffer. Must accommodate the largest expected raw frame.
const DefaultRingSize = 256

type addrKind uint8

const (
	addrKind64 addrKind = iota
	addrKind16
	addrKind64Broadcast
	addrKind16Broadcast
)

// Addr selects a frame destination: a 64-bit or 16-bit unicast address, or
// the corresponding broadcast. The zero value is the 64-bit address 0.
type Addr struct {
	kind addrKind
	a64  uint64
	a16  uint16
}

// Addr64 addresses a module by its 64-bit serial number.
func Addr64(v uint64) Addr { return Addr{kind: addrKind64, a64: v} }

// Addr16 addresses a module by its 16-bit network address.
func Addr16(v uint16) Addr { return Addr{kind: addrKind16, a16: v} }

// Broadcast destinations. Their wire encodings are fixed:
// 64-bit broadcast is 00 00 00 00 00 00 FF FF, 16-bit broadcast is FF FF.
var (
	Broadcast64 = Addr{kind: addrKind64Broadcast}
	Broadcast16 = Addr{kind: addrKind16Broadcast}
)

// is64 reports whether the transmit builder must emit a 64-bit frame.
func (a Addr) is64() bool { return a.kind == addrKind64 || a.kind == addrKind64Broadcast }

// dest64 is the 64-bit destination field for transmit frames.
func (a Addr) dest64() uint64 {
	if a.kind == addrKind64Broadcast {
		return 0xFFFF
	}
	return a.a64
}

// dest16 is the 16-bit destination field for transmit frames.
func (a Addr) dest16() uint16 {
	if a.kind == addrKind16Broadcast {
		return 0xFFFF
	}
	return a.a16
}

// remote64 is the 64-bit field of a remote AT command. When the destination
// is named by its 16-bit address the field carries the FF FE filler.
func (a Addr) remote64() uint64 {
	switch a.kind {
	case addrKind64:
		return a.a64
	case addrKind64Broadcast:
		return 0xFFFF
	default:
		return 0xFFFE
	}
}

// remote16 is the 16-bit field of a remote AT command. When the destination
// is named by its 64-bit address the field carries the FF FE filler.
func (a Addr) remote16() uint16 {
	switch a.kind {
	case addrKind16:
		return a.a16
	case addrKind16Broadcast:
		return 0xFFFF
	default:
		return 0xFFFE
	}
}

// Packet is an unescaped API frame payload in a fixed holder, copied by
// value through hub channels and TX queues. Only the first Len bytes of
// Data are valid.
type Packet struct {
	Len  uint16
	Data [MaxFrame]byte
}

// PacketOf copies b into a Packet, truncating at MaxFrame bytes.
func PacketOf(b []byte) Packet {
	var p Packet
	p.Len = uint16(copy(p.Data[:], b))
	return p
}

// Bytes returns the valid prefix of the packet payload.
func (p *Packet) Bytes() []byte { return p.Data[:p.Len] }
