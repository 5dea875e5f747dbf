package transport

import "github.com/kstaniek/go-xbee-server/internal/xbee"

// PacketSink is a generic API-frame transmission target.
type PacketSink interface {
	SendPacket(xbee.Packet) error
}

// Compile-time assertion that AsyncTx satisfies the sink contract.
var _ PacketSink = (*AsyncTx)(nil)
