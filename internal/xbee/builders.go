package xbee

import "encoding/binary"

// The command builders marshal typed arguments straight into the incremental
// encoder; nothing is concatenated up front. A frame id of 0 asks the module
// to suppress the matching status response and is passed through unmodified.

// ATCommand queries or sets a local module parameter.
// Payload layout: id, frame_id, at[0], at[1], params.
func (d *Device) ATCommand(frameID byte, cmd [2]byte, params []byte) error {
	return d.atFrame(APIATCommand, frameID, cmd, params)
}

// ATQueueParameter is ATCommand without an immediate apply: the value is
// queued until an AC or CN command commits it.
func (d *Device) ATQueueParameter(frameID byte, cmd [2]byte, params []byte) error {
	return d.atFrame(APIATQueueParameter, frameID, cmd, params)
}

func (d *Device) atFrame(api, frameID byte, cmd [2]byte, params []byte) error {
	e := encoder{w: d.t}
	if err := e.begin(4 + len(params)); err != nil {
		return err
	}
	if err := e.write([]byte{api, frameID, cmd[0], cmd[1]}); err != nil {
		return err
	}
	if err := e.write(params); err != nil {
		return err
	}
	return e.finish()
}

// RemoteATCommand addresses an AT command to another module over the air.
// Both address fields are always present; whichever one the destination
// does not name carries the FF FE filler.
func (d *Device) RemoteATCommand(frameID byte, dst Addr, options byte, cmd [2]byte, params []byte) error {
	var hdr [15]byte
	hdr[0] = APIRemoteATCommand
	hdr[1] = frameID
	binary.BigEndian.PutUint64(hdr[2:10], dst.remote64())
	binary.BigEndian.PutUint16(hdr[10:12], dst.remote16())
	hdr[12] = options
	hdr[13], hdr[14] = cmd[0], cmd[1]
	e := encoder{w: d.t}
	if err := e.begin(len(hdr) + len(params)); err != nil {
		return err
	}
	if err := e.write(hdr[:]); err != nil {
		return err
	}
	if err := e.write(params); err != nil {
		return err
	}
	return e.finish()
}

// Transmit sends an RF data frame. The destination address kind selects
// between the 64-bit (API 0x00) and 16-bit (API 0x01) frame types.
func (d *Device) Transmit(frameID byte, dst Addr, options byte, data []byte) error {
	e := encoder{w: d.t}
	if dst.is64() {
		var hdr [11]byte
		hdr[0] = APITransmit64
		hdr[1] = frameID
		binary.BigEndian.PutUint64(hdr[2:10], dst.dest64())
		hdr[10] = options
		if err := e.begin(len(hdr) + len(data)); err != nil {
			return err
		}
		if err := e.write(hdr[:]); err != nil {
			return err
		}
	} else {
		var hdr [5]byte
		hdr[0] = APITransmit16
		hdr[1] = frameID
		binary.BigEndian.PutUint16(hdr[2:4], dst.dest16())
		hdr[4] = options
		if err := e.begin(len(hdr) + len(data)); err != nil {
			return err
		}
		if err := e.write(hdr[:]); err != nil {
			return err
		}
	}
	if err := e.write(data); err != nil {
		return err
	}
	return e.finish()
}
