package protocol

import (
	"encoding/binary"
	"hash/crc32"
)

// Frame represents a frame of data transferred over the radio link.
// Layout: Length(1) | Dst(6) | Src(6) | Type(1) | Seq(4) | Payload(0-105) | CRC32(4) | Terminal(1)
// Length counts everything AFTER the length byte (so full Frame minus 1).
// Total size max 128 bytes.
type Frame struct {
	Length  byte
	Dst     HardwareAddr
	Src     HardwareAddr
	Type    byte
	Seq     uint32
	Payload []byte
	CRC     uint32 // decoded Frames only; ignored by encoder
}

const (
	dstOffset  = LengthFieldSize
	srcOffset  = dstOffset + AddrSize
	typeOffset = srcOffset + AddrSize
	seqOffset  = typeOffset + TypeFieldSize
)

func EncodeFrame(p *Frame) []byte {
	if p == nil {
		return make([]byte, 0)
	}

	payloadLen := 0
	if p.Payload != nil {
		if len(p.Payload) > MaxPayloadSize {
			p.Payload = p.Payload[:MaxPayloadSize]
		}
		payloadLen = len(p.Payload)
	}

	bodyLen := headerWithoutLen + payloadLen + CRCSize + TerminalSize // bytes AFTER Length field
	totalLen := LengthFieldSize + bodyLen

	data := make([]byte, totalLen)
	data[0] = byte(bodyLen)
	copy(data[dstOffset:srcOffset], p.Dst[:])
	copy(data[srcOffset:typeOffset], p.Src[:])
	data[typeOffset] = p.Type
	binary.LittleEndian.PutUint32(data[seqOffset:FrameHeaderSize], p.Seq)

	if payloadLen > 0 {
		copy(data[FrameHeaderSize:], p.Payload[:payloadLen])
	}

	// CRC32 of payload, zero when there is none
	var crc uint32
	if payloadLen > 0 {
		crc = crc32.ChecksumIEEE(p.Payload[:payloadLen])
	}
	crcPos := FrameHeaderSize + payloadLen
	binary.LittleEndian.PutUint32(data[crcPos:crcPos+CRCSize], crc)

	data[totalLen-1] = FrameTerminal

	p.Length = byte(bodyLen)

	return data
}

func DecodeFrame(data []byte) *Frame {
	// Must at least fit header + CRC + Terminal
	minLen := FrameHeaderSize + CRCSize + TerminalSize
	if len(data) < minLen {
		return nil
	}

	bodyLen := int(data[0])
	if bodyLen == 0 || (bodyLen+LengthFieldSize) > len(data) || bodyLen+LengthFieldSize > MaxFrameSize {
		return nil
	}

	if data[LengthFieldSize+bodyLen-1] != FrameTerminal {
		return nil
	}

	payloadLen := bodyLen - headerWithoutLen - (CRCSize + TerminalSize)
	if payloadLen < 0 || payloadLen > MaxPayloadSize {
		return nil
	}

	crcOffset := FrameHeaderSize + payloadLen
	recvCRC := binary.LittleEndian.Uint32(data[crcOffset : crcOffset+CRCSize])

	var calcCRC uint32
	if payloadLen > 0 {
		calcCRC = crc32.ChecksumIEEE(data[FrameHeaderSize:crcOffset])
	}
	if recvCRC != calcCRC {
		return nil
	}

	p := &Frame{
		Length: byte(bodyLen),
		Type:   data[typeOffset],
		Seq:    binary.LittleEndian.Uint32(data[seqOffset:FrameHeaderSize]),
		CRC:    recvCRC,
	}
	copy(p.Dst[:], data[dstOffset:srcOffset])
	copy(p.Src[:], data[srcOffset:typeOffset])

	p.Payload = make([]byte, payloadLen)
	copy(p.Payload, data[FrameHeaderSize:crcOffset])

	return p
}

// IsFor reports whether the frame is addressed to addr, directly or by broadcast.
func (p *Frame) IsFor(addr HardwareAddr) bool {
	return p.Dst == addr || p.Dst.IsBroadcast()
}
