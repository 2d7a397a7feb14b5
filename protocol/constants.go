package protocol

// Generic radio & protocol constants (platform independent). All higher layers should depend on this file.
const (
	// Frame sizing
	// Layout:
	//   Length (1) | Dst (6) | Src (6) | Type (1) | Seq (4) | Payload (0-105) | CRC32 (4) | Terminal (1)
	// Length counts everything after the length byte, i.e., total Frame size minus 1.

	// Sizes of individual components
	LengthFieldSize   = 1
	AddrSize          = 6
	TypeFieldSize     = 1
	SequenceFieldSize = 4
	CRCSize           = 4 // CRC32, little-endian
	TerminalSize      = 1

	// Header: Length(1)+Dst(6)+Src(6)+Type(1)+Seq(4) = 18 bytes before payload
	FrameHeaderSize = LengthFieldSize + 2*AddrSize + TypeFieldSize + SequenceFieldSize

	// Application-level payload allowance
	MaxPayloadSize = MaxFrameSize - FrameHeaderSize - CRCSize - TerminalSize

	// Total maximum Frame length on air (including length, CRC, Terminal)
	MaxFrameSize = 128

	// RF defaults. Channel 0 means "stay on the current channel".
	CurrentChannel = 0
	DefaultChannel = 7
	MaxChannel     = 125

	// Frame types
	FrameTypeData = 0x02
	FrameTypeAck  = 0x04

	// Peer table capacity on the sender
	MaxPeers = 20

	// Timeouts (milliseconds)
	AckTimeout    = 20
	DeviceTimeout = 15000

	// internal helper (bytes in header after length byte)
	headerWithoutLen = FrameHeaderSize - LengthFieldSize

	// Terminal byte value appended to the end of every Frame
	FrameTerminal = 0x55
)
