package transport

import (
	"time"

	proto "github.com/ystepanoff/joylink/protocol"
)

// Mode selects the role the radio plays on the link.
type Mode uint8

const (
	ModeStation Mode = iota + 1
	ModeAccessPoint
)

func (m Mode) String() string {
	switch m {
	case ModeStation:
		return "station"
	case ModeAccessPoint:
		return "access-point"
	default:
		return "unknown"
	}
}

// RadioDriver is the interface that wraps the basic radio operations.
type RadioDriver interface {
	Init() error
	SetMode(mode Mode) error
	HardwareAddr() proto.HardwareAddr
	SetChannel(channel uint8) error
	Tx(data []byte) error
	Rx(timeout time.Duration) ([]byte, error)
}
