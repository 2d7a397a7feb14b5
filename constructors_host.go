//go:build !tinygo && !baremetal

// This file is built only for non-embedded targets (host-based testing).
package joylink

import (
	"github.com/rs/zerolog"

	"github.com/ystepanoff/joylink/driver/stub"
	"github.com/ystepanoff/joylink/transport"
)

// HostAddr is the address given to radios created without a medium. It is
// locally administered so it never collides with real hardware.
var HostAddr = HardwareAddr{0x02, 0x00, 0x00, 0x00, 0x00, 0x01}

func NewLink(logger zerolog.Logger) *transport.Link {
	return transport.NewLinkWithDriver(stub.New(HostAddr), logger)
}

func NewReceiver(logger zerolog.Logger) *transport.Receiver {
	return transport.NewReceiverWithDriver(stub.New(HostAddr), logger)
}

// NewLinkOn attaches a sender with addr to a shared in-process medium.
func NewLinkOn(ether *stub.Ether, addr HardwareAddr, logger zerolog.Logger) *transport.Link {
	return transport.NewLinkWithDriver(ether.Attach(addr), logger)
}

func NewReceiverOn(ether *stub.Ether, addr HardwareAddr, logger zerolog.Logger) *transport.Receiver {
	return transport.NewReceiverWithDriver(ether.Attach(addr), logger)
}
