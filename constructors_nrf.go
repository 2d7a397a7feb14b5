//go:build tinygo || baremetal

// This file is built only for embedded targets (using real radio hardware).
package joylink

import (
	"github.com/rs/zerolog"

	"github.com/ystepanoff/joylink/driver/nrf"
	"github.com/ystepanoff/joylink/transport"
)

func NewLink(logger zerolog.Logger) *transport.Link {
	return transport.NewLinkWithDriver(nrf.New(), logger)
}

func NewReceiver(logger zerolog.Logger) *transport.Receiver {
	return transport.NewReceiverWithDriver(nrf.New(), logger)
}
