// Package joylink is the entry point to the joystick telemetry link: a
// sampler that reads the stick and a radio link that carries the records.
package joylink

import (
	"github.com/ystepanoff/joylink/config"
	"github.com/ystepanoff/joylink/protocol"
	"github.com/ystepanoff/joylink/sampler"
	"github.com/ystepanoff/joylink/transport"
)

// The constructors are split into build-tag specific files:
// - constructors_nrf.go - for embedded platforms (//go:build tinygo || baremetal)
// - constructors_host.go - for development/testing (//go:build !tinygo && !baremetal)

type (
	HardwareAddr    = protocol.HardwareAddr
	TelemetryRecord = protocol.TelemetryRecord
	PeerInfo        = protocol.PeerInfo
	Link            = transport.Link
	Receiver        = transport.Receiver
	SendStatus      = transport.SendStatus
	Config          = config.Config
	Sampler         = sampler.Sampler
)

// Error values exposed in the public API. protocol.Code gives their
// numeric codes.
var (
	ErrFail           = protocol.ErrFail
	ErrTimeout        = protocol.ErrTimeout
	ErrNotInit        = protocol.ErrNotInit
	ErrInvalidArg     = protocol.ErrInvalidArg
	ErrNoMem          = protocol.ErrNoMem
	ErrPeerListFull   = protocol.ErrPeerListFull
	ErrPeerNotFound   = protocol.ErrPeerNotFound
	ErrPeerExists     = protocol.ErrPeerExists
	ErrInvalidPayload = protocol.ErrInvalidPayload
	ErrInvalidChannel = protocol.ErrInvalidChannel
)

const (
	SendSuccess = transport.SendSuccess
	SendFail    = transport.SendFail

	TelemetryRecordSize = protocol.TelemetryRecordSize
)

func ParseHardwareAddr(s string) (HardwareAddr, error) { return protocol.ParseHardwareAddr(s) }

func ErrorCode(err error) int32 { return protocol.Code(err) }
