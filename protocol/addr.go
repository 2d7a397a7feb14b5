package protocol

import (
	"encoding/hex"
	"strings"
)

// HardwareAddr is the 6-byte address a radio is known by on the link.
type HardwareAddr [AddrSize]byte

// BroadcastAddr reaches every receiver on the channel.
var BroadcastAddr = HardwareAddr{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}

// ParseHardwareAddr accepts six hex octets separated by ':' or '-'.
func ParseHardwareAddr(s string) (HardwareAddr, error) {
	var a HardwareAddr
	s = strings.TrimSpace(s)
	if len(s) != 3*AddrSize-1 {
		return a, ErrInvalidAddr
	}
	sep := s[2]
	if sep != ':' && sep != '-' {
		return a, ErrInvalidAddr
	}
	for i := 0; i < AddrSize; i++ {
		if i > 0 && s[3*i-1] != sep {
			return a, ErrInvalidAddr
		}
		if _, err := hex.Decode(a[i:i+1], []byte(s[3*i:3*i+2])); err != nil {
			return HardwareAddr{}, ErrInvalidAddr
		}
	}
	return a, nil
}

func (a HardwareAddr) String() string {
	const hexd = "0123456789ABCDEF"
	out := make([]byte, 0, 3*AddrSize-1)
	for i, b := range a {
		if i > 0 {
			out = append(out, ':')
		}
		out = append(out, hexd[b>>4], hexd[b&0x0F])
	}
	return string(out)
}

func (a HardwareAddr) IsZero() bool { return a == HardwareAddr{} }

func (a HardwareAddr) IsBroadcast() bool { return a == BroadcastAddr }

// IsUnicast reports whether a can be registered as a peer.
func (a HardwareAddr) IsUnicast() bool { return !a.IsZero() && !a.IsBroadcast() }

// MarshalText lets the address round-trip through config files and logs.
func (a HardwareAddr) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

func (a *HardwareAddr) UnmarshalText(text []byte) error {
	parsed, err := ParseHardwareAddr(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

func (a *HardwareAddr) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	return a.UnmarshalText([]byte(s))
}
