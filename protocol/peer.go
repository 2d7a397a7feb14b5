package protocol

import "time"

// PeerInfo describes a remote radio the sender may address.
// Channel 0 keeps the radio on whatever channel it is currently tuned to.
type PeerInfo struct {
	Addr    HardwareAddr
	Channel uint8
	Encrypt bool
}

// Peer is a PeerInfo plus the bookkeeping kept by higher layers.
type Peer struct {
	PeerInfo
	LastSeen int64 // unix milli
}

func NewPeer(info PeerInfo) *Peer {
	return &Peer{PeerInfo: info, LastSeen: time.Now().UnixMilli()}
}

func (p *Peer) UpdateLastSeen() { p.LastSeen = time.Now().UnixMilli() }

func (p *Peer) IsAlive() bool { return (time.Now().UnixMilli() - p.LastSeen) < DeviceTimeout }

// Validate checks the parts of a PeerInfo the link can honour.
func (p PeerInfo) Validate() error {
	if !p.Addr.IsUnicast() {
		return ErrInvalidAddr
	}
	if p.Channel > MaxChannel {
		return ErrInvalidChannel
	}
	if p.Encrypt {
		// the link carries plaintext only
		return ErrInvalidArg
	}
	return nil
}
