//go:build !tinygo && !baremetal

package joylink

import (
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ystepanoff/joylink/driver/stub"
)

func TestErrorCode(t *testing.T) {
	assert.Equal(t, int32(0), ErrorCode(nil))
	assert.Equal(t, int32(-1), ErrorCode(ErrFail))
	assert.Equal(t, int32(0x3065), ErrorCode(fmt.Errorf("send: %w", ErrNotInit)))
}

func TestHostLinkHasNoListener(t *testing.T) {
	link := NewLink(zerolog.Nop())
	link.SetAckTimeout(10 * time.Millisecond)
	require.NoError(t, link.Init())
	defer link.Deinit()

	assert.Equal(t, HostAddr, link.HardwareAddr())
	peer, err := ParseHardwareAddr("D0:EF:76:EE:FD:A4")
	require.NoError(t, err)

	assert.ErrorIs(t, link.Send(peer, []byte{1}), ErrPeerNotFound)
	require.NoError(t, link.AddPeer(PeerInfo{Addr: peer}))

	statuses := make(chan SendStatus, 1)
	link.RegisterSendCallback(func(_ HardwareAddr, s SendStatus) { statuses <- s })
	require.NoError(t, link.Send(peer, []byte{1}))
	select {
	case s := <-statuses:
		assert.Equal(t, SendFail, s)
	case <-time.After(2 * time.Second):
		t.Fatal("no delivery report")
	}
}

func TestLinkOnSharedEther(t *testing.T) {
	ether := stub.NewEther()
	peer := HardwareAddr{0xD0, 0xEF, 0x76, 0xEE, 0xFD, 0xA4}

	rx := NewReceiverOn(ether, peer, zerolog.Nop())
	require.NoError(t, rx.Init())
	got := make(chan TelemetryRecord, 1)
	rx.OnReceive(func(_ HardwareAddr, payload []byte) {
		var r TelemetryRecord
		if err := r.UnmarshalBinary(payload); err == nil {
			got <- r
		}
	})
	rx.Listen()
	defer rx.StopListening()

	link := NewLinkOn(ether, HostAddr, zerolog.Nop())
	require.NoError(t, link.Init())
	defer link.Deinit()
	require.NoError(t, link.AddPeer(PeerInfo{Addr: peer}))

	data, err := TelemetryRecord{AxisX: 7, AxisY: 8}.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, data, TelemetryRecordSize)
	require.NoError(t, link.Send(peer, data))

	select {
	case r := <-got:
		assert.Equal(t, TelemetryRecord{AxisX: 7, AxisY: 8}, r)
	case <-time.After(2 * time.Second):
		t.Fatal("record not received")
	}
}
