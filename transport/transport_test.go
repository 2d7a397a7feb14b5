package transport

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	proto "github.com/ystepanoff/joylink/protocol"
)

var (
	senderAddr   = proto.HardwareAddr{0x24, 0x6F, 0x28, 0x01, 0x02, 0x03}
	receiverAddr = proto.HardwareAddr{0xD0, 0xEF, 0x76, 0xEE, 0xFD, 0xA4}
)

// MockDriver implements the RadioDriver interface for testing
type MockDriver struct {
	mutex   sync.Mutex
	addr    proto.HardwareAddr
	mode    Mode
	channel uint8
	initErr error
	txErr   error
	txLog   [][]byte
	rxData  [][]byte
	peers   []*MockDriver
}

func NewMockDriver(addr proto.HardwareAddr) *MockDriver {
	return &MockDriver{addr: addr}
}

func (d *MockDriver) Init() error { return d.initErr }

func (d *MockDriver) SetMode(mode Mode) error {
	if mode != ModeStation {
		return proto.ErrInterface
	}
	d.mutex.Lock()
	d.mode = mode
	d.mutex.Unlock()
	return nil
}

func (d *MockDriver) HardwareAddr() proto.HardwareAddr { return d.addr }

func (d *MockDriver) SetChannel(channel uint8) error {
	d.mutex.Lock()
	d.channel = channel
	d.mutex.Unlock()
	return nil
}

func (d *MockDriver) Tx(data []byte) error {
	d.mutex.Lock()
	if d.txErr != nil {
		d.mutex.Unlock()
		return d.txErr
	}
	// Make a copy to avoid data races
	dataCopy := make([]byte, len(data))
	copy(dataCopy, data)
	d.txLog = append(d.txLog, dataCopy)
	peers := d.peers
	d.mutex.Unlock()

	for _, p := range peers {
		p.InjectRx(dataCopy)
	}
	return nil
}

func (d *MockDriver) Rx(timeout time.Duration) ([]byte, error) {
	deadline := time.Now().Add(timeout)
	for {
		d.mutex.Lock()
		if len(d.rxData) > 0 {
			data := d.rxData[0]
			d.rxData = d.rxData[1:]
			d.mutex.Unlock()
			return data, nil
		}
		d.mutex.Unlock()

		if time.Now().After(deadline) {
			return nil, proto.ErrTimeout
		}
		time.Sleep(time.Millisecond)
	}
}

// Test helper methods
func (d *MockDriver) GetTxLog() [][]byte {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	result := make([][]byte, len(d.txLog))
	for i, data := range d.txLog {
		result[i] = make([]byte, len(data))
		copy(result[i], data)
	}
	return result
}

func (d *MockDriver) ClearTxLog() {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.txLog = d.txLog[:0]
}

func (d *MockDriver) InjectRx(data []byte) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	dataCopy := make([]byte, len(data))
	copy(dataCopy, data)
	d.rxData = append(d.rxData, dataCopy)
}

// ConnectDrivers forwards each driver's transmissions to the other.
func ConnectDrivers(a, b *MockDriver) {
	a.mutex.Lock()
	a.peers = append(a.peers, b)
	a.mutex.Unlock()

	b.mutex.Lock()
	b.peers = append(b.peers, a)
	b.mutex.Unlock()
}

type sendResult struct {
	dst    proto.HardwareAddr
	status SendStatus
}

func newTestLink(t *testing.T, d RadioDriver) (*Link, chan sendResult) {
	t.Helper()
	return newTestLinkWithAckTimeout(t, d, proto.AckTimeout*time.Millisecond)
}

func newTestLinkWithAckTimeout(t *testing.T, d RadioDriver, ackTimeout time.Duration) (*Link, chan sendResult) {
	t.Helper()

	link := NewLinkWithDriver(d, zerolog.Nop())
	link.SetAckTimeout(ackTimeout)
	require.NoError(t, link.Init())
	t.Cleanup(link.Deinit)

	results := make(chan sendResult, 16)
	link.RegisterSendCallback(func(dst proto.HardwareAddr, status SendStatus) {
		results <- sendResult{dst: dst, status: status}
	})
	return link, results
}

func waitResult(t *testing.T, results <-chan sendResult) sendResult {
	t.Helper()
	select {
	case r := <-results:
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("no send callback")
		return sendResult{}
	}
}

func TestLink_SendFrame(t *testing.T) {
	driver := NewMockDriver(senderAddr)
	link, results := newTestLink(t, driver)
	require.NoError(t, link.AddPeer(proto.PeerInfo{Addr: receiverAddr}))

	tests := []struct {
		name    string
		payload []byte
	}{
		{name: "telemetry record", payload: []byte{0x00, 0x08, 0x00, 0x04, 0x00, 0x00}},
		{name: "single byte", payload: []byte{0x42}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			driver.ClearTxLog()

			require.NoError(t, link.Send(receiverAddr, tt.payload))
			waitResult(t, results)

			txLog := driver.GetTxLog()
			require.Len(t, txLog, 1, "exactly one transmission, no retry")

			sent := proto.DecodeFrame(txLog[0])
			require.NotNil(t, sent, "transmitted invalid frame")
			assert.Equal(t, byte(proto.FrameTypeData), sent.Type)
			assert.Equal(t, senderAddr, sent.Src)
			assert.Equal(t, receiverAddr, sent.Dst)
			assert.Equal(t, tt.payload, sent.Payload)
		})
	}
}

func TestLink_NoAckReportsFail(t *testing.T) {
	driver := NewMockDriver(senderAddr)
	link, results := newTestLink(t, driver)
	require.NoError(t, link.AddPeer(proto.PeerInfo{Addr: receiverAddr}))

	// Accepted for transmission even though nobody will answer.
	require.NoError(t, link.Send(receiverAddr, []byte{1}))

	r := waitResult(t, results)
	assert.Equal(t, receiverAddr, r.dst)
	assert.Equal(t, SendFail, r.status)
	assert.Len(t, driver.GetTxLog(), 1)
}

func TestLink_TxErrorReportsFail(t *testing.T) {
	driver := NewMockDriver(senderAddr)
	driver.txErr = errors.New("radio busy")
	link, results := newTestLink(t, driver)
	require.NoError(t, link.AddPeer(proto.PeerInfo{Addr: receiverAddr}))

	require.NoError(t, link.Send(receiverAddr, []byte{1}))
	assert.Equal(t, SendFail, waitResult(t, results).status)
}

func TestLink_Delivery(t *testing.T) {
	driverTx := NewMockDriver(senderAddr)
	driverRx := NewMockDriver(receiverAddr)
	ConnectDrivers(driverTx, driverRx)

	rx := NewReceiverWithDriver(driverRx, zerolog.Nop())
	require.NoError(t, rx.Init())

	received := make(chan []byte, 4)
	rx.OnReceive(func(src proto.HardwareAddr, payload []byte) {
		assert.Equal(t, senderAddr, src)
		received <- payload
	})
	rx.Listen()
	t.Cleanup(rx.StopListening)

	link, results := newTestLinkWithAckTimeout(t, driverTx, 500*time.Millisecond)
	require.NoError(t, link.AddPeer(proto.PeerInfo{Addr: receiverAddr}))

	payload := []byte{0x00, 0x08, 0x00, 0x04, 0x01, 0x00}
	require.NoError(t, link.Send(receiverAddr, payload))

	select {
	case got := <-received:
		assert.Equal(t, payload, got)
	case <-time.After(2 * time.Second):
		t.Fatal("receiver got nothing")
	}

	r := waitResult(t, results)
	assert.Equal(t, SendSuccess, r.status)
	assert.Equal(t, []proto.HardwareAddr{senderAddr}, rx.Senders())
	assert.True(t, rx.IsSenderConnected(senderAddr))
}

func TestLink_SetAckTimeoutAfterInit(t *testing.T) {
	// The worker captures the timeout at Init; a later change must not race it.
	driver := NewMockDriver(senderAddr)
	link, results := newTestLink(t, driver)
	link.SetAckTimeout(time.Hour)
	require.NoError(t, link.AddPeer(proto.PeerInfo{Addr: receiverAddr}))

	require.NoError(t, link.Send(receiverAddr, []byte{1}))
	assert.Equal(t, SendFail, waitResult(t, results).status)
}

func TestLink_SendErrors(t *testing.T) {
	other := proto.HardwareAddr{0x02, 0, 0, 0, 0, 1}

	t.Run("not initialised", func(t *testing.T) {
		link := NewLinkWithDriver(NewMockDriver(senderAddr), zerolog.Nop())
		assert.ErrorIs(t, link.Send(receiverAddr, []byte{1}), proto.ErrNotInit)
		assert.ErrorIs(t, link.AddPeer(proto.PeerInfo{Addr: receiverAddr}), proto.ErrNotInit)
	})

	t.Run("unknown peer", func(t *testing.T) {
		link, _ := newTestLink(t, NewMockDriver(senderAddr))
		assert.ErrorIs(t, link.Send(other, []byte{1}), proto.ErrPeerNotFound)
	})

	t.Run("bad payload", func(t *testing.T) {
		link, _ := newTestLink(t, NewMockDriver(senderAddr))
		require.NoError(t, link.AddPeer(proto.PeerInfo{Addr: receiverAddr}))
		assert.ErrorIs(t, link.Send(receiverAddr, nil), proto.ErrInvalidPayload)
		assert.ErrorIs(t, link.Send(receiverAddr, make([]byte, proto.MaxPayloadSize+1)), proto.ErrInvalidPayload)
	})

	t.Run("queue full", func(t *testing.T) {
		driver := NewMockDriver(senderAddr)
		link := NewLinkWithDriver(driver, zerolog.Nop())
		link.SetQueueSize(1)
		link.SetAckTimeout(200 * time.Millisecond)
		require.NoError(t, link.Init())
		t.Cleanup(link.Deinit)
		require.NoError(t, link.AddPeer(proto.PeerInfo{Addr: receiverAddr}))

		var err error
		for i := 0; i < 4 && err == nil; i++ {
			err = link.Send(receiverAddr, []byte{byte(i)})
		}
		assert.ErrorIs(t, err, proto.ErrNoMem)
		assert.Equal(t, int32(0x3067), proto.Code(err))
	})
}

func TestLink_Peers(t *testing.T) {
	link, _ := newTestLink(t, NewMockDriver(senderAddr))

	require.NoError(t, link.AddPeer(proto.PeerInfo{Addr: receiverAddr}))
	assert.ErrorIs(t, link.AddPeer(proto.PeerInfo{Addr: receiverAddr}), proto.ErrPeerExists)
	assert.ErrorIs(t, link.AddPeer(proto.PeerInfo{Addr: proto.BroadcastAddr}), proto.ErrInvalidAddr)
	assert.ErrorIs(t, link.AddPeer(proto.PeerInfo{Addr: senderAddr, Encrypt: true}), proto.ErrInvalidArg)

	for i := 1; i < proto.MaxPeers; i++ {
		require.NoError(t, link.AddPeer(proto.PeerInfo{Addr: proto.HardwareAddr{0x02, 0, 0, 0, 0, byte(i)}}))
	}
	assert.ErrorIs(t, link.AddPeer(proto.PeerInfo{Addr: senderAddr}), proto.ErrPeerListFull)

	peers := link.Peers()
	require.Len(t, peers, proto.MaxPeers)
	assert.Equal(t, proto.HardwareAddr{0x02, 0, 0, 0, 0, 1}, peers[0].Addr)

	require.NoError(t, link.DelPeer(receiverAddr))
	assert.ErrorIs(t, link.DelPeer(receiverAddr), proto.ErrPeerNotFound)
}

func TestLink_PeerChannel(t *testing.T) {
	driver := NewMockDriver(senderAddr)
	link, results := newTestLink(t, driver)
	require.NoError(t, link.AddPeer(proto.PeerInfo{Addr: receiverAddr, Channel: 80}))

	require.NoError(t, link.Send(receiverAddr, []byte{1}))
	waitResult(t, results)

	driver.mutex.Lock()
	defer driver.mutex.Unlock()
	assert.Equal(t, uint8(80), driver.channel)
}

func TestLink_InitError(t *testing.T) {
	driver := NewMockDriver(senderAddr)
	driver.initErr = proto.ErrInterface

	link := NewLinkWithDriver(driver, zerolog.Nop())
	err := link.Init()
	require.ErrorIs(t, err, proto.ErrInterface)
	assert.Equal(t, int32(0x306C), proto.Code(err))
	assert.ErrorIs(t, link.Send(receiverAddr, []byte{1}), proto.ErrNotInit)
}

func TestLink_SetMode(t *testing.T) {
	link := NewLinkWithDriver(NewMockDriver(senderAddr), zerolog.Nop())
	assert.NoError(t, link.SetMode(ModeStation))
	assert.ErrorIs(t, link.SetMode(ModeAccessPoint), proto.ErrInterface)
	assert.Equal(t, senderAddr, link.HardwareAddr())
}

func TestReceiver_IgnoresForeignFrames(t *testing.T) {
	driver := NewMockDriver(receiverAddr)
	rx := NewReceiverWithDriver(driver, zerolog.Nop())
	require.NoError(t, rx.Init())

	called := false
	rx.OnReceive(func(proto.HardwareAddr, []byte) { called = true })

	rx.ProcessFrame(&proto.Frame{Dst: proto.HardwareAddr{0x02, 0, 0, 0, 0, 9}, Src: senderAddr, Type: proto.FrameTypeData, Payload: []byte{1}})
	rx.ProcessFrame(&proto.Frame{Dst: receiverAddr, Src: senderAddr, Type: proto.FrameTypeAck})
	rx.ProcessFrame(nil)

	assert.False(t, called)
	assert.Empty(t, driver.GetTxLog(), "no ack for foreign frames")

	rx.ProcessFrame(&proto.Frame{Dst: receiverAddr, Src: senderAddr, Type: proto.FrameTypeData, Seq: 7, Payload: []byte{1}})
	assert.True(t, called)

	txLog := driver.GetTxLog()
	require.Len(t, txLog, 1)
	ack := proto.DecodeFrame(txLog[0])
	require.NotNil(t, ack)
	assert.Equal(t, byte(proto.FrameTypeAck), ack.Type)
	assert.Equal(t, uint32(7), ack.Seq)
	assert.Equal(t, senderAddr, ack.Dst)
	assert.Equal(t, receiverAddr, ack.Src)
}

func TestReceiver_SetChannel(t *testing.T) {
	rx := NewReceiverWithDriver(NewMockDriver(receiverAddr), zerolog.Nop())
	assert.NoError(t, rx.SetChannel(proto.MaxChannel))
	assert.ErrorIs(t, rx.SetChannel(proto.MaxChannel+1), proto.ErrInvalidChannel)
}
