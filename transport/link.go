package transport

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	proto "github.com/ystepanoff/joylink/protocol"
)

// SendStatus is the delivery outcome reported after a frame left the radio.
type SendStatus uint8

const (
	SendSuccess SendStatus = iota
	SendFail
)

func (s SendStatus) String() string {
	switch s {
	case SendSuccess:
		return "Success"
	case SendFail:
		return "Fail"
	default:
		return "Unknown"
	}
}

// SendCallback is invoked on the link's worker goroutine once per accepted
// frame. It must not block.
type SendCallback func(dst proto.HardwareAddr, status SendStatus)

// DefaultQueueSize is the number of frames Send may have outstanding.
const DefaultQueueSize = 8

type outbound struct {
	peer    proto.PeerInfo
	seq     uint32
	payload []byte
}

// Link is the connectionless sender side of the radio transport. Send only
// validates and queues; delivery happens on a worker goroutine that makes a
// single attempt per frame and reports the outcome through the callback.
type Link struct {
	driver     RadioDriver
	log        zerolog.Logger
	self       proto.HardwareAddr
	ackTimeout time.Duration
	queueSize  int

	mu          sync.Mutex
	peers       map[proto.HardwareAddr]*proto.Peer
	onSent      SendCallback
	queue       chan outbound
	done        chan struct{}
	wg          sync.WaitGroup
	seq         uint32
	initialised bool
}

func NewLinkWithDriver(d RadioDriver, logger zerolog.Logger) *Link {
	return &Link{
		driver:     d,
		log:        logger.With().Str("component", "link").Logger(),
		ackTimeout: proto.AckTimeout * time.Millisecond,
		queueSize:  DefaultQueueSize,
		peers:      make(map[proto.HardwareAddr]*proto.Peer),
	}
}

// SetAckTimeout changes how long the worker waits for a link-level ack.
// It only takes effect when called before Init.
func (l *Link) SetAckTimeout(d time.Duration) {
	l.mu.Lock()
	l.ackTimeout = d
	l.mu.Unlock()
}

// SetQueueSize changes the outbound queue capacity. It only takes effect
// when called before Init.
func (l *Link) SetQueueSize(n int) {
	l.mu.Lock()
	l.queueSize = n
	l.mu.Unlock()
}

func (l *Link) SetMode(mode Mode) error {
	if err := l.driver.SetMode(mode); err != nil {
		return fmt.Errorf("set %s mode: %w", mode, err)
	}
	return nil
}

func (l *Link) HardwareAddr() proto.HardwareAddr { return l.driver.HardwareAddr() }

// Init powers the radio up and starts the delivery worker. Calling it on an
// initialised link is a no-op.
func (l *Link) Init() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.initialised {
		return nil
	}
	if err := l.driver.Init(); err != nil {
		return fmt.Errorf("radio init: %w", err)
	}

	l.self = l.driver.HardwareAddr()
	l.queue = make(chan outbound, l.queueSize)
	l.done = make(chan struct{})
	l.initialised = true

	l.wg.Add(1)
	go l.worker(l.queue, l.done, l.ackTimeout)

	l.log.Debug().Stringer("addr", l.self).Msg("link initialised")
	return nil
}

// Deinit stops the worker and forgets every peer. Frames still queued are
// dropped without a callback.
func (l *Link) Deinit() {
	l.mu.Lock()
	if !l.initialised {
		l.mu.Unlock()
		return
	}
	l.initialised = false
	done := l.done
	clear(l.peers)
	l.mu.Unlock()

	close(done)
	l.wg.Wait()
}

func (l *Link) RegisterSendCallback(cb SendCallback) {
	l.mu.Lock()
	l.onSent = cb
	l.mu.Unlock()
}

func (l *Link) AddPeer(info proto.PeerInfo) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.initialised {
		return proto.ErrNotInit
	}
	if err := info.Validate(); err != nil {
		return err
	}
	if _, ok := l.peers[info.Addr]; ok {
		return proto.ErrPeerExists
	}
	if len(l.peers) >= proto.MaxPeers {
		return proto.ErrPeerListFull
	}
	l.peers[info.Addr] = proto.NewPeer(info)
	return nil
}

func (l *Link) DelPeer(addr proto.HardwareAddr) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.initialised {
		return proto.ErrNotInit
	}
	if _, ok := l.peers[addr]; !ok {
		return proto.ErrPeerNotFound
	}
	delete(l.peers, addr)
	return nil
}

// Peers returns the registered peers ordered by address.
func (l *Link) Peers() []proto.PeerInfo {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]proto.PeerInfo, 0, len(l.peers))
	for _, p := range l.peers {
		out = append(out, p.PeerInfo)
	}
	slices.SortFunc(out, func(a, b proto.PeerInfo) int { return bytes.Compare(a.Addr[:], b.Addr[:]) })
	return out
}

// Send queues data for dst and returns immediately. A nil error means the
// frame was accepted for transmission, not that it was delivered.
func (l *Link) Send(dst proto.HardwareAddr, data []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.initialised {
		return proto.ErrNotInit
	}
	if len(data) == 0 || len(data) > proto.MaxPayloadSize {
		return proto.ErrInvalidPayload
	}
	peer, ok := l.peers[dst]
	if !ok {
		return proto.ErrPeerNotFound
	}

	payload := make([]byte, len(data))
	copy(payload, data)

	select {
	case l.queue <- outbound{peer: peer.PeerInfo, seq: l.seq, payload: payload}:
		l.seq++
		return nil
	default:
		return proto.ErrNoMem
	}
}

func (l *Link) worker(queue <-chan outbound, done <-chan struct{}, ackTimeout time.Duration) {
	defer l.wg.Done()
	for {
		select {
		case <-done:
			return
		case out := <-queue:
			status := l.deliver(out, ackTimeout)

			l.mu.Lock()
			cb := l.onSent
			if p, ok := l.peers[out.peer.Addr]; ok && status == SendSuccess {
				p.UpdateLastSeen()
			}
			l.mu.Unlock()

			if cb != nil {
				cb(out.peer.Addr, status)
			}
		}
	}
}

// deliver makes exactly one attempt: transmit, then wait for the matching ack.
func (l *Link) deliver(out outbound, ackTimeout time.Duration) SendStatus {
	if out.peer.Channel != proto.CurrentChannel {
		if err := l.driver.SetChannel(out.peer.Channel); err != nil {
			l.log.Debug().Err(err).Uint8("channel", out.peer.Channel).Msg("channel switch failed")
			return SendFail
		}
	}

	frame := &proto.Frame{
		Dst:     out.peer.Addr,
		Src:     l.self,
		Type:    proto.FrameTypeData,
		Seq:     out.seq,
		Payload: out.payload,
	}
	if err := l.driver.Tx(proto.EncodeFrame(frame)); err != nil {
		l.log.Debug().Err(err).Uint32("seq", out.seq).Msg("tx failed")
		return SendFail
	}

	deadline := time.Now().Add(ackTimeout)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return SendFail
		}
		data, err := l.driver.Rx(remaining)
		if err != nil {
			if !errors.Is(err, proto.ErrTimeout) {
				l.log.Debug().Err(err).Uint32("seq", out.seq).Msg("rx failed while waiting for ack")
			}
			return SendFail
		}
		ack := proto.DecodeFrame(data)
		if ack != nil && ack.Type == proto.FrameTypeAck && ack.Seq == out.seq &&
			ack.Src == out.peer.Addr && ack.Dst == l.self {
			return SendSuccess
		}
	}
}
