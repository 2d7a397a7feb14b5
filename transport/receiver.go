package transport

import (
	"bytes"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	proto "github.com/ystepanoff/joylink/protocol"
)

// Receiver is the peer end of the link: it acknowledges data frames
// addressed to it and hands their payload to a callback.
type Receiver struct {
	driver RadioDriver
	log    zerolog.Logger
	self   proto.HardwareAddr

	mu        sync.Mutex
	senders   map[proto.HardwareAddr]*proto.Peer
	onReceive func(src proto.HardwareAddr, payload []byte)

	listening atomic.Bool
	wg        sync.WaitGroup
}

func NewReceiverWithDriver(d RadioDriver, logger zerolog.Logger) *Receiver {
	return &Receiver{
		driver:  d,
		log:     logger.With().Str("component", "receiver").Logger(),
		senders: make(map[proto.HardwareAddr]*proto.Peer),
	}
}

func (r *Receiver) Init() error {
	if err := r.driver.Init(); err != nil {
		return err
	}
	if err := r.driver.SetMode(ModeStation); err != nil {
		return err
	}
	r.self = r.driver.HardwareAddr()
	return nil
}

func (r *Receiver) HardwareAddr() proto.HardwareAddr { return r.self }

func (r *Receiver) SetChannel(ch uint8) error {
	if ch > proto.MaxChannel {
		return proto.ErrInvalidChannel
	}
	return r.driver.SetChannel(ch)
}

// OnReceive registers the payload callback. It runs on the listening
// goroutine; payload is owned by the callee.
func (r *Receiver) OnReceive(cb func(src proto.HardwareAddr, payload []byte)) {
	r.mu.Lock()
	r.onReceive = cb
	r.mu.Unlock()
}

func (r *Receiver) ProcessFrame(frame *proto.Frame) {
	if frame == nil || frame.Type != proto.FrameTypeData || !frame.IsFor(r.self) {
		return
	}

	// Ack straight away so the sender's wait stays short.
	if err := r.SendAck(frame.Src, frame.Seq); err != nil {
		r.log.Warn().Err(err).Stringer("src", frame.Src).Uint32("seq", frame.Seq).Msg("ack failed")
	} else {
		r.log.Debug().Stringer("src", frame.Src).Uint32("seq", frame.Seq).Msg("ack sent")
	}

	r.mu.Lock()
	sender, ok := r.senders[frame.Src]
	if !ok {
		sender = proto.NewPeer(proto.PeerInfo{Addr: frame.Src})
		r.senders[frame.Src] = sender
	}
	sender.UpdateLastSeen()
	cb := r.onReceive
	r.mu.Unlock()

	if cb != nil {
		cb(frame.Src, frame.Payload)
	}
}

func (r *Receiver) Listen() {
	if !r.listening.CompareAndSwap(false, true) {
		return
	}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		for r.listening.Load() {
			if frame := r.ReceiveFrame(100 * time.Millisecond); frame != nil {
				r.ProcessFrame(frame)
			}
		}
	}()
}

// StopListening stops the listening goroutine and waits for it to exit.
func (r *Receiver) StopListening() {
	r.listening.Store(false)
	r.wg.Wait()
}

func (r *Receiver) ReceiveFrame(timeout time.Duration) *proto.Frame {
	data, err := r.driver.Rx(timeout)
	if err != nil {
		return nil
	}
	return proto.DecodeFrame(data)
}

func (r *Receiver) SendAck(to proto.HardwareAddr, seq uint32) error {
	ack := &proto.Frame{
		Dst:  to,
		Src:  r.self,
		Type: proto.FrameTypeAck,
		Seq:  seq,
	}
	return r.driver.Tx(proto.EncodeFrame(ack))
}

// Senders returns every address a data frame was received from, ordered.
func (r *Receiver) Senders() []proto.HardwareAddr {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]proto.HardwareAddr, 0, len(r.senders))
	for addr := range r.senders {
		out = append(out, addr)
	}
	slices.SortFunc(out, func(a, b proto.HardwareAddr) int { return bytes.Compare(a[:], b[:]) })
	return out
}

func (r *Receiver) IsSenderConnected(addr proto.HardwareAddr) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.senders[addr]
	return ok && s.IsAlive()
}

func (r *Receiver) CleanupDeadSenders() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for addr, s := range r.senders {
		if !s.IsAlive() {
			r.log.Info().Stringer("src", addr).Msg("sender timed out")
			delete(r.senders, addr)
		}
	}
}
