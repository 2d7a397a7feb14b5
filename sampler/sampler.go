// Package sampler runs the transmitter: it samples the joystick on a fixed
// cadence, submits each record to the radio link and shows the outcome on
// the screen.
package sampler

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/ystepanoff/joylink/config"
	"github.com/ystepanoff/joylink/display"
	proto "github.com/ystepanoff/joylink/protocol"
	"github.com/ystepanoff/joylink/transport"
)

// Transport is the part of transport.Link the sampler drives.
type Transport interface {
	SetMode(mode transport.Mode) error
	HardwareAddr() proto.HardwareAddr
	Init() error
	RegisterSendCallback(cb transport.SendCallback)
	AddPeer(info proto.PeerInfo) error
	Send(dst proto.HardwareAddr, data []byte) error
}

// Input produces one record per call. input.Joystick implements it.
type Input interface {
	Configure() error
	Sample() proto.TelemetryRecord
}

var _ Transport = (*transport.Link)(nil)

// Stats counts what the loop and the delivery callback have seen.
type Stats struct {
	Iterations       uint64
	SendsAttempted   uint64
	SendsRejected    uint64
	Delivered        uint64
	DeliveryFailures uint64
}

type counters struct {
	iterations       atomic.Uint64
	sendsAttempted   atomic.Uint64
	sendsRejected    atomic.Uint64
	delivered        atomic.Uint64
	deliveryFailures atomic.Uint64
}

type Option func(*Sampler)

// WithClock replaces the system clock, for tests.
func WithClock(c Clock) Option {
	return func(s *Sampler) { s.clock = c }
}

// Sampler owns the single live record. Step and Run are not safe for
// concurrent use; Stats may be called from any goroutine.
type Sampler struct {
	cfg   config.Config
	link  Transport
	input Input
	view  *display.StatusView
	clock Clock
	log   zerolog.Logger

	record   proto.TelemetryRecord
	buf      [proto.TelemetryRecordSize]byte
	lastSent time.Time
	sentOnce bool
	stats    counters
}

func New(cfg config.Config, link Transport, in Input, screen display.Screen, logger zerolog.Logger, opts ...Option) *Sampler {
	s := &Sampler{
		cfg:   cfg,
		link:  link,
		input: in,
		view:  display.NewStatusView(screen),
		clock: SystemClock{},
		log:   logger.With().Str("component", "sampler").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Setup brings up the radio, the peer, the button and the screen. A failed
// step is logged and the remaining steps still run; the returned error
// joins every failure.
func (s *Sampler) Setup() error {
	var errs []error

	if err := s.link.SetMode(transport.ModeStation); err != nil {
		s.log.Error().Err(err).Msg("station mode failed")
		errs = append(errs, err)
	}
	s.log.Info().Stringer("addr", s.link.HardwareAddr()).Msg("own address")

	linkUp := true
	if err := s.link.Init(); err != nil {
		s.log.Error().Err(err).Int32("code", proto.Code(err)).Msg("error initializing transport")
		errs = append(errs, fmt.Errorf("init transport: %w", err))
		linkUp = false
	}

	s.link.RegisterSendCallback(s.onSent)

	if linkUp {
		peer := proto.PeerInfo{Addr: s.cfg.PeerAddr, Channel: s.cfg.Channel}
		if err := s.link.AddPeer(peer); err != nil {
			s.log.Error().Err(err).Int32("code", proto.Code(err)).Stringer("peer", peer.Addr).Msg("failed to add peer")
			errs = append(errs, fmt.Errorf("add peer %s: %w", peer.Addr, err))
		} else {
			s.log.Info().Stringer("peer", peer.Addr).Msg("receiver address")
			s.log.Info().Msg("transmitter ready")
		}
	}

	if err := s.input.Configure(); err != nil {
		s.log.Error().Err(err).Msg("input configure failed")
		errs = append(errs, fmt.Errorf("configure input: %w", err))
	}

	if err := s.view.Init(); err != nil {
		s.log.Error().Err(err).Msg("display init failed")
		errs = append(errs, fmt.Errorf("init display: %w", err))
	}

	return errors.Join(errs...)
}

// Step runs one loop iteration: sample, maybe send and redraw, then the
// log delay, the record dump and the loop delay.
func (s *Sampler) Step(ctx context.Context) error {
	s.stats.iterations.Add(1)
	s.record = s.input.Sample()

	now := s.clock.Now()
	if !s.sentOnce || now.Sub(s.lastSent) >= s.cfg.SendInterval {
		s.sentOnce = true
		s.lastSent = now
		s.send()
	}

	if err := s.clock.Sleep(ctx, s.cfg.LogDelay); err != nil {
		return err
	}
	s.log.Info().
		Int16("carX", s.record.AxisX).
		Int16("carY", s.record.AxisY).
		Bool("carButton", s.record.ButtonPressed).
		Msg("joystick")

	return s.clock.Sleep(ctx, s.cfg.LoopDelay)
}

// Run calls Setup and then Step until ctx is done. It only gives up on a
// failed Setup when the config asks it to halt.
func (s *Sampler) Run(ctx context.Context) error {
	if err := s.Setup(); err != nil && s.cfg.HaltOnInitFailure {
		return fmt.Errorf("setup: %w", err)
	}
	for {
		if err := s.Step(ctx); err != nil {
			return err
		}
	}
}

func (s *Sampler) send() {
	s.stats.sendsAttempted.Add(1)
	err := s.link.Send(s.cfg.PeerAddr, s.record.AppendBinary(s.buf[:0]))
	if err != nil {
		s.stats.sendsRejected.Add(1)
		s.log.Warn().Err(err).Int32("code", proto.Code(err)).Msg("data sent: fail")
	} else {
		s.log.Debug().Msg("data sent: success")
	}
	s.view.Render(s.record, err)
}

// onSent runs on the link's worker goroutine.
func (s *Sampler) onSent(dst proto.HardwareAddr, status transport.SendStatus) {
	if status == transport.SendSuccess {
		s.stats.delivered.Add(1)
	} else {
		s.stats.deliveryFailures.Add(1)
	}
	s.log.Info().Stringer("dst", dst).Stringer("status", status).Msg("data send status")
}

// Record returns the last sampled record.
func (s *Sampler) Record() proto.TelemetryRecord { return s.record }

func (s *Sampler) Stats() Stats {
	return Stats{
		Iterations:       s.stats.iterations.Load(),
		SendsAttempted:   s.stats.sendsAttempted.Load(),
		SendsRejected:    s.stats.sendsRejected.Load(),
		Delivered:        s.stats.delivered.Load(),
		DeliveryFailures: s.stats.deliveryFailures.Load(),
	}
}
