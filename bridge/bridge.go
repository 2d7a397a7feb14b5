// Package bridge forwards telemetry heard by the receiver to an MQTT broker.
package bridge

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"

	"github.com/ystepanoff/joylink/config"
	proto "github.com/ystepanoff/joylink/protocol"
)

const publishTimeout = 5 * time.Second

var ErrStopped = errors.New("bridge stopped")

// Telemetry is the JSON document published for every record.
type Telemetry struct {
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
	CarX      int16     `json:"car_x"`
	CarY      int16     `json:"car_y"`
	CarButton bool      `json:"car_button"`
}

func NewTelemetry(src proto.HardwareAddr, r proto.TelemetryRecord, at time.Time) Telemetry {
	return Telemetry{
		Source:    src.String(),
		Timestamp: at.UTC(),
		CarX:      r.AxisX,
		CarY:      r.AxisY,
		CarButton: r.ButtonPressed,
	}
}

// Topic is "<base>/<source address as 12 lowercase hex digits>".
func Topic(base string, src proto.HardwareAddr) string {
	return base + "/" + hex.EncodeToString(src[:])
}

type Publisher struct {
	client mqtt.Client
	topic  string
	log    zerolog.Logger
	now    func() time.Time

	published atomic.Uint64
	dropped   atomic.Uint64

	stopCh   chan struct{}
	stopOnce sync.Once
}

func New(cfg config.BridgeConfig, logger zerolog.Logger) *Publisher {
	p := newPublisher(nil, cfg.Topic, logger)

	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.Broker, cfg.Port))
	opts.SetClientID(cfg.ClientID)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetMaxReconnectInterval(60 * time.Second)
	opts.SetKeepAlive(30 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	opts.SetOnConnectHandler(func(_ mqtt.Client) {
		p.log.Info().Str("broker", cfg.Broker).Int("port", cfg.Port).Msg("mqtt connected")
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		p.log.Warn().Err(err).Msg("mqtt connection lost")
	})

	p.client = mqtt.NewClient(opts)
	return p
}

func newPublisher(client mqtt.Client, topic string, logger zerolog.Logger) *Publisher {
	return &Publisher{
		client: client,
		topic:  topic,
		log:    logger.With().Str("component", "bridge").Logger(),
		now:    time.Now,
		stopCh: make(chan struct{}),
	}
}

// Connect waits for the first connection while honouring ctx and Disconnect.
func (p *Publisher) Connect(ctx context.Context) error {
	select {
	case <-p.stopCh:
		return ErrStopped
	default:
	}
	if p.client.IsConnected() {
		return nil
	}

	token := p.client.Connect()
	const poll = 200 * time.Millisecond
	for {
		if token.WaitTimeout(poll) {
			if err := token.Error(); err != nil {
				return fmt.Errorf("mqtt connect: %w", err)
			}
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.stopCh:
			return ErrStopped
		default:
		}
	}
}

func (p *Publisher) Publish(src proto.HardwareAddr, r proto.TelemetryRecord) error {
	if !p.client.IsConnected() {
		return errors.New("mqtt client not connected")
	}

	data, err := json.Marshal(NewTelemetry(src, r, p.now()))
	if err != nil {
		return fmt.Errorf("marshal telemetry: %w", err)
	}

	topic := Topic(p.topic, src)
	token := p.client.Publish(topic, 0, false, data)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish timeout for topic %s", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish telemetry: %w", err)
	}

	p.published.Add(1)
	p.log.Debug().Str("topic", topic).Msg("published telemetry")
	return nil
}

// Handle decodes a received payload and publishes it. Its signature fits
// transport.Receiver.OnReceive; failures are logged and the record dropped.
func (p *Publisher) Handle(src proto.HardwareAddr, payload []byte) {
	var r proto.TelemetryRecord
	if err := r.UnmarshalBinary(payload); err != nil {
		p.dropped.Add(1)
		p.log.Warn().Err(err).Stringer("src", src).Int("len", len(payload)).Msg("bad telemetry payload")
		return
	}
	if err := p.Publish(src, r); err != nil {
		p.dropped.Add(1)
		p.log.Warn().Err(err).Stringer("src", src).Msg("publish failed")
	}
}

// Counts returns how many records were published and dropped.
func (p *Publisher) Counts() (published, dropped uint64) {
	return p.published.Load(), p.dropped.Load()
}

// Disconnect is idempotent; Connect fails with ErrStopped afterwards.
func (p *Publisher) Disconnect() {
	p.stopOnce.Do(func() {
		close(p.stopCh)
		p.client.Disconnect(250)
		p.log.Info().Msg("mqtt disconnected")
	})
}
