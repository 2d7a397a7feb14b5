// Package config holds the boot configuration of the joystick transmitter.
// A Config is built once at startup and never changes afterwards.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	proto "github.com/ystepanoff/joylink/protocol"
)

// DefaultPeerAddr is the receiver the firmware talks to unless told otherwise.
var DefaultPeerAddr = proto.HardwareAddr{0xD0, 0xEF, 0x76, 0xEE, 0xFD, 0xA4}

type Config struct {
	PeerAddr proto.HardwareAddr `yaml:"peerAddr"`
	// Channel 0 keeps whatever channel the radio is on.
	Channel uint8 `yaml:"channel"`

	SendInterval time.Duration `yaml:"sendInterval"`
	LogDelay     time.Duration `yaml:"logDelay"`
	LoopDelay    time.Duration `yaml:"loopDelay"`
	AckTimeout   time.Duration `yaml:"ackTimeout"`

	// HaltOnInitFailure stops the transmitter when setup fails instead of
	// running degraded.
	HaltOnInitFailure bool `yaml:"haltOnInitFailure"`

	LogLevel string `yaml:"logLevel"`
	ADCBits  uint8  `yaml:"adcBits"`

	Input  InputConfig  `yaml:"input"`
	Diag   DiagConfig   `yaml:"diag"`
	Bridge BridgeConfig `yaml:"bridge"`
}

// Input backends for host builds.
const (
	InputSim    = "sim"
	InputPeriph = "periph"
)

// InputConfig picks where a host build reads the joystick from.
type InputConfig struct {
	Backend    string `yaml:"backend"`
	I2CBus     string `yaml:"i2cBus"`
	ADCAddress uint16 `yaml:"adcAddress"`
	ButtonGPIO string `yaml:"buttonGpio"`
}

// DiagConfig selects extra host sinks for the diagnostic log.
type DiagConfig struct {
	SerialPort string `yaml:"serialPort"`
	SerialBaud int    `yaml:"serialBaud"`
	LogFile    string `yaml:"logFile"`
	MaxSizeMB  int    `yaml:"maxSizeMb"`
	MaxBackups int    `yaml:"maxBackups"`
}

// BridgeConfig is the MQTT side of the receiver. Empty Broker disables it.
type BridgeConfig struct {
	Broker   string `yaml:"broker"`
	Port     int    `yaml:"port"`
	ClientID string `yaml:"clientId"`
	Topic    string `yaml:"topic"`
}

// MinDuration is the shortest non-zero timing value Validate accepts.
const MinDuration = time.Millisecond

func Default() Config {
	return Config{
		PeerAddr:     DefaultPeerAddr,
		Channel:      proto.CurrentChannel,
		SendInterval: 100 * time.Millisecond,
		LogDelay:     100 * time.Millisecond,
		LoopDelay:    1000 * time.Millisecond,
		AckTimeout:   proto.AckTimeout * time.Millisecond,
		LogLevel:     "info",
		ADCBits:      12,
		Input: InputConfig{
			Backend:    InputSim,
			ADCAddress: 0x48,
			ButtonGPIO: "GPIO17",
		},
		Diag: DiagConfig{
			SerialBaud: 115200,
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		Bridge: BridgeConfig{
			Port:     1883,
			ClientID: "joylink-receiver",
			Topic:    "joylink/telemetry",
		},
	}
}

func (c Config) Validate() error {
	var errs []error
	if !c.PeerAddr.IsUnicast() {
		errs = append(errs, fmt.Errorf("peerAddr %s is not a unicast address", c.PeerAddr))
	}
	if c.Channel > proto.MaxChannel {
		errs = append(errs, fmt.Errorf("channel %d out of range 0..%d", c.Channel, proto.MaxChannel))
	}
	for _, d := range []struct {
		name   string
		v      time.Duration
		zeroOK bool
	}{
		{"sendInterval", c.SendInterval, false},
		{"ackTimeout", c.AckTimeout, false},
		{"logDelay", c.LogDelay, true},
		{"loopDelay", c.LoopDelay, true},
	} {
		switch {
		case d.v == 0 && d.zeroOK:
		case d.v < 0 && d.zeroOK:
			errs = append(errs, fmt.Errorf("%s must not be negative, got %v", d.name, d.v))
		case d.v <= 0:
			errs = append(errs, fmt.Errorf("%s must be positive, got %v", d.name, d.v))
		case d.v < MinDuration:
			// a bare YAML integer decodes as nanoseconds
			errs = append(errs, fmt.Errorf("%s %v is below %v, give a unit such as \"100ms\"", d.name, d.v, MinDuration))
		}
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.ADCBits == 0 || c.ADCBits > 16 {
		errs = append(errs, fmt.Errorf("adcBits %d out of range 1..16", c.ADCBits))
	}
	switch c.Input.Backend {
	case InputSim, InputPeriph:
	default:
		errs = append(errs, fmt.Errorf("input backend %q (allowed: %s, %s)", c.Input.Backend, InputSim, InputPeriph))
	}
	if c.Bridge.Broker != "" && (c.Bridge.Port <= 0 || c.Bridge.Port > 65535) {
		errs = append(errs, fmt.Errorf("bridge port %d out of range", c.Bridge.Port))
	}
	return errors.Join(errs...)
}

// Level returns the zerolog level for LogLevel, info when it does not parse.
func (c Config) Level() zerolog.Level {
	l, err := ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return l
}

func ParseLevel(s string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zerolog.DebugLevel, nil
	case "info", "":
		return zerolog.InfoLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	default:
		return zerolog.InfoLevel, fmt.Errorf("invalid log level %q (allowed: debug, info, warn, error)", s)
	}
}
