//go:build !tinygo && !baremetal

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v2"

	proto "github.com/ystepanoff/joylink/protocol"
)

// Environment overrides applied by Load after the file.
const (
	EnvPeerAddr     = "JOYLINK_PEER_ADDR"
	EnvChannel      = "JOYLINK_CHANNEL"
	EnvSendInterval = "JOYLINK_SEND_INTERVAL"
	EnvLogLevel     = "JOYLINK_LOG_LEVEL"
)

// Load starts from Default, merges the YAML file at path (skipped when path
// is empty), applies environment overrides and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) error {
	if s := strings.TrimSpace(os.Getenv(EnvPeerAddr)); s != "" {
		addr, err := proto.ParseHardwareAddr(s)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvPeerAddr, s, err)
		}
		cfg.PeerAddr = addr
	}

	if s := strings.TrimSpace(os.Getenv(EnvChannel)); s != "" {
		ch, err := strconv.ParseUint(s, 10, 8)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvChannel, s, err)
		}
		cfg.Channel = uint8(ch)
	}

	if s := strings.TrimSpace(os.Getenv(EnvSendInterval)); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvSendInterval, s, err)
		}
		cfg.SendInterval = d
	}

	if s := strings.TrimSpace(os.Getenv(EnvLogLevel)); s != "" {
		cfg.LogLevel = s
	}
	return nil
}
