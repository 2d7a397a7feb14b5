//go:build !tinygo && !baremetal

package diag

import (
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/tarm/serial"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ystepanoff/joylink/config"
)

// DefaultBaud matches the firmware's serial console.
const DefaultBaud = 115200

// OpenSerial opens a serial port for the log, e.g. /dev/ttyUSB0.
func OpenSerial(name string, baud int) (io.WriteCloser, error) {
	if baud <= 0 {
		baud = DefaultBaud
	}
	port, err := serial.OpenPort(&serial.Config{Name: name, Baud: baud})
	if err != nil {
		return nil, fmt.Errorf("open serial %s: %w", name, err)
	}
	return port, nil
}

// RotatingFile returns a file sink that rolls over at maxSizeMB.
func RotatingFile(path string, maxSizeMB, maxBackups int) io.WriteCloser {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		Compress:   true,
	}
}

// Sinks fans the log out to stdout plus whatever cfg enables.
type Sinks struct {
	writers []io.Writer
	closers []io.Closer
}

func Open(cfg config.DiagConfig, stdout io.Writer) (*Sinks, error) {
	s := &Sinks{}
	if stdout != nil {
		s.writers = append(s.writers, stdout)
	}

	if cfg.SerialPort != "" {
		port, err := OpenSerial(cfg.SerialPort, cfg.SerialBaud)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.add(port)
	}

	if cfg.LogFile != "" {
		s.add(RotatingFile(cfg.LogFile, cfg.MaxSizeMB, cfg.MaxBackups))
	}
	return s, nil
}

func (s *Sinks) add(w io.WriteCloser) {
	s.writers = append(s.writers, w)
	s.closers = append(s.closers, w)
}

func (s *Sinks) Writer() io.Writer {
	if len(s.writers) == 0 {
		return io.Discard
	}
	return zerolog.MultiLevelWriter(s.writers...)
}

// Logger is New over every open sink.
func (s *Sinks) Logger(level zerolog.Level) zerolog.Logger {
	return New(s.Writer(), level)
}

func (s *Sinks) Close() error {
	var errs []error
	for _, c := range s.closers {
		errs = append(errs, c.Close())
	}
	s.closers = nil
	return errors.Join(errs...)
}
