package config

import (
	"errors"
	"fmt"

	"github.com/spf13/pflag"
)

type DriverType string

const (
	Replay    DriverType = "replay"
	Serial    DriverType = "serial"
	SocketCAN DriverType = "socket-can"
	Synth     DriverType = "synth"
)

type Framing string

const (
	TextFraming   Framing = "text"
	BinaryFraming Framing = "binary"
)

type Flags struct {
	Driver     DriverType
	Addr       string
	ConfigPath string
	ExportPath string
	Framerate  int
	Debug      bool
}

type SerialFlags struct {
	SerialPort string
	BaudRate   int
	Framing    Framing
	// Channel picks the CSV column of text lines, or the channel id of binary frames. -1 takes everything.
	Channel int
}

type ReplayFlags struct {
	Path     string
	Rate     float64
	Loop     bool
	SkipRows int
	Column   int
	Follow   bool
}

type SocketCANFlags struct {
	SocketCanAddr string
	FrameID       uint32
	StartBit      uint8
	Length        uint8
	BigEndian     bool
	Signed        bool
	Scale         float64
	Offset        float64
}

type SynthFlags struct {
	Rate      float64
	Frequency float64
}

// Options groups every flag set the workspace and its drivers read.
type Options struct {
	*Flags
	Serial    *SerialFlags
	Replay    *ReplayFlags
	SocketCAN *SocketCANFlags
	Synth     *SynthFlags
}

const (
	DEFAULT_BAUD_RATE   = 115200
	DEFAULT_EXPORT_PATH = "graph1.csv"
	DEFAULT_FRAMERATE   = 30
)

// BindFlags registers every option on fs. Values are only final once fs is parsed.
func BindFlags(fs *pflag.FlagSet) *Options {
	flags := &Flags{}
	fs.StringVar((*string)(&flags.Driver), "driver", string(Synth), "data source driver: serial, socket-can, replay or synth")
	fs.StringVar(&flags.Addr, "addr", ":8080", "http listen address")
	fs.StringVarP(&flags.ConfigPath, "config", "c", "", "yaml file with flag defaults")
	fs.StringVar(&flags.ExportPath, "export", DEFAULT_EXPORT_PATH, "initial export and import path")
	fs.IntVar(&flags.Framerate, "framerate", DEFAULT_FRAMERATE, "graph updates per second")
	fs.BoolVarP(&flags.Debug, "debug", "d", false, "enable debug logging")

	serial := &SerialFlags{}
	fs.StringVar(&serial.SerialPort, "serial-port", "auto", "serial device path or 'auto'")
	fs.IntVar(&serial.BaudRate, "baud", DEFAULT_BAUD_RATE, "baud rate")
	fs.StringVar((*string)(&serial.Framing), "framing", string(TextFraming), "serial framing: text (one reading per line) or binary")
	fs.IntVar(&serial.Channel, "channel", -1, "text column or binary channel id to plot, -1 for all")

	replay := &ReplayFlags{}
	fs.StringVar(&replay.Path, "replay", "", "export file to replay")
	fs.Float64Var(&replay.Rate, "replay-rate", 100, "replayed samples per second (0 = as fast as possible)")
	fs.BoolVar(&replay.Loop, "replay-loop", false, "loop replay at EOF")
	fs.IntVar(&replay.SkipRows, "replay-skip-rows", 0, "skips X samples from the start")
	fs.IntVar(&replay.Column, "replay-column", 0, "export column to replay")
	fs.BoolVar(&replay.Follow, "replay-follow", false, "keep publishing rows appended to the file")

	socketCAN := &SocketCANFlags{}
	fs.StringVar(&socketCAN.SocketCanAddr, "socket-can-address", "can0", "Socket CAN bus address")
	fs.Uint32Var(&socketCAN.FrameID, "can-id", 0x100, "CAN frame id carrying the signal")
	fs.Uint8Var(&socketCAN.StartBit, "can-start-bit", 0, "signal start bit")
	fs.Uint8Var(&socketCAN.Length, "can-length", 16, "signal length in bits")
	fs.BoolVar(&socketCAN.BigEndian, "can-big-endian", false, "signal is big endian (motorola)")
	fs.BoolVar(&socketCAN.Signed, "can-signed", false, "signal is two's complement")
	fs.Float64Var(&socketCAN.Scale, "can-scale", 1, "physical = raw * scale + offset")
	fs.Float64Var(&socketCAN.Offset, "can-offset", 0, "physical = raw * scale + offset")

	synth := &SynthFlags{}
	fs.Float64Var(&synth.Rate, "synth-rate", 100, "synthesized samples per second")
	fs.Float64Var(&synth.Frequency, "synth-frequency", 0.5, "synthesized sine frequency in Hz")

	return &Options{flags, serial, replay, socketCAN, synth}
}

var (
	errBadDriver    = errors.New("unsupported driver type")
	errBadFraming   = errors.New("unsupported framing")
	errBadFramerate = errors.New("framerate must be positive")
)

func (o *Options) Validate() error {
	switch o.Driver {
	case Serial, SocketCAN, Replay, Synth:
	default:
		return fmt.Errorf("%q: %w", o.Driver, errBadDriver)
	}
	switch o.Serial.Framing {
	case TextFraming, BinaryFraming:
	default:
		return fmt.Errorf("%q: %w", o.Serial.Framing, errBadFraming)
	}
	if o.Framerate <= 0 {
		return fmt.Errorf("%d: %w", o.Framerate, errBadFramerate)
	}
	return nil
}
