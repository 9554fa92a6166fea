package drivers

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"go.einride.tech/can"
	"go.einride.tech/can/pkg/socketcan"

	"paneplot/config"
)

const DialTimeout = 2 * time.Second

// SocketCAN decodes one signal out of the frames with a given id on a CAN interface.
type SocketCAN struct {
	*config.SocketCANFlags
	iface string
	conn  net.Conn
}

func NewSocketCAN(flags *config.SocketCANFlags, iface string) *SocketCAN {
	if iface == "" {
		iface = flags.SocketCanAddr
	}
	return &SocketCAN{
		SocketCANFlags: flags,
		iface:          iface,
	}
}

func (p *SocketCAN) Init() error {
	ctx, cancel := context.WithTimeout(context.Background(), DialTimeout)
	defer cancel()
	conn, err := socketcan.DialContext(ctx, "can", p.iface)
	if err != nil {
		return fmt.Errorf("socketCAN open %s: %w", p.iface, err)
	}
	p.conn = conn
	slog.Info("connected", "interface", p.iface, "id", fmt.Sprintf("0x%03X", p.FrameID))
	return nil
}

func (p *SocketCAN) Run(ctx context.Context, publish Publish) error {
	stop := context.AfterFunc(ctx, func() { _ = p.conn.Close() })
	defer stop()

	receiver := socketcan.NewReceiver(p.conn)
	for receiver.Receive() {
		if receiver.HasErrorFrame() {
			slog.Debug("error frame", "interface", p.iface, "frame", receiver.ErrorFrame())
			continue
		}
		if value, ok := p.decode(receiver.Frame()); ok {
			publish(value)
		}
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return receiver.Err()
}

func (p *SocketCAN) Close() error {
	if p.conn == nil {
		return nil
	}
	return p.conn.Close()
}

// decode extracts the configured signal as raw * Scale + Offset.
func (p *SocketCAN) decode(frame can.Frame) (float32, bool) {
	if frame.ID != p.FrameID || frame.IsRemote {
		return 0, false
	}
	if p.Length == 0 || p.Length > 64 {
		return 0, false
	}
	if !p.BigEndian && int(p.StartBit)+int(p.Length) > int(frame.Length)*8 {
		return 0, false
	}

	var raw float64
	switch {
	case p.BigEndian && p.Signed:
		raw = float64(frame.Data.SignedBitsBigEndian(p.StartBit, p.Length))
	case p.BigEndian:
		raw = float64(frame.Data.UnsignedBitsBigEndian(p.StartBit, p.Length))
	case p.Signed:
		raw = float64(frame.Data.SignedBitsLittleEndian(p.StartBit, p.Length))
	default:
		raw = float64(frame.Data.UnsignedBitsLittleEndian(p.StartBit, p.Length))
	}
	return float32(raw*p.Scale + p.Offset), true
}

// ListCANInterfaces lists network interfaces that look like CAN buses.
func ListCANInterfaces() ([]string, error) {
	interfaces, err := net.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("enumerate interfaces: %w", err)
	}
	var names []string
	for _, ifi := range interfaces {
		for _, prefix := range []string{"can", "vcan", "slcan"} {
			if strings.HasPrefix(ifi.Name, prefix) {
				names = append(names, ifi.Name)
				break
			}
		}
	}
	return names, nil
}
