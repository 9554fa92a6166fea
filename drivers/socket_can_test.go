package drivers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.einride.tech/can"

	"paneplot/config"
)

func TestSocketCANDecode(t *testing.T) {
	flags := &config.SocketCANFlags{FrameID: 0x100, StartBit: 0, Length: 16, Scale: 0.1, Offset: 1}
	p := NewSocketCAN(flags, "vcan0")

	frame := can.Frame{ID: 0x100, Length: 8, Data: can.Data{0x34, 0x12}}
	value, ok := p.decode(frame)
	assert.True(t, ok)
	assert.InDelta(t, 0x1234*0.1+1, value, 1e-3)

	frame.ID = 0x101
	_, ok = p.decode(frame)
	assert.False(t, ok, "other ids are ignored")

	frame.ID = 0x100
	frame.IsRemote = true
	_, ok = p.decode(frame)
	assert.False(t, ok, "remote frames carry no data")
}

func TestSocketCANDecodeSigned(t *testing.T) {
	flags := &config.SocketCANFlags{FrameID: 0x7E8, StartBit: 8, Length: 8, Signed: true, Scale: 1}
	p := NewSocketCAN(flags, "vcan0")

	value, ok := p.decode(can.Frame{ID: 0x7E8, Length: 2, Data: can.Data{0x00, 0xFE}})
	assert.True(t, ok)
	assert.Equal(t, float32(-2), value)
}

func TestSocketCANDecodeShortFrame(t *testing.T) {
	flags := &config.SocketCANFlags{FrameID: 0x100, StartBit: 8, Length: 16, Scale: 1}
	p := NewSocketCAN(flags, "vcan0")

	_, ok := p.decode(can.Frame{ID: 0x100, Length: 2, Data: can.Data{1, 2}})
	assert.False(t, ok)
}

func TestNewSocketCANDefaultsToFlagInterface(t *testing.T) {
	p := NewSocketCAN(&config.SocketCANFlags{SocketCanAddr: "can1"}, "")
	assert.Equal(t, "can1", p.iface)
}
