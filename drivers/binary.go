package drivers

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
)

var (
	badLenErr = errors.New("error data length outside range")
	badCrcErr = errors.New("error frame checksum does not match")
)

var magicBytes = []byte{0xAA, 0x55}

const MAX_PAYLOAD = 64

// readBinary consumes binary frames with layout:
// [AA 55][millis:u32 LE][channel:u16 BE][len:u8][data:len][crc8:u8]
// and publishes the decoded value of every frame on channel (or any channel when channel < 0).
func readBinary(reader io.Reader, channel int, publish Publish) error {
	bufferReader := bufio.NewReader(reader)

	for {
		frameChannel, data, _, err := readBinaryFrame(bufferReader)
		if err != nil {
			if errors.Is(err, badLenErr) || errors.Is(err, badCrcErr) {
				slog.Debug("skipping frame", "err", err)
				continue
			}
			if err == io.EOF {
				return nil
			}
			return err
		}

		if channel >= 0 && int(frameChannel) != channel {
			continue
		}
		value, ok := decodePayload(data)
		if !ok {
			slog.Debug("skipping frame with unsupported payload", "channel", frameChannel, "len", len(data))
			continue
		}
		publish(value)
	}
}

// readBinaryFrame reads a single frame, resyncing on the magic bytes first.
func readBinaryFrame(bufferReader *bufio.Reader) (channel uint16, value []byte, timestamp uint32, err error) {
	for {
		firstByte, err := bufferReader.ReadByte()
		if err != nil {
			return 0, nil, 0, err
		}
		if firstByte != magicBytes[0] {
			continue
		}
		secondByte, err := bufferReader.ReadByte()
		if err != nil {
			return 0, nil, 0, err
		}
		if secondByte == magicBytes[1] {
			break
		}
		if secondByte == magicBytes[0] {
			_ = bufferReader.UnreadByte()
		}
	}

	// header: millis(4 LE) + channel(2 BE) + len(1)
	header := make([]byte, 7)
	if _, err = io.ReadFull(bufferReader, header); err != nil {
		return 0, nil, 0, err
	}
	dataLength := int(header[6])
	if dataLength > MAX_PAYLOAD {
		return 0, nil, 0, fmt.Errorf("error data length %d: %w", dataLength, badLenErr)
	}

	// payload + crc
	tail := make([]byte, dataLength+1)
	if _, err = io.ReadFull(bufferReader, tail); err != nil {
		return 0, nil, 0, err
	}
	data := tail[:dataLength]

	// crc covers millis + channel + len + data
	crc := crc8UpdateBuf(0x00, header)
	crc = crc8UpdateBuf(crc, data)
	if crc != tail[dataLength] {
		return 0, nil, 0, badCrcErr
	}

	timestamp = binary.LittleEndian.Uint32(header[:4])
	channel = binary.BigEndian.Uint16(header[4:6])
	return channel, data, timestamp, nil
}

// appendBinaryFrame encodes one frame in the layout readBinaryFrame expects.
func appendBinaryFrame(dst []byte, millis uint32, channel uint16, data []byte) []byte {
	start := len(dst)
	dst = append(dst, magicBytes...)
	dst = binary.LittleEndian.AppendUint32(dst, millis)
	dst = binary.BigEndian.AppendUint16(dst, channel)
	dst = append(dst, byte(len(data)))
	dst = append(dst, data...)
	return append(dst, crc8UpdateBuf(0x00, dst[start+2:]))
}

// decodePayload reads a little endian float32, a big endian int16 or a single unsigned byte.
func decodePayload(data []byte) (float32, bool) {
	switch len(data) {
	case 4:
		return math.Float32frombits(binary.LittleEndian.Uint32(data)), true
	case 2:
		return float32(int16(binary.BigEndian.Uint16(data))), true
	case 1:
		return float32(data[0]), true
	default:
		return 0, false
	}
}

// CRC-8-CCITT helpers (poly 0x07, init 0x00)
func crc8Update(crc, b byte) byte {
	crc ^= b
	for i := 0; i < 8; i++ {
		if crc&0x80 != 0 {
			crc = (crc << 1) ^ 0x07
		} else {
			crc <<= 1
		}
	}
	return crc
}

func crc8UpdateBuf(crc byte, buffer []byte) byte {
	for _, b := range buffer {
		crc = crc8Update(crc, b)
	}
	return crc
}
