package drivers

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"

	"paneplot/config"
)

// Arduino & clones common VIDs
var preferredVIDs = map[string]bool{
	"2341": true, // Arduino
	"2A03": true, // Arduino (older)
	"1A86": true, // CH340
	"10C4": true, // CP210x
	"0403": true, // FTDI
}

// Serial reads samples from a serial port, either one reading per text line or binary frames.
type Serial struct {
	*config.SerialFlags
	name string
	port serial.Port
}

func NewSerial(serialFlags *config.SerialFlags, name string) *Serial {
	return &Serial{
		SerialFlags: serialFlags,
		name:        name,
	}
}

func (s *Serial) Init() error {
	name := s.name
	if name == "" || name == "auto" {
		selected, err := autoSelectPort()
		if err != nil {
			return fmt.Errorf("auto-select: %w", err)
		}
		name = selected
	}
	port, err := serial.Open(name, &serial.Mode{BaudRate: s.BaudRate})
	if err != nil {
		return fmt.Errorf("couldn't open serial %s: %w", name, err)
	}
	slog.Info("connected", "port", name, "baud", s.BaudRate, "framing", s.Framing)
	s.port = port
	return nil
}

func (s *Serial) Run(ctx context.Context, publish Publish) error {
	// closing the port is the only way to unblock a pending read
	stop := context.AfterFunc(ctx, func() { _ = s.port.Close() })
	defer stop()

	var err error
	if s.Framing == config.BinaryFraming {
		err = readBinary(s.port, s.Channel, publish)
	} else {
		err = readText(s.port, s.Channel, publish)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func (s *Serial) Close() error {
	if s.port == nil {
		return nil
	}
	return s.port.Close()
}

// readText publishes the readings of every line until r is exhausted.
func readText(r io.Reader, column int, publish Publish) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		for _, value := range ParseLine(scanner.Text(), column) {
			publish(value)
		}
	}
	return scanner.Err()
}

// SplitFields splits one text line into positional fields. Commas and semicolons separate fields and empty fields
// keep their place. A line with neither is split on whitespace.
func SplitFields(line string) []string {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	if !strings.ContainsAny(line, ",;") {
		return strings.Fields(line)
	}
	fields := strings.Split(strings.ReplaceAll(line, ";", ","), ",")
	for i, field := range fields {
		fields[i] = strings.TrimSpace(field)
	}
	return fields
}

// ParseField reads one field as a reading. Empty and non-numeric fields have none.
func ParseField(field string) (float32, bool) {
	if field == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(field, 32)
	if err != nil {
		return 0, false
	}
	return float32(v), true
}

// ParseLine extracts readings from one text line. A column >= 0 reads the field at that position only, otherwise
// every numeric field is a reading.
func ParseLine(line string, column int) []float32 {
	fields := SplitFields(line)
	if column >= 0 {
		if column >= len(fields) {
			return nil
		}
		if v, ok := ParseField(fields[column]); ok {
			return []float32{v}
		}
		return nil
	}

	var values []float32
	for _, field := range fields {
		if v, ok := ParseField(field); ok {
			values = append(values, v)
		}
	}
	return values
}

// ListSerialPorts lists serial ports with Arduino-like USB devices first.
func ListSerialPorts() ([]string, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("enumerate ports: %w", err)
	}
	slices.SortStableFunc(ports, func(a, b *enumerator.PortDetails) int {
		pa, pb := isPreferred(a), isPreferred(b)
		switch {
		case pa && !pb:
			return -1
		case pb && !pa:
			return 1
		default:
			return strings.Compare(a.Name, b.Name)
		}
	})
	names := make([]string, len(ports))
	for i, p := range ports {
		names[i] = p.Name
	}
	return names, nil
}

func autoSelectPort() (string, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return "", fmt.Errorf("enumerate ports: %w", err)
	}
	// Look for the first matching "arduino port"
	for _, p := range ports {
		if isPreferred(p) {
			return p.Name, nil
		}
	}
	return "", fmt.Errorf("no arduino serial ports found")
}

func isPreferred(p *enumerator.PortDetails) bool {
	return p.IsUSB && preferredVIDs[strings.ToUpper(p.VID)]
}
