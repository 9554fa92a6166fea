// Package export writes graph samples to a CSV file, one column per graph, and reads such files back.
//
// The first row is a header (graph_1, graph_2, ...). Every following row is one sample index in arrival order.
// Columns shorter than the longest one are padded with empty fields, never with zero, so padding can't be mistaken
// for a reading.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

// PAD is the field written where a column has no sample.
const PAD = ""

// FILE_MODE is the mode of a new export. Replacing an export keeps the mode it had.
const FILE_MODE os.FileMode = 0o644

var ErrNoColumns = errors.New("no graphs to export")

// Write replaces the file at path with columns. The data goes to a temp file in the same directory first and is
// renamed over path only once fully written, so a failed export leaves any existing file untouched.
func Write(path string, columns [][]float32) (err error) {
	if len(columns) == 0 {
		return ErrNoColumns
	}

	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	file, err := os.CreateTemp(dir, "."+name+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", path, err)
	}
	defer func() {
		if err != nil {
			_ = file.Close()
			_ = os.Remove(file.Name())
		}
	}()

	if err = Encode(file, columns); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	mode := FILE_MODE
	if info, statErr := os.Stat(path); statErr == nil {
		mode = info.Mode().Perm()
	}
	if err = file.Chmod(mode); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err = file.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", path, err)
	}
	if err = file.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err = os.Rename(file.Name(), path); err != nil {
		return fmt.Errorf("rename into %s: %w", path, err)
	}
	return nil
}

func Encode(w io.Writer, columns [][]float32) error {
	writer := csv.NewWriter(w)

	rows := 0
	header := make([]string, len(columns))
	for i, column := range columns {
		header[i] = fmt.Sprintf("graph_%d", i+1)
		rows = max(rows, len(column))
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	record := make([]string, len(columns))
	for row := range rows {
		for i, column := range columns {
			if row < len(column) {
				record[i] = FormatSample(column[row])
			} else {
				record[i] = PAD
			}
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// FormatSample uses the shortest text that parses back to the same float32.
func FormatSample(v float32) string {
	return strconv.FormatFloat(float64(v), 'g', -1, 32)
}

func ReadColumns(path string) ([][]float32, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	columns, err := Decode(file)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return columns, nil
}

// Decode reads an export. The header row is optional: a first row with any non-numeric field is treated as one.
// Empty fields are padding and skipped.
func Decode(r io.Reader) ([][]float32, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	var columns [][]float32
	first := true
	for {
		record, err := reader.Read()
		if err == io.EOF {
			return columns, nil
		}
		if err != nil {
			return nil, err
		}
		if first {
			first = false
			if isHeader(record) {
				columns = make([][]float32, len(record))
				continue
			}
		}

		for len(columns) < len(record) {
			columns = append(columns, nil)
		}
		for i, field := range record {
			if field == PAD {
				continue
			}
			v, err := strconv.ParseFloat(field, 32)
			if err != nil {
				line, _ := reader.FieldPos(i)
				return nil, fmt.Errorf("line %d column %d: %w", line, i+1, err)
			}
			columns[i] = append(columns[i], float32(v))
		}
	}
}

func isHeader(record []string) bool {
	for _, field := range record {
		if field == PAD {
			continue
		}
		if _, err := strconv.ParseFloat(field, 32); err != nil {
			return true
		}
	}
	return false
}
