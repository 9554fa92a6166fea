package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"paneplot/drivers"
	"paneplot/export"
	"paneplot/utils"
)

const (
	captureLocation = "logs/read.txt"
	OUT_DIR         = "logs"
	OUT_NAME        = "capture"
	OUT_EXT         = ".csv"
)

type options struct {
	in     string
	out    string
	filter string
	column int
}

func main() {
	var opts options
	cmd := &cobra.Command{
		Use:   "capture2csv [flags]",
		Short: "Convert a captured serial text log into a paneplot export",
		Long: `Every line of the capture is parsed the way the serial driver parses text lines. The n-th reading on a
line goes to the n-th column of the export, which paneplot can import or replay.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.out == "" {
				opts.out = utils.NextAvailableFilename(OUT_DIR, OUT_NAME, OUT_EXT)
			}
			return convert(opts)
		},
	}
	cmd.Flags().StringVarP(&opts.in, "in", "i", captureLocation, "captured text log")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "export file (default: next free logs/capture_N.csv)")
	cmd.Flags().StringVar(&opts.filter, "filter", "", "only convert lines containing this text")
	cmd.Flags().IntVar(&opts.column, "column", -1, "only convert this field of each line")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func convert(opts options) error {
	file, err := os.Open(opts.in)
	if err != nil {
		return err
	}
	defer file.Close()

	columns, err := readColumns(bufio.NewScanner(file), opts.filter, opts.column)
	if err != nil {
		return fmt.Errorf("read %s: %w", opts.in, err)
	}
	if err := export.Write(opts.out, columns); err != nil {
		return err
	}
	slog.Info("converted", "in", opts.in, "out", opts.out, "columns", len(columns))
	return nil
}

// readColumns keys readings by field position so a missing or garbled field never shifts later readings into its
// column. With column >= 0 only that field is read, into a single output column.
func readColumns(scanner *bufio.Scanner, filter string, column int) ([][]float32, error) {
	var columns [][]float32
	for scanner.Scan() {
		line := scanner.Text()
		if filter != "" && !strings.Contains(line, filter) {
			continue
		}
		fields := drivers.SplitFields(line)
		if column >= 0 {
			if column >= len(fields) {
				continue
			}
			fields = fields[column : column+1]
		}
		for i, field := range fields {
			value, ok := drivers.ParseField(field)
			if !ok {
				continue
			}
			for len(columns) <= i {
				columns = append(columns, nil)
			}
			columns[i] = append(columns[i], value)
		}
	}
	return columns, scanner.Err()
}
