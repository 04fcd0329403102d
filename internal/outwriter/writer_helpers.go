package outwriter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/huangsam/devpulse/internal/contract"
	"github.com/huangsam/devpulse/schema"
)

// writeWithFile runs writer against the configured output file, or stdout
// when outputFile is empty. A file write is confirmed on stderr.
func writeWithFile(outputFile string, mode schema.OutputMode, writer func(io.Writer) error) error {
	file, err := contract.SelectOutputFile(outputFile)
	if err != nil {
		return err
	}
	if file == os.Stdout {
		return writer(file)
	}
	defer func() { _ = file.Close() }()

	if err := writer(file); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "💾 Wrote %s output to %s\n", mode, outputFile)
	return nil
}

// writeJSON writes data as indented JSON followed by a newline.
func writeJSON(w io.Writer, data any) error {
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	_, err = w.Write(append(out, '\n'))
	return err
}

// writeCSV writes the header followed by rows.
func writeCSV(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write CSV records: %w", err)
	}
	return nil
}

// createFormatters returns the float formatter for the configured precision
// and the integer verb shared by all output modes.
func createFormatters(precision int) (fmtFloat func(float64) string, intFmt string) {
	return func(v float64) string {
		return strconv.FormatFloat(v, 'f', precision, 64)
	}, "%d"
}
