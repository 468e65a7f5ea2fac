package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
)

// Format selects how a RowWriter renders records.
type Format int

const (
	// FormatTable buffers rows and renders them with PrintTable on Flush.
	FormatTable Format = iota
	// FormatCSV writes RFC 4180 CSV, header first.
	FormatCSV
	// FormatJSONL writes each record as one compact JSON object per line.
	FormatJSONL
)

// RowWriter renders a stream of records. CSV and JSONL are written as each
// record arrives so long imports show progress; tables need every row
// before they can size columns.
type RowWriter struct {
	w       io.Writer
	format  Format
	headers []string
	isTTY   bool

	csv         *csv.Writer
	wroteHeader bool
	enc         *json.Encoder
	rows        [][]string
}

// NewRowWriter returns a RowWriter for headers in the given format.
func NewRowWriter(w io.Writer, format Format, headers []string, isTTY bool) *RowWriter {
	rw := &RowWriter{w: w, format: format, headers: headers, isTTY: isTTY}
	switch format {
	case FormatCSV:
		rw.csv = csv.NewWriter(w)
	case FormatJSONL:
		rw.enc = json.NewEncoder(w)
		rw.enc.SetEscapeHTML(false)
	}
	return rw
}

// WriteRow emits one record. JSONL encodes record itself; the other formats
// use cells, which must line up with the headers.
func (rw *RowWriter) WriteRow(record any, cells []string) error {
	switch rw.format {
	case FormatJSONL:
		return rw.enc.Encode(record)
	case FormatCSV:
		if !rw.wroteHeader {
			if err := rw.csv.Write(rw.headers); err != nil {
				return fmt.Errorf("writing csv header: %w", err)
			}
			rw.wroteHeader = true
		}
		if err := rw.csv.Write(cells); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
		rw.csv.Flush()
		return rw.csv.Error()
	default:
		rw.rows = append(rw.rows, cells)
		return nil
	}
}

// Rows reports how many rows a table writer has buffered.
func (rw *RowWriter) Rows() int {
	return len(rw.rows)
}

// Flush finishes the output. A CSV writer that saw no rows still writes
// its header.
func (rw *RowWriter) Flush() error {
	switch rw.format {
	case FormatCSV:
		if !rw.wroteHeader {
			if err := rw.csv.Write(rw.headers); err != nil {
				return fmt.Errorf("writing csv header: %w", err)
			}
			rw.wroteHeader = true
		}
		rw.csv.Flush()
		return rw.csv.Error()
	case FormatTable:
		PrintTable(rw.w, rw.headers, rw.rows, rw.isTTY)
	}
	return nil
}
