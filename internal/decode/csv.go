package decode

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
)

// decodeCSV parses a CSV document with a mandatory header row into a
// sequence of row mappings (column header -> cell). Cells that parse as
// numbers become numeric leaves; everything else stays text.
//
// A body row whose column count differs from the header, or that fails
// to parse, is skipped and decoding continues. Live feed sources are
// occasionally truncated mid-row and one bad row must not take down the
// rest of the file.
func decodeCSV(data []byte) (Value, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return Value{}, &DecodeError{Format: FormatCSV, Err: fmt.Errorf("read header: %w", err)}
	}

	rows := Value{Kind: KindSequence}
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			slog.Debug("skipping malformed csv row", "error", err)
			continue
		}
		if len(record) != len(header) {
			slog.Debug("skipping csv row with mismatched column count",
				"want", len(header), "got", len(record))
			continue
		}

		row := Value{Kind: KindMapping, Mapping: make([]Member, 0, len(header))}
		for i, col := range header {
			row.Mapping = setMember(row.Mapping, col, csvCell(record[i]))
		}
		rows.Sequence = append(rows.Sequence, row)
	}

	return rows, nil
}

func csvCell(cell string) Value {
	if f, err := strconv.ParseFloat(strings.TrimSpace(cell), 64); err == nil {
		return Value{Kind: KindNumber, Number: f}
	}
	return Value{Kind: KindText, Text: cell}
}
