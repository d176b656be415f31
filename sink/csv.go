/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package sink

import (
	"encoding/base64"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/go-openapi/strfmt"
)

// csvSink writes flattened rows. The header is fixed by the first row; keys
// that later rows add are not written.
type csvSink struct {
	w       *csv.Writer
	columns []string
	header  bool
}

func newCSVSink(w io.Writer, opts Options) Sink {
	return &csvSink{w: csv.NewWriter(w), columns: opts.Columns}
}

func (s *csvSink) Write(row any) error {
	rec, err := asRecord(row)
	if err != nil {
		return err
	}

	if !s.header {
		if len(s.columns) == 0 {
			s.columns = rec.Keys()
		}
		if err := s.w.Write(s.columns); err != nil {
			return fmt.Errorf("failed to write csv header: %w", err)
		}
		s.header = true
	}

	cells := make([]string, len(s.columns))
	for i, col := range s.columns {
		v, _ := rec.Get(col)
		cell, err := formatCell(v)
		if err != nil {
			return fmt.Errorf("column %q: %w", col, err)
		}
		cells[i] = cell
	}
	if err := s.w.Write(cells); err != nil {
		return fmt.Errorf("failed to write row: %w", err)
	}
	return nil
}

func (s *csvSink) Close() error {
	s.w.Flush()
	return s.w.Error()
}

func formatCell(v any) (string, error) {
	switch tv := v.(type) {
	case nil:
		return "", nil
	case string:
		return tv, nil
	case bool:
		return strconv.FormatBool(tv), nil
	case time.Time:
		return strfmt.DateTime(tv).String(), nil
	case []byte:
		return base64.StdEncoding.EncodeToString(tv), nil
	case int, int32, int64, uint, uint32, uint64:
		return fmt.Sprint(tv), nil
	case float32:
		return strconv.FormatFloat(float64(tv), 'g', -1, 32), nil
	case float64:
		return strconv.FormatFloat(tv, 'g', -1, 64), nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
