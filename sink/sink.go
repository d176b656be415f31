/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package sink

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"github.com/suparena/tablequery/errors"
	"github.com/suparena/tablequery/models"
)

// Output formats.
const (
	FormatJSONL   = "jsonl"
	FormatYAML    = "yaml"
	FormatMsgpack = "msgpack"
	FormatCSV     = "csv"
)

// Sink receives rows one at a time. A row is either a models.Entity, written
// in its nested shape, or a flattened *models.Record.
type Sink interface {
	Write(row any) error
	// Close flushes buffered output. It does not close the underlying writer.
	Close() error
}

// Options configures a sink.
type Options struct {
	// Columns fixes the CSV header. When empty, the first row's keys are used.
	Columns []string
}

// Option is a functional option for configuring a sink.
type Option func(*Options)

// WithColumns sets the CSV header.
func WithColumns(cols []string) Option {
	return func(o *Options) {
		o.Columns = cols
	}
}

var encoders = map[string]func(w io.Writer, opts Options) Sink{
	FormatJSONL: func(w io.Writer, _ Options) Sink {
		return &encoderSink{enc: json.NewEncoder(w)}
	},
	FormatYAML: func(w io.Writer, _ Options) Sink {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		return &encoderSink{enc: enc, closer: enc.Close}
	},
	FormatMsgpack: func(w io.Writer, _ Options) Sink {
		return &encoderSink{enc: msgpack.NewEncoder(w)}
	},
	FormatCSV: newCSVSink,
}

// Formats returns the supported format names in sorted order.
func Formats() []string {
	names := make([]string, 0, len(encoders))
	for name := range encoders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New creates a sink writing format to w.
func New(format string, w io.Writer, opts ...Option) (Sink, error) {
	build, ok := encoders[format]
	if !ok {
		return nil, errors.NewValidationError("format", fmt.Sprintf("unknown format %q, expected one of %v", format, Formats()))
	}
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	return build(w, o), nil
}

type encoder interface {
	Encode(v any) error
}

// encoderSink writes each row as one value of a streaming encoder.
type encoderSink struct {
	enc    encoder
	closer func() error
}

func (s *encoderSink) Write(row any) error {
	if err := checkRow(row); err != nil {
		return err
	}
	if err := s.enc.Encode(row); err != nil {
		return fmt.Errorf("failed to write row: %w", err)
	}
	return nil
}

func (s *encoderSink) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}

func checkRow(row any) error {
	switch row.(type) {
	case models.Entity, *models.Record:
		return nil
	}
	return errors.NewValidationError("row", fmt.Sprintf("unsupported row type %T", row))
}

// asRecord flattens entities so every row can be read by key.
func asRecord(row any) (*models.Record, error) {
	switch r := row.(type) {
	case *models.Record:
		return r, nil
	case models.Entity:
		return models.Flatten(r), nil
	}
	return nil, checkRow(row)
}
