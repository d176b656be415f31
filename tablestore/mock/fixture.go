/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package mock

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-openapi/strfmt"
	"gopkg.in/yaml.v3"

	"github.com/suparena/tablequery/config"
	"github.com/suparena/tablequery/errors"
	"github.com/suparena/tablequery/models"
	"github.com/suparena/tablequery/registry"
	"github.com/suparena/tablequery/tablestore"
)

func init() {
	registry.RegisterBackend(BackendName, Open)
}

// Open loads the fixture named by cfg.Fixture.
func Open(ctx context.Context, cfg config.TableConfig) (tablestore.SegmentQuerier, error) {
	if cfg.Fixture == "" {
		return nil, errors.NewValidationError("fixture", fmt.Sprintf("memory table %q has no fixture file", cfg.Name))
	}
	return LoadFixture(cfg.Fixture)
}

// LoadFixture reads a YAML fixture file:
//
//	segments: [2, 0, 3]
//	rows:
//	  - PartitionKey: user-1
//	    RowKey: order-1
//	    Timestamp: 2024-03-01T12:00:00Z
//	    Status: open
//	    Total: 12.5
//
// Property order in each row is preserved.
func LoadFixture(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture: %w", err)
	}
	return ParseFixture(data)
}

// ParseFixture decodes fixture YAML.
func ParseFixture(data []byte) (*Table, error) {
	var doc struct {
		Segments []int      `yaml:"segments"`
		Rows     []yaml.Node `yaml:"rows"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse fixture: %w", err)
	}

	rows := make([]models.Entity, 0, len(doc.Rows))
	for i := range doc.Rows {
		e, err := decodeRow(&doc.Rows[i])
		if err != nil {
			return nil, fmt.Errorf("fixture row %d: %w", i, err)
		}
		rows = append(rows, e)
	}
	return NewTable(rows...).WithSegments(doc.Segments...), nil
}

func decodeRow(node *yaml.Node) (models.Entity, error) {
	var e models.Entity
	if node.Kind != yaml.MappingNode {
		return e, errors.NewValidationError("rows", "each row must be a mapping")
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value
		value := node.Content[i+1]

		switch name {
		case models.FieldPartitionKey:
			e.PartitionKey = stringPtr(value.Value)
		case models.FieldRowKey:
			e.RowKey = stringPtr(value.Value)
		case models.FieldETag:
			e.ETag = stringPtr(value.Value)
		case models.FieldTimestamp:
			dt, err := strfmt.ParseDateTime(value.Value)
			if err != nil {
				return e, fmt.Errorf("invalid Timestamp %q: %w", value.Value, err)
			}
			ts := time.Time(dt)
			e.Timestamp = &ts
		default:
			var v any
			if err := value.Decode(&v); err != nil {
				return e, fmt.Errorf("property %q: %w", name, err)
			}
			e.Properties = append(e.Properties, models.Property{Name: name, Value: v})
		}
	}
	return e, nil
}

func stringPtr(s string) *string {
	return &s
}
