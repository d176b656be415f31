/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"fmt"
	"strings"
	"time"

	"github.com/suparena/tablequery/errors"
	"github.com/suparena/tablequery/tablestore"
)

// FilterBuilder provides a fluent interface for building Scan filter
// expressions over the fixed entity fields.
type FilterBuilder struct {
	attrs   AttributeMap
	clauses []string
	names   map[string]string
	values  map[string]any
	seq     int
	err     error
}

var _ tablestore.Filter = (*FilterBuilder)(nil)

// NewFilterBuilder creates a builder for a table using attrs.
func NewFilterBuilder(attrs AttributeMap) *FilterBuilder {
	return &FilterBuilder{
		attrs:  DefaultAttributeMap().merge(attrs),
		names:  make(map[string]string),
		values: make(map[string]any),
	}
}

func (f *FilterBuilder) value(v any) string {
	var placeholder string
	for {
		f.seq++
		placeholder = fmt.Sprintf(":v%d", f.seq)
		if _, taken := f.values[placeholder]; !taken {
			break
		}
	}
	f.values[placeholder] = v
	return placeholder
}

func (f *FilterBuilder) name(placeholder, attr string) string {
	f.names[placeholder] = attr
	return placeholder
}

func (f *FilterBuilder) pk() string { return f.name("#pk", f.attrs.PartitionKey) }
func (f *FilterBuilder) sk() string { return f.name("#sk", f.attrs.RowKey) }
func (f *FilterBuilder) ts() string { return f.name("#ts", f.attrs.Timestamp) }

// PartitionKey matches rows in one partition.
func (f *FilterBuilder) PartitionKey(value string) tablestore.Filter {
	f.clauses = append(f.clauses, fmt.Sprintf("%s = %s", f.pk(), f.value(value)))
	return f
}

// RowKey matches a single sort key.
func (f *FilterBuilder) RowKey(value string) tablestore.Filter {
	f.clauses = append(f.clauses, fmt.Sprintf("%s = %s", f.sk(), f.value(value)))
	return f
}

// RowKeyPrefix matches sort keys starting with prefix.
func (f *FilterBuilder) RowKeyPrefix(prefix string) tablestore.Filter {
	if prefix == "" {
		return f
	}
	f.clauses = append(f.clauses, fmt.Sprintf("begins_with(%s, %s)", f.sk(), f.value(prefix)))
	return f
}

// RowKeyBetween matches sort keys in [start, end].
func (f *FilterBuilder) RowKeyBetween(start, end string) tablestore.Filter {
	if start > end {
		f.err = errors.NewValidationError("rowKey", fmt.Sprintf("range start %q is after end %q", start, end))
		return f
	}
	f.clauses = append(f.clauses, fmt.Sprintf("%s BETWEEN %s AND %s", f.sk(), f.value(start), f.value(end)))
	return f
}

// Since matches rows whose timestamp is at or after t.
func (f *FilterBuilder) Since(t time.Time) tablestore.Filter {
	return f.timeClause(">=", t)
}

// Before matches rows whose timestamp is strictly before t.
func (f *FilterBuilder) Before(t time.Time) tablestore.Filter {
	return f.timeClause("<", t)
}

// timeClause compares the timestamp attribute against t both as an RFC 3339
// string and as epoch seconds, matching either storage form. Comparisons
// across DynamoDB types are false, so only one side can hold per item.
func (f *FilterBuilder) timeClause(op string, t time.Time) *FilterBuilder {
	ts := f.ts()
	text := f.value(t.UTC().Format(time.RFC3339))
	epoch := f.value(t.Unix())
	f.clauses = append(f.clauses, fmt.Sprintf("(%s %s %s OR %s %s %s)", ts, op, text, ts, op, epoch))
	return f
}

// InLast matches rows modified within d of now.
func (f *FilterBuilder) InLast(d time.Duration) tablestore.Filter {
	return f.Since(time.Now().Add(-d))
}

// Where appends a raw filter expression. Placeholders in params follow the
// DynamoDB convention: ":name" binds a value and "#name" an attribute name.
func (f *FilterBuilder) Where(expression string, params map[string]any) tablestore.Filter {
	if strings.TrimSpace(expression) == "" {
		return f
	}
	for k, v := range params {
		if err := f.bind(k, v); err != nil {
			f.err = err
			return f
		}
	}
	f.clauses = append(f.clauses, "("+expression+")")
	return f
}

func (f *FilterBuilder) bind(k string, v any) error {
	switch {
	case strings.HasPrefix(k, ":"):
		if _, taken := f.values[k]; taken {
			return errors.NewValidationError("params", fmt.Sprintf("placeholder %s is already bound", k))
		}
		f.values[k] = v
	case strings.HasPrefix(k, "#"):
		name, ok := v.(string)
		if !ok {
			return errors.NewValidationError("params", fmt.Sprintf("attribute name %s must be a string", k))
		}
		if prev, taken := f.names[k]; taken && prev != name {
			return errors.NewValidationError("params", fmt.Sprintf("placeholder %s is already bound", k))
		}
		f.names[k] = name
	default:
		return errors.NewValidationError("params", fmt.Sprintf("placeholder %q must start with ':' or '#'", k))
	}
	return nil
}

// Build returns the filter expression and the params to send with it.
func (f *FilterBuilder) Build() (string, map[string]any, error) {
	if f.err != nil {
		return "", nil, f.err
	}
	if len(f.clauses) == 0 {
		return "", nil, nil
	}

	params := make(map[string]any, len(f.names)+len(f.values))
	for k, v := range f.names {
		params[k] = v
	}
	for k, v := range f.values {
		params[k] = v
	}
	return strings.Join(f.clauses, " AND "), params, nil
}
