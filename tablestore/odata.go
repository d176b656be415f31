/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package tablestore

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-openapi/strfmt"

	"github.com/suparena/tablequery/errors"
)

// ODataFilter builds predicates in the OData subset understood by Azure
// Table storage: comparisons joined with "and", string literals in single
// quotes and timestamps as datetime'...' literals.
type ODataFilter struct {
	clauses []string
	err     error
}

var _ Filter = (*ODataFilter)(nil)

// NewODataFilter creates an empty OData filter builder.
func NewODataFilter() *ODataFilter {
	return &ODataFilter{}
}

// QuoteString renders s as an OData string literal.
func QuoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// QuoteTime renders t as an OData datetime literal in UTC.
func QuoteTime(t time.Time) string {
	return "datetime'" + strfmt.DateTime(t.UTC()).String() + "'"
}

func (f *ODataFilter) compare(field, op, literal string) *ODataFilter {
	f.clauses = append(f.clauses, fmt.Sprintf("%s %s %s", field, op, literal))
	return f
}

// PartitionKey matches rows in one partition.
func (f *ODataFilter) PartitionKey(value string) Filter {
	return f.compare("PartitionKey", "eq", QuoteString(value))
}

// RowKey matches a single row key.
func (f *ODataFilter) RowKey(value string) Filter {
	return f.compare("RowKey", "eq", QuoteString(value))
}

// RowKeyPrefix matches row keys starting with prefix, expressed as a range
// because OData has no prefix operator.
func (f *ODataFilter) RowKeyPrefix(prefix string) Filter {
	if prefix == "" {
		return f
	}
	f.compare("RowKey", "ge", QuoteString(prefix))
	return f.compare("RowKey", "lt", QuoteString(PrefixUpperBound(prefix)))
}

// RowKeyBetween matches row keys in [start, end].
func (f *ODataFilter) RowKeyBetween(start, end string) Filter {
	if start > end {
		f.err = errors.NewValidationError("rowKey", fmt.Sprintf("range start %q is after end %q", start, end))
		return f
	}
	f.compare("RowKey", "ge", QuoteString(start))
	return f.compare("RowKey", "le", QuoteString(end))
}

// Since matches rows modified at or after t.
func (f *ODataFilter) Since(t time.Time) Filter {
	return f.compare("Timestamp", "ge", QuoteTime(t))
}

// Before matches rows modified strictly before t.
func (f *ODataFilter) Before(t time.Time) Filter {
	return f.compare("Timestamp", "lt", QuoteTime(t))
}

// Where appends a raw OData expression. OData binds values inline, so
// params must be empty.
func (f *ODataFilter) Where(expression string, params map[string]any) Filter {
	if len(params) > 0 {
		f.err = errors.NewValidationError("params", "OData filters do not take placeholder parameters")
		return f
	}
	if strings.TrimSpace(expression) == "" {
		return f
	}
	f.clauses = append(f.clauses, "("+expression+")")
	return f
}

// Build returns the combined predicate. OData filters never carry params.
func (f *ODataFilter) Build() (string, map[string]any, error) {
	if f.err != nil {
		return "", nil, f.err
	}
	return strings.Join(f.clauses, " and "), nil, nil
}

// PrefixUpperBound returns the smallest string greater than every string
// starting with prefix.
func PrefixUpperBound(prefix string) string {
	r := []rune(prefix)
	for i := len(r) - 1; i >= 0; i-- {
		if r[i] < '\U0010FFFF' {
			r[i]++
			return string(r[:i+1])
		}
	}
	return prefix
}
