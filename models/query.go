/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package models

import (
	"fmt"
	"strings"

	"github.com/suparena/tablequery/errors"
)

// Query describes a filtered, projected read of a table.
type Query struct {
	// Filter is the server-side predicate, written in the backend's own grammar.
	// An empty filter matches every row.
	Filter string
	// Select lists the columns to project, in order. Empty means all columns.
	Select []string
	// MaxRows caps the total number of rows returned. Nil means unbounded.
	MaxRows *int64
	// Params binds placeholders used in Filter for backends that separate
	// values from the expression (":name" values and "#name" attribute names).
	Params map[string]any
}

// MaxRows returns a pointer suitable for Query.MaxRows.
func MaxRows(n int64) *int64 {
	return &n
}

// Validate checks the query for problems that can be detected without a service call.
func (q Query) Validate() error {
	if q.MaxRows != nil && *q.MaxRows < 1 {
		return errors.NewValidationError("maxRows", "must be at least 1")
	}
	for i, col := range q.Select {
		if strings.TrimSpace(col) == "" {
			return errors.NewValidationError("select", fmt.Sprintf("column %d is empty", i))
		}
	}
	for name := range q.Params {
		if name == "" {
			return errors.NewValidationError("params", "placeholder name is empty")
		}
	}
	return nil
}

// ContinuationToken is an opaque cursor returned by a table service after a
// segment. The zero value means no more data.
type ContinuationToken string

// IsZero reports whether the token is absent.
func (t ContinuationToken) IsZero() bool {
	return t == ""
}

func (t ContinuationToken) String() string {
	return string(t)
}

// SegmentRequest asks a table service for one segment of results.
type SegmentRequest struct {
	Filter string
	Select []string
	Params map[string]any
	// Take is the requested batch size; nil lets the service choose.
	Take *int32
	// Token resumes a previous query; empty starts from the beginning.
	Token ContinuationToken
}

// Segment is one page of results plus the token for the next one.
type Segment struct {
	Entities []Entity
	Next     ContinuationToken
}
