/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package tablestore

import (
	"context"
	"time"

	"github.com/suparena/tablequery/models"
)

// SegmentQuerier fetches one segment of a filtered, projected table query.
// Implementations return service errors exactly as the SDK reported them.
type SegmentQuerier interface {
	QuerySegment(ctx context.Context, req *models.SegmentRequest) (*models.Segment, error)
}

// Filter builds a backend-specific predicate from common key and time conditions.
type Filter interface {
	PartitionKey(value string) Filter
	RowKey(value string) Filter
	RowKeyPrefix(prefix string) Filter
	RowKeyBetween(start, end string) Filter
	Since(t time.Time) Filter
	Before(t time.Time) Filter
	// Where appends a raw predicate in the backend's grammar.
	Where(expression string, params map[string]any) Filter
	// Build returns the combined predicate and its placeholder bindings.
	Build() (string, map[string]any, error)
}

// FilterFactory is implemented by backends that can build a Filter.
type FilterFactory interface {
	NewFilter() Filter
}
