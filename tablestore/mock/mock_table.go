/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package mock

import (
	"context"
	"slices"
	"sync"

	"github.com/suparena/tablequery/errors"
	"github.com/suparena/tablequery/models"
	"github.com/suparena/tablequery/tablestore"
)

// BackendName is the backend name the memory table registers under.
const BackendName = "memory"

// DefaultSegmentSize is the batch size served when neither a script nor the
// request names one.
const DefaultSegmentSize = 1000

// FilterFunc evaluates a filter against one row.
type FilterFunc func(filter string, params map[string]any, e models.Entity) (bool, error)

// cursor is the position encoded in continuation tokens.
type cursor struct {
	Offset int `msgpack:"o"`
}

// Table is an in-memory implementation of tablestore.SegmentQuerier.
// Segment sizes can be scripted to mimic a service that returns short or
// empty segments, and every request is recorded for inspection.
type Table struct {
	mu         sync.Mutex
	rows       []models.Entity
	script     []int
	filterFunc FilterFunc
	err        error
	errAt      int
	ignoreTake bool
	requests   []models.SegmentRequest
}

var _ tablestore.SegmentQuerier = (*Table)(nil)

// NewTable creates a table holding rows in scan order.
func NewTable(rows ...models.Entity) *Table {
	return &Table{rows: rows}
}

// WithSegments scripts the number of rows scanned by successive requests.
// A zero produces an empty segment that still carries a token. Once the
// script runs out, the requested batch size or DefaultSegmentSize applies.
func (m *Table) WithSegments(sizes ...int) *Table {
	m.script = sizes
	return m
}

// WithFilterFunc sets how non-empty filters are evaluated. Without one, a
// non-empty filter fails the request.
func (m *Table) WithFilterFunc(f FilterFunc) *Table {
	m.filterFunc = f
	return m
}

// WithError makes every request fail with err.
func (m *Table) WithError(err error) *Table {
	m.err = err
	m.errAt = 0
	return m
}

// WithErrorAt makes only the call-th request (1-based) fail with err.
func (m *Table) WithErrorAt(call int, err error) *Table {
	m.err = err
	m.errAt = call
	return m
}

// IgnoreTake makes the table serve scripted sizes even when they exceed the
// requested batch size.
func (m *Table) IgnoreTake() *Table {
	m.ignoreTake = true
	return m
}

// QuerySegment serves one segment starting at the position in req.Token.
func (m *Table) QuerySegment(ctx context.Context, req *models.SegmentRequest) (*models.Segment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, cloneRequest(req))
	call := len(m.requests)

	if m.err != nil && (m.errAt == 0 || m.errAt == call) {
		return nil, m.err
	}

	var pos cursor
	if !req.Token.IsZero() {
		if err := tablestore.DecodeToken(BackendName, req.Token, &pos); err != nil {
			return nil, err
		}
		if pos.Offset < 0 || pos.Offset > len(m.rows) {
			return nil, errors.NewTokenError(BackendName, nil)
		}
	}

	size := DefaultSegmentSize
	scripted := call <= len(m.script)
	if scripted {
		size = m.script[call-1]
	}
	if req.Take != nil && (!scripted || (!m.ignoreTake && int(*req.Take) < size)) {
		size = int(*req.Take)
	}

	end := min(pos.Offset+size, len(m.rows))
	seg := &models.Segment{}
	for _, e := range m.rows[pos.Offset:end] {
		if req.Filter != "" {
			if m.filterFunc == nil {
				return nil, errors.NewValidationError("filter", "memory table has no filter evaluator")
			}
			ok, err := m.filterFunc(req.Filter, req.Params, e)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
		}
		seg.Entities = append(seg.Entities, project(e, req.Select))
	}

	if end < len(m.rows) {
		next, err := tablestore.EncodeToken(cursor{Offset: end})
		if err != nil {
			return nil, err
		}
		seg.Next = next
	}
	return seg, nil
}

// Requests returns a copy of every request received so far.
func (m *Table) Requests() []models.SegmentRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.requests)
}

// Calls returns the number of requests received so far.
func (m *Table) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// Add appends rows to the end of the table.
func (m *Table) Add(rows ...models.Entity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, rows...)
}

// Count returns the number of stored rows.
func (m *Table) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

func cloneRequest(req *models.SegmentRequest) models.SegmentRequest {
	c := *req
	c.Select = slices.Clone(req.Select)
	if req.Take != nil {
		take := *req.Take
		c.Take = &take
	}
	return c
}

// project keeps only the selected fixed fields and properties.
func project(e models.Entity, sel []string) models.Entity {
	if len(sel) == 0 {
		e.Properties = slices.Clone(e.Properties)
		return e
	}
	keep := make(map[string]bool, len(sel))
	for _, name := range sel {
		keep[name] = true
	}

	out := models.Entity{}
	if keep[models.FieldPartitionKey] {
		out.PartitionKey = e.PartitionKey
	}
	if keep[models.FieldRowKey] {
		out.RowKey = e.RowKey
	}
	if keep[models.FieldTimestamp] {
		out.Timestamp = e.Timestamp
	}
	if keep[models.FieldETag] {
		out.ETag = e.ETag
	}
	for _, p := range e.Properties {
		if keep[p.Name] {
			out.Properties = append(out.Properties, p)
		}
	}
	return out
}
