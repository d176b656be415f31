/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package tablequery

import (
	"context"
	"math"

	"go.uber.org/zap"

	"github.com/suparena/tablequery/errors"
	"github.com/suparena/tablequery/models"
	"github.com/suparena/tablequery/tablestore"
)

// Pager walks a query one segment at a time. A Pager is single-use and not
// safe for concurrent use.
type Pager struct {
	src     tablestore.SegmentQuerier
	query   models.Query
	options models.StreamOptions

	// remaining is the row budget, or -1 when the query has no cap.
	remaining int64
	token     models.ContinuationToken
	resume    models.ContinuationToken
	done      bool
	rows      int64
	segments  int
}

// NewPager validates query and prepares to read it from src.
func NewPager(src tablestore.SegmentQuerier, query models.Query, opts ...models.StreamOption) (*Pager, error) {
	if src == nil {
		return nil, errors.NewValidationError("table", "table handle is nil")
	}
	if err := query.Validate(); err != nil {
		return nil, err
	}
	options := models.ApplyStreamOptions(opts...)
	if options.PageSize < 0 {
		return nil, errors.NewValidationError("pageSize", "must not be negative")
	}

	p := &Pager{
		src:       src,
		query:     query,
		options:   options,
		remaining: -1,
		token:     options.StartToken,
	}
	if query.MaxRows != nil {
		p.remaining = *query.MaxRows
	}
	return p, nil
}

// More reports whether another segment should be fetched.
func (p *Pager) More() bool {
	return !p.done
}

// NextSegment fetches the next segment and returns its rows, trimmed to the
// remaining budget. Service errors are returned unchanged and end the pager.
func (p *Pager) NextSegment(ctx context.Context) ([]models.Entity, error) {
	if p.done {
		return nil, errors.ErrNoMoreSegments
	}

	req := &models.SegmentRequest{
		Filter: p.query.Filter,
		Select: p.query.Select,
		Params: p.query.Params,
		Take:   p.take(),
		Token:  p.token,
	}
	seg, err := p.src.QuerySegment(ctx, req)
	if err != nil {
		p.done = true
		return nil, err
	}
	p.segments++

	var (
		entities []models.Entity
		next     models.ContinuationToken
	)
	if seg != nil {
		entities = seg.Entities
		next = seg.Next
	}

	truncated := false
	if p.remaining >= 0 {
		if int64(len(entities)) > p.remaining {
			entities = entities[:p.remaining]
			truncated = true
		}
		p.remaining -= int64(len(entities))
	}
	p.rows += int64(len(entities))

	switch {
	case p.remaining == 0:
		// Budget spent: stop without asking for a trailing segment.
		if !truncated {
			p.resume = next
		}
		p.token = ""
		p.done = true
	case next.IsZero():
		p.token = ""
		p.done = true
	default:
		p.token = next
	}

	p.options.Logger.Debug("segment fetched",
		zap.Int("segment", p.segments),
		zap.Int("rows", len(entities)),
		zap.Int64("total", p.rows),
		zap.Bool("more", !p.done),
	)
	return entities, nil
}

// take returns the batch size for the next request, or nil for the service default.
func (p *Pager) take() *int32 {
	n := int64(p.options.PageSize)
	if p.remaining >= 0 && (n == 0 || p.remaining < n) {
		n = p.remaining
	}
	if n <= 0 {
		return nil
	}
	if n > math.MaxInt32 {
		n = math.MaxInt32
	}
	v := int32(n)
	return &v
}

// Rows returns the number of rows returned so far.
func (p *Pager) Rows() int64 {
	return p.rows
}

// Segments returns the number of segments fetched so far.
func (p *Pager) Segments() int {
	return p.segments
}

// Token returns the continuation token the next request will carry.
func (p *Pager) Token() models.ContinuationToken {
	return p.token
}

// Continuation returns a token that resumes the query after a stop forced by
// MaxRows. It is empty when the table was exhausted or when the last segment
// had to be trimmed, since resuming from it would skip rows.
func (p *Pager) Continuation() models.ContinuationToken {
	return p.resume
}
