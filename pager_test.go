/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package tablequery

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/tablequery/errors"
	"github.com/suparena/tablequery/models"
	"github.com/suparena/tablequery/tablestore/mock"
)

func drain(t *testing.T, p *Pager) []models.Entity {
	t.Helper()
	var out []models.Entity
	for p.More() {
		entities, err := p.NextSegment(context.Background())
		require.NoError(t, err)
		out = append(out, entities...)
	}
	return out
}

func takes(reqs []models.SegmentRequest) []int32 {
	out := make([]int32, len(reqs))
	for i, r := range reqs {
		if r.Take == nil {
			out[i] = -1
			continue
		}
		out[i] = *r.Take
	}
	return out
}

func TestPagerNeverExceedsCap(t *testing.T) {
	for limit := int64(1); limit <= 22; limit++ {
		t.Run(fmt.Sprintf("cap=%d", limit), func(t *testing.T) {
			table := mock.NewTable(testRows(20)...).WithSegments(3, 0, 5, 2, 7)
			p, err := NewPager(table, models.Query{MaxRows: models.MaxRows(limit)})
			require.NoError(t, err)

			got := drain(t, p)
			assert.LessOrEqual(t, int64(len(got)), limit)
			assert.Equal(t, min(limit, 20), int64(len(got)))
			assert.Equal(t, int64(len(got)), p.Rows())
		})
	}
}

func TestPagerUncapped(t *testing.T) {
	table := mock.NewTable(testRows(7)...).WithSegments(3, 0, 3, 1)
	p, err := NewPager(table, models.Query{})
	require.NoError(t, err)

	got := drain(t, p)
	assert.Len(t, got, 7)
	assert.Equal(t, 4, p.Segments())
	assert.Equal(t, []int32{-1, -1, -1, -1}, takes(table.Requests()))
	assert.True(t, p.Continuation().IsZero())
}

func TestPagerEmptySegmentsKeepLooping(t *testing.T) {
	table := mock.NewTable(testRows(2)...).WithSegments(0, 0, 0, 2)
	p, err := NewPager(table, models.Query{MaxRows: models.MaxRows(10)})
	require.NoError(t, err)

	got := drain(t, p)
	assert.Equal(t, []string{"r000", "r001"}, rowKeys(got))
	assert.Equal(t, 4, table.Calls())
}

func TestPagerCapStopsWithoutTrailingRequest(t *testing.T) {
	table := mock.NewTable(testRows(10)...).WithSegments(2, 3)
	p, err := NewPager(table, models.Query{MaxRows: models.MaxRows(5)})
	require.NoError(t, err)

	got := drain(t, p)
	assert.Len(t, got, 5)
	assert.Equal(t, 2, table.Calls(), "no request may follow a spent budget")
	assert.Equal(t, []int32{5, 3}, takes(table.Requests()), "each request asks for the remaining budget")

	_, err = p.NextSegment(context.Background())
	assert.ErrorIs(t, err, errors.ErrNoMoreSegments)
	assert.Equal(t, 2, table.Calls())

	t.Run("ResumeFromContinuation", func(t *testing.T) {
		tok := p.Continuation()
		require.False(t, tok.IsZero())

		resumed, err := NewPager(table, models.Query{}, models.WithStartToken(tok))
		require.NoError(t, err)
		rest := drain(t, resumed)
		assert.Equal(t, []string{"r005", "r006", "r007", "r008", "r009"}, rowKeys(rest))
	})
}

func TestPagerCapSmallerThanSegment(t *testing.T) {
	table := mock.NewTable(testRows(10)...)
	p, err := NewPager(table, models.Query{MaxRows: models.MaxRows(3)})
	require.NoError(t, err)

	got := drain(t, p)
	assert.Equal(t, []string{"r000", "r001", "r002"}, rowKeys(got))
	assert.Equal(t, 1, table.Calls())
	assert.Equal(t, []int32{3}, takes(table.Requests()))
}

func TestPagerTruncatesOversizedSegment(t *testing.T) {
	table := mock.NewTable(testRows(10)...).WithSegments(4).IgnoreTake()
	p, err := NewPager(table, models.Query{MaxRows: models.MaxRows(2)})
	require.NoError(t, err)

	got := drain(t, p)
	assert.Equal(t, []string{"r000", "r001"}, rowKeys(got))
	assert.Equal(t, 1, table.Calls())
	assert.True(t, p.Continuation().IsZero(), "a trimmed segment cannot be resumed without skipping rows")
}

func TestPagerTerminatesOnNullToken(t *testing.T) {
	table := mock.NewTable(testRows(5)...).WithSegments(2, 2, 2)
	p, err := NewPager(table, models.Query{MaxRows: models.MaxRows(100)})
	require.NoError(t, err)

	got := drain(t, p)
	assert.Len(t, got, 5)
	assert.Equal(t, 3, table.Calls())
	assert.True(t, p.Continuation().IsZero())
}

func TestPagerPageSize(t *testing.T) {
	tests := map[string]struct {
		maxRows  *int64
		pageSize int32
		want     []int32
		rows     int
	}{
		"capped":            {maxRows: models.MaxRows(10), pageSize: 4, want: []int32{4, 4, 2}, rows: 10},
		"cap below page":    {maxRows: models.MaxRows(3), pageSize: 4, want: []int32{3}, rows: 3},
		"uncapped":          {pageSize: 8, want: []int32{8, 8, 8}, rows: 20},
		"no page size, cap": {maxRows: models.MaxRows(6), want: []int32{6}, rows: 6},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			table := mock.NewTable(testRows(20)...)
			p, err := NewPager(table, models.Query{MaxRows: tc.maxRows}, models.WithPageSize(tc.pageSize))
			require.NoError(t, err)

			got := drain(t, p)
			assert.Len(t, got, tc.rows)
			assert.Equal(t, tc.want, takes(table.Requests()))
		})
	}
}

func TestPagerForwardsQuery(t *testing.T) {
	table := mock.NewTable(testRows(3)...).WithFilterFunc(
		func(filter string, params map[string]any, e models.Entity) (bool, error) {
			return true, nil
		})
	query := models.Query{
		Filter: "N ge :min",
		Select: []string{"RowKey", "N"},
		Params: map[string]any{":min": 1},
	}
	p, err := NewPager(table, query)
	require.NoError(t, err)
	drain(t, p)

	reqs := table.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, query.Filter, reqs[0].Filter)
	assert.Equal(t, query.Select, reqs[0].Select)
	assert.Equal(t, query.Params, reqs[0].Params)
	assert.True(t, reqs[0].Token.IsZero())
}

func TestPagerServiceErrorUnchanged(t *testing.T) {
	boom := fmt.Errorf("403 AuthorizationFailure")
	table := mock.NewTable(testRows(5)...).WithSegments(1, 1, 1).WithErrorAt(2, boom)

	p, err := NewPager(table, models.Query{})
	require.NoError(t, err)

	first, err := p.NextSegment(context.Background())
	require.NoError(t, err)
	assert.Len(t, first, 1)

	_, err = p.NextSegment(context.Background())
	assert.Same(t, boom, err)
	assert.False(t, p.More())

	_, err = p.NextSegment(context.Background())
	assert.ErrorIs(t, err, errors.ErrNoMoreSegments)
	assert.Equal(t, 2, table.Calls())
}

func TestNewPagerValidation(t *testing.T) {
	table := mock.NewTable(testRows(1)...)

	tests := map[string]struct {
		src   *mock.Table
		query models.Query
		opts  []models.StreamOption
	}{
		"zero cap":           {src: table, query: models.Query{MaxRows: models.MaxRows(0)}},
		"negative cap":       {src: table, query: models.Query{MaxRows: models.MaxRows(-3)}},
		"blank column":       {src: table, query: models.Query{Select: []string{"A", " "}}},
		"negative page size": {src: table, opts: []models.StreamOption{models.WithPageSize(-1)}},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := NewPager(tc.src, tc.query, tc.opts...)
			require.Error(t, err)
			assert.True(t, errors.IsValidationError(err), "expected validation error, got %v", err)
		})
	}

	t.Run("nil table", func(t *testing.T) {
		_, err := NewPager(nil, models.Query{})
		assert.True(t, errors.IsValidationError(err))
	})

	assert.Zero(t, table.Calls())
}

func TestPagerStartTokenRejected(t *testing.T) {
	table := mock.NewTable(testRows(3)...)
	p, err := NewPager(table, models.Query{}, models.WithStartToken("not-a-token!"))
	require.NoError(t, err)

	_, err = p.NextSegment(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsInvalidToken(err))
}
