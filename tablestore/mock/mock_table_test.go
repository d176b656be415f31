/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package mock_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/tablequery/config"
	"github.com/suparena/tablequery/errors"
	"github.com/suparena/tablequery/models"
	"github.com/suparena/tablequery/registry"
	"github.com/suparena/tablequery/tablestore/mock"
)

func str(s string) *string { return &s }

func rows(n int) []models.Entity {
	out := make([]models.Entity, n)
	for i := range out {
		out[i] = models.Entity{
			PartitionKey: str("p"),
			RowKey:       str(fmt.Sprintf("r%02d", i)),
			Properties: []models.Property{
				{Name: "N", Value: i},
				{Name: "Status", Value: "open"},
			},
		}
	}
	return out
}

func take(n int32) *int32 { return &n }

func TestTableSegments(t *testing.T) {
	ctx := context.Background()

	t.Run("ScriptedSizes", func(t *testing.T) {
		table := mock.NewTable(rows(5)...).WithSegments(2, 0, 3)

		seg, err := table.QuerySegment(ctx, &models.SegmentRequest{})
		require.NoError(t, err)
		assert.Len(t, seg.Entities, 2)
		require.False(t, seg.Next.IsZero())

		seg, err = table.QuerySegment(ctx, &models.SegmentRequest{Token: seg.Next})
		require.NoError(t, err)
		assert.Empty(t, seg.Entities)
		require.False(t, seg.Next.IsZero(), "empty segment should still carry a token")

		seg, err = table.QuerySegment(ctx, &models.SegmentRequest{Token: seg.Next})
		require.NoError(t, err)
		assert.Len(t, seg.Entities, 3)
		assert.True(t, seg.Next.IsZero())
		assert.Equal(t, "r04", *seg.Entities[2].RowKey)

		assert.Equal(t, 3, table.Calls())
	})

	t.Run("TakeLimitsScript", func(t *testing.T) {
		table := mock.NewTable(rows(5)...).WithSegments(4)
		seg, err := table.QuerySegment(ctx, &models.SegmentRequest{Take: take(1)})
		require.NoError(t, err)
		assert.Len(t, seg.Entities, 1)
	})

	t.Run("IgnoreTake", func(t *testing.T) {
		table := mock.NewTable(rows(5)...).WithSegments(4).IgnoreTake()
		seg, err := table.QuerySegment(ctx, &models.SegmentRequest{Take: take(1)})
		require.NoError(t, err)
		assert.Len(t, seg.Entities, 4)
	})

	t.Run("TakeWithoutScript", func(t *testing.T) {
		table := mock.NewTable(rows(5)...)
		seg, err := table.QuerySegment(ctx, &models.SegmentRequest{Take: take(3)})
		require.NoError(t, err)
		assert.Len(t, seg.Entities, 3)
		assert.False(t, seg.Next.IsZero())
	})

	t.Run("Projection", func(t *testing.T) {
		table := mock.NewTable(rows(1)...)
		seg, err := table.QuerySegment(ctx, &models.SegmentRequest{Select: []string{"RowKey", "Status"}})
		require.NoError(t, err)
		require.Len(t, seg.Entities, 1)
		e := seg.Entities[0]
		assert.Nil(t, e.PartitionKey)
		assert.Equal(t, "r00", *e.RowKey)
		assert.Equal(t, []models.Property{{Name: "Status", Value: "open"}}, e.Properties)
	})

	t.Run("RowsAddedDuringScan", func(t *testing.T) {
		table := mock.NewTable(rows(2)...)
		seg, err := table.QuerySegment(ctx, &models.SegmentRequest{Take: take(1)})
		require.NoError(t, err)
		require.False(t, seg.Next.IsZero())

		table.Add(models.Entity{PartitionKey: str("p"), RowKey: str("late")})
		assert.Equal(t, 3, table.Count())

		seg, err = table.QuerySegment(ctx, &models.SegmentRequest{Token: seg.Next})
		require.NoError(t, err)
		require.Len(t, seg.Entities, 2)
		assert.Equal(t, "late", *seg.Entities[1].RowKey)
		assert.True(t, seg.Next.IsZero())
	})

	t.Run("RequestsRecorded", func(t *testing.T) {
		table := mock.NewTable(rows(2)...)
		_, err := table.QuerySegment(ctx, &models.SegmentRequest{Select: []string{"N"}, Take: take(7)})
		require.NoError(t, err)

		reqs := table.Requests()
		require.Len(t, reqs, 1)
		assert.Equal(t, []string{"N"}, reqs[0].Select)
		assert.Equal(t, int32(7), *reqs[0].Take)
	})
}

func TestTableFilter(t *testing.T) {
	ctx := context.Background()

	t.Run("NoEvaluator", func(t *testing.T) {
		table := mock.NewTable(rows(2)...)
		_, err := table.QuerySegment(ctx, &models.SegmentRequest{Filter: "N gt 0"})
		require.Error(t, err)
		assert.True(t, errors.IsValidationError(err))
	})

	t.Run("FilteredRowsStillAdvance", func(t *testing.T) {
		table := mock.NewTable(rows(4)...).WithSegments(2, 2).
			WithFilterFunc(func(filter string, params map[string]any, e models.Entity) (bool, error) {
				v, _ := e.Property("N")
				return v.(int) >= 2, nil
			})

		seg, err := table.QuerySegment(ctx, &models.SegmentRequest{Filter: "N ge 2"})
		require.NoError(t, err)
		assert.Empty(t, seg.Entities)
		require.False(t, seg.Next.IsZero())

		seg, err = table.QuerySegment(ctx, &models.SegmentRequest{Filter: "N ge 2", Token: seg.Next})
		require.NoError(t, err)
		assert.Len(t, seg.Entities, 2)
		assert.True(t, seg.Next.IsZero())
	})
}

func TestTableErrors(t *testing.T) {
	ctx := context.Background()
	boom := fmt.Errorf("service unavailable")

	t.Run("EveryCall", func(t *testing.T) {
		table := mock.NewTable(rows(2)...).WithError(boom)
		_, err := table.QuerySegment(ctx, &models.SegmentRequest{})
		assert.Same(t, boom, err)
	})

	t.Run("NthCall", func(t *testing.T) {
		table := mock.NewTable(rows(4)...).WithSegments(1, 1, 1).WithErrorAt(2, boom)
		seg, err := table.QuerySegment(ctx, &models.SegmentRequest{})
		require.NoError(t, err)
		_, err = table.QuerySegment(ctx, &models.SegmentRequest{Token: seg.Next})
		assert.Same(t, boom, err)
	})

	t.Run("CorruptToken", func(t *testing.T) {
		table := mock.NewTable(rows(2)...)
		_, err := table.QuerySegment(ctx, &models.SegmentRequest{Token: "@@@"})
		require.Error(t, err)
		assert.True(t, errors.IsInvalidToken(err))
	})

	t.Run("CancelledContext", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		table := mock.NewTable(rows(2)...)
		_, err := table.QuerySegment(cctx, &models.SegmentRequest{})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Zero(t, table.Calls())
	})
}

const fixture = `
segments: [1, 0]
rows:
  - PartitionKey: user-1
    RowKey: order-1
    Timestamp: 2024-03-01T12:00:00Z
    ETag: W/"1"
    Status: open
    Total: 12.5
    Count: 3
  - PartitionKey: user-1
    RowKey: order-2
    Status: shipped
`

func TestParseFixture(t *testing.T) {
	table, err := mock.ParseFixture([]byte(fixture))
	require.NoError(t, err)
	require.Equal(t, 2, table.Count())

	seg, err := table.QuerySegment(context.Background(), &models.SegmentRequest{})
	require.NoError(t, err)
	require.Len(t, seg.Entities, 1)

	e := seg.Entities[0]
	assert.Equal(t, "user-1", *e.PartitionKey)
	assert.Equal(t, `W/"1"`, *e.ETag)
	require.NotNil(t, e.Timestamp)
	assert.True(t, e.Timestamp.Equal(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)))
	assert.Equal(t, []models.Property{
		{Name: "Status", Value: "open"},
		{Name: "Total", Value: 12.5},
		{Name: "Count", Value: 3},
	}, e.Properties)
}

func TestParseFixtureErrors(t *testing.T) {
	tests := map[string]string{
		"bad yaml":      "rows: [",
		"row not a map": "rows: [1]",
		"bad timestamp": "rows:\n  - Timestamp: yesterday\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := mock.ParseFixture([]byte(doc))
			require.Error(t, err)
		})
	}
}

func TestMemoryBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fixture), 0o600))

	q, err := registry.Open(context.Background(), config.TableConfig{Name: "local", Backend: "memory", Fixture: path})
	require.NoError(t, err)
	assert.Equal(t, 2, q.(*mock.Table).Count())

	_, err = registry.Open(context.Background(), config.TableConfig{Name: "local", Backend: "memory"})
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}
