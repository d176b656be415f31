/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package tablestore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/tablequery/errors"
)

func TestODataFilter(t *testing.T) {
	since := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := map[string]struct {
		build func(Filter) Filter
		want  string
	}{
		"empty": {
			build: func(f Filter) Filter { return f },
			want:  "",
		},
		"partition and row": {
			build: func(f Filter) Filter { return f.PartitionKey("user-1").RowKey("order-9") },
			want:  "PartitionKey eq 'user-1' and RowKey eq 'order-9'",
		},
		"quotes doubled": {
			build: func(f Filter) Filter { return f.PartitionKey("O'Brien") },
			want:  "PartitionKey eq 'O''Brien'",
		},
		"prefix becomes range": {
			build: func(f Filter) Filter { return f.RowKeyPrefix("2024-") },
			want:  "RowKey ge '2024-' and RowKey lt '2024.'",
		},
		"empty prefix ignored": {
			build: func(f Filter) Filter { return f.PartitionKey("p").RowKeyPrefix("") },
			want:  "PartitionKey eq 'p'",
		},
		"between": {
			build: func(f Filter) Filter { return f.RowKeyBetween("a", "m") },
			want:  "RowKey ge 'a' and RowKey le 'm'",
		},
		"time window": {
			build: func(f Filter) Filter { return f.Since(since).Before(since.Add(time.Hour)) },
			want:  "Timestamp ge datetime'2024-03-01T12:00:00.000Z' and Timestamp lt datetime'2024-03-01T13:00:00.000Z'",
		},
		"raw expression wrapped": {
			build: func(f Filter) Filter { return f.PartitionKey("p").Where("Status eq 'open' or Status eq 'held'", nil) },
			want:  "PartitionKey eq 'p' and (Status eq 'open' or Status eq 'held')",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, params, err := tc.build(NewODataFilter()).Build()
			require.NoError(t, err)
			assert.Nil(t, params)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestODataFilterErrors(t *testing.T) {
	t.Run("ParamsRejected", func(t *testing.T) {
		_, _, err := NewODataFilter().Where("Total gt :min", map[string]any{":min": 5}).Build()
		require.Error(t, err)
		assert.True(t, errors.IsValidationError(err))
	})

	t.Run("InvertedRange", func(t *testing.T) {
		_, _, err := NewODataFilter().RowKeyBetween("z", "a").Build()
		require.Error(t, err)
		assert.True(t, errors.IsValidationError(err))
	})
}

func TestPrefixUpperBound(t *testing.T) {
	assert.Equal(t, "ab", PrefixUpperBound("aa"))
	assert.Equal(t, "USER$", PrefixUpperBound("USER#"))
	assert.Equal(t, "é", PrefixUpperBound("è"))
}
