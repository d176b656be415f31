/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

func TestRecordOrder(t *testing.T) {
	rec := NewRecord(0)
	rec.Set("z", 1)
	rec.Set("a", 2)
	rec.Set("m", 3)
	rec.Set("z", 4)

	assert.Equal(t, []string{"z", "a", "m"}, rec.Keys())
	assert.Equal(t, 3, rec.Len())

	v, ok := rec.Get("z")
	require.True(t, ok)
	assert.Equal(t, 4, v)

	var seen []string
	for k := range rec.All() {
		seen = append(seen, k)
		if k == "a" {
			break
		}
	}
	assert.Equal(t, []string{"z", "a"}, seen)
}

func TestRecordZeroValue(t *testing.T) {
	var rec Record
	_, ok := rec.Get("x")
	assert.False(t, ok)

	rec.Set("x", "y")
	assert.Equal(t, []string{"x"}, rec.Keys())
}

func TestRecordMarshalJSON(t *testing.T) {
	rec := NewRecord(3)
	rec.Set("RowKey", "r1")
	rec.Set("Count", 3)
	rec.Set("Tags", []string{"a", "b"})

	b, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Equal(t, `{"RowKey":"r1","Count":3,"Tags":["a","b"]}`, string(b))

	empty, err := json.Marshal(NewRecord(0))
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(empty))
}

func TestRecordMarshalYAML(t *testing.T) {
	rec := NewRecord(2)
	rec.Set("zeta", "last")
	rec.Set("alpha", 1)

	b, err := yaml.Marshal(rec)
	require.NoError(t, err)
	assert.Equal(t, "zeta: last\nalpha: 1\n", string(b))
}

func TestRecordMsgpackRoundTrip(t *testing.T) {
	rec := NewRecord(3)
	rec.Set("PartitionKey", "p1")
	rec.Set("Name", "alice")
	rec.Set("City", "Oakville")

	b, err := msgpack.Marshal(rec)
	require.NoError(t, err)

	var decoded Record
	require.NoError(t, msgpack.Unmarshal(b, &decoded))
	assert.Equal(t, rec.Keys(), decoded.Keys())
	assert.Equal(t, rec.Map(), decoded.Map())
}

func TestEntityNestedJSON(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	entity := Entity{
		PartitionKey: strPtr("p1"),
		RowKey:       strPtr("r1"),
		Timestamp:    &ts,
		Properties: []Property{
			{Name: "b", Value: "second"},
			{Name: "a", Value: "first"},
		},
	}

	b, err := json.Marshal(entity)
	require.NoError(t, err)
	assert.Equal(t,
		`{"PartitionKey":"p1","RowKey":"r1","Timestamp":"2024-01-02T03:04:05Z","Properties":{"b":"second","a":"first"}}`,
		string(b))
}

func TestEntityNestedYAML(t *testing.T) {
	entity := Entity{
		RowKey:     strPtr("r1"),
		Properties: []Property{{Name: "Name", Value: "alice"}},
	}

	b, err := yaml.Marshal(entity)
	require.NoError(t, err)
	assert.Equal(t, "RowKey: r1\nProperties:\n    Name: alice\n", string(b))
}
