/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-openapi/strfmt"

	"github.com/suparena/tablequery/models"
)

// AttributeMap names the attributes holding the fixed entity fields.
type AttributeMap struct {
	PartitionKey string
	RowKey       string
	Timestamp    string
	Version      string
}

// DefaultAttributeMap returns the single-table design defaults.
func DefaultAttributeMap() AttributeMap {
	return AttributeMap{
		PartitionKey: "PK",
		RowKey:       "SK",
		Timestamp:    "Timestamp",
		Version:      "Version",
	}
}

func (m AttributeMap) merge(o AttributeMap) AttributeMap {
	if o.PartitionKey != "" {
		m.PartitionKey = o.PartitionKey
	}
	if o.RowKey != "" {
		m.RowKey = o.RowKey
	}
	if o.Timestamp != "" {
		m.Timestamp = o.Timestamp
	}
	if o.Version != "" {
		m.Version = o.Version
	}
	return m
}

// attributeFor translates a fixed field name to its attribute; other names
// pass through.
func (m AttributeMap) attributeFor(field string) string {
	switch field {
	case models.FieldPartitionKey:
		return m.PartitionKey
	case models.FieldRowKey:
		return m.RowKey
	case models.FieldTimestamp:
		return m.Timestamp
	case models.FieldETag:
		return m.Version
	}
	return field
}

// toEntity maps a DynamoDB item onto an entity. Attributes that cannot be
// read as their fixed field stay in the property bag. Properties are sorted
// by name since DynamoDB items are unordered.
func (m AttributeMap) toEntity(item map[string]types.AttributeValue) (models.Entity, error) {
	var e models.Entity
	consumed := make(map[string]bool, 4)

	if s, ok := keyString(item[m.PartitionKey]); ok {
		e.PartitionKey = &s
		consumed[m.PartitionKey] = true
	}
	if s, ok := keyString(item[m.RowKey]); ok {
		e.RowKey = &s
		consumed[m.RowKey] = true
	}
	if ts, ok := parseTimestamp(item[m.Timestamp]); ok {
		e.Timestamp = &ts
		consumed[m.Timestamp] = true
	}
	if s, ok := keyString(item[m.Version]); ok {
		e.ETag = &s
		consumed[m.Version] = true
	}

	names := make([]string, 0, len(item))
	for name := range item {
		if !consumed[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	e.Properties = make([]models.Property, 0, len(names))
	for _, name := range names {
		v, err := toNative(item[name])
		if err != nil {
			return e, fmt.Errorf("failed to decode attribute %q: %w", name, err)
		}
		e.Properties = append(e.Properties, models.Property{Name: name, Value: v})
	}
	return e, nil
}

// keyString reads string and number attributes as text.
func keyString(av types.AttributeValue) (string, bool) {
	switch tv := av.(type) {
	case *types.AttributeValueMemberS:
		return tv.Value, true
	case *types.AttributeValueMemberN:
		return tv.Value, true
	}
	return "", false
}

// parseTimestamp accepts RFC 3339 strings and epoch seconds.
func parseTimestamp(av types.AttributeValue) (time.Time, bool) {
	switch tv := av.(type) {
	case *types.AttributeValueMemberS:
		dt, err := strfmt.ParseDateTime(tv.Value)
		if err != nil {
			return time.Time{}, false
		}
		return time.Time(dt), true
	case *types.AttributeValueMemberN:
		f, err := strconv.ParseFloat(tv.Value, 64)
		if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
			return time.Time{}, false
		}
		sec, frac := math.Modf(f)
		return time.Unix(int64(sec), int64(frac*1e9)).UTC(), true
	}
	return time.Time{}, false
}

// toNative converts an attribute value to a plain Go value. Numbers become
// int64 when integral and float64 otherwise.
func toNative(av types.AttributeValue) (any, error) {
	var v any
	if err := numberDecoder.Decode(av, &v); err != nil {
		return nil, err
	}
	return normalize(v), nil
}

var numberDecoder = attributevalue.NewDecoder(func(o *attributevalue.DecoderOptions) {
	o.UseNumber = true
})

// normalize replaces attributevalue.Number values, at any depth, with int64
// or float64.
func normalize(v any) any {
	switch tv := v.(type) {
	case attributevalue.Number:
		return parseNumber(tv)
	case []attributevalue.Number:
		out := make([]any, len(tv))
		for i, n := range tv {
			out[i] = parseNumber(n)
		}
		return out
	case []any:
		for i := range tv {
			tv[i] = normalize(tv[i])
		}
		return tv
	case map[string]any:
		for k := range tv {
			tv[k] = normalize(tv[k])
		}
		return tv
	}
	return v
}

func parseNumber(n attributevalue.Number) any {
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}
