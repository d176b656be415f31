/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package models

import (
	"encoding/json"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Names of the fixed system fields in flattened records and nested output.
const (
	FieldPartitionKey = "PartitionKey"
	FieldRowKey       = "RowKey"
	FieldTimestamp    = "Timestamp"
	FieldETag         = "ETag"
)

// Property is one named, typed value of an entity.
type Property struct {
	Name  string
	Value any
}

// Entity is a row as returned by a table service: fixed system fields plus
// an ordered bag of properties. A nil fixed field was not returned, usually
// because the query projected it away.
type Entity struct {
	PartitionKey *string
	RowKey       *string
	Timestamp    *time.Time
	ETag         *string
	Properties   []Property
}

// Property returns the value of the last property called name.
func (e Entity) Property(name string) (any, bool) {
	for i := len(e.Properties) - 1; i >= 0; i-- {
		if e.Properties[i].Name == name {
			return e.Properties[i].Value, true
		}
	}
	return nil, false
}

// PropertyRecord collects the properties into a record, later duplicates winning.
func (e Entity) PropertyRecord() *Record {
	r := NewRecord(len(e.Properties))
	for _, p := range e.Properties {
		r.Set(p.Name, p.Value)
	}
	return r
}

// entityView is the nested output shape of an entity.
type entityView struct {
	PartitionKey *string    `json:"PartitionKey,omitempty" yaml:"PartitionKey,omitempty" msgpack:"PartitionKey,omitempty"`
	RowKey       *string    `json:"RowKey,omitempty" yaml:"RowKey,omitempty" msgpack:"RowKey,omitempty"`
	Timestamp    *time.Time `json:"Timestamp,omitempty" yaml:"Timestamp,omitempty" msgpack:"Timestamp,omitempty"`
	ETag         *string    `json:"ETag,omitempty" yaml:"ETag,omitempty" msgpack:"ETag,omitempty"`
	Properties   *Record    `json:"Properties" yaml:"Properties" msgpack:"Properties"`
}

func (e Entity) view() entityView {
	return entityView{
		PartitionKey: e.PartitionKey,
		RowKey:       e.RowKey,
		Timestamp:    e.Timestamp,
		ETag:         e.ETag,
		Properties:   e.PropertyRecord(),
	}
}

// MarshalJSON encodes the entity in its nested shape.
func (e Entity) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.view())
}

// MarshalYAML encodes the entity in its nested shape.
func (e Entity) MarshalYAML() (interface{}, error) {
	return e.view(), nil
}

// EncodeMsgpack encodes the entity in its nested shape.
func (e Entity) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.Encode(e.view())
}
