/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package models

// Flatten merges the fixed fields and the properties of e into one record.
// Fixed fields come first and are omitted when absent. Properties follow in
// order; a name seen twice, or one equal to a fixed field, keeps the value
// of its last occurrence.
func Flatten(e Entity) *Record {
	r := NewRecord(4 + len(e.Properties))
	if e.PartitionKey != nil {
		r.Set(FieldPartitionKey, *e.PartitionKey)
	}
	if e.RowKey != nil {
		r.Set(FieldRowKey, *e.RowKey)
	}
	if e.Timestamp != nil {
		r.Set(FieldTimestamp, *e.Timestamp)
	}
	if e.ETag != nil {
		r.Set(FieldETag, *e.ETag)
	}
	for _, p := range e.Properties {
		r.Set(p.Name, p.Value)
	}
	return r
}
