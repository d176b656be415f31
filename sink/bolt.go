/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package sink

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	bolt "go.etcd.io/bbolt"

	"github.com/suparena/tablequery/models"
)

// DefaultBucket is the bucket rows are exported to when none is named.
const DefaultBucket = "rows"

// keySeparator joins partition and row key in bolt keys.
const keySeparator = 0x00

// DefaultBatchSize is the number of rows committed per transaction.
const DefaultBatchSize = 500

// BoltSink exports rows into a bbolt database, one msgpack value per row.
// Rows are keyed by partition and row key when both are present and by the
// bucket sequence otherwise. Rows are buffered and committed BatchSize at a
// time; Flush and Close commit what is pending.
type BoltSink struct {
	db      *bolt.DB
	bucket  []byte
	pending []boltRow

	// BatchSize is the number of rows per transaction. Values below 1 commit
	// every row on its own.
	BatchSize int
}

// boltRow is a buffered row; a nil key takes the next bucket sequence.
type boltRow struct {
	key   []byte
	value []byte
}

var _ Sink = (*BoltSink)(nil)

// OpenBolt opens or creates the database at path and ensures bucket exists.
func OpenBolt(path, bucket string) (*BoltSink, error) {
	if bucket == "" {
		bucket = DefaultBucket
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket %q: %w", bucket, err)
	}
	return &BoltSink{db: db, bucket: []byte(bucket), BatchSize: DefaultBatchSize}, nil
}

// Write buffers one row, committing the buffer once it is full.
func (s *BoltSink) Write(row any) error {
	if err := checkRow(row); err != nil {
		return err
	}
	value, err := msgpack.Marshal(row)
	if err != nil {
		return fmt.Errorf("failed to encode row: %w", err)
	}
	key, _ := rowKey(row)
	s.pending = append(s.pending, boltRow{key: key, value: value})

	if len(s.pending) >= s.BatchSize {
		return s.Flush()
	}
	return nil
}

// Flush commits the buffered rows in one transaction.
func (s *BoltSink) Flush() error {
	if len(s.pending) == 0 {
		return nil
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		for _, r := range s.pending {
			key := r.key
			if key == nil {
				seq, err := b.NextSequence()
				if err != nil {
					return err
				}
				key = binary.BigEndian.AppendUint64(nil, seq)
			}
			if err := b.Put(key, r.value); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to commit %d rows: %w", len(s.pending), err)
	}
	s.pending = s.pending[:0]
	return nil
}

// Pending returns the number of rows written but not yet committed.
func (s *BoltSink) Pending() int {
	return len(s.pending)
}

// Close commits pending rows and closes the database.
func (s *BoltSink) Close() error {
	flushErr := s.Flush()
	if err := s.db.Close(); err != nil && flushErr == nil {
		return err
	}
	return flushErr
}

// rowKey builds PartitionKey\x00RowKey for rows that carry both.
func rowKey(row any) ([]byte, bool) {
	var pk, rk string
	switch r := row.(type) {
	case models.Entity:
		if r.PartitionKey == nil || r.RowKey == nil {
			return nil, false
		}
		pk, rk = *r.PartitionKey, *r.RowKey
	case *models.Record:
		p, ok1 := r.Get(models.FieldPartitionKey)
		k, ok2 := r.Get(models.FieldRowKey)
		if !ok1 || !ok2 {
			return nil, false
		}
		var isStr bool
		if pk, isStr = p.(string); !isStr {
			return nil, false
		}
		if rk, isStr = k.(string); !isStr {
			return nil, false
		}
	default:
		return nil, false
	}

	key := make([]byte, 0, len(pk)+len(rk)+1)
	key = append(key, pk...)
	key = append(key, keySeparator)
	key = append(key, rk...)
	return key, true
}

// ReadBolt calls fn for every row in bucket, in key order.
func ReadBolt(path, bucket string, fn func(key []byte, rec *models.Record) error) error {
	if bucket == "" {
		bucket = DefaultBucket
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second, ReadOnly: true})
	if err != nil {
		return fmt.Errorf("failed to open bolt database: %w", err)
	}
	defer db.Close()

	return db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return fmt.Errorf("bucket %q not found", bucket)
		}
		return b.ForEach(func(k, v []byte) error {
			rec := &models.Record{}
			if err := msgpack.Unmarshal(v, rec); err != nil {
				return fmt.Errorf("failed to decode row %q: %w", k, err)
			}
			return fn(k, rec)
		})
	})
}
