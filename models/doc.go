/*
Package models defines the data structures shared by the pager, the backends
and the output sinks.

Key Types:

Query:
What to read:

	q := models.Query{
	    Filter:  "Status = :status",
	    Select:  []string{"PK", "SK", "Status"},
	    MaxRows: models.MaxRows(500),
	    Params:  map[string]any{":status": "active"},
	}

SegmentRequest / Segment:
One round trip to the table service. A Segment's Next token is empty when the
service has no more data.

Entity:
A raw row: PartitionKey, RowKey, Timestamp and ETag (each optional) plus an
ordered list of properties.

Record:
A flat, insertion-ordered mapping produced by Flatten. Records encode to JSON,
YAML and msgpack with their key order preserved.

StreamResult / StreamOptions:
Rows delivered by tablequery.Stream, configured with functional options:

	opts := []models.StreamOption{
	    models.WithPageSize(100),
	    models.WithFlatten(true),
	    models.WithProgressHandler(progressFunc),
	}
*/
package models
