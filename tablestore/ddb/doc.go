/*
Package ddb provides the DynamoDB backend.

A Store reads a table, or one of its secondary indexes, one Scan call per
segment. The request's batch size becomes the Scan Limit and the
LastEvaluatedKey of each response is packed into the continuation token, so a
printed token can resume a scan later.

Attribute Mapping:
Items are mapped onto entities through an AttributeMap. By default the
single-table design names are used:

	PK        -> PartitionKey
	SK        -> RowKey
	Timestamp -> Timestamp (RFC 3339 string or epoch seconds)
	Version   -> ETag

Every other attribute becomes a property, sorted by name. Numbers become
int64 when integral and float64 otherwise.

Filters:
Filters are DynamoDB filter expressions. Values and attribute names are bound
through query params:

	query := models.Query{
	    Filter: "#st = :open AND Total > :min",
	    Params: map[string]any{"#st": "Status", ":open": "open", ":min": 100},
	}

FilterBuilder produces the same from key and time conditions:

	expr, params, err := store.NewFilter().
	    PartitionKey("USER#42").
	    RowKeyPrefix("ORDER#").
	    Since(time.Now().Add(-24 * time.Hour)).
	    Build()

Importing the package registers the "dynamodb" backend.
*/
package ddb
