/*
Package sink writes query rows to files and streams.

Supported formats are JSON lines, a YAML document stream, a msgpack value
stream and CSV. Rows are either raw entities, written in their nested shape

	{"PartitionKey": "...", "RowKey": "...", "Properties": {...}}

or flattened records. CSV always writes flattened rows.

BoltSink exports rows into a bbolt database for later offline reads.
*/
package sink
