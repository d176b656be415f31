/*
Package tablestore defines the contract between the pager and a table service.

The main interface is SegmentQuerier, which performs exactly one round trip:

	type SegmentQuerier interface {
	    QuerySegment(ctx context.Context, req *models.SegmentRequest) (*models.Segment, error)
	}

Implementations:
  - ddb: DynamoDB, one Scan call per segment
  - aztable: Azure Table storage, one ListEntities page per segment
  - mock: in-memory table with scripted segment sizes for tests and demos

Continuation tokens are opaque to callers. Backends pack their native cursor
with EncodeToken (msgpack, base64url) so a token can be printed and handed back
later to resume a query.
*/
package tablestore
