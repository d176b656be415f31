/*
Package aztable provides the Azure Table storage backend.

A Store reads one ListEntities page per segment. Filters are OData
expressions, the select list becomes $select and the requested batch size
becomes $top, clamped to the service maximum of 1000. The NextPartitionKey
and NextRowKey of each page are packed into the continuation token.

Tables are opened with an account name and shared key, or with a
connection string:

	tables:
	  audit:
	    backend: aztable
	    table: AuditLog
	    account: myaccount
	    account_key: ${AZURE_STORAGE_KEY}

EDM wrapper values are unwrapped: Edm.Int64 becomes int64, Edm.DateTime
becomes time.Time, Edm.Binary becomes []byte and Edm.Guid becomes string.
Properties are sorted by name.
*/
package aztable
