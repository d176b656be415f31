/*
Package tablequery reads filtered, projected rows from cloud key-value table
services one segment at a time.

A table service answers a query in segments: each response carries a batch of
rows and, when more rows may exist, a continuation token. Segments can be
empty while still carrying a token. A Pager follows the tokens until the
service reports no more, or until the optional MaxRows cap is reached, in
which case no further request is made and the rows returned never exceed the
cap.

Basic Usage:

	catalog := tablequery.NewCatalog(cfg)
	table, err := catalog.Get(ctx, "orders")
	if err != nil {
	    return err
	}

	pager, err := tablequery.NewPager(table, models.Query{
	    Filter:  "PartitionKey eq 'user-42'",
	    Select:  []string{"Status", "Total"},
	    MaxRows: models.MaxRows(100),
	})
	if err != nil {
	    return err
	}
	for e, err := range tablequery.Entities(ctx, pager) {
	    if err != nil {
	        return err
	    }
	    rec := models.Flatten(e)
	    ...
	}

Stream runs the same loop in a background goroutine and delivers rows on a
channel, with optional flattening and progress callbacks.

Backends live under tablestore/ and register themselves with the registry
package; importing one for side effects makes it available to the catalog.
*/
package tablequery
