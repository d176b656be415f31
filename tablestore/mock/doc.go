/*
Package mock provides an in-memory table for tests and demos.

Table serves rows in segments the way a remote table service does, with
continuation tokens between them. Segment sizes can be scripted, including
empty segments that still carry a token, and errors can be injected:

	table := mock.NewTable(rows...).WithSegments(2, 0, 3)
	pager, _ := tablequery.NewPager(table, models.Query{MaxRows: models.MaxRows(4)})

Importing the package registers the "memory" backend, which loads a YAML
fixture named by the table's fixture setting.
*/
package mock
