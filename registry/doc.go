/*
Package registry maps backend names to table openers.

Each backend package registers itself from an init function, so importing it
for side effects is enough to make its name usable in configuration:

	import _ "github.com/suparena/tablequery/tablestore/ddb"

	querier, err := registry.Open(ctx, config.TableConfig{
	    Backend: "dynamodb",
	    Table:   "orders",
	    Region:  "us-east-1",
	})

Registering the same name twice panics. The registry is safe for concurrent use.
*/
package registry
