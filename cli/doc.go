/*
Package cli implements the tq command line tool.

Commands:

	tq query   -t NAME [query flags] [--format jsonl|yaml|msgpack|csv] [-o FILE]
	tq export  -t NAME [query flags] --db FILE [--bucket B]
	tq tables
	tq version

Tables are read from tq.yaml (or --config). A table that is not configured
can be described on the command line with --backend and its connection flags.
Logs go to stderr as JSON; stdout carries only rows.

The backends themselves are linked in by the main package through blank
imports, which register them with the registry package.
*/
package cli
