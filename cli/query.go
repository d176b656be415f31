/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/suparena/tablequery"
	"github.com/suparena/tablequery/config"
	"github.com/suparena/tablequery/errors"
	"github.com/suparena/tablequery/models"
	"github.com/suparena/tablequery/registry"
	"github.com/suparena/tablequery/sink"
	"github.com/suparena/tablequery/tablestore"
)

// queryFlags are the flags shared by query and export.
type queryFlags struct {
	table    string
	filter   string
	columns  []string
	top      int64
	flatten  bool
	pageSize int32
	cont     string
	params   []string

	pk       string
	rkPrefix string
	since    string
	until    string

	adhoc config.TableConfig
}

func (q *queryFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&q.table, "table", "t", "", "table name from the config file")
	f.StringVar(&q.filter, "filter", "", "server-side filter in the backend's grammar")
	f.StringSliceVar(&q.columns, "select", nil, "columns to return, comma separated")
	f.Int64Var(&q.top, "top", 0, "maximum number of rows to return")
	f.BoolVar(&q.flatten, "flatten", false, "flatten rows into key/value records")
	f.Int32Var(&q.pageSize, "page-size", 0, "upper bound on rows requested per segment")
	f.StringVar(&q.cont, "continue", "", "resume from a continuation token printed by an earlier run")
	f.StringArrayVar(&q.params, "param", nil, "filter parameter as name=value, value read as YAML (repeatable)")

	f.StringVar(&q.pk, "pk", "", "match a single partition key")
	f.StringVar(&q.rkPrefix, "rk-prefix", "", "match row keys starting with this prefix")
	f.StringVar(&q.since, "since", "", "rows modified at or after this time (RFC 3339 or a duration like 24h)")
	f.StringVar(&q.until, "until", "", "rows modified before this time (RFC 3339 or a duration like 1h)")

	f.StringVar(&q.adhoc.Backend, "backend", "", "query a table not in the config using this backend ("+strings.Join(registry.Backends(), "|")+")")
	f.StringVar(&q.adhoc.Table, "table-name", "", "service-side table name for --backend")
	f.StringVar(&q.adhoc.Region, "region", "", "AWS region for --backend dynamodb")
	f.StringVar(&q.adhoc.AccessKey, "access-key", "", "AWS access key for --backend dynamodb")
	f.StringVar(&q.adhoc.SecretKey, "secret-key", "", "AWS secret key for --backend dynamodb")
	f.StringVar(&q.adhoc.Endpoint, "endpoint", "", "endpoint override for --backend dynamodb")
	f.StringVar(&q.adhoc.Account, "account", "", "storage account for --backend aztable")
	f.StringVar(&q.adhoc.AccountKey, "account-key", "", "storage account key for --backend aztable")
	f.StringVar(&q.adhoc.ConnectionString, "connection-string", "", "connection string for --backend aztable")
	f.StringVar(&q.adhoc.Fixture, "fixture", "", "YAML fixture for --backend memory")
}

// open resolves the table handle, either ad hoc or through the catalog.
func (q *queryFlags) open(ctx context.Context, a *app) (tablestore.SegmentQuerier, error) {
	if q.adhoc.Backend != "" {
		tc := q.adhoc
		tc.Name = q.table
		if tc.Name == "" {
			tc.Name = tc.Table
		}
		return registry.Open(ctx, tc)
	}
	if q.table == "" {
		return nil, errors.NewValidationError("table", "either --table or --backend is required")
	}
	return a.catalog.Get(ctx, q.table)
}

// query assembles the models.Query for src. Key and time flags go through
// the backend's filter builder, with --filter appended as a raw clause.
func (q *queryFlags) query(cmd *cobra.Command, src tablestore.SegmentQuerier) (models.Query, error) {
	var query models.Query

	params, err := parseParams(q.params)
	if err != nil {
		return query, err
	}
	query.Select = q.columns
	if cmd.Flags().Changed("top") {
		query.MaxRows = models.MaxRows(q.top)
	}

	if q.pk == "" && q.rkPrefix == "" && q.since == "" && q.until == "" {
		query.Filter = q.filter
		query.Params = params
		return query, nil
	}

	factory, ok := src.(tablestore.FilterFactory)
	if !ok {
		return query, errors.NewValidationError("filter", "this backend does not support --pk, --rk-prefix, --since or --until")
	}
	f := factory.NewFilter()
	if q.pk != "" {
		f = f.PartitionKey(q.pk)
	}
	if q.rkPrefix != "" {
		f = f.RowKeyPrefix(q.rkPrefix)
	}
	if q.since != "" {
		t, err := parseTime(q.since)
		if err != nil {
			return query, errors.NewValidationError("since", err.Error())
		}
		f = f.Since(t)
	}
	if q.until != "" {
		t, err := parseTime(q.until)
		if err != nil {
			return query, errors.NewValidationError("until", err.Error())
		}
		f = f.Before(t)
	}
	if q.filter != "" {
		f = f.Where(q.filter, params)
	}

	query.Filter, query.Params, err = f.Build()
	return query, err
}

// options maps the paging flags onto stream options, falling back to the
// config defaults.
func (q *queryFlags) options(cmd *cobra.Command, a *app) []models.StreamOption {
	pageSize := a.cfg.Defaults.PageSize
	if cmd.Flags().Changed("page-size") {
		pageSize = q.pageSize
	}
	opts := []models.StreamOption{
		models.WithPageSize(pageSize),
		models.WithLogger(a.logger),
	}
	if q.cont != "" {
		opts = append(opts, models.WithStartToken(models.ContinuationToken(q.cont)))
	}
	return opts
}

func (q *queryFlags) flattenRows(cmd *cobra.Command, a *app) bool {
	if cmd.Flags().Changed("flatten") {
		return q.flatten
	}
	return a.cfg.Defaults.Flatten
}

// parseParams reads name=value pairs. Values are YAML scalars, so numbers
// and booleans keep their type.
func parseParams(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	params := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		name, raw, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, errors.NewValidationError("param", fmt.Sprintf("%q is not name=value", pair))
		}
		var v any
		if err := yaml.Unmarshal([]byte(raw), &v); err != nil {
			return nil, errors.NewValidationError("param", fmt.Sprintf("%s: %v", name, err))
		}
		if v == nil && raw != "" && raw != "null" && raw != "~" {
			v = raw
		}
		params[name] = v
	}
	return params, nil
}

// parseTime accepts an RFC 3339 time or a duration counted back from now.
func parseTime(s string) (time.Time, error) {
	if dt, err := strfmt.ParseDateTime(s); err == nil {
		return time.Time(dt), nil
	}
	if d, err := time.ParseDuration(s); err == nil {
		return time.Now().Add(-d), nil
	}
	return time.Time{}, fmt.Errorf("%q is neither an RFC 3339 time nor a duration", s)
}

func newQueryCmd(a *app) *cobra.Command {
	var (
		qf     queryFlags
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Read rows from a table",
		Long: `Reads rows from a table, one segment per request, and writes them to stdout
or --output. When --top stops the read early, the token needed to resume is
logged so that a later run can pass it to --continue.`,
		Example: `  tq query -t orders --top 100 --format csv
  tq query -t orders --pk USER#42 --rk-prefix ORDER# --since 24h
  tq query --backend dynamodb --table-name orders --region us-east-1 \
    --filter "#st = :open" --param "#st=Status" --param ":open=open"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, a, &qf, format, output)
		},
	}
	qf.register(cmd)
	cmd.Flags().StringVar(&format, "format", "", "output format ("+strings.Join(sink.Formats(), "|")+", default jsonl)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write rows to this file instead of stdout")
	return cmd
}

func runQuery(cmd *cobra.Command, a *app, qf *queryFlags, format, output string) error {
	ctx := cmd.Context()

	src, err := qf.open(ctx, a)
	if err != nil {
		return err
	}
	query, err := qf.query(cmd, src)
	if err != nil {
		return err
	}
	pager, err := tablequery.NewPager(src, query, qf.options(cmd, a)...)
	if err != nil {
		return err
	}

	if format == "" {
		format = a.cfg.Defaults.Format
	}
	if format == "" {
		format = sink.FormatJSONL
	}

	var w io.Writer = cmd.OutOrStdout()
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	out, err := sink.New(format, w, sink.WithColumns(query.Select))
	if err != nil {
		return err
	}

	flatten := qf.flattenRows(cmd, a)
	start := time.Now()
	for e, err := range tablequery.Entities(ctx, pager) {
		if err != nil {
			_ = out.Close()
			return err
		}
		var row any = e
		if flatten {
			row = models.Flatten(e)
		}
		if err := out.Write(row); err != nil {
			_ = out.Close()
			return err
		}
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to flush output: %w", err)
	}

	fields := []zap.Field{
		zap.Int64("rows", pager.Rows()),
		zap.Int("segments", pager.Segments()),
		zap.Duration("elapsed", time.Since(start)),
	}
	tok := pager.Continuation()
	if !tok.IsZero() {
		fields = append(fields, zap.String("continue", tok.String()))
	}
	a.logger.Info("query complete", fields...)
	if !tok.IsZero() {
		fmt.Fprintf(cmd.ErrOrStderr(), "more rows available, resume with: --continue %s\n", tok)
	}
	return nil
}
