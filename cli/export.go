/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/suparena/tablequery"
	"github.com/suparena/tablequery/models"
	"github.com/suparena/tablequery/sink"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		qf     queryFlags
		db     string
		bucket string
		buffer int
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Copy rows into a local bbolt snapshot",
		Long: `Streams rows from a table into a bbolt database file. Rows are flattened and
stored msgpack-encoded under "PartitionKey\x00RowKey", so re-exporting the same
table overwrites rather than duplicates.`,
		Example: `  tq export -t orders --db orders.db
  tq export -t orders --db orders.db --bucket open --filter "Status eq 'open'"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			src, err := qf.open(ctx, a)
			if err != nil {
				return err
			}
			query, err := qf.query(cmd, src)
			if err != nil {
				return err
			}

			out, err := sink.OpenBolt(db, bucket)
			if err != nil {
				return err
			}
			defer out.Close()

			opts := append(qf.options(cmd, a),
				models.WithFlatten(true),
				models.WithBufferSize(buffer),
				models.WithProgressHandler(func(p models.StreamProgress) {
					a.logger.Debug("export progress",
						zap.Int64("rows", p.ItemsProcessed),
						zap.Int("segments", p.SegmentsProcessed),
						zap.Float64("rows_per_sec", p.CurrentRate),
					)
				}),
			)

			start := time.Now()
			var rows int64
			for result := range tablequery.Stream(ctx, src, query, opts...) {
				if result.Error != nil {
					return result.Error
				}
				if err := out.Write(result.Record); err != nil {
					return err
				}
				rows++
			}
			if err := ctx.Err(); err != nil {
				return err
			}

			a.logger.Info("export complete",
				zap.String("db", db),
				zap.Int64("rows", rows),
				zap.Duration("elapsed", time.Since(start)),
			)
			return nil
		},
	}
	qf.register(cmd)
	cmd.Flags().StringVar(&db, "db", "", "bbolt database file to write")
	cmd.Flags().StringVar(&bucket, "bucket", sink.DefaultBucket, "bucket to write rows into")
	cmd.Flags().IntVar(&buffer, "buffer", 100, "rows buffered between the reader and the writer")
	_ = cmd.MarkFlagRequired("db")
	return cmd
}
