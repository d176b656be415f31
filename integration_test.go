//go:build integration
// +build integration

/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package tablequery_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/tablequery"
	"github.com/suparena/tablequery/config"
	"github.com/suparena/tablequery/models"
	"github.com/suparena/tablequery/registry"
	"github.com/suparena/tablequery/tablestore"
	_ "github.com/suparena/tablequery/tablestore/aztable"
	_ "github.com/suparena/tablequery/tablestore/ddb"
)

// integrationTables returns the live tables described by the environment.
// Each one is read only; the tests never write.
func integrationTables(t *testing.T) map[string]config.TableConfig {
	if err := config.LoadEnv(); err != nil {
		t.Fatalf("failed to load env: %v", err)
	}

	tables := make(map[string]config.TableConfig)
	if name := os.Getenv("DDB_TEST_TABLE_NAME"); name != "" {
		tables["dynamodb"] = config.TableConfig{
			Name:      "dynamodb",
			Backend:   "dynamodb",
			Table:     name,
			Region:    os.Getenv("AWS_REGION"),
			AccessKey: os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
			Endpoint:  os.Getenv("DDB_TEST_ENDPOINT"),
		}
	}
	if name := os.Getenv("AZURE_TEST_TABLE_NAME"); name != "" {
		tables["aztable"] = config.TableConfig{
			Name:             "aztable",
			Backend:          "aztable",
			Table:            name,
			Account:          os.Getenv("AZURE_STORAGE_ACCOUNT"),
			AccountKey:       os.Getenv("AZURE_STORAGE_KEY"),
			ConnectionString: os.Getenv("AZURE_STORAGE_CONNECTION_STRING"),
		}
	}
	if len(tables) == 0 {
		t.Skip("neither DDB_TEST_TABLE_NAME nor AZURE_TEST_TABLE_NAME set, skipping integration test")
	}
	return tables
}

func openTable(t *testing.T, tc config.TableConfig) tablestore.SegmentQuerier {
	t.Helper()
	src, err := registry.Open(context.Background(), tc)
	if err != nil {
		t.Fatalf("Failed to open %s table: %v", tc.Backend, err)
	}
	return src
}

func TestIntegrationCapAndResume(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	for name, tc := range integrationTables(t) {
		t.Run(name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			src := openTable(t, tc)

			// Two requests of two rows each.
			pager, err := tablequery.NewPager(src, models.Query{MaxRows: models.MaxRows(4)}, models.WithPageSize(2))
			require.NoError(t, err)

			var first []models.Entity
			for e, err := range tablequery.Entities(ctx, pager) {
				require.NoError(t, err)
				first = append(first, e)
			}
			require.LessOrEqual(t, len(first), 4)
			if len(first) < 4 {
				t.Skipf("table holds only %d rows", len(first))
			}

			tok := pager.Continuation()
			if tok.IsZero() {
				t.Skip("table exhausted at the cap")
			}

			rest, err := tablequery.Collect(ctx, src, models.Query{MaxRows: models.MaxRows(2)}, models.WithStartToken(tok))
			require.NoError(t, err)
			for _, e := range rest {
				for _, seen := range first {
					if e.PartitionKey != nil && seen.PartitionKey != nil && e.RowKey != nil && seen.RowKey != nil {
						assert.False(t, *e.PartitionKey == *seen.PartitionKey && *e.RowKey == *seen.RowKey,
							"row %s/%s returned twice", *e.PartitionKey, *e.RowKey)
					}
				}
			}
		})
	}
}

func TestIntegrationStreamFlatten(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	for name, tc := range integrationTables(t) {
		t.Run(name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			src := openTable(t, tc)

			var rows int
			for result := range tablequery.Stream(ctx, src, models.Query{MaxRows: models.MaxRows(10)}, models.WithFlatten(true)) {
				require.NoError(t, result.Error)
				require.NotNil(t, result.Record)
				_, ok := result.Record.Get(models.FieldPartitionKey)
				assert.True(t, ok)
				rows++
			}
			assert.LessOrEqual(t, rows, 10)
		})
	}
}
