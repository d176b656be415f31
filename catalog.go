/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package tablequery

import (
	"context"
	"sort"
	"sync"

	"github.com/suparena/tablequery/config"
	"github.com/suparena/tablequery/errors"
	"github.com/suparena/tablequery/registry"
	"github.com/suparena/tablequery/tablestore"
)

// Catalog is a thread-safe set of named table handles. Handles are either
// registered directly or opened on first use from the configuration.
type Catalog struct {
	mu     sync.RWMutex
	cfg    *config.Config
	tables map[string]tablestore.SegmentQuerier
}

// NewCatalog creates a catalog backed by cfg. cfg may be nil, in which case
// only registered handles are available.
func NewCatalog(cfg *config.Config) *Catalog {
	return &Catalog{
		cfg:    cfg,
		tables: make(map[string]tablestore.SegmentQuerier),
	}
}

// Register stores the handle under name.
func (c *Catalog) Register(name string, table tablestore.SegmentQuerier) error {
	if table == nil {
		return errors.NewValidationError("table", "table handle is nil")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.tables[name]; exists {
		return errors.NewAlreadyExistsError("table", name)
	}
	if _, configured := c.cfg.Table(name); configured {
		return errors.NewAlreadyExistsError("table", name)
	}
	c.tables[name] = table
	return nil
}

// Get returns the handle for name, opening it through its backend the first
// time a configured table is requested.
func (c *Catalog) Get(ctx context.Context, name string) (tablestore.SegmentQuerier, error) {
	c.mu.RLock()
	table, ok := c.tables[name]
	c.mu.RUnlock()
	if ok {
		return table, nil
	}

	tc, configured := c.cfg.Table(name)
	if !configured {
		return nil, errors.NewNotFoundError("table", name)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Another caller may have opened it while we waited.
	if table, ok := c.tables[name]; ok {
		return table, nil
	}
	table, err := registry.Open(ctx, tc)
	if err != nil {
		return nil, err
	}
	c.tables[name] = table
	return table, nil
}

// Remove drops the handle for name. Configured tables are reopened by the
// next Get.
func (c *Catalog) Remove(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.tables[name]; !exists {
		return errors.NewNotFoundError("table", name)
	}
	delete(c.tables, name)
	return nil
}

// List returns every known table name, registered or configured, sorted.
func (c *Catalog) List() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	seen := make(map[string]struct{}, len(c.tables))
	names := make([]string, 0, len(c.tables))
	for name := range c.tables {
		seen[name] = struct{}{}
		names = append(names, name)
	}
	for _, name := range c.cfg.TableNames() {
		if _, dup := seen[name]; !dup {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
