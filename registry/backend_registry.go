/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/suparena/tablequery/config"
	"github.com/suparena/tablequery/errors"
	"github.com/suparena/tablequery/tablestore"
)

// OpenFunc opens a table handle from its configuration entry.
type OpenFunc func(ctx context.Context, cfg config.TableConfig) (tablestore.SegmentQuerier, error)

var (
	backendRegistry = make(map[string]OpenFunc)
	mu              sync.RWMutex
)

// RegisterBackend registers the opener for a backend name.
// If a backend is already registered under name, it panics to prevent accidental overrides.
func RegisterBackend(name string, fn OpenFunc) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := backendRegistry[name]; exists {
		panic(fmt.Sprintf("backend registry: backend %q already registered", name))
	}
	backendRegistry[name] = fn
}

// Lookup returns the opener registered for name.
func Lookup(name string) (OpenFunc, error) {
	mu.RLock()
	defer mu.RUnlock()

	fn, ok := backendRegistry[name]
	if !ok {
		return nil, errors.NewUnsupportedBackendError(name)
	}
	return fn, nil
}

// Open opens the table described by cfg with its registered backend.
func Open(ctx context.Context, cfg config.TableConfig) (tablestore.SegmentQuerier, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	fn, err := Lookup(cfg.Backend)
	if err != nil {
		return nil, err
	}
	return fn(ctx, cfg)
}

// Backends returns the registered backend names in sorted order.
func Backends() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(backendRegistry))
	for name := range backendRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
