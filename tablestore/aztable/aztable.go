/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package aztable

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
	"github.com/go-openapi/strfmt"

	"github.com/suparena/tablequery/config"
	"github.com/suparena/tablequery/errors"
	"github.com/suparena/tablequery/models"
	"github.com/suparena/tablequery/registry"
	"github.com/suparena/tablequery/tablestore"
)

// BackendName is the name the Azure Table backend registers under.
const BackendName = "aztable"

// MaxTop is the largest page the service returns.
const MaxTop = 1000

func init() {
	registry.RegisterBackend(BackendName, Open)
}

// Lister is the part of the aztables client the store uses.
type Lister interface {
	NewListEntitiesPager(listOptions *aztables.ListEntitiesOptions) *runtime.Pager[aztables.ListEntitiesResponse]
}

// Store reads segments of an Azure Storage table. Each segment is one page
// of ListEntities; NextPartitionKey and NextRowKey form the continuation token.
type Store struct {
	client Lister
}

var (
	_ tablestore.SegmentQuerier = (*Store)(nil)
	_ tablestore.FilterFactory  = (*Store)(nil)
)

// cursor is the position encoded in continuation tokens.
type cursor struct {
	PartitionKey string  `msgpack:"p"`
	RowKey       *string `msgpack:"r,omitempty"`
}

// New creates a Store reading through client.
func New(client Lister) *Store {
	return &Store{client: client}
}

// ServiceURL returns the public endpoint of an account's table service.
func ServiceURL(account string) string {
	return fmt.Sprintf("https://%s.table.core.windows.net/", account)
}

// NewServiceClient authenticates with a connection string when one is set,
// and with the account name and key otherwise.
func NewServiceClient(cfg config.TableConfig) (*aztables.ServiceClient, error) {
	if cfg.ConnectionString != "" {
		svc, err := aztables.NewServiceClientFromConnectionString(cfg.ConnectionString, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create table service client: %w", err)
		}
		return svc, nil
	}

	if cfg.Account == "" || cfg.AccountKey == "" {
		return nil, errors.NewValidationError("account_key", "account name and key, or a connection string, are required")
	}
	cred, err := aztables.NewSharedKeyCredential(cfg.Account, cfg.AccountKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create shared key credential: %w", err)
	}

	serviceURL := cfg.ServiceURL
	if serviceURL == "" {
		serviceURL = ServiceURL(cfg.Account)
	}
	svc, err := aztables.NewServiceClientWithSharedKey(serviceURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create table service client: %w", err)
	}
	return svc, nil
}

// Open builds a Store from a table configuration entry.
func Open(ctx context.Context, cfg config.TableConfig) (tablestore.SegmentQuerier, error) {
	if cfg.Table == "" {
		return nil, errors.NewValidationError("table", "Azure table name is required")
	}
	svc, err := NewServiceClient(cfg)
	if err != nil {
		return nil, err
	}
	return New(svc.NewClient(cfg.Table)), nil
}

// NewFilter returns an OData filter builder.
func (s *Store) NewFilter() tablestore.Filter {
	return tablestore.NewODataFilter()
}

// QuerySegment fetches one ListEntities page. Service errors are returned unchanged.
func (s *Store) QuerySegment(ctx context.Context, req *models.SegmentRequest) (*models.Segment, error) {
	if len(req.Params) > 0 {
		return nil, errors.NewValidationError("params", "OData filters bind values inline")
	}

	opts := &aztables.ListEntitiesOptions{}
	if req.Filter != "" {
		opts.Filter = to.Ptr(req.Filter)
	}
	if len(req.Select) > 0 {
		opts.Select = to.Ptr(strings.Join(req.Select, ","))
	}
	if req.Take != nil {
		opts.Top = to.Ptr(min(*req.Take, MaxTop))
	}
	if !req.Token.IsZero() {
		var pos cursor
		if err := tablestore.DecodeToken(BackendName, req.Token, &pos); err != nil {
			return nil, err
		}
		opts.NextPartitionKey = to.Ptr(pos.PartitionKey)
		opts.NextRowKey = pos.RowKey
	}

	page, err := s.client.NewListEntitiesPager(opts).NextPage(ctx)
	if err != nil {
		return nil, err
	}

	seg := &models.Segment{
		Entities: make([]models.Entity, 0, len(page.Entities)),
	}
	for _, raw := range page.Entities {
		e, err := decodeEntity(raw)
		if err != nil {
			return nil, err
		}
		seg.Entities = append(seg.Entities, e)
	}

	if page.NextPartitionKey != nil {
		seg.Next, err = tablestore.EncodeToken(cursor{
			PartitionKey: *page.NextPartitionKey,
			RowKey:       page.NextRowKey,
		})
		if err != nil {
			return nil, err
		}
	}
	return seg, nil
}

// decodeEntity converts one JSON entity. Fixed fields are set only when the
// service returned them, which it does not when they are projected away.
func decodeEntity(raw []byte) (models.Entity, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return models.Entity{}, fmt.Errorf("failed to decode entity: %w", err)
	}
	var edm aztables.EDMEntity
	if err := json.Unmarshal(raw, &edm); err != nil {
		return models.Entity{}, fmt.Errorf("failed to decode entity: %w", err)
	}

	var e models.Entity
	if v, ok := rawString(fields, "PartitionKey"); ok {
		e.PartitionKey = &v
	}
	if v, ok := rawString(fields, "RowKey"); ok {
		e.RowKey = &v
	}
	if v, ok := rawString(fields, "Timestamp"); ok {
		if dt, err := strfmt.ParseDateTime(v); err == nil {
			ts := time.Time(dt)
			e.Timestamp = &ts
		}
	}
	if v, ok := rawString(fields, "odata.etag"); ok {
		e.ETag = &v
	}

	names := make([]string, 0, len(edm.Properties))
	for name := range edm.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	e.Properties = make([]models.Property, 0, len(names))
	for _, name := range names {
		e.Properties = append(e.Properties, models.Property{Name: name, Value: toNative(edm.Properties[name])})
	}
	return e, nil
}

func rawString(fields map[string]json.RawMessage, key string) (string, bool) {
	raw, ok := fields[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// toNative unwraps the EDM wrapper types.
func toNative(v any) any {
	switch tv := v.(type) {
	case aztables.EDMDateTime:
		return time.Time(tv)
	case aztables.EDMBinary:
		return []byte(tv)
	case aztables.EDMGUID:
		return string(tv)
	case aztables.EDMInt64:
		return int64(tv)
	}
	return v
}
