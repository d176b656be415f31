/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	tqconfig "github.com/suparena/tablequery/config"
	"github.com/suparena/tablequery/errors"
	"github.com/suparena/tablequery/models"
	"github.com/suparena/tablequery/registry"
	"github.com/suparena/tablequery/tablestore"
)

// BackendName is the name the DynamoDB backend registers under.
const BackendName = "dynamodb"

func init() {
	registry.RegisterBackend(BackendName, Open)
}

// ScanAPI is the part of the DynamoDB client the store uses.
type ScanAPI interface {
	Scan(ctx context.Context, params *sdk.ScanInput, optFns ...func(*sdk.Options)) (*sdk.ScanOutput, error)
}

// Store reads segments of a DynamoDB table or index. Each segment is one
// Scan call; the table's LastEvaluatedKey becomes the continuation token.
type Store struct {
	client         ScanAPI
	tableName      string
	indexName      string
	consistentRead bool
	attrs          AttributeMap
}

var (
	_ tablestore.SegmentQuerier = (*Store)(nil)
	_ tablestore.FilterFactory  = (*Store)(nil)
)

// Option configures a Store.
type Option func(*Store)

// WithIndex scans a secondary index instead of the base table.
func WithIndex(name string) Option {
	return func(s *Store) {
		s.indexName = name
	}
}

// WithConsistentRead requests strongly consistent reads.
func WithConsistentRead(consistent bool) Option {
	return func(s *Store) {
		s.consistentRead = consistent
	}
}

// WithAttributes overrides the attributes mapped onto the fixed entity fields.
// Empty names keep the defaults.
func WithAttributes(m AttributeMap) Option {
	return func(s *Store) {
		s.attrs = s.attrs.merge(m)
	}
}

// NewDynamoDBClient initializes a DynamoDB client. With an empty access key
// the default credential chain is used; endpoint overrides the service URL,
// for example to reach DynamoDB Local.
func NewDynamoDBClient(ctx context.Context, awsAccessKey, awsSecretKey, awsRegion, endpoint string) (*sdk.Client, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(awsRegion),
	}
	if awsAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(awsAccessKey, awsSecretKey, ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	return sdk.NewFromConfig(cfg, func(o *sdk.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	}), nil
}

// New creates a Store reading tableName through client.
func New(client ScanAPI, tableName string, opts ...Option) *Store {
	s := &Store{
		client:    client,
		tableName: tableName,
		attrs:     DefaultAttributeMap(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open builds a Store from a table configuration entry.
func Open(ctx context.Context, cfg tqconfig.TableConfig) (tablestore.SegmentQuerier, error) {
	if cfg.Table == "" {
		return nil, errors.NewValidationError("table", "DynamoDB table name is required")
	}
	if (cfg.AccessKey == "") != (cfg.SecretKey == "") {
		return nil, errors.NewValidationError("secret_key", "access key and secret key must be given together")
	}

	client, err := NewDynamoDBClient(ctx, cfg.AccessKey, cfg.SecretKey, cfg.Region, cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create DynamoDB client: %w", err)
	}

	return New(client, cfg.Table,
		WithIndex(cfg.Index),
		WithConsistentRead(cfg.ConsistentRead),
		WithAttributes(AttributeMap{
			PartitionKey: cfg.Attributes.PartitionKey,
			RowKey:       cfg.Attributes.RowKey,
			Timestamp:    cfg.Attributes.Timestamp,
			Version:      cfg.Attributes.Version,
		}),
	), nil
}

// NewFilter returns a filter builder using the store's attribute names.
func (s *Store) NewFilter() tablestore.Filter {
	return NewFilterBuilder(s.attrs)
}

// QuerySegment runs one Scan call. Service errors are returned unchanged.
func (s *Store) QuerySegment(ctx context.Context, req *models.SegmentRequest) (*models.Segment, error) {
	input, err := s.buildScanInput(req)
	if err != nil {
		return nil, err
	}

	out, err := s.client.Scan(ctx, input)
	if err != nil {
		return nil, err
	}

	seg := &models.Segment{
		Entities: make([]models.Entity, 0, len(out.Items)),
	}
	for _, item := range out.Items {
		e, err := s.attrs.toEntity(item)
		if err != nil {
			return nil, err
		}
		seg.Entities = append(seg.Entities, e)
	}
	if len(out.LastEvaluatedKey) > 0 {
		seg.Next, err = encodeKey(out.LastEvaluatedKey)
		if err != nil {
			return nil, err
		}
	}
	return seg, nil
}

func (s *Store) buildScanInput(req *models.SegmentRequest) (*sdk.ScanInput, error) {
	input := &sdk.ScanInput{
		TableName: aws.String(s.tableName),
		Limit:     req.Take,
	}
	if s.indexName != "" {
		input.IndexName = aws.String(s.indexName)
	}
	if s.consistentRead {
		input.ConsistentRead = aws.Bool(true)
	}
	if req.Filter != "" {
		input.FilterExpression = aws.String(req.Filter)
	}

	names, values, err := bindParams(req.Params)
	if err != nil {
		return nil, err
	}
	if len(req.Select) > 0 {
		proj, err := s.projection(req.Select, names)
		if err != nil {
			return nil, err
		}
		input.ProjectionExpression = aws.String(proj)
	}
	if len(names) > 0 {
		input.ExpressionAttributeNames = names
	}
	if len(values) > 0 {
		input.ExpressionAttributeValues = values
	}

	if !req.Token.IsZero() {
		key, err := decodeKey(req.Token)
		if err != nil {
			return nil, err
		}
		input.ExclusiveStartKey = key
	}
	return input, nil
}

// projection renders the select list with placeholder names, so reserved
// words like "Status" can be projected. Fixed field names are translated to
// the table's attribute names.
func (s *Store) projection(cols []string, names map[string]string) (string, error) {
	parts := make([]string, len(cols))
	for i, col := range cols {
		placeholder := fmt.Sprintf("#proj%d", i)
		if _, taken := names[placeholder]; taken {
			return "", errors.NewValidationError("params", fmt.Sprintf("placeholder %s is reserved for the select list", placeholder))
		}
		names[placeholder] = s.attrs.attributeFor(col)
		parts[i] = placeholder
	}
	return strings.Join(parts, ", "), nil
}

// bindParams splits query params into expression attribute names ("#name")
// and marshalled expression attribute values (":name").
func bindParams(params map[string]any) (map[string]string, map[string]types.AttributeValue, error) {
	names := make(map[string]string)
	values := make(map[string]types.AttributeValue)

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := params[k]
		switch {
		case strings.HasPrefix(k, ":"):
			av, err := attributevalue.Marshal(v)
			if err != nil {
				return nil, nil, errors.NewValidationError("params", fmt.Sprintf("cannot marshal %s: %v", k, err))
			}
			values[k] = av
		case strings.HasPrefix(k, "#"):
			name, ok := v.(string)
			if !ok {
				return nil, nil, errors.NewValidationError("params", fmt.Sprintf("attribute name %s must be a string", k))
			}
			names[k] = name
		default:
			return nil, nil, errors.NewValidationError("params", fmt.Sprintf("placeholder %q must start with ':' or '#'", k))
		}
	}
	return names, values, nil
}
