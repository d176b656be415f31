/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/tablequery/errors"
	"github.com/suparena/tablequery/models"
	"github.com/suparena/tablequery/tablestore"
)

// keyAttr is one attribute of a LastEvaluatedKey. Key attributes are always
// strings, numbers or binaries, so exactly one of S, N and B is set.
type keyAttr struct {
	Name string  `msgpack:"k"`
	S    *string `msgpack:"s,omitempty"`
	N    *string `msgpack:"n,omitempty"`
	B    []byte  `msgpack:"b,omitempty"`
}

func encodeKey(key map[string]types.AttributeValue) (models.ContinuationToken, error) {
	attrs := make([]keyAttr, 0, len(key))
	for name, av := range key {
		ka := keyAttr{Name: name}
		switch tv := av.(type) {
		case *types.AttributeValueMemberS:
			ka.S = &tv.Value
		case *types.AttributeValueMemberN:
			ka.N = &tv.Value
		case *types.AttributeValueMemberB:
			ka.B = tv.Value
		default:
			return "", fmt.Errorf("unexpected key attribute type %T for %q", av, name)
		}
		attrs = append(attrs, ka)
	}
	sort.Slice(attrs, func(i, j int) bool { return attrs[i].Name < attrs[j].Name })
	return tablestore.EncodeToken(attrs)
}

func decodeKey(token models.ContinuationToken) (map[string]types.AttributeValue, error) {
	var attrs []keyAttr
	if err := tablestore.DecodeToken(BackendName, token, &attrs); err != nil {
		return nil, err
	}
	if len(attrs) == 0 {
		return nil, errors.NewTokenError(BackendName, fmt.Errorf("token holds no key attributes"))
	}

	key := make(map[string]types.AttributeValue, len(attrs))
	for _, ka := range attrs {
		switch {
		case ka.S != nil:
			key[ka.Name] = &types.AttributeValueMemberS{Value: *ka.S}
		case ka.N != nil:
			key[ka.Name] = &types.AttributeValueMemberN{Value: *ka.N}
		case ka.B != nil:
			key[ka.Name] = &types.AttributeValueMemberB{Value: ka.B}
		default:
			return nil, errors.NewTokenError(BackendName, fmt.Errorf("key attribute %q has no value", ka.Name))
		}
	}
	return key, nil
}
