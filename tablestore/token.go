/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package tablestore

import (
	"encoding/base64"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/suparena/tablequery/errors"
	"github.com/suparena/tablequery/models"
)

// EncodeToken packs a backend cursor into a printable continuation token.
func EncodeToken(cursor any) (models.ContinuationToken, error) {
	b, err := msgpack.Marshal(cursor)
	if err != nil {
		return "", fmt.Errorf("failed to encode continuation token: %w", err)
	}
	return models.ContinuationToken(base64.RawURLEncoding.EncodeToString(b)), nil
}

// DecodeToken unpacks a token produced by EncodeToken into cursor.
// Failures are reported as errors.TokenError for the named backend.
func DecodeToken(backend string, token models.ContinuationToken, cursor any) error {
	if token.IsZero() {
		return errors.NewTokenError(backend, nil)
	}
	b, err := base64.RawURLEncoding.DecodeString(string(token))
	if err != nil {
		return errors.NewTokenError(backend, err)
	}
	if err := msgpack.Unmarshal(b, cursor); err != nil {
		return errors.NewTokenError(backend, err)
	}
	return nil
}
