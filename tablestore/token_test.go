/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package tablestore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/tablequery/errors"
	"github.com/suparena/tablequery/models"
)

type testCursor struct {
	Partition string `msgpack:"p"`
	Row       string `msgpack:"r"`
}

func TestTokenRoundTrip(t *testing.T) {
	in := testCursor{Partition: "orders", Row: "2024-01-01#0042"}

	tok, err := EncodeToken(in)
	require.NoError(t, err)
	require.False(t, tok.IsZero())
	assert.NotContains(t, tok.String(), "=")

	var out testCursor
	require.NoError(t, DecodeToken("test", tok, &out))
	assert.Equal(t, in, out)
}

func TestDecodeTokenErrors(t *testing.T) {
	t.Parallel()
	tests := map[string]models.ContinuationToken{
		"empty token": "",
		"not base64":  "!!!not-base64!!!",
		"truncated":   models.ContinuationToken("gqFw"),
	}

	for name, tok := range tests {
		t.Run(name, func(t *testing.T) {
			var out testCursor
			err := DecodeToken("test", tok, &out)
			require.Error(t, err)
			require.True(t, errors.IsInvalidToken(err), "expected token error, got %v", err)
		})
	}
}
