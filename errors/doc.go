/*
Package errors provides semantic error types for tablequery.

Errors raised by a storage service are never translated; they reach the caller
exactly as the SDK returned them. The types here cover problems detected
locally, before or around a service call.

Common Errors:

	var (
	    ErrNotFound           = errors.New("not found")
	    ErrAlreadyExists      = errors.New("already exists")
	    ErrInvalidInput       = errors.New("invalid input")
	    ErrInvalidToken       = errors.New("invalid continuation token")
	    ErrUnsupportedBackend = errors.New("unsupported backend")
	    ErrNoMoreSegments     = errors.New("no more segments")
	)

Usage:

	pager, err := tablequery.NewPager(src, query)
	if err != nil {
	    if errors.IsValidationError(err) {
	        // bad cap, empty column name, ...
	    }
	    return err
	}

	// Create typed errors
	err := errors.NewNotFoundError("table", "orders")
	err := errors.NewValidationError("maxRows", "must be at least 1")
	err := errors.NewTokenError("dynamodb", cause)

The typed errors implement Is so they match their sentinel through any
amount of fmt.Errorf("...: %w") wrapping.
*/
package errors
