/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package models

import (
	"time"

	"go.uber.org/zap"
)

// StreamResult represents a single row in a stream with metadata
type StreamResult struct {
	Entity Entity     // The raw entity as returned by the table service
	Record *Record    // Flattened form, set only when flattening is enabled
	Error  error      // Terminal error; no further results follow it
	Meta   StreamMeta // Metadata about this row
}

// StreamMeta contains metadata about a streamed row
type StreamMeta struct {
	Index     int64     // Row index in stream (0-based)
	Segment   int       // Segment number (1-based)
	Timestamp time.Time // When the row was received
}

// StreamOptions configures paging and streaming behavior
type StreamOptions struct {
	BufferSize      int                  // Channel buffer size (default: 0)
	PageSize        int32                // Upper bound on each requested batch (default: 0, service default)
	Flatten         bool                 // Populate StreamResult.Record
	StartToken      ContinuationToken    // Resume from a token printed by an earlier run
	ProgressHandler func(StreamProgress) // Optional callback after each segment
	Logger          *zap.Logger          // Debug logging of segment fetches (default: no-op)
}

// StreamProgress tracks streaming progress
type StreamProgress struct {
	ItemsProcessed    int64             // Total rows emitted
	SegmentsProcessed int               // Total segments fetched
	LastToken         ContinuationToken // Token returned with the last segment
	StartTime         time.Time         // When streaming started
	CurrentRate       float64           // Rows per second
}

// StreamOption is a functional option for configuring paging and streaming
type StreamOption func(*StreamOptions)

// DefaultStreamOptions returns default streaming options
func DefaultStreamOptions() StreamOptions {
	return StreamOptions{
		Logger: zap.NewNop(),
	}
}

// ApplyStreamOptions returns the defaults with opts applied in order
func ApplyStreamOptions(opts ...StreamOption) StreamOptions {
	options := DefaultStreamOptions()
	for _, opt := range opts {
		opt(&options)
	}
	if options.Logger == nil {
		options.Logger = zap.NewNop()
	}
	return options
}

// WithBufferSize sets the channel buffer size
func WithBufferSize(size int) StreamOption {
	return func(opts *StreamOptions) {
		opts.BufferSize = size
	}
}

// WithPageSize caps the number of rows requested per segment
func WithPageSize(size int32) StreamOption {
	return func(opts *StreamOptions) {
		opts.PageSize = size
	}
}

// WithFlatten enables flattening of every streamed entity
func WithFlatten(flatten bool) StreamOption {
	return func(opts *StreamOptions) {
		opts.Flatten = flatten
	}
}

// WithStartToken resumes paging from a previously returned continuation token
func WithStartToken(token ContinuationToken) StreamOption {
	return func(opts *StreamOptions) {
		opts.StartToken = token
	}
}

// WithProgressHandler sets a progress callback
func WithProgressHandler(handler func(StreamProgress)) StreamOption {
	return func(opts *StreamOptions) {
		opts.ProgressHandler = handler
	}
}

// WithLogger sets the logger used for segment-level debug output
func WithLogger(logger *zap.Logger) StreamOption {
	return func(opts *StreamOptions) {
		opts.Logger = logger
	}
}
