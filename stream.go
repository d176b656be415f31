/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package tablequery

import (
	"context"
	"fmt"
	"iter"
	"time"

	"github.com/suparena/tablequery/models"
	"github.com/suparena/tablequery/tablestore"
)

// Entities iterates the rows of p. The next segment is requested only after
// every row of the current one has been yielded, and breaking out of the loop
// stops all fetching. A failed fetch is yielded once as the final element.
func Entities(ctx context.Context, p *Pager) iter.Seq2[models.Entity, error] {
	return func(yield func(models.Entity, error) bool) {
		for p.More() {
			entities, err := p.NextSegment(ctx)
			if err != nil {
				yield(models.Entity{}, err)
				return
			}
			for _, e := range entities {
				if !yield(e, nil) {
					return
				}
			}
		}
	}
}

// Records is Entities with every row flattened.
func Records(ctx context.Context, p *Pager) iter.Seq2[*models.Record, error] {
	return func(yield func(*models.Record, error) bool) {
		for e, err := range Entities(ctx, p) {
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(models.Flatten(e), nil) {
				return
			}
		}
	}
}

// Collect reads every row of query into memory.
func Collect(ctx context.Context, src tablestore.SegmentQuerier, query models.Query, opts ...models.StreamOption) ([]models.Entity, error) {
	p, err := NewPager(src, query, opts...)
	if err != nil {
		return nil, err
	}
	var out []models.Entity
	for e, err := range Entities(ctx, p) {
		if err != nil {
			return out, err
		}
		out = append(out, e)
	}
	return out, nil
}

// Stream runs query in a background worker and delivers rows on the returned
// channel. The channel is closed when the query completes, fails, or ctx is
// cancelled; a failure arrives as a final result with Error set.
func Stream(ctx context.Context, src tablestore.SegmentQuerier, query models.Query, opts ...models.StreamOption) <-chan models.StreamResult {
	options := models.ApplyStreamOptions(opts...)

	pager, err := NewPager(src, query, opts...)
	if err != nil {
		ch := make(chan models.StreamResult, 1)
		ch <- models.StreamResult{
			Error: fmt.Errorf("failed to build query: %w", err),
		}
		close(ch)
		return ch
	}

	bufferSize := options.BufferSize
	if bufferSize < 0 {
		bufferSize = 0
	}
	resultCh := make(chan models.StreamResult, bufferSize)

	go streamWorker(ctx, pager, options, resultCh)

	return resultCh
}

// streamWorker handles the actual streaming logic
func streamWorker(
	ctx context.Context,
	pager *Pager,
	options models.StreamOptions,
	resultCh chan<- models.StreamResult,
) {
	defer close(resultCh)

	var index int64
	startTime := time.Now()

	reportProgress := func() {
		if options.ProgressHandler == nil {
			return
		}
		progress := models.StreamProgress{
			ItemsProcessed:    index,
			SegmentsProcessed: pager.Segments(),
			LastToken:         pager.Token(),
			StartTime:         startTime,
		}
		elapsed := time.Since(startTime).Seconds()
		if elapsed > 0 {
			progress.CurrentRate = float64(index) / elapsed
		}
		options.ProgressHandler(progress)
	}

	for pager.More() {
		select {
		case <-ctx.Done():
			return
		default:
		}

		entities, err := pager.NextSegment(ctx)
		if err != nil {
			select {
			case <-ctx.Done():
			case resultCh <- models.StreamResult{
				Error: err,
				Meta: models.StreamMeta{
					Index:     index,
					Segment:   pager.Segments(),
					Timestamp: time.Now(),
				},
			}:
			}
			return
		}

		for _, e := range entities {
			result := models.StreamResult{
				Entity: e,
				Meta: models.StreamMeta{
					Index:     index,
					Segment:   pager.Segments(),
					Timestamp: time.Now(),
				},
			}
			if options.Flatten {
				result.Record = models.Flatten(e)
			}

			select {
			case <-ctx.Done():
				return
			case resultCh <- result:
			}
			index++
		}

		reportProgress()
	}
}
