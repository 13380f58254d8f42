// Package pipeline wires the Source, Remapper, Reducer, Writer and Version
// Tracker stages together over bounded channels: each stage blocks on its
// upstream queue and on capacity in its downstream queue, and a closed
// upstream channel drains rather than aborts in-flight work.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/nftindexer/aptos-marketplace-indexer/pkg/checkpoint"
	"github.com/nftindexer/aptos-marketplace-indexer/pkg/config"
	"github.com/nftindexer/aptos-marketplace-indexer/pkg/models"
	"github.com/nftindexer/aptos-marketplace-indexer/pkg/reduce"
	"github.com/nftindexer/aptos-marketplace-indexer/pkg/remap"
	"github.com/nftindexer/aptos-marketplace-indexer/pkg/stream"
)

// Writer is the persistence boundary the write stage consumes.
// *database.Writer satisfies this structurally.
type Writer interface {
	WriteBatch(ctx context.Context, activities []*models.Activity, listings []*models.CurrentListing, tokenOffers []*models.CurrentTokenOffer, collectionOffers []*models.CurrentCollectionOffer) error
}

// Pipeline runs the five-stage batch processing chain over bounded channels
// of capacity config.ChannelCapacity between every pair of stages.
type Pipeline struct {
	streamClient  stream.Client
	eventRemap    *remap.EventRemapper
	resourceRemap *remap.ResourceRemapper
	reducer       *reduce.Reducer
	writer        Writer
	tracker       *checkpoint.Tracker

	logger *log.Logger
}

// New builds a Pipeline. The tracker must already be started by the caller;
// Run only calls tracker.Advance, never Start/Stop.
func New(
	streamClient stream.Client,
	eventRemap *remap.EventRemapper,
	resourceRemap *remap.ResourceRemapper,
	reducer *reduce.Reducer,
	writer Writer,
	tracker *checkpoint.Tracker,
	logger *log.Logger,
) *Pipeline {
	if logger == nil {
		logger = log.New(log.Writer(), "[Pipeline] ", log.LstdFlags)
	}
	return &Pipeline{
		streamClient:  streamClient,
		eventRemap:    eventRemap,
		resourceRemap: resourceRemap,
		reducer:       reducer,
		writer:        writer,
		tracker:       tracker,
		logger:        logger,
	}
}

type remappedBatch struct {
	result     *remap.Result
	updates    []remap.Update
	endVersion int64
	endTime    time.Time
	err        error
}

type reducedBatch struct {
	output     *reduce.Output
	endVersion int64
	endTime    time.Time
	err        error
}

type writeResult struct {
	endVersion int64
	endTime    time.Time
	err        error
}

// Run drives the full pipeline from startingVersion until the stream's
// batch channel closes (bounded modes) or ctx is cancelled (live mode). It
// returns the first stage error encountered, or nil on a clean drain.
func (p *Pipeline) Run(ctx context.Context, startingVersion int64, endingVersion *int64) error {
	batches, streamErrs := p.streamClient.StreamBatches(ctx, startingVersion, endingVersion)

	remapped := p.runRemapStage(ctx, batches)
	reduced := p.runReduceStage(ctx, remapped)
	written := p.runWriteStage(ctx, reduced)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err, ok := <-streamErrs:
			if ok && err != nil {
				return fmt.Errorf("pipeline: stream: %w", err)
			}
		case res, ok := <-written:
			if !ok {
				return nil
			}
			if res.err != nil {
				return fmt.Errorf("pipeline: %w", res.err)
			}
			p.tracker.Advance(res.endVersion, res.endTime)
		}
	}
}

func (p *Pipeline) runRemapStage(ctx context.Context, in <-chan stream.Batch) <-chan remappedBatch {
	out := make(chan remappedBatch, config.ChannelCapacity)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case batch, ok := <-in:
				if !ok {
					return
				}
				rb := p.remapOne(batch)
				select {
				case out <- rb:
				case <-ctx.Done():
					return
				}
				if rb.err != nil {
					return
				}
			}
		}
	}()
	return out
}

func (p *Pipeline) remapOne(batch stream.Batch) remappedBatch {
	result, err := p.eventRemap.RemapBatch(batch)
	if err != nil {
		return remappedBatch{err: fmt.Errorf("event remap: %w", err)}
	}
	updates, err := p.resourceRemap.RemapBatch(batch)
	if err != nil {
		return remappedBatch{err: fmt.Errorf("resource remap: %w", err)}
	}
	return remappedBatch{
		result:     result,
		updates:    updates,
		endVersion: batch.EndVersion,
		endTime:    batch.EndTimestamp,
	}
}

func (p *Pipeline) runReduceStage(ctx context.Context, in <-chan remappedBatch) <-chan reducedBatch {
	out := make(chan reducedBatch, config.ChannelCapacity)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case rb, ok := <-in:
				if !ok {
					return
				}
				var res reducedBatch
				if rb.err != nil {
					res = reducedBatch{err: rb.err}
				} else {
					res = reducedBatch{
						output:     p.reducer.Reduce(rb.result, rb.updates),
						endVersion: rb.endVersion,
						endTime:    rb.endTime,
					}
				}
				select {
				case out <- res:
				case <-ctx.Done():
					return
				}
				if res.err != nil {
					return
				}
			}
		}
	}()
	return out
}

func (p *Pipeline) runWriteStage(ctx context.Context, in <-chan reducedBatch) <-chan writeResult {
	out := make(chan writeResult, config.ChannelCapacity)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case rb, ok := <-in:
				if !ok {
					return
				}
				var wr writeResult
				if rb.err != nil {
					wr = writeResult{err: rb.err}
				} else {
					err := p.writer.WriteBatch(ctx, rb.output.Activities, rb.output.Listings, rb.output.TokenOffers, rb.output.CollectionOffers)
					wr = writeResult{endVersion: rb.endVersion, endTime: rb.endTime, err: err}
				}
				select {
				case out <- wr:
				case <-ctx.Done():
					return
				}
				if wr.err != nil {
					return
				}
			}
		}
	}()
	return out
}
