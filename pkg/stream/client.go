package stream

import "context"

// Client is the upstream transaction-stream contract the pipeline's
// Source stage drives. Implementations fetch committed transactions
// starting at startingVersion and, if requestEndingVersion is non-nil,
// stop once it is reached.
type Client interface {
	// ChainID reports the chain id the stream is currently serving, used
	// for the startup chain-id check.
	ChainID(ctx context.Context) (uint64, error)

	// StreamBatches returns a channel of batches in strictly increasing
	// start_version order, and an error channel that receives at most one
	// value before being closed. Closing ctx stops the stream and drains
	// both channels.
	StreamBatches(ctx context.Context, startingVersion int64, requestEndingVersion *int64) (<-chan Batch, <-chan error)
}
