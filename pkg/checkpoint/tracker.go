package checkpoint

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/nftindexer/aptos-marketplace-indexer/pkg/config"
	"github.com/nftindexer/aptos-marketplace-indexer/pkg/models"
)

// TrackerState is the lifecycle of a Tracker's background flush loop.
type TrackerState string

const (
	TrackerStateStopped TrackerState = "stopped"
	TrackerStateRunning TrackerState = "running"
)

// DefaultFlushInterval is DEFAULT_UPDATE_PROCESSOR_STATUS_SECS: how often
// the tracker persists the latest successfully-written version.
const DefaultFlushInterval = 10 * time.Second

// Tracker records, on every successfully written batch, the highest
// transaction version now durable in the relational store, and
// periodically persists that high-water mark as the processor's resumable
// checkpoint.
type Tracker struct {
	mu sync.Mutex

	store     Store
	mode      config.ProcessorMode
	processor string
	backfillID string
	backfillStart int64
	backfillEnd   *int64

	flushInterval time.Duration

	state  TrackerState
	stopCh chan struct{}
	doneCh chan struct{}

	pending         bool
	lastVersion     int64
	lastTimestamp   *time.Time

	logger *log.Logger
}

// TrackerOption customizes a Tracker at construction.
type TrackerOption func(*Tracker)

// WithFlushInterval overrides DefaultFlushInterval.
func WithFlushInterval(d time.Duration) TrackerOption {
	return func(t *Tracker) { t.flushInterval = d }
}

// WithTrackerLogger overrides the tracker's logger.
func WithTrackerLogger(logger *log.Logger) TrackerOption {
	return func(t *Tracker) { t.logger = logger }
}

// NewTracker builds a Tracker for the given resolved run. For backfill mode,
// backfillStart/backfillEnd describe the bounded range being processed;
// they are ignored in other modes.
func NewTracker(store Store, mode config.ProcessorMode, processorID string, res Resolution, opts ...TrackerOption) *Tracker {
	t := &Tracker{
		store:         store,
		mode:          mode,
		processor:     processorID,
		flushInterval: DefaultFlushInterval,
		state:         TrackerStateStopped,
		logger:        log.New(log.Writer(), "[VersionTracker] ", log.LstdFlags),
	}
	if mode == config.ModeBackfill {
		t.backfillStart = res.StartingVersion
		t.backfillEnd = res.EndingVersion
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// SetBackfillID sets the backfill alias used to key backfill checkpoint
// rows. Required before Start when mode is ModeBackfill.
func (t *Tracker) SetBackfillID(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.backfillID = id
}

// Start begins the periodic flush loop.
func (t *Tracker) Start(ctx context.Context) {
	t.mu.Lock()
	if t.state == TrackerStateRunning {
		t.mu.Unlock()
		return
	}
	t.stopCh = make(chan struct{})
	t.doneCh = make(chan struct{})
	t.state = TrackerStateRunning
	t.mu.Unlock()

	go t.run(ctx)
	t.logger.Printf("tracker started (processor=%s mode=%s interval=%s)", t.processor, t.mode, t.flushInterval)
}

// Stop halts the flush loop and performs one final synchronous flush of any
// pending version so a clean shutdown never loses the last batch's
// checkpoint.
func (t *Tracker) Stop(ctx context.Context) error {
	t.mu.Lock()
	if t.state != TrackerStateRunning {
		t.mu.Unlock()
		return nil
	}
	close(t.stopCh)
	t.state = TrackerStateStopped
	t.mu.Unlock()

	<-t.doneCh

	if err := t.flush(ctx); err != nil {
		return err
	}
	t.logger.Println("tracker stopped")
	return nil
}

// Advance records that version (with its block timestamp) is now durable.
// It does not itself write to the store; the background loop and Stop do.
func (t *Tracker) Advance(version int64, blockTimestamp time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if version < t.lastVersion {
		return
	}
	t.lastVersion = version
	ts := blockTimestamp
	t.lastTimestamp = &ts
	t.pending = true
}

func (t *Tracker) run(ctx context.Context) {
	defer close(t.doneCh)

	ticker := time.NewTicker(t.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.stopCh:
			return
		case <-ticker.C:
			if err := t.flush(ctx); err != nil {
				t.logger.Printf("flush failed: %v", err)
			}
		}
	}
}

func (t *Tracker) flush(ctx context.Context) error {
	t.mu.Lock()
	if !t.pending {
		t.mu.Unlock()
		return nil
	}
	version := t.lastVersion
	ts := t.lastTimestamp
	backfillID := t.backfillID
	t.mu.Unlock()

	if t.mode == config.ModeTesting {
		t.mu.Lock()
		t.pending = false
		t.mu.Unlock()
		return nil
	}

	var err error
	switch t.mode {
	case config.ModeBackfill:
		status := &models.BackfillProcessorStatus{
			Processor:                t.processor,
			BackfillAlias:            backfillID,
			BackfillStatus:           t.backfillStatus(version),
			LastSuccessVersion:       version,
			LastTransactionTimestamp: ts,
			BackfillStartVersion:     t.backfillStart,
			BackfillEndVersion:       t.backfillEnd,
		}
		err = t.store.UpsertBackfillStatus(ctx, status, false)
	default:
		status := &models.ProcessorStatus{
			Processor:                t.processor,
			LastSuccessVersion:       version,
			LastTransactionTimestamp: ts,
		}
		err = t.store.UpsertProcessorStatus(ctx, status)
	}
	if err != nil {
		return err
	}

	t.mu.Lock()
	t.pending = false
	t.mu.Unlock()
	return nil
}

func (t *Tracker) backfillStatus(version int64) models.BackfillStatus {
	if t.backfillEnd != nil && version >= *t.backfillEnd {
		return models.BackfillComplete
	}
	return models.BackfillInProgress
}
