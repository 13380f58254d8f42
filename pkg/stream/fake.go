package stream

import "context"

// FakeClient is an in-memory Client used by the testing processor mode and
// by unit tests: it replays a fixed slice of batches rather than dialing a
// real transaction-stream endpoint.
type FakeClient struct {
	Batches []Batch
	ChainIDValue uint64
}

func (f *FakeClient) ChainID(ctx context.Context) (uint64, error) {
	return f.ChainIDValue, nil
}

func (f *FakeClient) StreamBatches(ctx context.Context, startingVersion int64, requestEndingVersion *int64) (<-chan Batch, <-chan error) {
	out := make(chan Batch)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)
		for _, b := range f.Batches {
			if b.StartVersion < startingVersion {
				continue
			}
			if requestEndingVersion != nil && b.StartVersion > *requestEndingVersion {
				return
			}
			select {
			case out <- b:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, errCh
}
