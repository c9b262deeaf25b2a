package memory

import (
	"context"
	"sync"

	"github.com/pfenwick/retain-api/internal/store"
)

// TxRunner is an in-memory store.TxRunner. A single mutex serializes
// every unit of work, so a GetForUpdate/Update pair inside one RunInTx
// call can never interleave with another — the same per-session
// read-modify-write guarantee the postgres runner gets from row locks.
type TxRunner struct {
	mu sync.Mutex
}

// NewTxRunner returns a mutex-serialized in-memory transaction runner.
func NewTxRunner() *TxRunner {
	return &TxRunner{}
}

// Verify interface compliance at compile time
var _ store.TxRunner = (*TxRunner)(nil)

// RunInTx implements store.TxRunner.RunInTx. The callback receives a
// nil transaction; the in-memory stores ignore it via their no-op
// WithTx.
func (r *TxRunner) RunInTx(ctx context.Context, fn store.TxFn) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(ctx, nil)
}
