// Package ledger provides the transactional boundary every mutating
// operation runs inside.
//
// The engine's concurrency model is a single serialized ledger: policies,
// claims, the pool account and reputation scores mutate together or not at
// all. One lock around the ledger realizes that model directly; reads stay
// concurrent because stores hand out copies under their own read locks.
package ledger

import (
	"context"
	"sync"
	"time"

	dErrors "nomadpool/pkg/domain-errors"
)

// defaultTxTimeout is the maximum duration a ledger transaction may hold the
// lock. Operations perform no external I/O inside the boundary (custody
// instructions happen after commit) so this is generous.
const defaultTxTimeout = 5 * time.Second

// Tx serializes ledger mutations. All services performing cross-record
// mutations share a single instance.
type Tx struct {
	mu      sync.Mutex
	timeout time.Duration
}

func New() *Tx {
	return &Tx{timeout: defaultTxTimeout}
}

// RunInTx executes fn while holding the ledger lock. The lock is not
// reentrant: code running inside fn must not call RunInTx again.
func (t *Tx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	// Check again after acquiring the lock
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	return fn(ctx)
}
