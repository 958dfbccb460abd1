package billing

import "context"

// Strategy is one of the two interchangeable write algorithms.
type Strategy int

const (
	// StrategyTransactional writes both documents inside one native
	// storage transaction.
	StrategyTransactional Strategy = iota

	// StrategySequential writes the order, then the payment, and
	// compensates with an order delete if the payment write fails.
	StrategySequential
)

func (s Strategy) String() string {
	if s == StrategyTransactional {
		return "transactional"
	}
	return "sequential"
}

// Options steers a single coordinator call.
type Options struct {
	// ForceSequential skips the capability probe and takes the
	// sequential-with-compensation path. Used by tests and by deployments
	// known to lack transaction support.
	ForceSequential bool
}

// selectStrategy picks the write algorithm for one call. It never fails: an
// absent runner or an inconclusive probe falls back to the sequential path,
// which is always safe.
func (c *Coordinator) selectStrategy(ctx context.Context, opts Options) Strategy {
	if opts.ForceSequential {
		return StrategySequential
	}
	if c.txn == nil || !c.txn.Supports(ctx) {
		return StrategySequential
	}
	return StrategyTransactional
}
