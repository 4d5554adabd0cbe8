// Package custody is the port to the external funds custodian. The engine
// instructs transfers; it never executes them.
package custody

import (
	"context"
	"log/slog"

	"nomadpool/pkg/domain"
)

// Custodian receives transfer instructions. Implementations must be safe to
// call as the final step after a ledger transaction has committed; the
// engine never calls back into the ledger from here.
type Custodian interface {
	// Refund returns excess funds supplied by a caller (overpaid premium or
	// relocation top-up).
	Refund(ctx context.Context, to domain.Principal, amount domain.Amount) error
	// Payout instructs payment of an approved claim.
	Payout(ctx context.Context, to domain.Principal, amount domain.Amount) error
}

// LogCustodian records instructions without moving funds. It stands in for
// the real custodian in local runs and tests.
type LogCustodian struct {
	logger *slog.Logger
}

func NewLogCustodian(logger *slog.Logger) *LogCustodian {
	return &LogCustodian{logger: logger}
}

func (c *LogCustodian) Refund(ctx context.Context, to domain.Principal, amount domain.Amount) error {
	c.logger.InfoContext(ctx, "custody refund instructed",
		"principal", to.String(),
		"amount", int64(amount),
	)
	return nil
}

func (c *LogCustodian) Payout(ctx context.Context, to domain.Principal, amount domain.Amount) error {
	c.logger.InfoContext(ctx, "custody payout instructed",
		"principal", to.String(),
		"amount", int64(amount),
	)
	return nil
}
