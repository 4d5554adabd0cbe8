package service

import (
	"context"
	"log/slog"
	"sync"

	"nomadpool/internal/events"
	poolmetrics "nomadpool/internal/pool/metrics"
	"nomadpool/internal/pool/models"
	"nomadpool/pkg/domain"
	dErrors "nomadpool/pkg/domain-errors"
	"nomadpool/pkg/requestcontext"
)

// Named error kinds for solvency failures. No partial debit or credit is
// ever applied: every check precedes its mutation.
var (
	ErrInsufficientReserve = dErrors.New(dErrors.CodeInsufficientFunds, "payout would break the pool reserve floor")
	ErrInsufficientBalance = dErrors.New(dErrors.CodeInsufficientFunds, "withdrawal exceeds pool balance")
)

// Service owns the pool account and its solvency invariant. Mutations are
// guarded by the service's own lock; cross-record consistency with policies
// and claims comes from the ledger transaction the callers hold.
type Service struct {
	mu           sync.RWMutex
	account      models.Account
	reserveRatio int64

	eventsPub *events.Publisher
	logger    *slog.Logger
	metrics   *poolmetrics.Metrics
}

type Option func(s *Service)

func WithEvents(pub *events.Publisher) Option {
	return func(s *Service) { s.eventsPub = pub }
}

func WithMetrics(m *poolmetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(reserveRatio int64, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{reserveRatio: reserveRatio, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CheckReserve is the claim-admission solvency check: the pool must retain
// its reserve floor after a hypothetical payout of amount, measured against
// the pre-claim balance. Advisory at submission; re-run at approval.
func (s *Service) CheckReserve(_ context.Context, amount domain.Amount) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.account.CanAdmit(amount, s.reserveRatio) {
		return ErrInsufficientReserve
	}
	return nil
}

// Credit adds premiums or relocation top-ups. Credits always succeed.
func (s *Service) Credit(_ context.Context, amount domain.Amount) {
	if amount <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.account.Balance += amount
	s.observeBalance()
}

// RecordPolicyCreated bumps the lifetime policy counter.
func (s *Service) RecordPolicyCreated(_ context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.account.TotalPoliciesCreated++
}

// PayClaim debits an approved payout, re-verifying the reserve invariant
// against the current balance. The balance may have moved since the
// submission-time check, so this can fail even for an admitted claim.
func (s *Service) PayClaim(_ context.Context, amount domain.Amount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.account.CanAdmit(amount, s.reserveRatio) {
		return ErrInsufficientReserve
	}
	s.account.Balance -= amount
	s.account.TotalClaimsPaid += amount
	s.observeBalance()
	return nil
}

// Contribute is an unconditional credit by any caller.
func (s *Service) Contribute(ctx context.Context, from domain.Principal, amount domain.Amount) error {
	if amount <= 0 {
		return dErrors.New(dErrors.CodeValidation, "contribution must be positive")
	}
	s.mu.Lock()
	s.account.Balance += amount
	s.observeBalance()
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.ContributionsTotal.Inc()
	}
	s.logger.InfoContext(ctx, "pool contribution received",
		"request_id", requestcontext.RequestID(ctx),
		"principal", from.String(),
		"amount", int64(amount),
		"log_type", "audit",
	)
	if s.eventsPub != nil {
		_ = s.eventsPub.Emit(ctx, events.Event{
			Kind:      events.KindPoolContribution,
			Principal: from,
			Amount:    amount,
		})
	}
	return nil
}

// Withdraw is the administrative escape hatch. It bypasses the reserve
// invariant and is not audited beyond this log line; the admin
// capability check lives at the transport boundary.
func (s *Service) Withdraw(ctx context.Context, amount domain.Amount) error {
	if amount <= 0 {
		return dErrors.New(dErrors.CodeValidation, "withdrawal must be positive")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if amount > s.account.Balance {
		return ErrInsufficientBalance
	}
	s.account.Balance -= amount
	s.observeBalance()
	if s.metrics != nil {
		s.metrics.WithdrawalsTotal.Inc()
	}
	s.logger.WarnContext(ctx, "privileged pool withdrawal",
		"request_id", requestcontext.RequestID(ctx),
		"amount", int64(amount),
	)
	return nil
}

// Stats returns a consistent snapshot of the pool.
func (s *Service) Stats(_ context.Context) models.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	utilization := int64(0)
	if s.account.Balance > 0 {
		utilization = int64(s.account.TotalClaimsPaid * 100 / s.account.Balance)
	}
	return models.Stats{
		PoolBalance:        s.account.Balance,
		TotalPolicies:      s.account.TotalPoliciesCreated,
		TotalClaimsPaid:    s.account.TotalClaimsPaid,
		UtilizationPercent: utilization,
	}
}

// Balance returns the current pool balance.
func (s *Service) Balance(_ context.Context) domain.Amount {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.account.Balance
}

// observeBalance must be called with the lock held.
func (s *Service) observeBalance() {
	if s.metrics != nil {
		s.metrics.Balance.Set(float64(s.account.Balance))
	}
}
