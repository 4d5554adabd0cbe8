package service

import (
	"context"
	"errors"
	"log/slog"

	dErrors "nomadpool/pkg/domain-errors"

	"nomadpool/internal/custody"
	"nomadpool/internal/events"
	"nomadpool/internal/ledger"
	locmodels "nomadpool/internal/location/models"
	polmetrics "nomadpool/internal/policy/metrics"
	"nomadpool/internal/policy/models"
	"nomadpool/pkg/domain"
	"nomadpool/pkg/platform/sentinel"
	"nomadpool/pkg/requestcontext"
)

var (
	ErrPolicyNotFound       = dErrors.New(dErrors.CodeNotFound, "policy not found")
	ErrNotOwner             = dErrors.New(dErrors.CodeForbidden, "policy belongs to another principal")
	ErrInvalidDuration      = dErrors.New(dErrors.CodeValidation, "duration must be between 1 and 180 days")
	ErrInvalidCoverage      = dErrors.New(dErrors.CodeValidation, "coverage must be positive")
	ErrCoverageExceedsLimit = dErrors.New(dErrors.CodeValidation, "coverage exceeds the location limit")
	ErrInsufficientPremium  = dErrors.New(dErrors.CodeValidation, "payment does not cover the premium")
	ErrInsufficientTopUp    = dErrors.New(dErrors.CodeValidation, "payment does not cover the premium difference")
	ErrPolicyExpired        = dErrors.New(dErrors.CodeConflict, "policy has no remaining coverage days")
)

// Store is the persistence the policy service needs.
type Store interface {
	Create(ctx context.Context, policy models.Policy) (models.Policy, error)
	FindByID(ctx context.Context, id domain.PolicyID) (models.Policy, error)
	ListByOwner(ctx context.Context, owner domain.Principal) ([]models.Policy, error)
	Execute(ctx context.Context, id domain.PolicyID, validate func(models.Policy) error, apply func(*models.Policy)) (models.Policy, error)
}

// Registry resolves active location profiles at pricing time.
type Registry interface {
	Active(ctx context.Context, key domain.LocationKey) (*locmodels.Profile, error)
}

// Pricer turns a location profile and coverage into a daily premium.
type Pricer interface {
	FromProfile(profile *locmodels.Profile, coverage domain.Amount) domain.Amount
}

// Pool receives premium credits and tracks policy counts.
type Pool interface {
	Credit(ctx context.Context, amount domain.Amount)
	RecordPolicyCreated(ctx context.Context)
}

type Service struct {
	store     Store
	registry  Registry
	pricer    Pricer
	pool      Pool
	custodian custody.Custodian
	tx        *ledger.Tx
	eventsPub *events.Publisher
	metrics   *polmetrics.Metrics
	logger    *slog.Logger
}

type Option func(s *Service)

func WithEvents(pub *events.Publisher) Option {
	return func(s *Service) { s.eventsPub = pub }
}

func WithMetrics(m *polmetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(store Store, registry Registry, pricer Pricer, pool Pool, custodian custody.Custodian, tx *ledger.Tx, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		store:     store,
		registry:  registry,
		pricer:    pricer,
		pool:      pool,
		custodian: custodian,
		tx:        tx,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create issues a policy priced at the location's current risk. The
// payment must cover the whole premium up front; any excess is
// returned through the custodian after the ledger commits.
func (s *Service) Create(ctx context.Context, owner domain.Principal, location domain.LocationKey, coverage domain.Amount, durationDays int, payment domain.Amount) (models.Policy, error) {
	if durationDays < models.MinDurationDays || durationDays > models.MaxDurationDays {
		return models.Policy{}, ErrInvalidDuration
	}
	if !coverage.Positive() {
		return models.Policy{}, ErrInvalidCoverage
	}

	var (
		created models.Policy
		refund  domain.Amount
	)
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		profile, err := s.registry.Active(ctx, location)
		if err != nil {
			return err
		}
		if coverage > profile.MaxCoverage {
			return ErrCoverageExceedsLimit
		}

		daily := s.pricer.FromProfile(profile, coverage)
		total := daily * domain.Amount(durationDays)
		if payment < total {
			return ErrInsufficientPremium
		}
		refund = payment - total

		now := requestcontext.Now(ctx)
		policy := models.NewPolicy(owner, location, coverage, daily, profile.RiskScore, now, durationDays)
		policy.PremiumPaid = total

		created, err = s.store.Create(ctx, policy)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist policy")
		}

		s.pool.Credit(ctx, total)
		s.pool.RecordPolicyCreated(ctx)
		return nil
	})
	if err != nil {
		return models.Policy{}, err
	}

	s.settleExcess(ctx, owner, refund)
	s.emit(ctx, events.Event{
		Kind:      events.KindPolicyCreated,
		Principal: created.Owner,
		PolicyID:  created.ID,
		Amount:    created.PremiumPaid,
		Note:      string(created.Location),
	})
	if s.metrics != nil {
		s.metrics.PoliciesCreated.WithLabelValues(string(created.Location)).Inc()
		s.metrics.PremiumsCollected.Add(float64(created.PremiumPaid))
	}
	s.logger.InfoContext(ctx, "policy created",
		"log_type", "audit",
		"policy_id", created.ID,
		"owner", created.Owner,
		"location", created.Location,
		"coverage", created.Coverage,
		"premium", created.PremiumPaid,
	)
	return created, nil
}

// Relocate moves an active policy to a new location and reprices its
// remaining days, returning the premium adjustment that was applied.
// A more expensive destination requires a top-up that covers the
// difference; a cheaper one adjusts the daily rate without any refund
// of premium already paid.
func (s *Service) Relocate(ctx context.Context, owner domain.Principal, id domain.PolicyID, location domain.LocationKey, payment domain.Amount) (models.Policy, domain.Amount, error) {
	var (
		updated models.Policy
		delta   domain.Amount
		refund  domain.Amount
	)
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		profile, err := s.registry.Active(ctx, location)
		if err != nil {
			return err
		}

		now := requestcontext.Now(ctx)
		newDaily := domain.Amount(0)
		updated, err = s.store.Execute(ctx, id,
			func(p models.Policy) error {
				if p.Owner != owner {
					return ErrNotOwner
				}
				if err := p.CanRelocate(now); err != nil {
					return err
				}
				if p.Coverage > profile.MaxCoverage {
					return ErrCoverageExceedsLimit
				}
				remaining := p.RemainingDays(now)
				if remaining == 0 {
					return ErrPolicyExpired
				}
				newDaily = s.pricer.FromProfile(profile, p.Coverage)
				delta = (newDaily - p.DailyPremium) * domain.Amount(remaining)
				if delta > 0 && payment < delta {
					return ErrInsufficientTopUp
				}
				return nil
			},
			func(p *models.Policy) {
				p.ApplyRelocation(location, newDaily, profile.RiskScore)
				if delta > 0 {
					p.PremiumPaid += delta
				}
			},
		)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return ErrPolicyNotFound
			}
			return err
		}

		if delta > 0 {
			refund = payment - delta
			s.pool.Credit(ctx, delta)
		} else {
			refund = payment
		}
		return nil
	})
	if err != nil {
		return models.Policy{}, 0, err
	}

	s.settleExcess(ctx, owner, refund)
	s.emit(ctx, events.Event{
		Kind:      events.KindLocationUpdated,
		Principal: updated.Owner,
		PolicyID:  updated.ID,
		Amount:    delta,
		Note:      string(updated.Location),
	})
	if s.metrics != nil {
		s.metrics.Relocations.Inc()
		if delta > 0 {
			s.metrics.PremiumsCollected.Add(float64(delta))
		}
	}
	s.logger.InfoContext(ctx, "policy relocated",
		"log_type", "audit",
		"policy_id", updated.ID,
		"owner", updated.Owner,
		"location", updated.Location,
		"premium_adjustment", delta,
	)
	return updated, delta, nil
}

// Cancel terminates an active policy ahead of its end time. Premiums
// already paid stay in the pool.
func (s *Service) Cancel(ctx context.Context, actor domain.Principal, isAdmin bool, id domain.PolicyID) (models.Policy, error) {
	var cancelled models.Policy
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		now := requestcontext.Now(ctx)
		var err error
		cancelled, err = s.store.Execute(ctx, id,
			func(p models.Policy) error {
				if !isAdmin && p.Owner != actor {
					return ErrNotOwner
				}
				return p.CanCancel(now)
			},
			func(p *models.Policy) { p.ApplyCancellation() },
		)
		if errors.Is(err, sentinel.ErrNotFound) {
			return ErrPolicyNotFound
		}
		return err
	})
	if err != nil {
		return models.Policy{}, err
	}

	if s.metrics != nil {
		s.metrics.Cancellations.Inc()
	}
	s.logger.InfoContext(ctx, "policy cancelled",
		"log_type", "audit",
		"policy_id", cancelled.ID,
		"actor", actor,
		"admin", isAdmin,
	)
	return cancelled, nil
}

// Get reads a policy with lazy expiry folded into its status.
func (s *Service) Get(ctx context.Context, id domain.PolicyID) (models.Policy, error) {
	policy, err := s.store.FindByID(ctx, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		return models.Policy{}, ErrPolicyNotFound
	}
	if err != nil {
		return models.Policy{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read policy")
	}
	policy.Status = policy.EffectiveStatus(requestcontext.Now(ctx))
	return policy, nil
}

// PoliciesOf lists the principal's policies, expiry folded in.
func (s *Service) PoliciesOf(ctx context.Context, owner domain.Principal) ([]models.Policy, error) {
	policies, err := s.store.ListByOwner(ctx, owner)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list policies")
	}
	now := requestcontext.Now(ctx)
	for i := range policies {
		policies[i].Status = policies[i].EffectiveStatus(now)
	}
	return policies, nil
}

// ClaimTarget resolves the policy a claim is filed against. The caller
// is expected to hold the ledger transaction; further state checks
// happen in OpenClaim under the store lock.
func (s *Service) ClaimTarget(ctx context.Context, owner domain.Principal, id domain.PolicyID) (models.Policy, error) {
	policy, err := s.store.FindByID(ctx, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		return models.Policy{}, ErrPolicyNotFound
	}
	if err != nil {
		return models.Policy{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read policy")
	}
	if policy.Owner != owner {
		return models.Policy{}, ErrNotOwner
	}
	return policy, nil
}

// OpenClaim marks the policy as having a pending claim. Caller holds
// the ledger transaction.
func (s *Service) OpenClaim(ctx context.Context, id domain.PolicyID) error {
	now := requestcontext.Now(ctx)
	_, err := s.store.Execute(ctx, id,
		func(p models.Policy) error { return p.CanOpenClaim(now) },
		func(p *models.Policy) { p.ApplyClaimOpened() },
	)
	if errors.Is(err, sentinel.ErrNotFound) {
		return ErrPolicyNotFound
	}
	return err
}

// CloseClaim releases the policy after a rejected claim. Caller holds
// the ledger transaction.
func (s *Service) CloseClaim(ctx context.Context, id domain.PolicyID) error {
	_, err := s.store.Execute(ctx, id,
		func(p models.Policy) error {
			if !p.OpenClaim {
				return dErrors.New(dErrors.CodeInvariantViolation, "policy has no pending claim")
			}
			return nil
		},
		func(p *models.Policy) { p.ApplyClaimClosed() },
	)
	if errors.Is(err, sentinel.ErrNotFound) {
		return ErrPolicyNotFound
	}
	return err
}

// SettleClaim terminates the policy after an approved payout. Caller
// holds the ledger transaction.
func (s *Service) SettleClaim(ctx context.Context, id domain.PolicyID) error {
	_, err := s.store.Execute(ctx, id,
		func(p models.Policy) error {
			if !p.OpenClaim {
				return dErrors.New(dErrors.CodeInvariantViolation, "policy has no pending claim")
			}
			return nil
		},
		func(p *models.Policy) { p.ApplyClaimSettled() },
	)
	if errors.Is(err, sentinel.ErrNotFound) {
		return ErrPolicyNotFound
	}
	return err
}

func (s *Service) settleExcess(ctx context.Context, owner domain.Principal, amount domain.Amount) {
	if amount <= 0 || s.custodian == nil {
		return
	}
	if err := s.custodian.Refund(ctx, owner, amount); err != nil {
		s.logger.ErrorContext(ctx, "refund instruction failed", "owner", owner, "amount", amount, "error", err)
	}
}

func (s *Service) emit(ctx context.Context, event events.Event) {
	if s.eventsPub == nil {
		return
	}
	if err := s.eventsPub.Emit(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to emit policy event", "kind", event.Kind, "error", err)
	}
}
