package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	dErrors "nomadpool/pkg/domain-errors"

	"nomadpool/internal/claims/metrics"
	"nomadpool/internal/claims/models"
	"nomadpool/internal/custody"
	"nomadpool/internal/events"
	"nomadpool/internal/ledger"
	polmodels "nomadpool/internal/policy/models"
	"nomadpool/pkg/domain"
	"nomadpool/pkg/platform/sentinel"
	"nomadpool/pkg/requestcontext"
)

var (
	ErrClaimNotFound        = dErrors.New(dErrors.CodeNotFound, "claim not found")
	ErrInvalidAmount        = dErrors.New(dErrors.CodeValidation, "claim amount must be positive")
	ErrNoActivePolicy       = dErrors.New(dErrors.CodeConflict, "policy is not active")
	ErrDuplicateActiveClaim = dErrors.New(dErrors.CodeConflict, "policy already has a pending claim")
	ErrClaimExceedsCoverage = dErrors.New(dErrors.CodeValidation, "claim amount exceeds policy coverage")
	ErrAlreadyProcessed     = dErrors.New(dErrors.CodeConflict, "claim has already been processed")
)

// Store is the persistence the claims service needs.
type Store interface {
	Create(ctx context.Context, claim models.Claim) (models.Claim, error)
	FindByID(ctx context.Context, id domain.ClaimID) (models.Claim, error)
	ListByPolicy(ctx context.Context, id domain.PolicyID) ([]models.Claim, error)
	ListByClaimant(ctx context.Context, claimant domain.Principal) ([]models.Claim, error)
	Execute(ctx context.Context, id domain.ClaimID, validate func(models.Claim) error, apply func(*models.Claim)) (models.Claim, error)
}

// PolicyLedger is the slice of the policy service a claim touches.
// Its methods assume the caller holds the ledger transaction.
type PolicyLedger interface {
	ClaimTarget(ctx context.Context, owner domain.Principal, id domain.PolicyID) (polmodels.Policy, error)
	OpenClaim(ctx context.Context, id domain.PolicyID) error
	CloseClaim(ctx context.Context, id domain.PolicyID) error
	SettleClaim(ctx context.Context, id domain.PolicyID) error
}

// Pool guards payouts behind the reserve ratio.
type Pool interface {
	CheckReserve(ctx context.Context, amount domain.Amount) error
	PayClaim(ctx context.Context, amount domain.Amount) error
}

// Reputation scores claimants and rewards honored claims.
type Reputation interface {
	Score(ctx context.Context, p domain.Principal) (int, error)
	Award(ctx context.Context, p domain.Principal) (int, error)
}

type Service struct {
	store      Store
	policies   PolicyLedger
	pool       Pool
	reputation Reputation
	custodian  custody.Custodian
	tx         *ledger.Tx
	eventsPub  *events.Publisher
	metrics    *metrics.Metrics
	tracer     trace.Tracer
	logger     *slog.Logger

	autoApproveScore    int
	smallClaimThreshold domain.Amount
}

type Option func(s *Service)

func WithEvents(pub *events.Publisher) Option {
	return func(s *Service) { s.eventsPub = pub }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(store Store, policies PolicyLedger, pool Pool, reputation Reputation, custodian custody.Custodian, tx *ledger.Tx, autoApproveScore int, smallClaimThreshold domain.Amount, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		store:               store,
		policies:            policies,
		pool:                pool,
		reputation:          reputation,
		custodian:           custodian,
		tx:                  tx,
		tracer:              otel.Tracer("nomadpool/claims"),
		logger:              logger,
		autoApproveScore:    autoApproveScore,
		smallClaimThreshold: smallClaimThreshold,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit files a claim against the claimant's active policy. The pool
// must be able to honor the amount at submission time; reserve
// pressure rejects the claim outright rather than queueing it. Small
// claims from well-scored claimants are approved on the spot.
func (s *Service) Submit(ctx context.Context, claimant domain.Principal, policyID domain.PolicyID, amount domain.Amount, description, evidenceRef string) (models.Claim, error) {
	ctx, span := s.tracer.Start(ctx, "claims.Submit",
		trace.WithAttributes(
			attribute.String("claimant", string(claimant)),
			attribute.Int64("policy_id", int64(policyID)),
		))
	defer span.End()

	if !amount.Positive() {
		return models.Claim{}, ErrInvalidAmount
	}

	var (
		claim  models.Claim
		payout domain.Amount
	)
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		policy, err := s.policies.ClaimTarget(ctx, claimant, policyID)
		if err != nil {
			return err
		}

		now := requestcontext.Now(ctx)
		if !policy.IsActive(now) {
			return ErrNoActivePolicy
		}
		if policy.OpenClaim {
			return ErrDuplicateActiveClaim
		}
		if amount > policy.Coverage {
			return ErrClaimExceedsCoverage
		}
		if err := s.pool.CheckReserve(ctx, amount); err != nil {
			return err
		}

		claim, err = s.store.Create(ctx, models.NewClaim(policyID, claimant, amount, description, evidenceRef, now))
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist claim")
		}
		if err := s.policies.OpenClaim(ctx, policyID); err != nil {
			return err
		}

		score, err := s.reputation.Score(ctx, claimant)
		if err != nil {
			return err
		}
		if score >= s.autoApproveScore && amount <= s.smallClaimThreshold {
			decided, err := s.decide(ctx, claim.ID, true, true)
			if err != nil {
				// The pool moved between the reserve check and the
				// payout. Leave the claim pending for an adjudicator.
				if dErrors.HasCode(err, dErrors.CodeInsufficientFunds) {
					s.logger.WarnContext(ctx, "auto approval deferred, reserve exhausted", "claim_id", claim.ID)
					return nil
				}
				return err
			}
			claim = decided
			payout = decided.Amount
		}
		return nil
	})
	if err != nil {
		return models.Claim{}, err
	}

	s.emit(ctx, events.Event{
		Kind:      events.KindClaimSubmitted,
		Principal: claim.Claimant,
		PolicyID:  claim.PolicyID,
		ClaimID:   claim.ID,
		Amount:    claim.Amount,
		Note:      claim.Description,
	})
	if s.metrics != nil {
		s.metrics.Submitted.Inc()
	}
	if claim.Status == models.StatusApproved {
		s.settlePayout(ctx, claim.Claimant, payout)
		s.emitDecision(ctx, claim)
	}
	s.logger.InfoContext(ctx, "claim submitted",
		"log_type", "audit",
		"claim_id", claim.ID,
		"policy_id", claim.PolicyID,
		"claimant", claim.Claimant,
		"amount", claim.Amount,
		"auto_approved", claim.AutoApproved,
	)
	return claim, nil
}

// Adjudicate settles a pending claim. Approval re-checks the reserve
// at decision time; a pool that can no longer cover the amount leaves
// the claim pending and surfaces the reserve error.
func (s *Service) Adjudicate(ctx context.Context, id domain.ClaimID, approve bool) (models.Claim, error) {
	ctx, span := s.tracer.Start(ctx, "claims.Adjudicate",
		trace.WithAttributes(
			attribute.Int64("claim_id", int64(id)),
			attribute.Bool("approve", approve),
		))
	defer span.End()

	var decided models.Claim
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		decided, err = s.decide(ctx, id, approve, false)
		return err
	})
	if err != nil {
		return models.Claim{}, err
	}

	if decided.Status == models.StatusApproved {
		s.settlePayout(ctx, decided.Claimant, decided.Amount)
	}
	s.emitDecision(ctx, decided)
	s.logger.InfoContext(ctx, "claim adjudicated",
		"log_type", "audit",
		"claim_id", decided.ID,
		"approved", approve,
	)
	return decided, nil
}

// decide settles a pending claim one way or the other. Caller holds
// the ledger transaction. On approval the pool pays first so a reserve
// failure leaves both the claim and the policy untouched. The
// reputation award runs last and is advisory: a failed award never
// unwinds a payout that already happened.
func (s *Service) decide(ctx context.Context, id domain.ClaimID, approve bool, auto bool) (models.Claim, error) {
	claim, err := s.store.FindByID(ctx, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		return models.Claim{}, ErrClaimNotFound
	}
	if err != nil {
		return models.Claim{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read claim")
	}
	if err := claim.CanAdjudicate(); err != nil {
		return models.Claim{}, err
	}

	if approve {
		if err := s.pool.PayClaim(ctx, claim.Amount); err != nil {
			return models.Claim{}, err
		}
		if err := s.policies.SettleClaim(ctx, claim.PolicyID); err != nil {
			return models.Claim{}, err
		}
	} else {
		if err := s.policies.CloseClaim(ctx, claim.PolicyID); err != nil {
			return models.Claim{}, err
		}
	}

	now := requestcontext.Now(ctx)
	decided, err := s.store.Execute(ctx, id,
		func(c models.Claim) error { return c.CanAdjudicate() },
		func(c *models.Claim) { c.ApplyDecision(approve, auto, now) },
	)
	if err != nil {
		return models.Claim{}, err
	}

	if approve {
		if _, err := s.reputation.Award(ctx, claim.Claimant); err != nil {
			s.logger.WarnContext(ctx, "reputation award failed after payout",
				"claim_id", claim.ID,
				"claimant", claim.Claimant,
				"error", err,
			)
		}
	}

	if s.metrics != nil {
		s.metrics.Decisions.WithLabelValues(string(decided.Status)).Inc()
		if auto && approve {
			s.metrics.AutoApproved.Inc()
		}
		if approve {
			s.metrics.PayoutVolume.Add(float64(decided.Amount))
		}
	}
	return decided, nil
}

// Get reads one claim.
func (s *Service) Get(ctx context.Context, id domain.ClaimID) (models.Claim, error) {
	claim, err := s.store.FindByID(ctx, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		return models.Claim{}, ErrClaimNotFound
	}
	if err != nil {
		return models.Claim{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read claim")
	}
	return claim, nil
}

// ClaimsOf lists the principal's claims.
func (s *Service) ClaimsOf(ctx context.Context, claimant domain.Principal) ([]models.Claim, error) {
	claims, err := s.store.ListByClaimant(ctx, claimant)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list claims")
	}
	return claims, nil
}

func (s *Service) settlePayout(ctx context.Context, to domain.Principal, amount domain.Amount) {
	if amount <= 0 || s.custodian == nil {
		return
	}
	if err := s.custodian.Payout(ctx, to, amount); err != nil {
		s.logger.ErrorContext(ctx, "payout instruction failed", "claimant", to, "amount", amount, "error", err)
	}
}

func (s *Service) emitDecision(ctx context.Context, claim models.Claim) {
	s.emit(ctx, events.Event{
		Kind:      events.KindClaimProcessed,
		Principal: claim.Claimant,
		PolicyID:  claim.PolicyID,
		ClaimID:   claim.ID,
		Amount:    claim.Amount,
		Approved:  claim.Status == models.StatusApproved,
	})
}

func (s *Service) emit(ctx context.Context, event events.Event) {
	if s.eventsPub == nil {
		return
	}
	if err := s.eventsPub.Emit(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to emit claim event", "kind", event.Kind, "error", err)
	}
}
