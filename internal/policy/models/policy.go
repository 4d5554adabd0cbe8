package models

import (
	"time"

	dErrors "nomadpool/pkg/domain-errors"

	"nomadpool/pkg/domain"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusExpired   Status = "expired"
	StatusClaimed   Status = "claimed"
	StatusCancelled Status = "cancelled"
)

const (
	MinDurationDays = 1
	MaxDurationDays = 180
)

// Policy is a short-duration coverage agreement priced by location.
// RiskScoreAtIssue and DailyPremium are snapshots taken at creation
// (and refreshed on relocation) so later registry edits never reprice
// a running policy.
type Policy struct {
	ID               domain.PolicyID    `json:"id"`
	Owner            domain.Principal   `json:"owner"`
	Location         domain.LocationKey `json:"location"`
	Coverage         domain.Amount      `json:"coverage"`
	DailyPremium     domain.Amount      `json:"daily_premium"`
	RiskScoreAtIssue int                `json:"risk_score_at_issue"`
	StartTime        time.Time          `json:"start_time"`
	EndTime          time.Time          `json:"end_time"`
	Status           Status             `json:"status"`
	OpenClaim        bool               `json:"open_claim"`
	PremiumPaid      domain.Amount      `json:"premium_paid"`
}

func NewPolicy(owner domain.Principal, location domain.LocationKey, coverage domain.Amount, daily domain.Amount, risk int, start time.Time, durationDays int) Policy {
	return Policy{
		Owner:            owner,
		Location:         location,
		Coverage:         coverage,
		DailyPremium:     daily,
		RiskScoreAtIssue: risk,
		StartTime:        start,
		EndTime:          start.AddDate(0, 0, durationDays),
		Status:           StatusActive,
	}
}

// EffectiveStatus folds lazy expiry into the stored status: an active
// policy whose end time has passed reads as expired without a write.
func (p Policy) EffectiveStatus(now time.Time) Status {
	if p.Status == StatusActive && !now.Before(p.EndTime) {
		return StatusExpired
	}
	return p.Status
}

func (p Policy) IsActive(now time.Time) bool {
	return p.EffectiveStatus(now) == StatusActive
}

// RemainingDays floors partial days. A policy in its last partial day
// has zero remaining days.
func (p Policy) RemainingDays(now time.Time) int {
	if !now.Before(p.EndTime) {
		return 0
	}
	remaining := int(p.EndTime.Sub(now).Hours() / 24)
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (p Policy) CanRelocate(now time.Time) error {
	if !p.IsActive(now) {
		return dErrors.New(dErrors.CodeConflict, "policy is not active")
	}
	if p.OpenClaim {
		return dErrors.New(dErrors.CodeConflict, "policy has a pending claim")
	}
	return nil
}

func (p *Policy) ApplyRelocation(location domain.LocationKey, daily domain.Amount, risk int) {
	p.Location = location
	p.DailyPremium = daily
	p.RiskScoreAtIssue = risk
}

func (p Policy) CanCancel(now time.Time) error {
	if !p.IsActive(now) {
		return dErrors.New(dErrors.CodeConflict, "policy is not active")
	}
	if p.OpenClaim {
		return dErrors.New(dErrors.CodeConflict, "policy has a pending claim")
	}
	return nil
}

func (p *Policy) ApplyCancellation() {
	p.Status = StatusCancelled
}

func (p Policy) CanOpenClaim(now time.Time) error {
	if !p.IsActive(now) {
		return dErrors.New(dErrors.CodeConflict, "policy is not active")
	}
	if p.OpenClaim {
		return dErrors.New(dErrors.CodeConflict, "policy already has a pending claim")
	}
	return nil
}

func (p *Policy) ApplyClaimOpened() {
	p.OpenClaim = true
}

// ApplyClaimClosed releases the policy after a rejected claim; the
// policy stays active and can be claimed again.
func (p *Policy) ApplyClaimClosed() {
	p.OpenClaim = false
}

// ApplyClaimSettled terminates the policy after an approved payout.
func (p *Policy) ApplyClaimSettled() {
	p.OpenClaim = false
	p.Status = StatusClaimed
}
