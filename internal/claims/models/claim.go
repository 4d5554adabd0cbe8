package models

import (
	"time"

	dErrors "nomadpool/pkg/domain-errors"

	"nomadpool/pkg/domain"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Claim is a request to pay out against an active policy. At most one
// pending claim exists per policy; the policy module enforces that.
type Claim struct {
	ID           domain.ClaimID   `json:"id"`
	PolicyID     domain.PolicyID  `json:"policy_id"`
	Claimant     domain.Principal `json:"claimant"`
	Amount       domain.Amount    `json:"amount"`
	Status       Status           `json:"status"`
	AutoApproved bool             `json:"auto_approved"`
	Description  string           `json:"description,omitempty"`
	EvidenceRef  string           `json:"evidence_ref,omitempty"`
	SubmittedAt  time.Time        `json:"submitted_at"`
	ProcessedAt  *time.Time       `json:"processed_at,omitempty"`
}

func NewClaim(policyID domain.PolicyID, claimant domain.Principal, amount domain.Amount, description, evidenceRef string, now time.Time) Claim {
	return Claim{
		PolicyID:    policyID,
		Claimant:    claimant,
		Amount:      amount,
		Status:      StatusPending,
		Description: description,
		EvidenceRef: evidenceRef,
		SubmittedAt: now,
	}
}

func (c Claim) CanAdjudicate() error {
	if c.Status != StatusPending {
		return dErrors.New(dErrors.CodeConflict, "claim has already been processed")
	}
	return nil
}

func (c *Claim) ApplyDecision(approved bool, auto bool, now time.Time) {
	if approved {
		c.Status = StatusApproved
	} else {
		c.Status = StatusRejected
	}
	c.AutoApproved = auto
	processed := now
	c.ProcessedAt = &processed
}
