package events

import (
	"time"

	"nomadpool/pkg/domain"
)

// Kind names a domain event for external auditing and indexing.
type Kind string

const (
	KindPolicyCreated    Kind = "policy_created"
	KindLocationUpdated  Kind = "location_updated"
	KindClaimSubmitted   Kind = "claim_submitted"
	KindClaimProcessed   Kind = "claim_processed"
	KindPoolContribution Kind = "pool_contribution"
)

// Event is emitted from domain logic after a transaction commits. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        string           `json:"id"`
	Kind      Kind             `json:"kind"`
	Timestamp time.Time        `json:"timestamp"`
	Principal domain.Principal `json:"principal"`

	PolicyID domain.PolicyID `json:"policy_id,omitempty"`
	ClaimID  domain.ClaimID  `json:"claim_id,omitempty"`

	// Amount carries the event's monetary fact: total premium for
	// policy_created, premium adjustment for location_updated, requested
	// amount for claim_submitted, payout for an approved claim_processed,
	// contribution amount for pool_contribution.
	Amount   domain.Amount `json:"amount,omitempty"`
	Approved bool          `json:"approved,omitempty"`
	Note     string        `json:"note,omitempty"`
}
