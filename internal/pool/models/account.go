package models

import "nomadpool/pkg/domain"

// Account is the shared pool backing all payouts.
//
// Invariants:
//   - Balance never goes negative
//   - Balance only increases via premiums, top-ups and contributions, and
//     only decreases via approved payouts or administrative withdrawal
//   - A claim is admitted only while the post-payout balance would keep the
//     reserve floor intact (checked against the pre-claim balance)
type Account struct {
	Balance              domain.Amount `json:"balance"`
	TotalPoliciesCreated uint64        `json:"total_policies_created"`
	TotalClaimsPaid      domain.Amount `json:"total_claims_paid"`
}

// ReserveFloor is the fraction of the current balance that must survive any
// hypothetical payout.
func (a Account) ReserveFloor(reserveRatio int64) domain.Amount {
	return a.Balance * domain.Amount(reserveRatio) / 100
}

// CanAdmit reports whether a claim of the given amount passes the solvency
// check on the current balance. Equality admits: a payout that lands exactly
// on the floor is allowed.
func (a Account) CanAdmit(amount domain.Amount, reserveRatio int64) bool {
	if amount <= 0 {
		return false
	}
	return a.Balance >= amount+a.ReserveFloor(reserveRatio)
}

// Stats is the public snapshot of the pool.
type Stats struct {
	PoolBalance        domain.Amount `json:"pool_balance"`
	TotalPolicies      uint64        `json:"total_policies"`
	TotalClaimsPaid    domain.Amount `json:"total_claims_paid"`
	UtilizationPercent int64         `json:"utilization_percent"`
}
