package models

import (
	"nomadpool/pkg/domain"
	dErrors "nomadpool/pkg/domain-errors"
)

const (
	MinRiskScore = 1
	MaxRiskScore = 1000
)

// Profile is the per-location risk record.
//
// Invariants:
//   - RiskScore in [1,1000]
//   - MaxCoverage > 0
//   - AverageClaim >= 0
//
// Profiles are read-only to everything except registry administration.
// Updating a profile never touches existing policies; their price is frozen
// in the per-policy risk snapshot.
type Profile struct {
	Key          domain.LocationKey `json:"key"`
	RiskScore    int                `json:"risk_score"`
	MaxCoverage  domain.Amount      `json:"max_coverage"`
	AverageClaim domain.Amount      `json:"average_claim"`
	Active       bool               `json:"active"`
	RiskNote     string             `json:"risk_note"`
}

func NewProfile(key domain.LocationKey, riskScore int, maxCoverage, averageClaim domain.Amount, note string) (*Profile, error) {
	if key == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "location key cannot be empty")
	}
	if riskScore < MinRiskScore || riskScore > MaxRiskScore {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "risk score must be between 1 and 1000")
	}
	if maxCoverage <= 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "max coverage must be positive")
	}
	if averageClaim < 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "average claim cannot be negative")
	}
	return &Profile{
		Key:          key,
		RiskScore:    riskScore,
		MaxCoverage:  maxCoverage,
		AverageClaim: averageClaim,
		Active:       true,
		RiskNote:     note,
	}, nil
}
