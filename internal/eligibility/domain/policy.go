package domain

import (
	"math"

	"github.com/coopfoods/ajomart/internal/config"
)

// Policy is one named eligibility strategy. The two implementations mirror
// the two rule sets the cooperative has operated under; exactly one is
// active at a time, selected by configuration.
type Policy interface {
	Name() string
	// LoanExposure converts loan principal exposure into the figure counted
	// against the member's limits.
	LoanExposure(principal int64, cfg config.PolicyConfig) int64
	Compute(bal Balances, exp Exposure, cfg config.PolicyConfig) Snapshot
}

// StrictPolicy counts loan exposure at principal and blocks Savings
// entirely while any loan is outstanding.
type StrictPolicy struct{}

func (StrictPolicy) Name() string { return config.PolicyStrict }

func (StrictPolicy) LoanExposure(principal int64, _ config.PolicyConfig) int64 {
	return principal
}

func (p StrictPolicy) Compute(bal Balances, exp Exposure, cfg config.PolicyConfig) Snapshot {
	loanExposure := p.LoanExposure(exp.Loan, cfg)
	outstanding := bal.Loans + loanExposure

	var savingsEligible int64
	if outstanding > 0 {
		savingsEligible = 0
	} else {
		savingsEligible = clampNonNegative(drawableSavings(bal.Savings, cfg.SavingsRatio) - exp.Savings)
	}

	return Snapshot{
		SavingsEligible:  savingsEligible,
		LoanEligible:     loanEligible(bal, outstanding, loanExposure, cfg),
		OutstandingLoans: outstanding,
		Exposure:         exp,
		Policy:           p.Name(),
	}
}

// FacilityPolicy counts loan exposure with interest and leaves a fixed
// savings facility drawable while loans are outstanding.
type FacilityPolicy struct{}

func (FacilityPolicy) Name() string { return config.PolicyFacility }

func (FacilityPolicy) LoanExposure(principal int64, cfg config.PolicyConfig) int64 {
	if principal <= 0 {
		return principal
	}
	interest := int64(math.Round(float64(principal) * cfg.InterestRate))
	return principal + interest
}

func (p FacilityPolicy) Compute(bal Balances, exp Exposure, cfg config.PolicyConfig) Snapshot {
	loanExposure := p.LoanExposure(exp.Loan, cfg)
	outstanding := bal.Loans + loanExposure

	var savingsEligible int64
	if outstanding > 0 {
		savingsEligible = cfg.SavingsFacility
	} else {
		savingsEligible = clampNonNegative(drawableSavings(bal.Savings, cfg.SavingsRatio) - exp.Savings)
	}

	return Snapshot{
		SavingsEligible:  savingsEligible,
		LoanEligible:     loanEligible(bal, outstanding, loanExposure, cfg),
		OutstandingLoans: outstanding,
		Exposure:         exp,
		Policy:           p.Name(),
	}
}

// PolicyByName resolves the configured policy.
func PolicyByName(name string) (Policy, error) {
	switch name {
	case config.PolicyStrict:
		return StrictPolicy{}, nil
	case config.PolicyFacility:
		return FacilityPolicy{}, nil
	default:
		return nil, ErrUnknownPolicy
	}
}

func loanEligible(bal Balances, outstanding, loanExposure int64, cfg config.PolicyConfig) int64 {
	base := bal.Savings * cfg.LoanMultiple
	if bal.GlobalLimit < base {
		base = bal.GlobalLimit
	}
	available := clampNonNegative(base - outstanding)

	eligible := available + cfg.LoanFacility
	if headroom := cfg.LoanCap - loanExposure; headroom < eligible {
		eligible = headroom
	}
	return clampNonNegative(eligible)
}

func drawableSavings(savings int64, ratio float64) int64 {
	if savings <= 0 {
		return 0
	}
	return int64(math.Floor(float64(savings) * ratio))
}

func clampNonNegative(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}
