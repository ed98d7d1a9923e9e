// Package projection computes the deterministic financial metrics a plan
// is built on. Everything here is a pure function of the submitted
// profile: no I/O, no shared state, identical inputs give identical
// outputs.
package projection

import (
	"fmt"

	"github.com/PlanwiseAI/planwise-mvp/engine/domain"
)

const (
	// AnnualReturn is the fixed growth rate applied to principal and
	// contributions.
	AnnualReturn = 0.065
	// ContributionRate is the share of income assumed saved each year.
	ContributionRate = 0.15
	// MinSavingsRate and MaxSavingsRate clamp the recommended rate.
	MinSavingsRate = 0.15
	MaxSavingsRate = 0.50
)

// benchmarkBuckets maps an age to a typical savings multiple of income.
// Ordered ascending; nearest-bucket lookup breaks ties toward the lower
// bucket.
var benchmarkBuckets = []struct {
	Age      int
	Multiple float64
}{
	{30, 1.0}, {35, 2.0}, {40, 3.0}, {45, 4.0},
	{50, 6.0}, {55, 7.0}, {60, 8.0}, {65, 10.0},
}

// Project derives Metrics from a profile. The profile must already have
// passed domain.ValidateProfile; the division guards here exist so a
// bypassed validation surfaces as an input error instead of Inf or NaN.
func Project(p domain.UserProfile) (domain.Metrics, error) {
	yearsLeft := p.RetirementAge - p.Age
	if yearsLeft <= 0 {
		return domain.Metrics{}, domain.NewValidationError(
			"retirementAge", fmt.Sprintf("%d", p.RetirementAge), domain.ErrRetirementNotAfter)
	}
	if p.Income <= 0 {
		return domain.Metrics{}, domain.NewValidationError(
			"income", fmt.Sprintf("%g", p.Income), domain.ErrZeroIncome)
	}

	contribution := p.Income * ContributionRate

	// Year-end compounding: each year the balance grows, then the
	// contribution lands. The final year's contribution earns nothing.
	projected := p.CurrentSavings
	for t := 0; t < yearsLeft; t++ {
		projected = projected*(1+AnnualReturn) + contribution
	}

	gap := p.SavingsGoal - projected

	required := (p.SavingsGoal - p.CurrentSavings) / (p.Income * float64(yearsLeft))
	required = clamp(required, MinSavingsRate, MaxSavingsRate)

	return domain.Metrics{
		YearsLeft:           yearsLeft,
		AnnualContribution:  contribution,
		ProjectedSavings:    projected,
		Gap:                 gap,
		RequiredSavingsRate: required,
		BenchmarkSavings:    p.Income * benchmarkMultiple(p.Age),
	}, nil
}

// benchmarkMultiple picks the bucket nearest to age by absolute
// difference, lower bucket on ties.
func benchmarkMultiple(age int) float64 {
	best := benchmarkBuckets[0]
	bestDiff := abs(age - best.Age)
	for _, b := range benchmarkBuckets[1:] {
		if d := abs(age - b.Age); d < bestDiff {
			best, bestDiff = b, d
		}
	}
	return best.Multiple
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
