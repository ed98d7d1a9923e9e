package domain

import "fmt"

// Working-age bounds for a planning request. Anything outside is a typo,
// not a plan.
const (
	MinAge = 18
	MaxAge = 100
)

// ValidateProfile checks a UserProfile at pipeline entry. The projection
// divides by income and by years-to-retirement, so both must be positive
// here; a request that fails validation never reaches the generation call.
func ValidateProfile(p UserProfile) error {
	if p.Age < MinAge || p.Age > MaxAge {
		return NewValidationError("age", fmt.Sprintf("%d", p.Age), ErrAgeOutOfRange)
	}
	if p.RetirementAge <= p.Age {
		return NewValidationError("retirementAge", fmt.Sprintf("%d", p.RetirementAge), ErrRetirementNotAfter)
	}
	if p.Income <= 0 {
		return NewValidationError("income", fmt.Sprintf("%g", p.Income), ErrZeroIncome)
	}
	if p.CurrentSavings < 0 {
		return NewValidationError("currentSavings", fmt.Sprintf("%g", p.CurrentSavings), ErrNegativeSavings)
	}
	if p.SavingsGoal < 0 {
		return NewValidationError("retirementSavingsGoal", fmt.Sprintf("%g", p.SavingsGoal), ErrNegativeGoal)
	}
	if p.HasMortgage != "" && p.HasMortgage != "yes" && p.HasMortgage != "no" {
		return NewValidationError("hasMortgage", p.HasMortgage, ErrInvalidMortgageFlag)
	}
	return nil
}
