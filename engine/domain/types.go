// Package domain defines the core planning types, constants, and the
// validation gate applied to every submitted profile before any projection
// or generation work happens.
package domain

// UserProfile is a submitted retirement-planning request. Only the first
// five fields are required; everything else refines the generated plan.
type UserProfile struct {
	Age            int     `json:"age"`
	CurrentSavings float64 `json:"currentSavings"`
	Income         float64 `json:"income"`
	RetirementAge  int     `json:"retirementAge"`
	SavingsGoal    float64 `json:"retirementSavingsGoal"`

	Gender             string  `json:"gender,omitempty"`
	CurrentJob         string  `json:"currentJob,omitempty"`
	Spending           float64 `json:"spending,omitempty"`
	HasMortgage        string  `json:"hasMortgage,omitempty"` // "yes" or "no", default "no"
	MortgageAmount     float64 `json:"mortgageAmount,omitempty"`
	MortgageTerm       int     `json:"mortgageTerm,omitempty"`
	DownPayment        float64 `json:"downPayment,omitempty"`
	DownPaymentPercent float64 `json:"downPaymentPercent,omitempty"`
	Assets             float64 `json:"assets,omitempty"`
	HasInsurance       string  `json:"hasInsurance,omitempty"`
	InsurancePayment   float64 `json:"insurancePayment,omitempty"`
	HasInvestment      string  `json:"hasInvestment,omitempty"`
	InvestmentAmount   float64 `json:"investmentAmount,omitempty"`
}

// MortgageHeld reports whether the profile declares an active mortgage.
func (p UserProfile) MortgageHeld() bool {
	return p.HasMortgage == "yes"
}

// Metrics is the deterministic projection derived from a UserProfile.
// Recomputed per request, never persisted on its own.
type Metrics struct {
	YearsLeft           int     `json:"years_left"`
	AnnualContribution  float64 `json:"annual_contribution"`
	ProjectedSavings    float64 `json:"projected_savings"`
	Gap                 float64 `json:"gap"`
	RequiredSavingsRate float64 `json:"required_savings_rate"`
	BenchmarkSavings    float64 `json:"benchmark_savings"`
}

// PlanSource tags how a plan narrative was produced.
type PlanSource string

const (
	// SourceGenerated means the external generation capability answered.
	SourceGenerated PlanSource = "generated"
	// SourceFallback means the deterministic template produced the plan.
	SourceFallback PlanSource = "fallback"
)

// PlanResult is the request-scoped outcome of the planning pipeline.
type PlanResult struct {
	Narrative string     `json:"plan"`
	Metrics   Metrics    `json:"metrics"`
	Source    PlanSource `json:"source"`
}
