package graph

// DefaultConcepts is the baseline concept set loaded by Seed.
var DefaultConcepts = []Concept{
	{
		ID:       "compound-growth",
		Name:     "Compound growth",
		Category: "savings",
		Summary:  "Returns earned on prior returns make early contributions far more valuable than late ones.",
	},
	{
		ID:       "savings-rate",
		Name:     "Savings rate",
		Category: "savings",
		Summary:  "The share of income saved each year is the single biggest lever on retirement readiness.",
	},
	{
		ID:       "employer-match",
		Name:     "Employer match",
		Category: "savings",
		Summary:  "Matching contributions are an immediate guaranteed return and should be captured in full.",
	},
	{
		ID:       "mortgage-payoff",
		Name:     "Mortgage payoff timing",
		Category: "mortgage",
		Summary:  "Carrying a mortgage into retirement raises required income; payoff before the target date reduces the gap.",
	},
	{
		ID:       "refinancing",
		Name:     "Refinancing",
		Category: "mortgage",
		Summary:  "Refinancing at a lower rate frees monthly cash flow that can be redirected into retirement savings.",
	},
	{
		ID:       "premium-drag",
		Name:     "Insurance premium drag",
		Category: "insurance",
		Summary:  "Recurring premiums reduce investable income; coverage should be sized to actual exposure.",
	},
	{
		ID:       "diversification",
		Name:     "Diversification",
		Category: "investment",
		Summary:  "Spreading holdings across asset classes lowers the volatility of the projected balance.",
	},
	{
		ID:       "sequence-risk",
		Name:     "Sequence of returns risk",
		Category: "investment",
		Summary:  "Poor returns near the retirement date hurt more than the same returns earlier; derisk as the date approaches.",
	},
}

// DefaultRelations links the baseline concepts.
var DefaultRelations = []Relation{
	{From: "compound-growth", To: "savings-rate", Type: "RELATES_TO"},
	{From: "employer-match", To: "savings-rate", Type: "RELATES_TO"},
	{From: "refinancing", To: "mortgage-payoff", Type: "PRECEDES"},
	{From: "mortgage-payoff", To: "savings-rate", Type: "OFFSETS"},
	{From: "diversification", To: "sequence-risk", Type: "OFFSETS"},
	{From: "premium-drag", To: "savings-rate", Type: "OFFSETS"},
}
