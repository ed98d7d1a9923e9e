package plan

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/PlanwiseAI/planwise-mvp/engine/domain"
)

// Fallback renders the deterministic plan used whenever generation is
// unavailable. It is a complete plan, not an apology: same metrics,
// fixed wording, always non-empty.
func Fallback(p domain.UserProfile, m domain.Metrics) string {
	var b strings.Builder

	b.WriteString("# Your Retirement Plan\n\n")
	fmt.Fprintf(&b,
		"At age %d with an annual income of %s, you have %d years until your target retirement age of %d.\n\n",
		p.Age, formatUSD(p.Income), m.YearsLeft, p.RetirementAge)

	b.WriteString("## Projection\n\n")
	fmt.Fprintf(&b, "- Current savings: %s\n", formatUSD(p.CurrentSavings))
	fmt.Fprintf(&b, "- Annual contribution at a 15%% savings rate: %s\n", formatUSD(m.AnnualContribution))
	fmt.Fprintf(&b, "- Projected savings at retirement: %s\n", formatUSD(m.ProjectedSavings))
	fmt.Fprintf(&b, "- Savings goal: %s\n", formatUSD(p.SavingsGoal))
	if m.Gap > 0 {
		fmt.Fprintf(&b, "- Shortfall against your goal: %s\n", formatUSD(m.Gap))
		fmt.Fprintf(&b, "- Savings rate needed to close it: %.0f%% of income\n", m.RequiredSavingsRate*100)
	} else {
		fmt.Fprintf(&b, "- Surplus over your goal: %s\n", formatUSD(-m.Gap))
	}

	b.WriteString("\n## How you compare\n\n")
	fmt.Fprintf(&b,
		"Typical savings for someone your age is about %s.\n\n",
		formatUSD(m.BenchmarkSavings))

	if p.CurrentSavings >= m.BenchmarkSavings {
		b.WriteString("You are ahead of the benchmark for your age. Keep your current contributions " +
			"going and revisit this plan after any major income change.\n")
	} else {
		b.WriteString("You are behind the benchmark for your age. Raising your savings rate now has " +
			"outsized impact because every extra dollar compounds until retirement.\n")
	}

	return b.String()
}

// formatUSD renders a dollar amount with thousands separators and no
// cents, e.g. 1234567.89 -> "$1,234,568".
func formatUSD(v float64) string {
	neg := v < 0
	n := int64(math.Round(math.Abs(v)))
	s := strconv.FormatInt(n, 10)

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	lead := len(s) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(s[:lead])
	for i := lead; i < len(s); i += 3 {
		b.WriteByte(',')
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
