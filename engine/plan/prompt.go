// Package plan turns a validated profile into a retirement plan: it
// projects the finances, gathers grounding facts, assembles the
// generation prompt, and produces the narrative with a deterministic
// fallback when generation is unavailable.
package plan

import (
	"fmt"
	"strings"

	"github.com/PlanwiseAI/planwise-mvp/engine/domain"
	"github.com/PlanwiseAI/planwise-mvp/engine/graph"
	"github.com/PlanwiseAI/planwise-mvp/engine/retrieval"
	"github.com/PlanwiseAI/planwise-mvp/pkg/fn"
)

// SystemPrompt is the fixed role instruction sent with every request.
const SystemPrompt = "You are a retirement planning expert. Ground every recommendation " +
	"in the reference facts and the computed projection you are given. " +
	"Answer with a clear, encouraging plan in markdown."

const (
	// MortgageMateriality is the dollar threshold below which the
	// mortgage gets a dismissal sentence instead of a breakdown.
	MortgageMateriality = 10_000
	// MaxRetrievedLines caps the retrieved-facts section.
	MaxRetrievedLines = 10
)

// Prompt is an assembled generation request.
type Prompt struct {
	System string
	User   string
}

// PromptInput carries everything the assembler renders. Fields are
// typed so prompt shape changes break at compile time, not in output.
type PromptInput struct {
	Profile         domain.UserProfile
	Metrics         domain.Metrics
	RetrievedFacts  string // passages joined by retrieval.PassageSeparator, or the sentinel
	StructuredFacts string // pre-flattened "key: value" lines
	Concepts        []graph.Concept
}

// Assemble renders a PromptInput into a Prompt.
func Assemble(in PromptInput) Prompt {
	var b strings.Builder

	b.WriteString("## User profile\n")
	fmt.Fprintf(&b, "- Age: %d\n", in.Profile.Age)
	fmt.Fprintf(&b, "- Annual income: %s\n", formatUSD(in.Profile.Income))
	fmt.Fprintf(&b, "- Current savings: %s\n", formatUSD(in.Profile.CurrentSavings))
	fmt.Fprintf(&b, "- Target retirement age: %d\n", in.Profile.RetirementAge)
	fmt.Fprintf(&b, "- Savings goal: %s\n", formatUSD(in.Profile.SavingsGoal))
	if in.Profile.CurrentJob != "" {
		fmt.Fprintf(&b, "- Occupation: %s\n", in.Profile.CurrentJob)
	}
	if in.Profile.Spending > 0 {
		fmt.Fprintf(&b, "- Annual spending: %s\n", formatUSD(in.Profile.Spending))
	}

	b.WriteString("\n## Projection\n")
	fmt.Fprintf(&b, "- Years until retirement: %d\n", in.Metrics.YearsLeft)
	fmt.Fprintf(&b, "- Annual contribution (15%% of income): %s\n", formatUSD(in.Metrics.AnnualContribution))
	fmt.Fprintf(&b, "- Projected savings at retirement: %s\n", formatUSD(in.Metrics.ProjectedSavings))
	fmt.Fprintf(&b, "- Gap to goal: %s\n", formatUSD(in.Metrics.Gap))
	fmt.Fprintf(&b, "- Required savings rate: %.0f%% of income\n", in.Metrics.RequiredSavingsRate*100)
	fmt.Fprintf(&b, "- Benchmark savings for this age: %s\n", formatUSD(in.Metrics.BenchmarkSavings))

	writeMortgageSection(&b, in.Profile)

	if lines := retrievedLines(in.RetrievedFacts); len(lines) > 0 {
		b.WriteString("\n## Reference facts\n")
		for _, line := range lines {
			fmt.Fprintf(&b, "- %s\n", line)
		}
	}

	if in.StructuredFacts != "" {
		b.WriteString("\n## Market assumptions\n")
		b.WriteString(in.StructuredFacts)
		if !strings.HasSuffix(in.StructuredFacts, "\n") {
			b.WriteByte('\n')
		}
	}

	if len(in.Concepts) > 0 {
		b.WriteString("\n## Relevant planning concepts\n")
		for _, c := range in.Concepts {
			fmt.Fprintf(&b, "- %s: %s\n", c.Name, c.Summary)
		}
	}

	b.WriteString("\nWrite a personalized retirement plan for this user.\n")

	return Prompt{System: SystemPrompt, User: b.String()}
}

// writeMortgageSection renders mortgage details only when present and
// material. Small balances get a single dismissal sentence.
func writeMortgageSection(b *strings.Builder, p domain.UserProfile) {
	if !p.MortgageHeld() {
		return
	}
	b.WriteString("\n## Mortgage\n")
	if p.MortgageAmount < MortgageMateriality {
		b.WriteString("The remaining mortgage balance is not significant for this plan.\n")
		return
	}
	fmt.Fprintf(b, "- Outstanding balance: %s\n", formatUSD(p.MortgageAmount))
	if p.MortgageTerm > 0 {
		fmt.Fprintf(b, "- Remaining term: %d years\n", p.MortgageTerm)
	}
	if p.DownPayment > 0 {
		fmt.Fprintf(b, "- Down payment made: %s\n", formatUSD(p.DownPayment))
	}
}

// retrievedLines splits, deduplicates, and caps the retrieved facts.
// First occurrence wins; the empty-corpus sentinel renders nothing.
func retrievedLines(facts string) []string {
	if facts == "" || facts == retrieval.NoDocumentsIndexed {
		return nil
	}
	raw := strings.Split(facts, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimSpace(strings.Trim(l, "-"))
		l = strings.TrimSpace(l)
		if l != "" {
			lines = append(lines, l)
		}
	}
	lines = fn.Unique(lines)
	if len(lines) > MaxRetrievedLines {
		lines = lines[:MaxRetrievedLines]
	}
	return lines
}
