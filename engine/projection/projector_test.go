package projection

import (
	"errors"
	"math"
	"testing"

	"github.com/PlanwiseAI/planwise-mvp/engine/domain"
)

func baseProfile() domain.UserProfile {
	return domain.UserProfile{
		Age:            35,
		CurrentSavings: 50000,
		Income:         75000,
		RetirementAge:  65,
		SavingsGoal:    1000000,
	}
}

func TestProject_ReferenceScenario(t *testing.T) {
	m, err := Project(baseProfile())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if m.YearsLeft != 30 {
		t.Errorf("years left: got %d, want 30", m.YearsLeft)
	}
	if m.AnnualContribution != 11250 {
		t.Errorf("contribution: got %f, want 11250", m.AnnualContribution)
	}

	// Closed form of the same compounding: principal grows for all 30
	// years, contributions form a geometric series.
	growth := math.Pow(1+AnnualReturn, 30)
	want := 50000*growth + 11250*(growth-1)/AnnualReturn
	if math.Abs(m.ProjectedSavings-want) > 1e-6*want {
		t.Errorf("projected savings: got %f, want %f", m.ProjectedSavings, want)
	}
	if math.Abs(m.Gap-(1000000-want)) > 1e-6*want {
		t.Errorf("gap: got %f, want %f", m.Gap, 1000000-want)
	}

	// (1000000-50000)/(75000*30) = 0.4222..., inside the clamp range.
	wantRate := 950000.0 / (75000.0 * 30.0)
	if math.Abs(m.RequiredSavingsRate-wantRate) > 1e-12 {
		t.Errorf("required rate: got %f, want %f", m.RequiredSavingsRate, wantRate)
	}

	// Age 35 hits the 2.0x bucket exactly.
	if m.BenchmarkSavings != 150000 {
		t.Errorf("benchmark: got %f, want 150000", m.BenchmarkSavings)
	}
}

func TestProject_Deterministic(t *testing.T) {
	first, err := Project(baseProfile())
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		again, _ := Project(baseProfile())
		if again != first {
			t.Fatalf("run %d: metrics differ: %+v vs %+v", i, again, first)
		}
	}
}

func TestProject_ClampLaw(t *testing.T) {
	cases := []struct {
		name string
		goal float64
		want float64
	}{
		{"zero goal clamps low", 0, MinSavingsRate},
		{"astronomical goal clamps high", 1e12, MaxSavingsRate},
		{"goal below savings clamps low", 10000, MinSavingsRate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := baseProfile()
			p.SavingsGoal = tc.goal
			m, err := Project(p)
			if err != nil {
				t.Fatal(err)
			}
			if m.RequiredSavingsRate != tc.want {
				t.Errorf("got %f, want %f", m.RequiredSavingsRate, tc.want)
			}
			if m.RequiredSavingsRate < MinSavingsRate || m.RequiredSavingsRate > MaxSavingsRate {
				t.Errorf("rate %f outside [%f, %f]", m.RequiredSavingsRate, MinSavingsRate, MaxSavingsRate)
			}
		})
	}
}

func TestProject_InvalidInputs(t *testing.T) {
	p := baseProfile()
	p.Age = 40
	p.RetirementAge = 30
	if _, err := Project(p); !errors.Is(err, domain.ErrRetirementNotAfter) {
		t.Errorf("negative years: expected ErrRetirementNotAfter, got %v", err)
	}

	p = baseProfile()
	p.Income = 0
	if _, err := Project(p); !errors.Is(err, domain.ErrZeroIncome) {
		t.Errorf("zero income: expected ErrZeroIncome, got %v", err)
	}
}

func TestProject_CompoundingOrder(t *testing.T) {
	// One year: principal compounds once, the single contribution does
	// not compound at all.
	p := baseProfile()
	p.Age = 64
	p.RetirementAge = 65
	m, err := Project(p)
	if err != nil {
		t.Fatal(err)
	}
	want := 50000*1.065 + 11250
	if math.Abs(m.ProjectedSavings-want) > 1e-9 {
		t.Errorf("got %f, want %f", m.ProjectedSavings, want)
	}
}

func TestBenchmarkMultiple(t *testing.T) {
	cases := []struct {
		age  int
		want float64
	}{
		{20, 1.0},  // below the table, nearest is 30
		{30, 1.0},  // exact bucket
		{33, 2.0},  // nearer to 35
		{37, 2.0},  // nearer to 35
		{47, 4.0},  // nearer to 45
		{58, 8.0},  // nearer to 60
		{65, 10.0}, // exact top bucket
		{80, 10.0}, // above the table
	}
	for _, tc := range cases {
		if got := benchmarkMultiple(tc.age); got != tc.want {
			t.Errorf("age %d: got %f, want %f", tc.age, got, tc.want)
		}
	}
}
