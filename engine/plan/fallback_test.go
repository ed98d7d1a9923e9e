package plan

import (
	"strings"
	"testing"
)

func TestFallbackCompleteness(t *testing.T) {
	p := baseProfile()
	m := baseMetrics()

	out := Fallback(p, m)
	if strings.TrimSpace(out) == "" {
		t.Fatal("fallback produced empty narrative")
	}
	for _, want := range []string{
		"age 35",
		"$75,000",    // income as currency
		"$1,250,000", // projected savings as currency
		"$1,000,000", // goal as currency
	} {
		if !strings.Contains(out, want) {
			t.Errorf("fallback missing %q\n%s", want, out)
		}
	}
}

func TestFallbackBenchmarkClosing(t *testing.T) {
	p := baseProfile()
	m := baseMetrics()

	m.BenchmarkSavings = 40000 // savings 50000 >= benchmark
	if out := Fallback(p, m); !strings.Contains(out, "ahead of the benchmark") {
		t.Errorf("expected ahead closing:\n%s", out)
	}

	m.BenchmarkSavings = 150000
	if out := Fallback(p, m); !strings.Contains(out, "behind the benchmark") {
		t.Errorf("expected behind closing:\n%s", out)
	}
}

func TestFallbackGapBranches(t *testing.T) {
	p := baseProfile()
	m := baseMetrics()

	m.Gap = 250000
	if out := Fallback(p, m); !strings.Contains(out, "Shortfall against your goal: $250,000") {
		t.Errorf("expected shortfall line:\n%s", out)
	}

	m.Gap = -250000
	if out := Fallback(p, m); !strings.Contains(out, "Surplus over your goal: $250,000") {
		t.Errorf("expected surplus line:\n%s", out)
	}
}

func TestFallbackDeterminism(t *testing.T) {
	p := baseProfile()
	m := baseMetrics()
	if Fallback(p, m) != Fallback(p, m) {
		t.Fatal("fallback output differs across calls for identical inputs")
	}
}

func TestFormatUSD(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0"},
		{5, "$5"},
		{999, "$999"},
		{1000, "$1,000"},
		{11250, "$11,250"},
		{1234567.89, "$1,234,568"},
		{-250000, "-$250,000"},
	}
	for _, tt := range tests {
		if got := formatUSD(tt.in); got != tt.want {
			t.Errorf("formatUSD(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
