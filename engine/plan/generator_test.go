package plan

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/PlanwiseAI/planwise-mvp/engine/domain"
	"github.com/PlanwiseAI/planwise-mvp/pkg/resilience"
)

type mockLLM struct {
	out   string
	err   error
	calls int
}

func (m *mockLLM) Generate(_ context.Context, _, _ string) (string, error) {
	m.calls++
	return m.out, m.err
}

func TestNarrativeGenerated(t *testing.T) {
	llm := &mockLLM{out: "# A fine plan"}
	g := NewGenerator(llm, nil, time.Second, nil)

	got, source := g.Narrative(context.Background(), Prompt{}, baseProfile(), baseMetrics())
	if source != domain.SourceGenerated {
		t.Fatalf("source = %s, want generated", source)
	}
	if got != "# A fine plan" {
		t.Fatalf("narrative = %q", got)
	}
}

func TestNarrativeFallbackOnError(t *testing.T) {
	llm := &mockLLM{err: errors.New("model unreachable")}
	g := NewGenerator(llm, nil, time.Second, nil)

	got, source := g.Narrative(context.Background(), Prompt{}, baseProfile(), baseMetrics())
	if source != domain.SourceFallback {
		t.Fatalf("source = %s, want fallback", source)
	}
	if !strings.Contains(got, "Your Retirement Plan") {
		t.Fatalf("fallback narrative missing:\n%s", got)
	}
}

func TestNarrativeFallbackOnEmptyOutput(t *testing.T) {
	g := NewGenerator(&mockLLM{out: "   \n"}, nil, time.Second, nil)

	got, source := g.Narrative(context.Background(), Prompt{}, baseProfile(), baseMetrics())
	if source != domain.SourceFallback {
		t.Fatalf("source = %s, want fallback", source)
	}
	if got == "" {
		t.Fatal("fallback narrative empty")
	}
}

func TestNarrativeNilLLM(t *testing.T) {
	g := NewGenerator(nil, nil, time.Second, nil)

	_, source := g.Narrative(context.Background(), Prompt{}, baseProfile(), baseMetrics())
	if source != domain.SourceFallback {
		t.Fatalf("source = %s, want fallback", source)
	}
}

func TestNarrativeBreakerShortCircuits(t *testing.T) {
	llm := &mockLLM{err: errors.New("down")}
	breaker := resilience.NewBreaker(resilience.BreakerOpts{
		FailThreshold: 2,
		Timeout:       time.Minute,
		HalfOpenMax:   1,
	})
	g := NewGenerator(llm, breaker, time.Second, nil)

	for i := 0; i < 5; i++ {
		_, source := g.Narrative(context.Background(), Prompt{}, baseProfile(), baseMetrics())
		if source != domain.SourceFallback {
			t.Fatalf("call %d: source = %s, want fallback", i, source)
		}
	}
	if llm.calls != 2 {
		t.Fatalf("llm called %d times, want 2 before the breaker opened", llm.calls)
	}
}
