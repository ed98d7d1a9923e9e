package plan

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/PlanwiseAI/planwise-mvp/engine/domain"
	"github.com/PlanwiseAI/planwise-mvp/pkg/resilience"
)

// DefaultGenerateTimeout bounds a single generation call.
const DefaultGenerateTimeout = 45 * time.Second

// LLM is the external generation capability.
type LLM interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// Generator produces plan narratives. Every failure path lands on the
// deterministic fallback; Narrative never returns an error.
type Generator struct {
	llm     LLM
	breaker *resilience.Breaker
	timeout time.Duration
	logger  *slog.Logger
}

// NewGenerator wires an LLM behind a circuit breaker. A nil llm means
// every plan uses the fallback.
func NewGenerator(llm LLM, breaker *resilience.Breaker, timeout time.Duration, logger *slog.Logger) *Generator {
	if breaker == nil {
		breaker = resilience.NewBreaker(resilience.DefaultBreakerOpts)
	}
	if timeout <= 0 {
		timeout = DefaultGenerateTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{llm: llm, breaker: breaker, timeout: timeout, logger: logger}
}

// Narrative generates the plan text for an assembled prompt. The
// returned source tag records whether generation answered or the
// fallback was used.
func (g *Generator) Narrative(ctx context.Context, prompt Prompt, profile domain.UserProfile, metrics domain.Metrics) (string, domain.PlanSource) {
	if g.llm == nil {
		return Fallback(profile, metrics), domain.SourceFallback
	}

	var out string
	err := g.breaker.Call(ctx, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, g.timeout)
		defer cancel()

		text, err := g.llm.Generate(ctx, prompt.System, prompt.User)
		if err != nil {
			return err
		}
		out = text
		return nil
	})
	if err != nil {
		g.logger.Warn("plan: generation failed, using fallback", "error", err)
		return Fallback(profile, metrics), domain.SourceFallback
	}
	if strings.TrimSpace(out) == "" {
		g.logger.Warn("plan: generation returned empty narrative, using fallback")
		return Fallback(profile, metrics), domain.SourceFallback
	}
	return out, domain.SourceGenerated
}
