package plan

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/PlanwiseAI/planwise-mvp/engine/domain"
	"github.com/PlanwiseAI/planwise-mvp/engine/events"
	"github.com/PlanwiseAI/planwise-mvp/engine/graph"
	"github.com/PlanwiseAI/planwise-mvp/engine/projection"
	"github.com/PlanwiseAI/planwise-mvp/pkg/metrics"
)

// PlanningQuery is the fixed retrieval query every request grounds on.
const PlanningQuery = "How should I plan my retirement savings, investments and spending?"

const (
	// RetrieveK is how many candidates the index returns.
	RetrieveK = 8
	// RetrieveTopN is how many survive reranking into the prompt.
	RetrieveTopN = 4
)

// Retriever returns grounding passages for a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k, topN int) (string, error)
}

// ProfileLog appends raw submissions to the audit log.
type ProfileLog interface {
	Append(data json.RawMessage) (string, error)
}

// ConceptSource supplies graph concepts relevant to a profile.
type ConceptSource interface {
	ConceptsForProfile(ctx context.Context, p domain.UserProfile) ([]graph.Concept, error)
}

// Deps holds the external dependencies of the planning service.
// Retriever and Generator are required; the rest degrade gracefully
// when nil.
type Deps struct {
	Retriever       Retriever
	Generator       *Generator
	Profiles        ProfileLog
	Concepts        ConceptSource
	Events          *events.Publisher
	StructuredFacts string
	Logger          *slog.Logger
	Metrics         *metrics.Registry
}

// Service runs the per-request planning pipeline.
type Service struct {
	deps Deps

	fallbacks     *metrics.Counter
	retrievalTime *metrics.Histogram
	generateTime  *metrics.Histogram
}

// NewService creates a Service.
func NewService(deps Deps) *Service {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}
	return &Service{
		deps:          deps,
		fallbacks:     deps.Metrics.Counter("plan_fallbacks_total", "plans served by the deterministic fallback"),
		retrievalTime: deps.Metrics.Histogram("plan_retrieval_seconds", "retrieval latency", nil),
		generateTime:  deps.Metrics.Histogram("plan_generate_seconds", "generation latency including fallback", nil),
	}
}

// Plan validates the profile and runs projection, audit logging,
// retrieval, prompt assembly, and generation. Only validation and
// projection failures are returned; everything downstream degrades.
func (s *Service) Plan(ctx context.Context, profile domain.UserProfile) (domain.PlanResult, error) {
	if err := domain.ValidateProfile(profile); err != nil {
		return domain.PlanResult{}, err
	}

	m, err := projection.Project(profile)
	if err != nil {
		return domain.PlanResult{}, fmt.Errorf("plan: project: %w", err)
	}

	s.logProfile(ctx, profile)

	facts := s.retrieve(ctx)
	concepts := s.concepts(ctx, profile)

	prompt := Assemble(PromptInput{
		Profile:         profile,
		Metrics:         m,
		RetrievedFacts:  facts,
		StructuredFacts: s.deps.StructuredFacts,
		Concepts:        concepts,
	})

	start := time.Now()
	narrative, source := s.deps.Generator.Narrative(ctx, prompt, profile, m)
	s.generateTime.Since(start)
	if source == domain.SourceFallback {
		s.fallbacks.Inc()
	}

	result := domain.PlanResult{Narrative: narrative, Metrics: m, Source: source}
	s.deps.Events.PlanCreated(ctx, profile, result)
	return result, nil
}

// logProfile appends the raw submission to the profile log. Failures
// are logged and swallowed; the plan is still returned to the caller.
func (s *Service) logProfile(ctx context.Context, profile domain.UserProfile) {
	if s.deps.Profiles == nil {
		return
	}
	raw, err := json.Marshal(profile)
	if err != nil {
		s.deps.Logger.Error("plan: marshal profile for log", "error", err)
		return
	}
	id, err := s.deps.Profiles.Append(raw)
	if err != nil {
		s.deps.Logger.Error("plan: profile log append failed", "error", err)
		return
	}
	s.deps.Events.ProfileLogged(ctx, id)
}

// retrieve fetches grounding passages. A retrieval failure is treated
// like an empty corpus: the plan proceeds on structured facts alone.
func (s *Service) retrieve(ctx context.Context) string {
	if s.deps.Retriever == nil {
		return ""
	}
	start := time.Now()
	facts, err := s.deps.Retriever.Retrieve(ctx, PlanningQuery, RetrieveK, RetrieveTopN)
	s.retrievalTime.Since(start)
	if err != nil {
		s.deps.Logger.Warn("plan: retrieval failed, proceeding ungrounded", "error", err)
		return ""
	}
	return facts
}

// concepts pulls graph enrichment. Optional and never fatal.
func (s *Service) concepts(ctx context.Context, profile domain.UserProfile) []graph.Concept {
	if s.deps.Concepts == nil {
		return nil
	}
	items, err := s.deps.Concepts.ConceptsForProfile(ctx, profile)
	if err != nil {
		s.deps.Logger.Warn("plan: concept enrichment unavailable", "error", err)
		return nil
	}
	return items
}
