// Package events defines the domain events the planner emits over NATS
// and a small publisher around them.
package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/PlanwiseAI/planwise-mvp/engine/domain"
	"github.com/PlanwiseAI/planwise-mvp/pkg/natsutil"
	"github.com/nats-io/nats.go"
)

const (
	// PlanCreatedSubject carries one event per produced retirement plan.
	PlanCreatedSubject = "planner.plan.created"
	// ProfileLoggedSubject carries one event per profile log append.
	ProfileLoggedSubject = "planner.profile.logged"
)

// PlanCreated describes a finished plan, without the narrative text.
type PlanCreated struct {
	Age                 int       `json:"age"`
	RetirementAge       int       `json:"retirementAge"`
	ProjectedSavings    float64   `json:"projectedSavings"`
	Gap                 float64   `json:"gap"`
	RequiredSavingsRate float64   `json:"requiredSavingsRate"`
	Source              string    `json:"source"`
	CreatedAt           time.Time `json:"createdAt"`
}

// ProfileLogged records that a profile entry was appended to the log.
type ProfileLogged struct {
	EntryID  string    `json:"entryId"`
	LoggedAt time.Time `json:"loggedAt"`
}

// Publisher emits planner events. A nil Publisher or a Publisher with
// no connection drops events, so callers never need to guard.
type Publisher struct {
	nc     *nats.Conn
	logger *slog.Logger
}

// NewPublisher wraps a NATS connection. nc may be nil.
func NewPublisher(nc *nats.Conn, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{nc: nc, logger: logger}
}

// PlanCreated publishes a PlanCreated event. Publish failures are
// logged, never returned, so the request path stays unaffected.
func (p *Publisher) PlanCreated(ctx context.Context, profile domain.UserProfile, result domain.PlanResult) {
	if p == nil || p.nc == nil {
		return
	}
	ev := PlanCreated{
		Age:                 profile.Age,
		RetirementAge:       profile.RetirementAge,
		ProjectedSavings:    result.Metrics.ProjectedSavings,
		Gap:                 result.Metrics.Gap,
		RequiredSavingsRate: result.Metrics.RequiredSavingsRate,
		Source:              string(result.Source),
		CreatedAt:           time.Now().UTC(),
	}
	if err := natsutil.Publish(ctx, p.nc, PlanCreatedSubject, ev); err != nil {
		p.logger.Warn("events: publish plan.created failed", "error", err)
	}
}

// ProfileLogged publishes a ProfileLogged event.
func (p *Publisher) ProfileLogged(ctx context.Context, entryID string) {
	if p == nil || p.nc == nil {
		return
	}
	ev := ProfileLogged{EntryID: entryID, LoggedAt: time.Now().UTC()}
	if err := natsutil.Publish(ctx, p.nc, ProfileLoggedSubject, ev); err != nil {
		p.logger.Warn("events: publish profile.logged failed", "error", err)
	}
}
