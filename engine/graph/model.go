// Package graph provides Neo4j knowledge graph operations for
// retirement-planning concepts. Plans are enriched with concepts
// related to the submitted profile; the graph is optional and every
// failure degrades to an unenriched plan.
package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
)

// Concept is a retirement-planning topic node.
type Concept struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"` // savings, mortgage, insurance, investment
	Summary  string `json:"summary"`
}

// Relation links two concepts.
type Relation struct {
	From string `json:"from"`
	To   string `json:"to"`
	Type string `json:"type"` // RELATES_TO, PRECEDES, OFFSETS
}

// CypherResult is the subset of neo4j.ResultWithContext the store reads.
type CypherResult interface {
	Next(ctx context.Context) bool
	Record() *neo4j.Record
	Err() error
}

// CypherRunner runs a single query.
type CypherRunner interface {
	Run(ctx context.Context, cypher string, params map[string]any) (CypherResult, error)
}

// CypherSession is the session surface the store needs. The indirection
// keeps the store testable without a live Neo4j.
type CypherSession interface {
	CypherRunner
	ExecuteWrite(ctx context.Context, work func(tx CypherRunner) (any, error)) (any, error)
	Close(ctx context.Context) error
}

// SessionOpener opens sessions.
type SessionOpener interface {
	OpenSession(ctx context.Context) CypherSession
}

// driverOpener adapts a real neo4j driver to SessionOpener.
type driverOpener struct {
	driver neo4j.DriverWithContext
}

func (o *driverOpener) OpenSession(ctx context.Context) CypherSession {
	return &driverSession{sess: o.driver.NewSession(ctx, neo4j.SessionConfig{})}
}

type driverSession struct {
	sess neo4j.SessionWithContext
}

func (s *driverSession) Run(ctx context.Context, cypher string, params map[string]any) (CypherResult, error) {
	return s.sess.Run(ctx, cypher, params)
}

func (s *driverSession) ExecuteWrite(ctx context.Context, work func(tx CypherRunner) (any, error)) (any, error) {
	return s.sess.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return work(&txRunner{tx: tx})
	})
}

func (s *driverSession) Close(ctx context.Context) error {
	return s.sess.Close(ctx)
}

type txRunner struct {
	tx neo4j.ManagedTransaction
}

func (r *txRunner) Run(ctx context.Context, cypher string, params map[string]any) (CypherResult, error) {
	return r.tx.Run(ctx, cypher, params)
}

func conceptFromProps(props map[string]any) Concept {
	return Concept{
		ID:       strProp(props, "id"),
		Name:     strProp(props, "name"),
		Category: strProp(props, "category"),
		Summary:  strProp(props, "summary"),
	}
}

func strProp(props map[string]any, key string) string {
	if v, ok := props[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func collectConcepts(ctx context.Context, result CypherResult) ([]Concept, error) {
	var items []Concept
	for result.Next(ctx) {
		node, _, err := neo4j.GetRecordValue[dbtype.Node](result.Record(), "n")
		if err != nil {
			return nil, err
		}
		items = append(items, conceptFromProps(node.Props))
	}
	if err := result.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
