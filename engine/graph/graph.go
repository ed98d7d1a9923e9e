package graph

import (
	"context"
	"fmt"

	"github.com/PlanwiseAI/planwise-mvp/engine/domain"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// ConceptStore provides concept graph operations.
type ConceptStore struct {
	opener SessionOpener
}

// New creates a ConceptStore backed by a Neo4j driver.
func New(driver neo4j.DriverWithContext) *ConceptStore {
	return &ConceptStore{opener: &driverOpener{driver: driver}}
}

// NewWithOpener creates a ConceptStore with a custom session opener.
func NewWithOpener(opener SessionOpener) *ConceptStore {
	return &ConceptStore{opener: opener}
}

// SaveConcept creates or updates a concept node.
func (g *ConceptStore) SaveConcept(ctx context.Context, c Concept) error {
	sess := g.opener.OpenSession(ctx)
	defer sess.Close(ctx)

	cypher := `MERGE (n:Concept {id: $id})
	           SET n.name = $name, n.category = $category, n.summary = $summary`
	_, err := sess.Run(ctx, cypher, map[string]any{
		"id":       c.ID,
		"name":     c.Name,
		"category": c.Category,
		"summary":  c.Summary,
	})
	return err
}

// SaveRelation creates or updates a relation between two concepts.
func (g *ConceptStore) SaveRelation(ctx context.Context, r Relation) error {
	sess := g.opener.OpenSession(ctx)
	defer sess.Close(ctx)

	cypher := fmt.Sprintf(
		`MATCH (a:Concept {id: $from}), (b:Concept {id: $to})
		 MERGE (a)-[:%s]->(b)`,
		sanitizeRelType(r.Type),
	)
	_, err := sess.Run(ctx, cypher, map[string]any{
		"from": r.From,
		"to":   r.To,
	})
	return err
}

// ByCategory returns all concepts in a category.
func (g *ConceptStore) ByCategory(ctx context.Context, category string) ([]Concept, error) {
	sess := g.opener.OpenSession(ctx)
	defer sess.Close(ctx)

	cypher := `MATCH (n:Concept {category: $category}) RETURN n ORDER BY n.id`
	result, err := sess.Run(ctx, cypher, map[string]any{"category": category})
	if err != nil {
		return nil, err
	}
	return collectConcepts(ctx, result)
}

// Related returns concepts within one hop of the given concept.
func (g *ConceptStore) Related(ctx context.Context, id string) ([]Concept, error) {
	sess := g.opener.OpenSession(ctx)
	defer sess.Close(ctx)

	cypher := `MATCH (c:Concept {id: $id})-[]-(n:Concept)
	           WHERE n.id <> $id
	           RETURN DISTINCT n ORDER BY n.id`
	result, err := sess.Run(ctx, cypher, map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	return collectConcepts(ctx, result)
}

// ConceptsForProfile returns the concepts relevant to a profile: the
// savings category always, plus categories switched on by profile flags.
func (g *ConceptStore) ConceptsForProfile(ctx context.Context, p domain.UserProfile) ([]Concept, error) {
	categories := []string{"savings"}
	if p.MortgageHeld() {
		categories = append(categories, "mortgage")
	}
	if p.HasInsurance == "yes" {
		categories = append(categories, "insurance")
	}
	if p.HasInvestment == "yes" {
		categories = append(categories, "investment")
	}

	var out []Concept
	for _, cat := range categories {
		items, err := g.ByCategory(ctx, cat)
		if err != nil {
			return nil, fmt.Errorf("graph: concepts for %s: %w", cat, err)
		}
		out = append(out, items...)
	}
	return out, nil
}

// Seed writes the default concept set in one transaction. Safe to run
// repeatedly.
func (g *ConceptStore) Seed(ctx context.Context) error {
	sess := g.opener.OpenSession(ctx)
	defer sess.Close(ctx)

	_, err := sess.ExecuteWrite(ctx, func(tx CypherRunner) (any, error) {
		for _, c := range DefaultConcepts {
			cypher := `MERGE (n:Concept {id: $id})
			           SET n.name = $name, n.category = $category, n.summary = $summary`
			if _, err := tx.Run(ctx, cypher, map[string]any{
				"id":       c.ID,
				"name":     c.Name,
				"category": c.Category,
				"summary":  c.Summary,
			}); err != nil {
				return nil, err
			}
		}
		for _, r := range DefaultRelations {
			cypher := fmt.Sprintf(
				`MATCH (a:Concept {id: $from}), (b:Concept {id: $to})
				 MERGE (a)-[:%s]->(b)`,
				sanitizeRelType(r.Type),
			)
			if _, err := tx.Run(ctx, cypher, map[string]any{
				"from": r.From,
				"to":   r.To,
			}); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	return err
}

// sanitizeRelType keeps the relationship type a valid Cypher identifier.
func sanitizeRelType(t string) string {
	safe := make([]byte, 0, len(t))
	for i := range t {
		c := t[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_' {
			safe = append(safe, c)
		}
	}
	if len(safe) == 0 {
		return "RELATES_TO"
	}
	return string(safe)
}
