package services

import (
	"context"
	"fmt"
	"regexp"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"safebill-backend/internal/config"
	"safebill-backend/internal/logger"
	"safebill-backend/models"
)

var entityTokenRegex = regexp.MustCompile(`[A-Za-z0-9]+`)

// maxEntities caps how many question tokens are used for graph lookups.
// Tokens are taken in reading order, not ranked.
const maxEntities = 5

// GraphService augments retrieval with entity-relationship edges from a
// graph database. A nil driver means the backend is unconfigured; lookups
// degrade to an empty relation list.
type GraphService struct {
	driver    neo4j.DriverWithContext
	edgeLimit int
}

// NewGraphService connects to the graph backend when configured. A missing
// configuration is not an error.
func NewGraphService(cfg *config.Config) (*GraphService, error) {
	gs := &GraphService{edgeLimit: cfg.GraphEdgeLimit}
	if gs.edgeLimit <= 0 {
		gs.edgeLimit = 10
	}

	if !cfg.GraphConfigured() {
		return gs, nil
	}

	driver, err := neo4j.NewDriverWithContext(cfg.Neo4jURI,
		neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPassword, ""))
	if err != nil {
		return nil, fmt.Errorf("create graph driver: %w", err)
	}
	gs.driver = driver
	return gs, nil
}

// ExtractEntities pulls candidate entity tokens from a question:
// alphanumeric runs longer than 3 characters, capped to the first 5 in
// left-to-right order.
func ExtractEntities(question string) []string {
	tokens := entityTokenRegex.FindAllString(question, -1)
	entities := make([]string, 0, maxEntities)
	for _, token := range tokens {
		if len(token) <= 3 {
			continue
		}
		entities = append(entities, token)
		if len(entities) == maxEntities {
			break
		}
	}
	return entities
}

// FetchRelated returns edges where any entity matches either endpoint,
// capped at the configured limit across the whole batch. Backend trouble
// yields an empty list, never a hard failure.
func (gs *GraphService) FetchRelated(ctx context.Context, entities []string) []models.GraphRelation {
	if gs.driver == nil {
		logger.Warn("Graph DB not configured; skipping graph augmentation")
		return []models.GraphRelation{}
	}
	if len(entities) == 0 {
		return []models.GraphRelation{}
	}

	session := gs.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	query := `
		MATCH (n)-[r]->(m)
		WHERE n.name IN $entities OR m.name IN $entities
		RETURN n.name AS from, type(r) AS relation, m.name AS to
		LIMIT $limit
	`
	params := map[string]any{
		"entities": entities,
		"limit":    gs.edgeLimit,
	}

	result, err := session.Run(ctx, query, params)
	if err != nil {
		logger.Warn("Graph query failed", "error", err)
		return []models.GraphRelation{}
	}

	relations := []models.GraphRelation{}
	for result.Next(ctx) {
		record := result.Record()
		relations = append(relations, models.GraphRelation{
			From:     stringValue(record, "from"),
			Relation: stringValue(record, "relation"),
			To:       stringValue(record, "to"),
		})
	}
	if err := result.Err(); err != nil {
		logger.Warn("Graph result iteration failed", "error", err)
		return []models.GraphRelation{}
	}

	return relations
}

func stringValue(record *neo4j.Record, key string) string {
	value, ok := record.Get(key)
	if !ok || value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", value)
}

// Close releases the graph driver, if one was configured.
func (gs *GraphService) Close(ctx context.Context) error {
	if gs.driver == nil {
		return nil
	}
	return gs.driver.Close(ctx)
}
