package neo4j

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"debategraph/src/domain"
)

// MirrorStore é o espelho opcional em banco de grafos nativo. Recebe o
// mesmo CRUD do materializador e nunca é fonte de leitura: o log relacional
// permanece autoritativo.
type MirrorStore struct {
	driver neo4j.DriverWithContext
}

func NewMirrorStore(driver neo4j.DriverWithContext) *MirrorStore {
	return &MirrorStore{driver: driver}
}

func NewDriver(uri, username, password string) (neo4j.DriverWithContext, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("neo4j.NewDriver - failed to create driver: %w", err)
	}
	return driver, nil
}

func (m *MirrorStore) Close() error {
	return m.driver.Close(context.Background())
}

func (m *MirrorStore) CreateNode(ctx context.Context, node domain.Node) error {
	return m.upsertNode(ctx, node)
}

func (m *MirrorStore) UpdateNode(ctx context.Context, node domain.Node) error {
	return m.upsertNode(ctx, node)
}

func (m *MirrorStore) upsertNode(ctx context.Context, node domain.Node) error {
	session := m.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	props, err := json.Marshal(node.Properties)
	if err != nil {
		return fmt.Errorf("MirrorStore.upsertNode - failed to marshal properties: %w", err)
	}

	query := `
		MERGE (n:Entity {id: $id})
		SET n.type = $type,
		    n.properties = $props,
		    n.updated_at = datetime()
	`

	_, err = session.Run(ctx, query, map[string]interface{}{
		"id":    node.ID,
		"type":  node.Type,
		"props": string(props),
	})
	if err != nil {
		return fmt.Errorf("MirrorStore.upsertNode - query failed: %w", err)
	}

	return nil
}

func (m *MirrorStore) DeleteNode(ctx context.Context, id string) error {
	session := m.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	query := `
		MATCH (n:Entity {id: $id})
		DETACH DELETE n
	`

	_, err := session.Run(ctx, query, map[string]interface{}{"id": id})
	if err != nil {
		return fmt.Errorf("MirrorStore.DeleteNode - query failed: %w", err)
	}

	return nil
}

func (m *MirrorStore) CreateEdge(ctx context.Context, edge domain.Edge) error {
	return m.upsertEdge(ctx, edge)
}

func (m *MirrorStore) UpdateEdge(ctx context.Context, edge domain.Edge) error {
	return m.upsertEdge(ctx, edge)
}

func (m *MirrorStore) upsertEdge(ctx context.Context, edge domain.Edge) error {
	session := m.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	props, err := json.Marshal(edge.Properties)
	if err != nil {
		return fmt.Errorf("MirrorStore.upsertEdge - failed to marshal properties: %w", err)
	}

	// O tipo do relacionamento não pode ser parametrizado em Cypher; fica
	// como propriedade do relacionamento genérico RELATES_TO.
	query := `
		MATCH (a:Entity {id: $source})
		MATCH (b:Entity {id: $target})
		MERGE (a)-[r:RELATES_TO {type: $type}]->(b)
		SET r.properties = $props,
		    r.updated_at = datetime()
	`

	_, err = session.Run(ctx, query, map[string]interface{}{
		"source": edge.Source,
		"target": edge.Target,
		"type":   edge.Type,
		"props":  string(props),
	})
	if err != nil {
		return fmt.Errorf("MirrorStore.upsertEdge - query failed: %w", err)
	}

	return nil
}

func (m *MirrorStore) DeleteEdge(ctx context.Context, key domain.EdgeKey) error {
	session := m.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	query := `
		MATCH (a:Entity {id: $source})-[r:RELATES_TO {type: $type}]->(b:Entity {id: $target})
		DELETE r
	`

	_, err := session.Run(ctx, query, map[string]interface{}{
		"source": key.Source,
		"target": key.Target,
		"type":   key.Type,
	})
	if err != nil {
		return fmt.Errorf("MirrorStore.DeleteEdge - query failed: %w", err)
	}

	return nil
}

func (m *MirrorStore) Reset(ctx context.Context) error {
	session := m.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	query := `
		MATCH (n:Entity)
		DETACH DELETE n
	`

	if _, err := session.Run(ctx, query, map[string]interface{}{}); err != nil {
		return fmt.Errorf("MirrorStore.Reset - query failed: %w", err)
	}

	return nil
}
