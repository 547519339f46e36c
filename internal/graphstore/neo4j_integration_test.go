package graphstore

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestNeo4jStoreIntegration exercises the real driver against a disposable
// Neo4j container. Set KGRAPH_NEO4J_INTEGRATION=1 to run it.
func TestNeo4jStoreIntegration(t *testing.T) {
	if os.Getenv("KGRAPH_NEO4J_INTEGRATION") == "" {
		t.Skip("set KGRAPH_NEO4J_INTEGRATION=1 to run Neo4j integration tests")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "neo4j:5",
			ExposedPorts: []string{"7687/tcp"},
			Env: map[string]string{
				"NEO4J_AUTH": "neo4j/integration",
			},
			WaitingFor: wait.ForLog("Started.").WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	require.NoError(t, err)
	defer func() {
		_ = container.Terminate(ctx)
	}()

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "7687")
	require.NoError(t, err)

	store, err := NewNeo4jStore(ctx, Neo4jConfig{
		URI:      fmt.Sprintf("bolt://%s:%s", host, port.Port()),
		Username: "neo4j",
		Password: "integration",
	}, slog.Default())
	require.NoError(t, err)
	defer func() {
		_ = store.Close(ctx)
	}()

	assert.Equal(t, KindNeo4j, store.Kind())
	assert.True(t, store.Health(ctx).IsHealthy())

	// Seed a tiny actor/movie graph.
	_, err = store.Query(ctx, `CREATE (a:Actor {name: 'Actor1'})-[:STARRED_IN]->(m:Movie {name: 'X'})`)
	require.NoError(t, err)

	schema, err := store.Schema(ctx, true)
	require.NoError(t, err)
	assert.Contains(t, schema, "Actor")
	assert.Contains(t, schema, "STARRED_IN")

	result, err := store.Query(ctx, `MATCH (a:Actor)-[:STARRED_IN]->(m:Movie {name: 'X'}) RETURN a.name AS name`)
	require.NoError(t, err)
	assert.Contains(t, result, "Actor1")

	// A syntactically invalid query must surface a query error, not panic.
	_, err = store.Query(ctx, "THIS IS NOT CYPHER")
	assert.Error(t, err)
}
