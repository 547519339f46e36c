package graphstore

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/kgraph-ai/kgraph/internal/types"
)

// Neo4jConfig holds connection settings for a Neo4j store.
type Neo4jConfig struct {
	URI      string `yaml:"uri"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// Validate checks that the configuration is usable.
func (c Neo4jConfig) Validate() error {
	if c.URI == "" {
		return types.NewError(types.CONFIG_VALIDATION_FAILED, "neo4j uri is required")
	}
	return nil
}

// Neo4jStore implements GraphStore backed by a Neo4j database.
//
// Schema text is assembled from db.labels, db.relationshipTypes and
// db.propertyKeys introspection and cached until a refresh is requested.
// Query results are rendered as one line of key/value pairs per record,
// which the engine treats as opaque text.
//
// Thread-safety: safe for concurrent use; the driver pools sessions and the
// schema cache is mutex-guarded.
type Neo4jStore struct {
	driver   neo4j.DriverWithContext
	database string
	logger   *slog.Logger

	mu     sync.Mutex
	schema string
}

// NewNeo4jStore connects to Neo4j and verifies connectivity.
func NewNeo4jStore(ctx context.Context, cfg Neo4jConfig, logger *slog.Logger) (*Neo4jStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.Username, cfg.Password, ""))
	if err != nil {
		return nil, NewConnectionError("failed to create neo4j driver", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		return nil, NewConnectionError(fmt.Sprintf("failed to connect to neo4j at %s", cfg.URI), err)
	}

	return &Neo4jStore{
		driver:   driver,
		database: cfg.Database,
		logger:   logger,
	}, nil
}

// Kind returns KindNeo4j.
func (s *Neo4jStore) Kind() Kind {
	return KindNeo4j
}

// Schema returns a text description of the graph schema. The description is
// cached on first use; pass refresh=true to re-introspect the live store.
func (s *Neo4jStore) Schema(ctx context.Context, refresh bool) (string, error) {
	s.mu.Lock()
	cached := s.schema
	s.mu.Unlock()

	if cached != "" && !refresh {
		return cached, nil
	}

	labels, err := s.collect(ctx, "CALL db.labels() YIELD label RETURN label ORDER BY label", "label")
	if err != nil {
		return "", NewSchemaError("failed to introspect node labels", err)
	}

	relTypes, err := s.collect(ctx, "CALL db.relationshipTypes() YIELD relationshipType RETURN relationshipType ORDER BY relationshipType", "relationshipType")
	if err != nil {
		return "", NewSchemaError("failed to introspect relationship types", err)
	}

	propKeys, err := s.collect(ctx, "CALL db.propertyKeys() YIELD propertyKey RETURN propertyKey ORDER BY propertyKey", "propertyKey")
	if err != nil {
		return "", NewSchemaError("failed to introspect property keys", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Node labels: [%s]\n", strings.Join(labels, ", "))
	fmt.Fprintf(&b, "Relationship types: [%s]\n", strings.Join(relTypes, ", "))
	fmt.Fprintf(&b, "Property keys: [%s]\n", strings.Join(propKeys, ", "))
	schema := b.String()

	s.mu.Lock()
	s.schema = schema
	s.mu.Unlock()

	s.logger.Debug("refreshed neo4j schema",
		"labels", len(labels),
		"relationship_types", len(relTypes),
		"property_keys", len(propKeys))

	return schema, nil
}

// Query executes a Cypher query and renders the result as text, one record
// per line. The query is executed exactly as given.
func (s *Neo4jStore) Query(ctx context.Context, query string) (string, error) {
	result, err := neo4j.ExecuteQuery(ctx, s.driver, query, nil,
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(s.database))
	if err != nil {
		return "", NewQueryError(fmt.Sprintf("query execution failed: %s", query), err)
	}

	var b strings.Builder
	for i, record := range result.Records {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(formatRecord(record.AsMap()))
	}

	return b.String(), nil
}

// Health checks connectivity to the Neo4j server.
func (s *Neo4jStore) Health(ctx context.Context) types.HealthStatus {
	if err := s.driver.VerifyConnectivity(ctx); err != nil {
		return types.Unhealthy(fmt.Sprintf("neo4j unreachable: %v", err))
	}
	return types.Healthy("neo4j connection verified")
}

// Close shuts down the underlying driver.
func (s *Neo4jStore) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

// collect runs an introspection query and gathers the named column as strings.
func (s *Neo4jStore) collect(ctx context.Context, query, key string) ([]string, error) {
	result, err := neo4j.ExecuteQuery(ctx, s.driver, query, nil,
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(s.database))
	if err != nil {
		return nil, err
	}

	values := make([]string, 0, len(result.Records))
	for _, record := range result.Records {
		if v, ok := record.Get(key); ok {
			values = append(values, fmt.Sprintf("%v", v))
		}
	}
	return values, nil
}

// formatRecord renders a record map as deterministic key: value text.
func formatRecord(m map[string]any) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %v", k, m[k]))
	}
	return strings.Join(parts, ", ")
}
