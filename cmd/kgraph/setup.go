package main

import (
	"context"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/kgraph-ai/kgraph/internal/config"
	"github.com/kgraph-ai/kgraph/internal/engine"
	"github.com/kgraph-ai/kgraph/internal/events"
	"github.com/kgraph-ai/kgraph/internal/graphstore"
	"github.com/kgraph-ai/kgraph/internal/llm"
	"github.com/kgraph-ai/kgraph/internal/observability"
)

// runtime bundles everything a command needs to run queries, plus the
// teardown for it.
type runtime struct {
	engine   *engine.Engine
	store    graphstore.GraphStore
	provider *sdktrace.TracerProvider
}

// newRuntime builds the graph store, completion provider, tracing and engine
// from the loaded configuration.
func newRuntime(ctx context.Context) (*runtime, error) {
	store, err := newStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	completer, err := llm.NewCompleter(cfg.LLM.ToProviderConfig())
	if err != nil {
		_ = store.Close(ctx)
		return nil, err
	}

	provider, err := observability.InitTracing(ctx, cfg.Tracing)
	if err != nil {
		_ = store.Close(ctx)
		return nil, err
	}

	tracerOpts := []events.TracerOption{events.WithLogger(logger)}
	if cfg.Tracing.Enabled {
		tracerOpts = append(tracerOpts, events.WithOTelTracer(provider.Tracer("kgraph")))
	}

	eng, err := engine.New(ctx, store, completer,
		engine.WithLogger(logger),
		engine.WithTracer(events.NewTracer(tracerOpts...)))
	if err != nil {
		_ = store.Close(ctx)
		_ = observability.ShutdownTracing(ctx, provider)
		return nil, err
	}

	return &runtime{engine: eng, store: store, provider: provider}, nil
}

// close releases the store connection and flushes pending spans.
func (r *runtime) close(ctx context.Context) {
	_ = r.store.Close(ctx)
	_ = observability.ShutdownTracing(ctx, r.provider)
}

// newStore builds the configured graph store backend.
func newStore(ctx context.Context, cfg *config.Config) (graphstore.GraphStore, error) {
	switch cfg.BackendKind() {
	case graphstore.KindNeo4j:
		return graphstore.NewNeo4jStore(ctx, graphstore.Neo4jConfig{
			URI:      cfg.Backend.Neo4j.URI,
			Username: cfg.Backend.Neo4j.Username,
			Password: cfg.Backend.Neo4j.Password,
			Database: cfg.Backend.Neo4j.Database,
		}, logger)
	case graphstore.KindMemory:
		return graphstore.NewMemoryStore(cfg.Backend.Memory.Schema,
			graphstore.WithResponse(cfg.Backend.Memory.Response)), nil
	default:
		return nil, graphstore.NewUnknownKindError(cfg.BackendKind())
	}
}
