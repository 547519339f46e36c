package engine

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kgraph-ai/kgraph/internal/events"
	"github.com/kgraph-ai/kgraph/internal/graphstore"
	"github.com/kgraph-ai/kgraph/internal/llm"
	"github.com/kgraph-ai/kgraph/internal/prompt"
	"github.com/kgraph-ai/kgraph/internal/synthesis"
	"github.com/kgraph-ai/kgraph/internal/types"
)

const (
	fixtureQuestion = "Which actor starred in the movie X?"
	fixtureSchema   = "(actor)-[:starred_in]->(movie)"
	fixtureQuery    = "MATCH (a)-[:starred_in]->(m) WHERE m.name == 'X' RETURN a.name"
	fixtureResult   = "Actor1"
	fixtureAnswer   = "The actor is Actor1."
)

type fixture struct {
	store     *graphstore.MemoryStore
	completer *llm.MockCompleter
	synth     *synthesis.StaticSynthesizer
	recorder  *events.Recorder
}

func newFixture(storeOpts ...graphstore.MemoryOption) *fixture {
	opts := append([]graphstore.MemoryOption{
		graphstore.WithMimicKind(graphstore.KindNebulaGraph),
		graphstore.WithResponse(fixtureResult),
	}, storeOpts...)

	return &fixture{
		store:     graphstore.NewMemoryStore(fixtureSchema, opts...),
		completer: llm.NewMockCompleter(llm.WithQueryResponse(fixtureQuery)),
		synth:     synthesis.NewStaticSynthesizer(fixtureAnswer),
		recorder:  events.NewRecorder(),
	}
}

func (f *fixture) engine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(context.Background(), f.store, f.completer,
		WithSynthesizer(f.synth),
		WithTracer(f.recorder))
	require.NoError(t, err)
	return e
}

// stripIDs projects recorded entries onto their mode-independent parts so
// sync and async recordings can be compared byte for byte.
func stripIDs(entries []events.Entry) []events.Entry {
	out := make([]events.Entry, len(entries))
	for i, e := range entries {
		e.ID = ""
		out[i] = e
	}
	return out
}

func TestQueryEndToEnd(t *testing.T) {
	f := newFixture()
	e := f.engine(t)

	answer, err := e.Query(context.Background(), fixtureQuestion)
	require.NoError(t, err)
	assert.Equal(t, fixtureAnswer, answer)

	// The generated query went to the backend verbatim.
	assert.Equal(t, []string{fixtureQuery}, f.store.Queries())

	// Exactly one query span and one retrieve span, opened and closed once
	// each, retrieve nested strictly inside query.
	entries := f.recorder.Entries()
	require.Len(t, entries, 4)
	assert.Equal(t, events.PhaseStart, entries[0].Phase)
	assert.Equal(t, events.EventQuery, entries[0].Kind)
	assert.Equal(t, fixtureQuestion, entries[0].Payload[events.PayloadQueryStr])
	assert.Equal(t, events.PhaseStart, entries[1].Phase)
	assert.Equal(t, events.EventRetrieve, entries[1].Kind)
	assert.Equal(t, fixtureQuery, entries[1].Payload[events.PayloadQueryStr])
	assert.Equal(t, events.PhaseEnd, entries[2].Phase)
	assert.Equal(t, events.EventRetrieve, entries[2].Kind)
	assert.Equal(t, fixtureResult, entries[2].Payload[events.PayloadResponse])
	assert.Equal(t, events.PhaseEnd, entries[3].Phase)
	assert.Equal(t, events.EventQuery, entries[3].Kind)
	assert.Equal(t, fixtureAnswer, entries[3].Payload[events.PayloadResponse])

	// Span ids are presented unchanged at close time.
	assert.Equal(t, entries[0].ID, entries[3].ID)
	assert.Equal(t, entries[1].ID, entries[2].ID)
	assert.NotEqual(t, entries[0].ID, entries[1].ID)

	assert.Empty(t, f.recorder.OpenSpans())
}

func TestQueryPassesEvidenceToSynthesizer(t *testing.T) {
	f := newFixture()
	e := f.engine(t)

	_, err := e.Query(context.Background(), fixtureQuestion)
	require.NoError(t, err)

	received := f.synth.Received()
	require.Len(t, received, 1)
	require.Len(t, received[0], 1, "exactly one evidence unit per call")

	unit := received[0][0]
	assert.Equal(t, synthesis.FullConfidence, unit.Score)
	assert.Equal(t, fixtureQuestion, unit.Metadata.OriginalQuestion)
	assert.Equal(t, fixtureQuery, unit.Metadata.GeneratedQuery)
	assert.Equal(t, fixtureResult, unit.Metadata.BackendResult)
	assert.Equal(t, fixtureSchema, unit.Metadata.SchemaSnapshot)
	assert.Contains(t, unit.Text, "Graph response: "+fixtureResult)
}

func TestGenerateQueryReturnsRawOutput(t *testing.T) {
	f := newFixture()
	e := f.engine(t)

	generated, err := e.GenerateQuery(context.Background(), fixtureQuestion)
	require.NoError(t, err)
	assert.Equal(t, fixtureQuery, generated)

	// Generation fills the dialect template with schema and question.
	calls := f.completer.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "nebulagraph-nl2query", calls[0].TemplateName)
	assert.Contains(t, calls[0].Rendered, fixtureSchema)
	assert.Contains(t, calls[0].Rendered, fixtureQuestion)

	// Generation opens no span of its own.
	assert.Empty(t, f.recorder.Entries())
}

func TestSyncAndAsyncProduceIdenticalResults(t *testing.T) {
	ctx := context.Background()

	syncFix := newFixture()
	syncEngine := syncFix.engine(t)
	syncAnswer, syncErr := syncEngine.Query(ctx, fixtureQuestion)

	asyncFix := newFixture()
	asyncEngine := asyncFix.engine(t)
	result := <-asyncEngine.QueryAsync(ctx, fixtureQuestion)

	require.NoError(t, syncErr)
	require.NoError(t, result.Err)
	assert.Equal(t, syncAnswer, result.Answer)
	assert.Equal(t, stripIDs(syncFix.recorder.Entries()), stripIDs(asyncFix.recorder.Entries()))
}

func TestSyncAndAsyncProduceIdenticalFailures(t *testing.T) {
	ctx := context.Background()
	backendErr := graphstore.NewQueryError("syntax error near MATCH", nil)

	syncFix := newFixture(graphstore.WithQueryError(backendErr))
	syncEngine := syncFix.engine(t)
	_, syncErr := syncEngine.Query(ctx, fixtureQuestion)

	asyncFix := newFixture(graphstore.WithQueryError(backendErr))
	asyncEngine := asyncFix.engine(t)
	result := <-asyncEngine.QueryAsync(ctx, fixtureQuestion)

	require.Error(t, syncErr)
	require.Error(t, result.Err)
	assert.Equal(t, syncErr.Error(), result.Err.Error())
	assert.Equal(t, stripIDs(syncFix.recorder.Entries()), stripIDs(asyncFix.recorder.Entries()))
}

func TestBackendFailureClosesSpansBeforeErrorPropagates(t *testing.T) {
	backendErr := errors.New("syntax error in generated query")
	f := newFixture(graphstore.WithQueryError(backendErr))
	e := f.engine(t)

	_, err := e.Query(context.Background(), fixtureQuestion)
	require.Error(t, err)
	assert.True(t, types.HasCode(err, types.BACKEND_QUERY_FAILED))
	assert.ErrorIs(t, err, backendErr)

	entries := f.recorder.Entries()
	require.Len(t, entries, 4)
	assert.Equal(t, events.PhaseEnd, entries[2].Phase)
	assert.Equal(t, events.EventRetrieve, entries[2].Kind)
	assert.NotEmpty(t, entries[2].Payload[events.PayloadError])
	assert.Equal(t, events.PhaseEnd, entries[3].Phase)
	assert.Equal(t, events.EventQuery, entries[3].Kind)
	assert.NotEmpty(t, entries[3].Payload[events.PayloadError])

	// Nothing left dangling for this call.
	assert.Empty(t, f.recorder.OpenSpans())
}

func TestGenerationFailureClosesQuerySpan(t *testing.T) {
	genErr := errors.New("completion backend down")
	f := newFixture()
	f.completer = llm.NewMockCompleter(llm.WithError(genErr))
	e := f.engine(t)

	_, err := e.Query(context.Background(), fixtureQuestion)
	require.Error(t, err)
	assert.True(t, types.HasCode(err, types.GENERATION_FAILED))
	assert.ErrorIs(t, err, genErr)

	entries := f.recorder.Entries()
	require.Len(t, entries, 2, "no retrieve span when generation fails")
	assert.Equal(t, events.PhaseStart, entries[0].Phase)
	assert.Equal(t, events.EventQuery, entries[0].Kind)
	assert.Equal(t, events.PhaseEnd, entries[1].Phase)
	assert.Equal(t, events.EventQuery, entries[1].Kind)
	assert.NotEmpty(t, entries[1].Payload[events.PayloadError])
	assert.Empty(t, f.recorder.OpenSpans())
}

func TestSynthesisFailureClosesQuerySpan(t *testing.T) {
	synthErr := errors.New("synthesis exploded")
	f := newFixture()
	f.synth = synthesis.NewFailingSynthesizer(synthErr)
	e := f.engine(t)

	_, err := e.Query(context.Background(), fixtureQuestion)
	require.Error(t, err)
	assert.True(t, types.HasCode(err, types.SYNTHESIS_FAILED))
	assert.ErrorIs(t, err, synthErr)

	entries := f.recorder.Entries()
	require.Len(t, entries, 4)
	assert.Equal(t, events.EventRetrieve, entries[2].Kind)
	assert.Equal(t, events.PhaseEnd, entries[2].Phase)
	assert.Equal(t, fixtureResult, entries[2].Payload[events.PayloadResponse])
	assert.Equal(t, events.EventQuery, entries[3].Kind)
	assert.Equal(t, events.PhaseEnd, entries[3].Phase)
	assert.NotEmpty(t, entries[3].Payload[events.PayloadError])
	assert.Empty(t, f.recorder.OpenSpans())
}

func TestNewRejectsUnregisteredBackendKind(t *testing.T) {
	store := graphstore.NewMemoryStore(fixtureSchema,
		graphstore.WithMimicKind(graphstore.Kind("dgraph")))

	_, err := New(context.Background(), store, llm.NewMockCompleter())
	require.Error(t, err)
	assert.True(t, types.HasCode(err, types.CONFIG_MISSING_DIALECT))
}

func TestNewRequiresStoreAndCompleter(t *testing.T) {
	ctx := context.Background()

	_, err := New(ctx, nil, llm.NewMockCompleter())
	assert.True(t, types.HasCode(err, types.CONFIG_MISSING_BACKEND))

	_, err = New(ctx, graphstore.NewMemoryStore(fixtureSchema), nil)
	assert.True(t, types.HasCode(err, types.CONFIG_VALIDATION_FAILED))
}

func TestNewSurfacesSchemaFetchFailure(t *testing.T) {
	store := graphstore.NewMemoryStore(fixtureSchema,
		graphstore.WithSchemaError(errors.New("introspection failed")))

	_, err := New(context.Background(), store, llm.NewMockCompleter())
	require.Error(t, err)
	assert.True(t, types.HasCode(err, types.STORE_SCHEMA_FAILED))
}

// refreshingCompleter fires a callback once, in the middle of query
// generation, before delegating to the wrapped mock.
type refreshingCompleter struct {
	inner     *llm.MockCompleter
	onPredict func()
	once      sync.Once
}

func (c *refreshingCompleter) Name() string { return c.inner.Name() }

func (c *refreshingCompleter) Predict(ctx context.Context, tmpl *prompt.Template, vars map[string]any) (string, error) {
	c.once.Do(c.onPredict)
	return c.inner.Predict(ctx, tmpl, vars)
}

func (c *refreshingCompleter) Health(ctx context.Context) types.HealthStatus {
	return c.inner.Health(ctx)
}

func TestQueryUsesOneSchemaSnapshotThroughout(t *testing.T) {
	f := newFixture()
	wrapped := &refreshingCompleter{inner: f.completer}

	e, err := New(context.Background(), f.store, wrapped,
		WithSynthesizer(f.synth),
		WithTracer(f.recorder))
	require.NoError(t, err)

	// A refresh lands while generation is in flight.
	wrapped.onPredict = func() {
		f.store.SetSchema("(director)-[:directed]->(movie)")
		_, refreshErr := e.RefreshSchema(context.Background())
		require.NoError(t, refreshErr)
	}

	_, err = e.Query(context.Background(), fixtureQuestion)
	require.NoError(t, err)

	// The schema substituted into the generation prompt and the snapshot
	// recorded in the evidence must be the same one.
	calls := f.completer.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, fixtureSchema, calls[0].Vars[prompt.VarSchema])

	received := f.synth.Received()
	require.Len(t, received, 1)
	assert.Equal(t, fixtureSchema, received[0][0].Metadata.SchemaSnapshot)

	// The refresh itself took effect for later calls.
	assert.Equal(t, "(director)-[:directed]->(movie)", e.Schema())
}

func TestRefreshSchemaDoesNotAffectAssembledEvidence(t *testing.T) {
	f := newFixture()
	e := f.engine(t)

	_, err := e.Query(context.Background(), fixtureQuestion)
	require.NoError(t, err)

	f.store.SetSchema("(director)-[:directed]->(movie)")
	refreshed, err := e.RefreshSchema(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "(director)-[:directed]->(movie)", refreshed)
	assert.Equal(t, "(director)-[:directed]->(movie)", e.Schema())

	// Evidence assembled before the refresh still carries the old snapshot.
	received := f.synth.Received()
	require.Len(t, received, 1)
	assert.Equal(t, fixtureSchema, received[0][0].Metadata.SchemaSnapshot)

	// A new call sees the refreshed schema.
	_, err = e.Query(context.Background(), fixtureQuestion)
	require.NoError(t, err)
	received = f.synth.Received()
	require.Len(t, received, 2)
	assert.Equal(t, "(director)-[:directed]->(movie)", received[1][0].Metadata.SchemaSnapshot)
}

func TestConcurrentQueriesKeepSpansBalanced(t *testing.T) {
	f := newFixture()
	e := f.engine(t)
	ctx := context.Background()

	const calls = 16
	results := make([]<-chan Result, calls)
	for i := 0; i < calls; i++ {
		results[i] = e.QueryAsync(ctx, fixtureQuestion)
	}
	for _, ch := range results {
		result := <-ch
		require.NoError(t, result.Err)
		assert.Equal(t, fixtureAnswer, result.Answer)
	}

	entries := f.recorder.Entries()
	assert.Len(t, entries, calls*4)
	assert.Empty(t, f.recorder.OpenSpans())
}

func TestQueryAsyncChannelCloses(t *testing.T) {
	f := newFixture()
	e := f.engine(t)

	ch := e.QueryAsync(context.Background(), fixtureQuestion)
	result, ok := <-ch
	require.True(t, ok)
	require.NoError(t, result.Err)

	_, ok = <-ch
	assert.False(t, ok, "channel must be closed after the single result")
}
