// Package engine orchestrates the knowledge-graph query pipeline: a
// natural-language question is turned into a graph query, executed against
// the configured backend, and the result synthesized into a final answer.
// One orchestration call moves through generating, executing and
// synthesizing stages; a failure in any stage closes the spans opened for
// the call before the error reaches the caller.
package engine

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/kgraph-ai/kgraph/internal/events"
	"github.com/kgraph-ai/kgraph/internal/graphstore"
	"github.com/kgraph-ai/kgraph/internal/llm"
	"github.com/kgraph-ai/kgraph/internal/prompt"
	"github.com/kgraph-ai/kgraph/internal/synthesis"
	"github.com/kgraph-ai/kgraph/internal/types"
)

// Engine is the knowledge-graph query orchestrator. It is immutable after
// construction except for the cached schema text, which a refresh replaces
// with a single atomic pointer swap so in-flight calls see either the old
// or the new schema, never a partial one.
//
// The engine owns no worker pool and introduces no locks of its own; it is
// a pass-through orchestrator. No stage is retried: recoverable retry
// belongs to the backend and completion capabilities.
type Engine struct {
	store        graphstore.GraphStore
	completer    llm.Completer
	synthesizer  synthesis.Synthesizer
	tracer       events.Tracer
	queryPrompt  *prompt.Template
	answerPrompt *prompt.Template
	logger       *slog.Logger

	schema atomic.Pointer[string]
}

// Result is delivered on the channel returned by QueryAsync.
type Result struct {
	Answer string
	Err    error
}

// Option configures an Engine.
type Option func(*Engine)

// WithSynthesizer replaces the default LLM-backed synthesizer.
func WithSynthesizer(s synthesis.Synthesizer) Option {
	return func(e *Engine) {
		if s != nil {
			e.synthesizer = s
		}
	}
}

// WithTracer sets the event tracer the engine reports spans to.
func WithTracer(t events.Tracer) Option {
	return func(e *Engine) {
		if t != nil {
			e.tracer = t
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithDialectPrompt overrides the registry's question-to-query template.
func WithDialectPrompt(tmpl *prompt.Template) Option {
	return func(e *Engine) {
		if tmpl != nil {
			e.queryPrompt = tmpl
		}
	}
}

// WithAnswerPrompt overrides the query+result-to-answer template.
func WithAnswerPrompt(tmpl *prompt.Template) Option {
	return func(e *Engine) {
		if tmpl != nil {
			e.answerPrompt = tmpl
		}
	}
}

// New constructs an Engine over a graph store and a completion capability.
//
// The store's backend kind must have a registered dialect prompt (unless one
// is supplied via WithDialectPrompt); a missing mapping is a configuration
// error raised here, before any call can be made. The backend schema is
// fetched eagerly and cached for the engine's lifetime; use RefreshSchema to
// replace it.
func New(ctx context.Context, store graphstore.GraphStore, completer llm.Completer, opts ...Option) (*Engine, error) {
	if store == nil {
		return nil, types.NewError(types.CONFIG_MISSING_BACKEND, "graph store is required")
	}
	if completer == nil {
		return nil, types.NewError(types.CONFIG_VALIDATION_FAILED, "completer is required")
	}

	e := &Engine{
		store:        store,
		completer:    completer,
		answerPrompt: prompt.AnswerPrompt(),
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.queryPrompt == nil {
		tmpl, err := prompt.DialectPrompt(store.Kind())
		if err != nil {
			return nil, err
		}
		e.queryPrompt = tmpl
	}
	if e.synthesizer == nil {
		e.synthesizer = synthesis.NewLLMSynthesizer(completer)
	}
	if e.tracer == nil {
		e.tracer = events.NewTracer(events.WithLogger(e.logger))
	}

	schema, err := store.Schema(ctx, false)
	if err != nil {
		return nil, types.WrapError(types.STORE_SCHEMA_FAILED, "failed to fetch backend schema", err)
	}
	e.schema.Store(&schema)

	return e, nil
}

// Schema returns the currently cached backend schema text.
func (e *Engine) Schema() string {
	return *e.schema.Load()
}

// RefreshSchema re-introspects the backend and atomically installs the new
// schema text. Evidence already assembled from the prior snapshot is
// unaffected.
func (e *Engine) RefreshSchema(ctx context.Context) (string, error) {
	schema, err := e.store.Schema(ctx, true)
	if err != nil {
		return "", types.WrapError(types.STORE_SCHEMA_FAILED, "failed to refresh backend schema", err)
	}
	e.schema.Store(&schema)
	return schema, nil
}

// GenerateQuery fills the dialect template with the cached schema and the
// question, invokes the completion capability and returns its raw text
// output unmodified. The output is deliberately not validated against the
// target dialect's grammar; an invalid query surfaces when the backend
// rejects it. Opens no span of its own.
func (e *Engine) GenerateQuery(ctx context.Context, question string) (string, error) {
	return e.generate(ctx, question, e.Schema())
}

// generate fills the dialect template with the given schema snapshot. The
// snapshot is passed in rather than re-read so one orchestration call uses
// the same schema for the prompt and for the evidence metadata, even when a
// refresh lands mid-call.
func (e *Engine) generate(ctx context.Context, question, schema string) (string, error) {
	generated, err := e.completer.Predict(ctx, e.queryPrompt, map[string]any{
		prompt.VarSchema:   schema,
		prompt.VarQueryStr: question,
	})
	if err != nil {
		return "", NewGenerationError(err)
	}
	return generated, nil
}

// Query runs one orchestration call and blocks until the final answer is
// ready or a stage fails. Exactly one query span wraps the whole call and
// exactly one retrieve span wraps backend execution, nested strictly inside
// it; both are closed exactly once, on success and failure alike.
func (e *Engine) Query(ctx context.Context, question string) (string, error) {
	return e.run(ctx, question)
}

// QueryAsync mirrors Query without blocking the caller: the same pipeline
// runs on its own goroutine and the outcome is delivered on the returned
// channel. Identical inputs produce identical answers and span payload
// sequences in both modes; only the concurrency treatment differs. The
// goroutine also keeps the backend execution step, which has no
// non-blocking contract of its own, off the caller's goroutine.
func (e *Engine) QueryAsync(ctx context.Context, question string) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		defer close(ch)
		answer, err := e.run(ctx, question)
		ch <- Result{Answer: answer, Err: err}
	}()
	return ch
}

// run is the single pipeline behind both entry points.
func (e *Engine) run(ctx context.Context, question string) (string, error) {
	queryID := e.tracer.OnEventStart(ctx, events.EventQuery,
		events.Payload{events.PayloadQueryStr: question})

	answer, err := e.execute(ctx, question)
	if err != nil {
		e.tracer.OnEventEnd(ctx, events.EventQuery,
			events.Payload{events.PayloadError: err.Error()}, queryID)
		return "", err
	}

	e.tracer.OnEventEnd(ctx, events.EventQuery,
		events.Payload{events.PayloadResponse: answer}, queryID)
	return answer, nil
}

// execute walks the generating, executing and synthesizing stages. The
// retrieve span is closed on both arms of the backend call before anything
// else happens with the outcome.
func (e *Engine) execute(ctx context.Context, question string) (string, error) {
	schema := e.Schema()

	generated, err := e.generate(ctx, question, schema)
	if err != nil {
		return "", err
	}
	e.logger.Info("graph store query generated", "query", generated)

	retrieveID := e.tracer.OnEventStart(ctx, events.EventRetrieve,
		events.Payload{events.PayloadQueryStr: generated})

	response, err := e.store.Query(ctx, generated)
	if err != nil {
		e.tracer.OnEventEnd(ctx, events.EventRetrieve,
			events.Payload{events.PayloadError: err.Error()}, retrieveID)
		return "", NewBackendQueryError(generated, err)
	}

	e.tracer.OnEventEnd(ctx, events.EventRetrieve,
		events.Payload{events.PayloadResponse: response}, retrieveID)
	e.logger.Info("graph store response received", "length", len(response))

	unit, err := synthesis.Assemble(e.answerPrompt, question, generated, response, schema)
	if err != nil {
		return "", err
	}

	answer, err := e.synthesizer.Synthesize(ctx, question, []synthesis.EvidenceUnit{unit})
	if err != nil {
		return "", NewSynthesisError(err)
	}
	return answer, nil
}
