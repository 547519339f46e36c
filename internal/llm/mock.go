package llm

import (
	"context"
	"strings"
	"sync"

	"github.com/kgraph-ai/kgraph/internal/prompt"
	"github.com/kgraph-ai/kgraph/internal/types"
)

const defaultMockMaxTokens = 256

// MockCall records one Predict invocation for test assertions.
type MockCall struct {
	TemplateName string
	TemplateKind prompt.Kind
	Vars         map[string]any
	Rendered     string
}

// MockCompleter is a deterministic Completer for tests and offline demos.
// Responses are keyed by prompt kind and truncated to a whitespace-token
// budget; an unsupported kind yields a distinguishable error. Every call is
// recorded, including the fully rendered prompt text.
type MockCompleter struct {
	mu             sync.Mutex
	maxTokens      int
	queryResponse  string
	answerResponse string
	err            error
	calls          []MockCall
}

// MockOption configures a MockCompleter.
type MockOption func(*MockCompleter)

// WithMaxTokens sets the response token budget.
func WithMaxTokens(n int) MockOption {
	return func(m *MockCompleter) {
		if n > 0 {
			m.maxTokens = n
		}
	}
}

// WithQueryResponse sets the text returned for text-to-graph-query prompts.
func WithQueryResponse(response string) MockOption {
	return func(m *MockCompleter) {
		m.queryResponse = response
	}
}

// WithAnswerResponse sets the text returned for question-answer prompts.
func WithAnswerResponse(response string) MockOption {
	return func(m *MockCompleter) {
		m.answerResponse = response
	}
}

// WithError makes every Predict call fail with the given error.
func WithError(err error) MockOption {
	return func(m *MockCompleter) {
		m.err = err
	}
}

// NewMockCompleter creates a MockCompleter with canned per-kind responses.
func NewMockCompleter(opts ...MockOption) *MockCompleter {
	m := &MockCompleter{
		maxTokens:      defaultMockMaxTokens,
		queryResponse:  "MATCH (n) RETURN n LIMIT 10",
		answerResponse: "mock answer",
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Name returns "mock".
func (m *MockCompleter) Name() string {
	return ProviderMock
}

// Predict renders the template and returns the canned response for the
// template's kind, truncated to the token budget.
func (m *MockCompleter) Predict(ctx context.Context, tmpl *prompt.Template, vars map[string]any) (string, error) {
	rendered, err := tmpl.Render(vars)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	m.calls = append(m.calls, MockCall{
		TemplateName: tmpl.Name(),
		TemplateKind: tmpl.Kind(),
		Vars:         vars,
		Rendered:     rendered,
	})
	failure := m.err
	m.mu.Unlock()

	if failure != nil {
		return "", NewCompletionError(ProviderMock, failure)
	}

	switch tmpl.Kind() {
	case prompt.KindTextToGraphQuery:
		return truncateTokens(m.queryResponse, m.maxTokens), nil
	case prompt.KindQuestionAnswer:
		return truncateTokens(m.answerResponse, m.maxTokens), nil
	case prompt.KindCustom:
		// Unknown intent: echo the prompt back within the budget.
		return truncateTokens(rendered, m.maxTokens), nil
	default:
		return "", NewUnsupportedKindError(ProviderMock, tmpl.Kind())
	}
}

// Health always reports healthy.
func (m *MockCompleter) Health(ctx context.Context) types.HealthStatus {
	return types.Healthy("mock completer")
}

// Calls returns a copy of all recorded Predict invocations.
func (m *MockCompleter) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// truncateTokens limits text to at most max whitespace-delimited tokens.
func truncateTokens(text string, max int) string {
	fields := strings.Fields(text)
	if len(fields) <= max {
		return text
	}
	return strings.Join(fields[:max], " ")
}
