package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kgraph-ai/kgraph/internal/prompt"
	"github.com/kgraph-ai/kgraph/internal/types"
)

func queryVars() map[string]any {
	return map[string]any{
		"schema":    "(actor)-[:starred_in]->(movie)",
		"query_str": "Which actor starred in the movie X?",
	}
}

func TestMockCompleterDispatchesOnKind(t *testing.T) {
	mock := NewMockCompleter(
		WithQueryResponse("MATCH (a) RETURN a"),
		WithAnswerResponse("The actor is Actor1."))
	ctx := context.Background()

	out, err := mock.Predict(ctx, prompt.NebulaGraphQueryPrompt, queryVars())
	require.NoError(t, err)
	assert.Equal(t, "MATCH (a) RETURN a", out)

	out, err = mock.Predict(ctx, prompt.AnswerPrompt(), map[string]any{
		"query_str":       "Which actor starred in the movie X?",
		"kg_query_str":    "MATCH (a) RETURN a",
		"kg_response_str": "Actor1",
	})
	require.NoError(t, err)
	assert.Equal(t, "The actor is Actor1.", out)
}

func TestMockCompleterTokenBudget(t *testing.T) {
	mock := NewMockCompleter(
		WithMaxTokens(3),
		WithQueryResponse("one two three four five"))

	out, err := mock.Predict(context.Background(), prompt.NebulaGraphQueryPrompt, queryVars())
	require.NoError(t, err)
	assert.Equal(t, "one two three", out)
}

func TestMockCompleterUnsupportedKind(t *testing.T) {
	tmpl := prompt.MustNew("weird", prompt.Kind("summarize"), "{{.query_str}}", "query_str")
	mock := NewMockCompleter()

	_, err := mock.Predict(context.Background(), tmpl, map[string]any{"query_str": "q"})
	require.Error(t, err)
	assert.True(t, types.HasCode(err, types.PROMPT_KIND_UNSUPPORTED))
}

func TestMockCompleterCustomKindEchoesPrompt(t *testing.T) {
	tmpl := prompt.MustNew("echo", prompt.KindCustom, "echo {{.query_str}}", "query_str")
	mock := NewMockCompleter()

	out, err := mock.Predict(context.Background(), tmpl, map[string]any{"query_str": "back"})
	require.NoError(t, err)
	assert.Equal(t, "echo back", out)
}

func TestMockCompleterRecordsCalls(t *testing.T) {
	mock := NewMockCompleter()
	_, err := mock.Predict(context.Background(), prompt.CypherQueryPrompt, queryVars())
	require.NoError(t, err)

	calls := mock.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "cypher-nl2query", calls[0].TemplateName)
	assert.Equal(t, prompt.KindTextToGraphQuery, calls[0].TemplateKind)
	assert.True(t, strings.Contains(calls[0].Rendered, "(actor)-[:starred_in]->(movie)"))
}

func TestMockCompleterInjectedError(t *testing.T) {
	boom := errors.New("provider down")
	mock := NewMockCompleter(WithError(boom))

	_, err := mock.Predict(context.Background(), prompt.CypherQueryPrompt, queryVars())
	require.Error(t, err)
	assert.True(t, types.HasCode(err, types.LLM_COMPLETION_FAILED))
	assert.ErrorIs(t, err, boom)
}

func TestMockCompleterMissingVariable(t *testing.T) {
	mock := NewMockCompleter()
	_, err := mock.Predict(context.Background(), prompt.CypherQueryPrompt, map[string]any{
		"schema": "only schema",
	})
	require.Error(t, err)
	assert.True(t, types.HasCode(err, types.PROMPT_VAR_REQUIRED))
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, Config{Provider: ProviderMock}.Validate())
	assert.Error(t, Config{}.Validate())
	assert.Error(t, Config{Provider: "bedrock"}.Validate())
}

func TestNewCompleterFactory(t *testing.T) {
	completer, err := NewCompleter(Config{Provider: ProviderMock, MaxTokens: 8})
	require.NoError(t, err)
	assert.Equal(t, ProviderMock, completer.Name())

	_, err = NewCompleter(Config{Provider: "bedrock"})
	assert.Error(t, err)
}
