package synthesis

import (
	"context"
	"strings"
	"sync"

	"github.com/kgraph-ai/kgraph/internal/llm"
	"github.com/kgraph-ai/kgraph/internal/prompt"
	"github.com/kgraph-ai/kgraph/internal/types"
)

// Synthesizer turns one or more evidence units into a final answer.
// Implementations must not mutate the evidence.
type Synthesizer interface {
	Synthesize(ctx context.Context, question string, evidence []EvidenceUnit) (string, error)
}

// LLMSynthesizer is the default Synthesizer. Evidence text is already a
// fully filled answer prompt, so synthesis sends it to the completion
// capability verbatim and returns the model's answer.
type LLMSynthesizer struct {
	completer llm.Completer
}

// NewLLMSynthesizer creates an LLMSynthesizer over the given completer.
func NewLLMSynthesizer(completer llm.Completer) *LLMSynthesizer {
	return &LLMSynthesizer{completer: completer}
}

// passthrough forwards evidence text to the model without reshaping it.
// The evidence text is already a fully filled answer prompt.
var passthrough = prompt.MustNew("synthesis-passthrough", prompt.KindQuestionAnswer,
	"{{.kg_response_str}}", prompt.VarKGRespStr)

// Synthesize sends the combined evidence text to the completion capability.
func (s *LLMSynthesizer) Synthesize(ctx context.Context, question string, evidence []EvidenceUnit) (string, error) {
	if len(evidence) == 0 {
		return "", types.NewError(types.SYNTHESIS_FAILED, "no evidence to synthesize from")
	}

	texts := make([]string, len(evidence))
	for i, unit := range evidence {
		texts[i] = unit.Text
	}

	answer, err := s.completer.Predict(ctx, passthrough, map[string]any{
		prompt.VarKGRespStr: strings.Join(texts, "\n\n"),
	})
	if err != nil {
		return "", types.WrapError(types.SYNTHESIS_FAILED, "completion failed during synthesis", err)
	}
	return answer, nil
}

// StaticSynthesizer returns a fixed answer and records what it was given.
// Test fixture.
type StaticSynthesizer struct {
	mu       sync.Mutex
	answer   string
	err      error
	received [][]EvidenceUnit
}

// NewStaticSynthesizer creates a StaticSynthesizer returning answer.
func NewStaticSynthesizer(answer string) *StaticSynthesizer {
	return &StaticSynthesizer{answer: answer}
}

// NewFailingSynthesizer creates a StaticSynthesizer that always fails.
func NewFailingSynthesizer(err error) *StaticSynthesizer {
	return &StaticSynthesizer{err: err}
}

// Synthesize returns the fixed answer (or error) and keeps a copy of the
// evidence slice for assertions.
func (s *StaticSynthesizer) Synthesize(ctx context.Context, question string, evidence []EvidenceUnit) (string, error) {
	s.mu.Lock()
	snapshot := make([]EvidenceUnit, len(evidence))
	copy(snapshot, evidence)
	s.received = append(s.received, snapshot)
	s.mu.Unlock()

	if s.err != nil {
		return "", types.WrapError(types.SYNTHESIS_FAILED, "synthesis failed", s.err)
	}
	return s.answer, nil
}

// Received returns every evidence slice passed to Synthesize so far.
func (s *StaticSynthesizer) Received() [][]EvidenceUnit {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([][]EvidenceUnit, len(s.received))
	copy(out, s.received)
	return out
}
