package synthesis

import (
	"github.com/kgraph-ai/kgraph/internal/prompt"
)

// FullConfidence is the score assigned to every evidence unit. The engine
// has exactly one evidence source per call, so there are no competing
// candidates to rank.
const FullConfidence = 1.0

// EvidenceMetadata carries the intermediate state an evidence unit was
// assembled from, for downstream inspection and debugging.
type EvidenceMetadata struct {
	OriginalQuestion string `json:"query_str"`
	GeneratedQuery   string `json:"graph_store_query"`
	BackendResult    string `json:"graph_store_response"`
	SchemaSnapshot   string `json:"graph_schema"`
}

// EvidenceUnit is the handoff object between query execution and answer
// synthesis: the filled answer prompt plus a confidence score and the raw
// intermediate state. Units are created fresh per call and ownership
// transfers to the synthesizer, which must not mutate them.
type EvidenceUnit struct {
	Text     string           `json:"text"`
	Score    float64          `json:"score"`
	Metadata EvidenceMetadata `json:"metadata"`
}

// Assemble packages the question, generated query, backend result and schema
// snapshot into one scored evidence unit by filling the answer template.
// Pure and deterministic; the only failure mode is a missing required
// substitution slot, which is a configuration error.
func Assemble(answerTmpl *prompt.Template, question, generatedQuery, backendResult, schema string) (EvidenceUnit, error) {
	text, err := answerTmpl.Render(map[string]any{
		prompt.VarQueryStr:   question,
		prompt.VarKGQueryStr: generatedQuery,
		prompt.VarKGRespStr:  backendResult,
	})
	if err != nil {
		return EvidenceUnit{}, err
	}

	return EvidenceUnit{
		Text:  text,
		Score: FullConfidence,
		Metadata: EvidenceMetadata{
			OriginalQuestion: question,
			GeneratedQuery:   generatedQuery,
			BackendResult:    backendResult,
			SchemaSnapshot:   schema,
		},
	}, nil
}
