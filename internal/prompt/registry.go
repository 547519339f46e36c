package prompt

import (
	"fmt"
	"sort"

	"github.com/kgraph-ai/kgraph/internal/graphstore"
	"github.com/kgraph-ai/kgraph/internal/types"
)

// Slot names shared by the built-in templates.
const (
	VarSchema     = "schema"
	VarQueryStr   = "query_str"
	VarKGQueryStr = "kg_query_str"
	VarKGRespStr  = "kg_response_str"
)

const nebulaGraphQueryText = `Generate NebulaGraph query from natural language.
Use only the provided relationship types and properties in the schema.
Do not use any other relationship types or properties that are not provided.
Schema:
---
{{.schema}}
---
Note: NebulaGraph speaks a dialect of Cypher, comparing to standard Cypher:

1. it uses double equals sign for comparison: ` + "`==`" + ` rather than ` + "`=`" + `
2. it needs explicit label specification when referring to node properties, i.e.
v is a variable of a node, and we know its label is Foo, v.` + "`foo`" + `.name is correct
while v.name is not.

For example, see this diff between standard and NebulaGraph Cypher dialect:
` + "```diff" + `
< MATCH (p:person)-[:directed]->(m:movie) WHERE m.name = 'The Godfather'
< RETURN p.name;
---
> MATCH (p:` + "`person`" + `)-[:directed]->(m:` + "`movie`" + `) WHERE m.` + "`movie`" + `.` + "`name`" + ` == 'The Godfather'
> RETURN p.` + "`person`" + `.` + "`name`" + `;
` + "```" + `

Question: {{.query_str}}

NebulaGraph Cypher dialect query:
`

const cypherQueryText = `Generate a Cypher query from natural language.
Use only the provided node labels, relationship types and properties in the schema.
Do not use any other labels, relationship types or properties that are not provided.
Schema:
---
{{.schema}}
---
Return only the Cypher query, with no explanation and no code fences.

Question: {{.query_str}}

Cypher query:
`

const answerText = `The original question is given below.
This question has been translated into a Graph Database query.
Both the Graph query and the response are given below.
Given the Graph Query response, synthesise a response to the original question.

Original question: {{.query_str}}
Graph query: {{.kg_query_str}}
Graph response: {{.kg_response_str}}
Response:
`

// Built-in templates. One question-to-query template per backend dialect,
// plus a single backend-agnostic answer template.
var (
	NebulaGraphQueryPrompt = MustNew("nebulagraph-nl2query", KindTextToGraphQuery,
		nebulaGraphQueryText, VarSchema, VarQueryStr)

	CypherQueryPrompt = MustNew("cypher-nl2query", KindTextToGraphQuery,
		cypherQueryText, VarSchema, VarQueryStr)

	GraphAnswerPrompt = MustNew("graph-response-answer", KindQuestionAnswer,
		answerText, VarQueryStr, VarKGQueryStr, VarKGRespStr)
)

// dialectPrompts is the total, fixed mapping from backend kind to the
// question-to-query template for that backend's dialect. The kind set is
// closed, so the map never mutates after process start. The memory fixture
// store speaks standard Cypher.
var dialectPrompts = map[graphstore.Kind]*Template{
	graphstore.KindNebulaGraph: NebulaGraphQueryPrompt,
	graphstore.KindNeo4j:       CypherQueryPrompt,
	graphstore.KindMemory:      CypherQueryPrompt,
}

// DialectPrompt returns the question-to-query template for the given backend
// kind. Requesting an unregistered kind is a configuration error; the engine
// surfaces it at construction time, before any call can be made.
func DialectPrompt(kind graphstore.Kind) (*Template, error) {
	tmpl, ok := dialectPrompts[kind]
	if !ok {
		return nil, types.NewError(types.CONFIG_MISSING_DIALECT,
			fmt.Sprintf("no dialect prompt registered for graph store kind %q", kind))
	}
	return tmpl, nil
}

// DialectKinds returns the backend kinds with a registered dialect prompt,
// sorted for deterministic iteration.
func DialectKinds() []graphstore.Kind {
	kinds := make([]graphstore.Kind, 0, len(dialectPrompts))
	for kind := range dialectPrompts {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// AnswerPrompt returns the backend-agnostic query+result-to-answer template.
func AnswerPrompt() *Template {
	return GraphAnswerPrompt
}
