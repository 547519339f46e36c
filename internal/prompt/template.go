package prompt

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/kgraph-ai/kgraph/internal/types"
)

// Kind classifies what a template asks the completion capability to do.
// Completion providers may dispatch on the kind (the mock provider does) and
// must fail distinguishably when given a kind they do not support.
type Kind string

const (
	// KindTextToGraphQuery templates turn a natural-language question plus a
	// schema description into a graph query in some dialect.
	KindTextToGraphQuery Kind = "text_to_graph_query"

	// KindQuestionAnswer templates turn a question plus supporting context
	// into a final natural-language answer.
	KindQuestionAnswer Kind = "question_answer"

	// KindCustom marks templates with no special handling.
	KindCustom Kind = "custom"
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	return string(k)
}

// Template is an immutable text pattern with named substitution slots.
// Slots are referenced as {{.slot_name}} and filled from a variable map at
// render time. Required slots that are absent cause a render error; templates
// never mutate after construction.
type Template struct {
	name     string
	kind     Kind
	text     string
	required []string
	tmpl     *template.Template
}

// New compiles a template. The required variable names must all be present
// in the variable map at render time.
func New(name string, kind Kind, text string, required ...string) (*Template, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, types.WrapError(types.PROMPT_INVALID_TEMPLATE,
			fmt.Sprintf("template %q does not parse", name), err)
	}

	req := make([]string, len(required))
	copy(req, required)

	return &Template{
		name:     name,
		kind:     kind,
		text:     text,
		required: req,
		tmpl:     tmpl,
	}, nil
}

// MustNew is like New but panics on parse failure. Intended for the built-in
// templates compiled at package init.
func MustNew(name string, kind Kind, text string, required ...string) *Template {
	t, err := New(name, kind, text, required...)
	if err != nil {
		panic(err)
	}
	return t
}

// Name returns the template name.
func (t *Template) Name() string {
	return t.name
}

// Kind returns the template kind.
func (t *Template) Kind() Kind {
	return t.kind
}

// Text returns the raw template text.
func (t *Template) Text() string {
	return t.text
}

// Vars returns a copy of the required variable names.
func (t *Template) Vars() []string {
	out := make([]string, len(t.required))
	copy(out, t.required)
	return out
}

// HasVar reports whether name is one of the template's required variables.
func (t *Template) HasVar(name string) bool {
	for _, v := range t.required {
		if v == name {
			return true
		}
	}
	return false
}

// Render fills the template's slots from vars. A missing required variable
// is a programming/configuration error carrying PROMPT_VAR_REQUIRED; it is
// fatal and never retried.
func (t *Template) Render(vars map[string]any) (string, error) {
	for _, name := range t.required {
		if _, ok := vars[name]; !ok {
			return "", types.NewError(types.PROMPT_VAR_REQUIRED,
				fmt.Sprintf("template %q requires variable %q", t.name, name))
		}
	}

	var buf bytes.Buffer
	if err := t.tmpl.Execute(&buf, vars); err != nil {
		return "", types.WrapError(types.PROMPT_INVALID_TEMPLATE,
			fmt.Sprintf("template %q failed to render", t.name), err)
	}

	return buf.String(), nil
}
