// Package questiontype is the declarative catalogue of question kinds. Each
// Descriptor bundles the validation-rule generation, value formatting, and
// input normalization for one kind; the Registry resolves descriptors by
// identifier.
//
// The registry is configured once at startup (register/unregister are
// configuration-time operations); lookups afterwards are read-only.
package questiontype

import (
	"sort"
	"sync"

	qmodels "canvass/internal/questionnaire/models"
	rmodels "canvass/internal/response/models"
	dErrors "canvass/pkg/domain-errors"
)

// Descriptor is the declarative bundle of behavior for one question kind.
type Descriptor interface {
	// Identifier is the type's registry key.
	Identifier() qmodels.QuestionType
	// Name and Description label the type for builder UIs.
	Name() string
	Description() string
	// Icon names a presentation-only glyph.
	Icon() string
	// ValidationRules derives the type-specific rule tokens for one question,
	// e.g. ["numeric", "integer", "min:1", "max:10"]. Required/nullable and
	// choice-restriction tokens are the validation strategy's responsibility.
	ValidationRules(question qmodels.Question) []string
	// ValidationMessages maps rule names to human message templates. The
	// ":question" placeholder is substituted with the question text.
	ValidationMessages() map[string]string
	// FormatValue renders the canonical display string for a value. It never
	// fails: unparseable input falls back to raw stringification.
	FormatValue(value rmodels.AnswerValue, question qmodels.Question) string
	// TransformValue normalizes raw submitted input into the canonical
	// in-memory representation (numeric strings become numbers, empty strings
	// become null).
	TransformValue(raw any) (rmodels.AnswerValue, error)
	// Config returns the type's default settings.
	Config() map[string]any
}

// Registry maps question type identifiers to descriptors.
type Registry struct {
	mu    sync.RWMutex
	types map[qmodels.QuestionType]Descriptor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{types: make(map[qmodels.QuestionType]Descriptor)}
}

// NewDefaultRegistry creates a registry holding the seven built-in types.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	for _, d := range BuiltinDescriptors() {
		r.Register(d)
	}
	return r
}

// Register adds a descriptor, overwriting any previous one with the same
// identifier.
func (r *Registry) Register(d Descriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types[d.Identifier()] = d
}

// Unregister removes a descriptor by identifier.
func (r *Registry) Unregister(identifier qmodels.QuestionType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.types, identifier)
}

// Get returns the descriptor for identifier, or nil when unregistered.
func (r *Registry) Get(identifier qmodels.QuestionType) Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.types[identifier]
}

// GetOrFail returns the descriptor or a CodeUnknownQuestionType error.
func (r *Registry) GetOrFail(identifier qmodels.QuestionType) (Descriptor, error) {
	if d := r.Get(identifier); d != nil {
		return d, nil
	}
	return nil, dErrors.New(dErrors.CodeUnknownQuestionType,
		"unknown question type: "+identifier.String())
}

// Has reports whether the identifier is registered.
func (r *Registry) Has(identifier qmodels.QuestionType) bool {
	return r.Get(identifier) != nil
}

// All returns every descriptor, sorted by identifier for determinism.
func (r *Registry) All() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Descriptor, 0, len(r.types))
	for _, d := range r.types {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Identifier() < out[j].Identifier() })
	return out
}
