package events

import (
	"fmt"
	"regexp"
	"strings"
)

// Kind classifies a change event.
type Kind string

const (
	// KindAdd indicates a path appeared.
	KindAdd Kind = "Add"

	// KindUpdate indicates a path's value changed.
	KindUpdate Kind = "Update"

	// KindRemove indicates a path disappeared.
	KindRemove Kind = "Remove"
)

// Valid reports whether k is one of the defined kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindAdd, KindUpdate, KindRemove:
		return true
	}
	return false
}

// Event is the payload delivered to a handler.
type Event struct {
	// Kind describes what happened to the path.
	Kind Kind

	// Path is the processed path in canonical dot form.
	Path string

	// Old is the value before the change. Nil for KindAdd.
	Old any

	// New is the value after the change. Nil for KindRemove.
	New any

	// Tokens holds the wildcard captures in declaration order.
	Tokens []string

	// Data is the opaque value bound at subscription time.
	Data any
}

// Handler consumes one event. An error aborts the surrounding pass.
type Handler func(Event) error

// Binding ties a compiled pattern to a handler for one kind.
type Binding struct {
	// Kind the binding listens for.
	Kind Kind

	// Pattern is the original subscription pattern.
	Pattern string

	// Handler receives full-match events.
	Handler Handler

	// Data is handed back verbatim inside each event.
	Data any

	matcher *regexp.Regexp
	tokens  int
}

// Match is one outcome of matching a path against the registry.
type Match struct {
	// Binding is the subscription that matched.
	Binding *Binding

	// Tokens holds the wildcard captures in declaration order.
	Tokens []string

	// Prefix is the portion of the path the pattern consumed.
	Prefix string

	// Extra is the unconsumed remainder. Empty for a full match.
	Extra string
}

// Registry holds the process-lifetime subscriptions.
type Registry struct {
	bindings []*Binding
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Subscribe registers handler for paths matching pattern under kind. The
// opaque data rides along in every delivered event.
func (r *Registry) Subscribe(kind Kind, pattern string, handler Handler, data any) error {
	if !kind.Valid() {
		return fmt.Errorf("event kind %q is not valid", kind)
	}
	if pattern == "" {
		return fmt.Errorf("pattern cannot be empty")
	}
	if handler == nil {
		return fmt.Errorf("handler cannot be nil")
	}

	matcher, tokens, err := compile(pattern)
	if err != nil {
		return fmt.Errorf("compiling pattern %q: %w", pattern, err)
	}

	r.bindings = append(r.bindings, &Binding{
		Kind:    kind,
		Pattern: pattern,
		Handler: handler,
		Data:    data,
		matcher: matcher,
		tokens:  tokens,
	})
	return nil
}

// Match returns every binding outcome for the path under kind, in
// subscription order. It never invokes handlers.
func (r *Registry) Match(kind Kind, path string) []Match {
	var matches []Match
	for _, binding := range r.bindings {
		if binding.Kind != kind {
			continue
		}

		sub := binding.matcher.FindStringSubmatch(path)
		if sub == nil {
			continue
		}

		tokens := make([]string, binding.tokens)
		copy(tokens, sub[1:1+binding.tokens])

		extra := sub[len(sub)-1]
		prefix := path
		if extra != "" {
			prefix = path[:len(path)-len(extra)-1]
		}

		matches = append(matches, Match{
			Binding: binding,
			Tokens:  tokens,
			Prefix:  prefix,
			Extra:   extra,
		})
	}
	return matches
}

// Len returns the number of registered bindings.
func (r *Registry) Len() int {
	return len(r.bindings)
}

// uidExpr matches one path segment's worth of identifier characters.
const uidExpr = "([A-Za-z0-9_-]+)"

// compile turns a subscription pattern into an anchored matcher. The final
// capture group holds the unconsumed remainder; every earlier group is a
// {uid} token.
func compile(pattern string) (*regexp.Regexp, int, error) {
	segments := strings.Split(pattern, ".")

	tokens := 0
	compiled := make([]string, len(segments))
	for i, segment := range segments {
		if segment == "" {
			return nil, 0, fmt.Errorf("empty segment")
		}
		pieces := strings.Split(segment, "{uid}")
		tokens += len(pieces) - 1

		quoted := make([]string, len(pieces))
		for j, piece := range pieces {
			quoted[j] = regexp.QuoteMeta(piece)
		}
		compiled[i] = strings.Join(quoted, uidExpr)
	}

	expr := "^" + strings.Join(compiled, `\.`) + `(?:\.(.+))?$`
	matcher, err := regexp.Compile(expr)
	if err != nil {
		return nil, 0, err
	}
	return matcher, tokens, nil
}
