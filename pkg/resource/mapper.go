package resource

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Handler turns the arguments of one keyword call into a Record.
// Implementations check their own arity and return an *ArityError when the
// argument count is wrong.
type Handler interface {
	Handle(args []string) (Record, error)
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(args []string) (Record, error)

// Handle calls f(args).
func (f HandlerFunc) Handle(args []string) (Record, error) { return f(args) }

// Describer is implemented by handlers that know which kind they produce.
// Used for listing the registry.
type Describer interface {
	Kind() Kind
}

// Mapper is the keyword registry.
type Mapper struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewMapper returns an empty registry.
func NewMapper() *Mapper {
	return &Mapper{handlers: make(map[string]Handler)}
}

// DefaultMapper returns a registry holding the built-in keywords.
func DefaultMapper() *Mapper {
	m := NewMapper()
	m.Register(KeywordUseDBTable, SingleName(KindDBTable))
	m.Register(KeywordUseADLSPath, SingleName(KindADLSPath))
	m.Register(KeywordRunDatabricksJob, SingleName(KindDatabricksJob))
	return m
}

// Register binds keyword to h. A later registration for the same keyword
// replaces the earlier one.
func (m *Mapper) Register(keyword string, h Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[keyword] = h
}

// Resolve interprets one keyword call. ok is false when keyword is not
// registered; that is the common case and not an error.
func (m *Mapper) Resolve(keyword string, args []string) (rec Record, ok bool, err error) {
	m.mu.RLock()
	h, found := m.handlers[keyword]
	m.mu.RUnlock()
	if !found {
		return Record{}, false, nil
	}

	rec, err = h.Handle(args)
	if err != nil {
		var ae *ArityError
		if errors.As(err, &ae) {
			if ae.Keyword == "" {
				ae.Keyword = keyword
			}
			return Record{}, false, ae
		}
		var he *HandlerError
		if errors.As(err, &he) {
			if he.Keyword == "" {
				he.Keyword = keyword
			}
			return Record{}, false, he
		}
		return Record{}, false, &HandlerError{Keyword: keyword, Err: err}
	}
	return rec, true, nil
}

// Keywords returns the registered keyword names, sorted.
func (m *Mapper) Keywords() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.handlers))
	for name := range m.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// KindOf returns the kind produced by keyword's handler, if the handler
// reports one.
func (m *Mapper) KindOf(keyword string) (Kind, bool) {
	m.mu.RLock()
	h, found := m.handlers[keyword]
	m.mu.RUnlock()
	if !found {
		return "", false
	}
	d, ok := h.(Describer)
	if !ok {
		return "", false
	}
	return d.Kind(), true
}

// RegisterKinds binds each keyword in extra to a SingleName handler for the
// given kind. Kinds are validated first; nothing is registered on error.
func (m *Mapper) RegisterKinds(extra map[string]string) error {
	parsed := make(map[string]Kind, len(extra))
	for keyword, raw := range extra {
		if strings.TrimSpace(keyword) == "" {
			return fmt.Errorf("empty keyword name for kind %q", raw)
		}
		kind, err := ParseKind(raw)
		if err != nil {
			return fmt.Errorf("keyword %q: %w", keyword, err)
		}
		parsed[keyword] = kind
	}
	for keyword, kind := range parsed {
		m.Register(keyword, SingleName(kind))
	}
	return nil
}
