package resource

import (
	"errors"
	"strings"
)

// Public keyword names. Tests invoke these by name; they must stay stable.
const (
	KeywordUseDBTable       = "Use DB Table"
	KeywordUseADLSPath      = "Use ADLS Path"
	KeywordRunDatabricksJob = "Run Databricks Job"
)

// ErrBlankName is returned by SingleName handlers for an empty or
// whitespace-only argument.
var ErrBlankName = errors.New("resource name is blank")

type singleName struct {
	kind Kind
}

// SingleName returns a handler that takes exactly one argument, the
// resource name, and records it under kind.
func SingleName(kind Kind) Handler {
	return singleName{kind: kind}
}

func (h singleName) Handle(args []string) (Record, error) {
	if len(args) != 1 {
		return Record{}, &ArityError{Want: 1, Got: len(args)}
	}
	if strings.TrimSpace(args[0]) == "" {
		return Record{}, &HandlerError{Err: ErrBlankName}
	}
	return Record{Kind: h.kind, Name: args[0]}, nil
}

func (h singleName) Kind() Kind { return h.kind }
