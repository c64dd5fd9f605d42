// Package resource maps marker keywords to the external resources a test touches.
//
// A Mapper holds a registry from keyword name to Handler. Handlers are pure:
// they turn the positional arguments of one keyword call into a Record, or
// reject them. Lookup is exact; there is no case folding or fuzzy matching.
package resource

import (
	"fmt"
	"regexp"
)

// Kind identifies the type of resource a Record refers to.
type Kind string

// Built-in kinds. Additional kinds may be registered from configuration.
const (
	KindDBTable       Kind = "DB_TABLE"
	KindADLSPath      Kind = "ADLS_PATH"
	KindDatabricksJob Kind = "DATABRICKS_JOB"
)

var kindRe = regexp.MustCompile(`^[A-Z][A-Z0-9]*(_[A-Z0-9]+)*$`)

// ParseKind validates s as an upper-snake kind identifier.
func ParseKind(s string) (Kind, error) {
	if !kindRe.MatchString(s) {
		return "", fmt.Errorf("invalid resource kind %q (expected UPPER_SNAKE, e.g. DB_TABLE)", s)
	}
	return Kind(s), nil
}

// Record notes that a test touched a named resource of a given kind.
type Record struct {
	Kind Kind   `json:"type"`
	Name string `json:"name"`
}

// String renders the record in marker form, e.g. "DB_TABLE:orders".
func (r Record) String() string {
	return string(r.Kind) + ":" + r.Name
}
