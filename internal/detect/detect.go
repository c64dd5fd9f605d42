// Package detect sniffs input to determine its format.
package detect

import (
	"bytes"
	"encoding/json"

	"github.com/dkoosis/resusage/pkg/testjson"
)

// Format represents a recognized input format.
type Format int

const (
	Unknown    Format = iota
	GoTestJSON        // go test -json NDJSON stream
	UsageMap          // resource usage map document
)

func (f Format) String() string {
	switch f {
	case GoTestJSON:
		return "go test -json"
	case UsageMap:
		return "usage map"
	default:
		return "unknown"
	}
}

// Sniff examines the first bytes of input to determine format.
// Input must contain at least the first line.
func Sniff(data []byte) Format {
	data = bytes.TrimLeft(data, " \t\r\n")
	if len(data) == 0 || data[0] != '{' {
		return Unknown
	}

	if isGoTestJSON(data) {
		return GoTestJSON
	}
	if isUsageMap(data) {
		return UsageMap
	}
	return Unknown
}

func isGoTestJSON(data []byte) bool {
	firstLine := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		firstLine = data[:i]
	}

	var event struct {
		Action     string `json:"Action"`
		Package    string `json:"Package"`
		ImportPath string `json:"ImportPath"`
	}
	if err := json.Unmarshal(firstLine, &event); err != nil {
		return false
	}
	// A build failure puts build-output lines, keyed by ImportPath, first.
	return testjson.IsAction(event.Action) || (event.Action == "" && event.ImportPath != "")
}

// isUsageMap accepts "{}" or an object whose first value is an array. The
// usage map is pretty-printed, so only the opening of the document may be
// available.
func isUsageMap(data []byte) bool {
	dec := json.NewDecoder(bytes.NewReader(data))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return false
	}
	tok, err := dec.Token()
	if err != nil {
		return false
	}
	if tok == json.Delim('}') {
		return true
	}
	if _, ok := tok.(string); !ok {
		return false
	}
	tok, err = dec.Token()
	return err == nil && tok == json.Delim('[')
}
