package keywords

import (
	"strconv"
	"strings"

	"github.com/dkoosis/resusage/pkg/resource"
)

// Invocation is one keyword call recovered from test output.
type Invocation struct {
	Keyword string
	Args    []string
}

// Decode finds a marker in line and returns the keyword call it encodes.
// The marker may be preceded by anything, such as the "file_test.go:12: "
// prefix go test adds to t.Log output. Only the line ending and the single
// space after the marker are removed; names are returned byte for byte.
//
// A [RESOURCE] line for a kind without a helper is reported as a call to a
// keyword named after the kind, which no default registry entry matches.
func Decode(line string) (Invocation, bool) {
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")

	if i := strings.Index(line, ResourceMarker); i >= 0 {
		return decodeResource(line[i+len(ResourceMarker):])
	}
	if i := strings.Index(line, KeywordMarker); i >= 0 {
		return decodeKeyword(line[i+len(KeywordMarker):])
	}
	return Invocation{}, false
}

func decodeResource(body string) (Invocation, bool) {
	body, ok := strings.CutPrefix(body, " ")
	if !ok {
		return Invocation{}, false
	}
	kind, name, ok := strings.Cut(body, ":")
	if !ok {
		return Invocation{}, false
	}
	if _, err := resource.ParseKind(kind); err != nil {
		return Invocation{}, false
	}
	kw, known := helperKeywords[resource.Kind(kind)]
	if !known {
		kw = kind
	}
	return Invocation{Keyword: kw, Args: []string{name}}, true
}

// decodeKeyword parses a space-separated list of Go-quoted strings. The
// first is the keyword.
func decodeKeyword(body string) (Invocation, bool) {
	var tokens []string
	for {
		rest, ok := strings.CutPrefix(body, " ")
		if !ok {
			break
		}
		q, err := strconv.QuotedPrefix(rest)
		if err != nil {
			return Invocation{}, false
		}
		tok, err := strconv.Unquote(q)
		if err != nil {
			return Invocation{}, false
		}
		tokens = append(tokens, tok)
		body = rest[len(q):]
	}
	if body != "" || len(tokens) == 0 || tokens[0] == "" {
		return Invocation{}, false
	}
	return Invocation{Keyword: tokens[0], Args: tokens[1:]}, true
}
