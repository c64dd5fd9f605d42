package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSniff(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Format
	}{
		{"go test json", `{"Time":"2024-01-01T00:00:00Z","Action":"start","Package":"example.com/pkg"}` + "\n", GoTestJSON},
		{"go test json run first", "\n  " + `{"Action":"run","Package":"p","Test":"TestA"}`, GoTestJSON},
		{"usage map", "{\n    \"TestA\": [\n        {\n", UsageMap},
		{"empty usage map", "{}\n", UsageMap},
		{"usage map with empty entry", `{"T2": []}`, UsageMap},
		{"build output first", `{"ImportPath":"example.com/broken [example.com/broken.test]","Action":"build-output","Output":"# example.com/broken\n"}` + "\n", GoTestJSON},
		{"build fail first", `{"ImportPath":"example.com/broken","Action":"build-fail"}`, GoTestJSON},
		{"attr", `{"Action":"attr","Package":"p","Test":"TestA","Key":"k","Value":"v"}`, GoTestJSON},
		{"unknown action", `{"Action":"explode"}`, Unknown},
		{"object of objects", `{"a": {"b": 1}}`, Unknown},
		{"plain text", "=== RUN TestA\n", Unknown},
		{"array", `[1,2]`, Unknown},
		{"empty", "", Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sniff([]byte(tt.input)))
		})
	}
}

func TestFormat_String(t *testing.T) {
	assert.Equal(t, "go test -json", GoTestJSON.String())
	assert.Equal(t, "usage map", UsageMap.String())
	assert.Equal(t, "unknown", Unknown.String())
}
