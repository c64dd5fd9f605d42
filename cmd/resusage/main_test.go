package main

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate runs the test in an empty directory with no user config and no
// RESUSAGE_* overrides. Returns the directory.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	// Equivalent of t.Chdir (Go 1.24+) for older toolchains.
	oldWd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(oldWd) })
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	t.Setenv("HOME", dir)
	for _, k := range []string{
		"RESUSAGE_OUTPUT", "RESUSAGE_FORMAT", "RESUSAGE_THEME", "RESUSAGE_LOG_LEVEL",
		"RESUSAGE_QUALIFY", "RESUSAGE_PASSTHROUGH", "RESUSAGE_STRICT", "NO_COLOR",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	return dir
}

func events(lines ...string) string {
	return strings.Join(lines, "\n") + "\n"
}

var twoTests = events(
	`{"Action":"start","Package":"example.com/etl"}`,
	`{"Action":"run","Package":"example.com/etl","Test":"T1"}`,
	`{"Action":"output","Package":"example.com/etl","Test":"T1","Output":"=== RUN   T1\n"}`,
	`{"Action":"output","Package":"example.com/etl","Test":"T1","Output":"    etl_test.go:14: [RESOURCE] DB_TABLE:orders\n"}`,
	`{"Action":"pass","Package":"example.com/etl","Test":"T1","Elapsed":0.01}`,
	`{"Action":"run","Package":"example.com/etl","Test":"T2"}`,
	`{"Action":"output","Package":"example.com/etl","Test":"T2","Output":"    etl_test.go:30: nothing to see\n"}`,
	`{"Action":"pass","Package":"example.com/etl","Test":"T2","Elapsed":0.01}`,
	`{"Action":"pass","Package":"example.com/etl","Elapsed":0.05}`,
)

const twoTestsMap = `{
    "T1": [
        {
            "type": "DB_TABLE",
            "name": "orders"
        }
    ],
    "T2": []
}
`

// --- JTBD E2E Tests ---
// These exercise the full pipeline: stdin → listener → tracker → file + report

func TestJTBD_ListenWritesUsageMap(t *testing.T) {
	dir := isolate(t)

	var stdout, stderr bytes.Buffer
	code := run([]string{"--format", "llm"}, strings.NewReader(twoTests), &stdout, &stderr)
	require.Equal(t, 0, code, "stderr: %s", stderr.String())

	data, err := os.ReadFile(filepath.Join(dir, "resource_usage_map.json"))
	require.NoError(t, err)
	assert.Equal(t, twoTestsMap, string(data))

	out := stdout.String()
	assert.Contains(t, out, "RESOURCES: 2 tests, 1 records, 1 distinct")
	assert.Contains(t, out, "Without resources: 1")
	assert.NotContains(t, out, "\033[", "LLM output contains ANSI escape codes")
}

func TestJTBD_ListenCustomOutputAndQualify(t *testing.T) {
	dir := isolate(t)
	out := filepath.Join(dir, "reports", "usage.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(out), 0o755))

	var stdout, stderr bytes.Buffer
	code := run([]string{"--output", out, "--qualify", "--format", "json"}, strings.NewReader(twoTests), &stdout, &stderr)
	require.Equal(t, 0, code, "stderr: %s", stderr.String())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"example.com/etl.T1"`)
	assert.Contains(t, stdout.String(), `"test": "example.com/etl.T1"`)
	assert.NoFileExists(t, filepath.Join(dir, "resource_usage_map.json"))
}

func TestJTBD_Passthrough(t *testing.T) {
	isolate(t)

	var stdout, stderr bytes.Buffer
	code := run([]string{"--passthrough", "--format", "llm"}, strings.NewReader(twoTests), &stdout, &stderr)
	require.Equal(t, 0, code)

	assert.Equal(t, twoTests, stdout.String(), "raw stream must be copied verbatim")
	assert.Contains(t, stderr.String(), "RESOURCES:")
}

func TestJTBD_PersistenceFailure(t *testing.T) {
	dir := isolate(t)
	missing := filepath.Join(dir, "no", "such", "dir", "map.json")

	t.Run("lenient", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		code := run([]string{"--output", missing, "--format", "llm"}, strings.NewReader(twoTests), &stdout, &stderr)
		assert.Equal(t, 0, code)
		assert.Contains(t, stderr.String(), "map.json")
		assert.Contains(t, stdout.String(), "RESOURCES:")
	})

	t.Run("strict", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		code := run([]string{"--output", missing, "--strict", "--format", "llm"}, strings.NewReader(twoTests), &stdout, &stderr)
		assert.Equal(t, 1, code)
	})
}

func TestJTBD_ConfigRegistersKeywords(t *testing.T) {
	dir := isolate(t)
	cfg := "keywords:\n  Use Kafka Topic: KAFKA_TOPIC\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".resusage.yaml"), []byte(cfg), 0o644))

	input := events(
		`{"Action":"run","Package":"p","Test":"TestPublish"}`,
		`{"Action":"output","Package":"p","Test":"TestPublish","Output":"    pub_test.go:9: [KEYWORD] \"Use Kafka Topic\" \"orders|v1\"\n"}`,
		`{"Action":"pass","Package":"p","Test":"TestPublish"}`,
	)
	var stdout, stderr bytes.Buffer
	code := run([]string{"--format", "llm"}, strings.NewReader(input), &stdout, &stderr)
	require.Equal(t, 0, code, "stderr: %s", stderr.String())

	data, err := os.ReadFile(filepath.Join(dir, "resource_usage_map.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"type": "KAFKA_TOPIC"`)
	assert.Contains(t, string(data), `"name": "orders|v1"`)
}

func TestJTBD_ShowSavedMap(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "saved.json")
	require.NoError(t, os.WriteFile(path, []byte(twoTestsMap), 0o644))

	var stdout, stderr bytes.Buffer
	code := run([]string{"show", "--format", "llm", path}, strings.NewReader(""), &stdout, &stderr)
	require.Equal(t, 0, code, "stderr: %s", stderr.String())
	assert.Contains(t, stdout.String(), "RESOURCES: 2 tests, 1 records, 1 distinct")
}

func TestJTBD_UsageMapOnStdinIsShown(t *testing.T) {
	isolate(t)

	var stdout, stderr bytes.Buffer
	code := run([]string{"--format", "llm"}, strings.NewReader(twoTestsMap), &stdout, &stderr)
	require.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "RESOURCES: 2 tests")
	assert.NoFileExists(t, "resource_usage_map.json", "showing a map must not rewrite it")
}

func TestJTBD_RunForwardsExitCode(t *testing.T) {
	dir := isolate(t)
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	script := "printf '%s\\n' " +
		`'{"Action":"run","Package":"p","Test":"TestJob"}' ` +
		`'{"Action":"output","Package":"p","Test":"TestJob","Output":"[RESOURCE] DATABRICKS_JOB:nightly\n"}' ` +
		`'{"Action":"fail","Package":"p","Test":"TestJob"}'` +
		"; exit 3"

	var stdout, stderr bytes.Buffer
	code := run([]string{"run", "--format", "llm", "--", "sh", "-c", script}, strings.NewReader(""), &stdout, &stderr)
	assert.Equal(t, 3, code, "stderr: %s", stderr.String())

	data, err := os.ReadFile(filepath.Join(dir, "resource_usage_map.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"name": "nightly"`)
}

func TestJTBD_BuildFailureDoesNotLoseOtherPackages(t *testing.T) {
	dir := isolate(t)
	input := events(
		`{"ImportPath":"example.com/broken [example.com/broken.test]","Action":"build-output","Output":"# example.com/broken\n"}`,
		`{"ImportPath":"example.com/broken [example.com/broken.test]","Action":"build-output","Output":"broken/x.go:3:1: syntax error\n"}`,
		`{"ImportPath":"example.com/broken [example.com/broken.test]","Action":"build-fail"}`,
		`{"Action":"start","Package":"example.com/broken"}`,
		`{"Action":"fail","Package":"example.com/broken","Elapsed":0}`,
		`{"Action":"run","Package":"example.com/etl","Test":"T1"}`,
		`{"Action":"output","Package":"example.com/etl","Test":"T1","Output":"    etl_test.go:14: [RESOURCE] DB_TABLE:orders\n"}`,
		`{"Action":"pass","Package":"example.com/etl","Test":"T1"}`,
	)

	var stdout, stderr bytes.Buffer
	code := run([]string{"--format", "llm"}, strings.NewReader(input), &stdout, &stderr)
	require.Equal(t, 0, code, "stderr: %s", stderr.String())

	data, err := os.ReadFile(filepath.Join(dir, "resource_usage_map.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"name": "orders"`)
	assert.NotContains(t, stderr.String(), "malformed")
	assert.Contains(t, stderr.String(), "package failed to build")
}

func TestJTBD_RunChildKilledBySignal(t *testing.T) {
	dir := isolate(t)
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	script := "printf '%s\\n' " +
		`'{"Action":"run","Package":"p","Test":"TestJob"}' ` +
		`'{"Action":"output","Package":"p","Test":"TestJob","Output":"[RESOURCE] DB_TABLE:orders\n"}'` +
		"; kill -TERM $$"

	var stdout, stderr bytes.Buffer
	code := run([]string{"run", "--format", "llm", "--", "sh", "-c", script}, strings.NewReader(""), &stdout, &stderr)
	assert.Equal(t, 128+15, code, "stderr: %s", stderr.String())

	data, err := os.ReadFile(filepath.Join(dir, "resource_usage_map.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"name": "orders"`)
}

func TestChildExitCode(t *testing.T) {
	code, err := childExitCode(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, code)

	_, err = childExitCode(exec.ErrNotFound)
	assert.ErrorIs(t, err, exec.ErrNotFound)
}

func TestDebugLogShowsConfigSources(t *testing.T) {
	isolate(t)
	t.Setenv("RESUSAGE_THEME", "orca")

	var stdout, stderr bytes.Buffer
	code := run([]string{"keywords", "--log-level", "debug"}, strings.NewReader(""), &stdout, &stderr)
	require.Equal(t, 0, code)
	assert.Contains(t, stderr.String(), "config resolved")
	assert.Contains(t, stderr.String(), "theme:env")
	assert.Contains(t, stderr.String(), "log_level:cli")
}

func TestKeywordsList(t *testing.T) {
	isolate(t)

	var stdout, stderr bytes.Buffer
	code := run([]string{"keywords"}, strings.NewReader(""), &stdout, &stderr)
	require.Equal(t, 0, code)

	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Run Databricks Job  DATABRICKS_JOB", lines[0])
	assert.Equal(t, "Use ADLS Path       ADLS_PATH", lines[1])
	assert.Equal(t, "Use DB Table        DB_TABLE", lines[2])
}

func TestInputErrors(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		input string
		want  string
	}{
		{"empty stdin", nil, "", "no input on stdin"},
		{"unrecognized", nil, "hello world\n", "unrecognized input"},
		{"bad flag", []string{"--nope"}, twoTests, "flag provided but not defined"},
		{"bad format", []string{"--format", "xml"}, twoTests, "format"},
		{"run without command", []string{"run"}, "", "missing command"},
		{"show wrong input", []string{"show"}, twoTests, "expected a usage map"},
		{"show missing file", []string{"show", "nope.json"}, "", "nope.json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			var stdout, stderr bytes.Buffer
			code := run(tt.args, strings.NewReader(tt.input), &stdout, &stderr)
			assert.Equal(t, 2, code)
			assert.Contains(t, stderr.String(), tt.want)
		})
	}
}

func TestVersion(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"version"}, strings.NewReader(""), &stdout, &stderr)
	assert.Equal(t, 0, code)
	assert.True(t, strings.HasPrefix(stdout.String(), "resusage dev"))
}

func TestResolveFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.Equal(t, "llm", resolveFormat("auto", &buf))
	assert.Equal(t, "json", resolveFormat("json", &buf))
}
