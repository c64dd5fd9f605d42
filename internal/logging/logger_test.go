package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInit_FiltersByLevel(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	l := Init(&buf, slog.LevelWarn)
	l.Info("hidden")
	l.Warn("shown", "keyword", "Use DB Table")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, `keyword="Use DB Table"`)
	assert.Contains(t, out, "component=resusage")
	assert.Same(t, l, Logger())
}
